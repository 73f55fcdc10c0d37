// Package session holds the client-side authentication state: an access
// token and the signed-in user's profile. The state lives in memory, is
// persisted through a Persister on every mutation, and is rehydrated when a
// Store is created.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// StorageKey is the fixed namespace key the state is persisted under
const StorageKey = "auth-store"

// User is the profile of the signed-in user
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// State is a point-in-time copy of the session. An empty AccessToken means
// no token is held. User may be set without a token and vice versa; the
// store does not enforce any relation between the two.
type State struct {
	AccessToken string `json:"accessToken"`
	User        *User  `json:"user"`
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Store is an injectable session container with change subscriptions.
// Safe for concurrent use.
type Store struct {
	mutex       sync.RWMutex
	state       State
	subscribers []chan State

	persister Persister
	logger    zerolog.Logger

	// persistMutex orders writes so a later snapshot is never overwritten
	// by an earlier one.
	persistMutex sync.Mutex
	dirty        chan struct{}
	done         chan struct{}
	stopped      chan struct{}
	closeOnce    sync.Once
}

// New creates a store, rehydrates it from persister and starts the
// background flusher. Rehydration failures are logged and leave the store
// empty.
func New(ctx context.Context, persister Persister, logger zerolog.Logger) *Store {
	s := &Store{
		persister: persister,
		logger:    logger.With().Str("component", "session").Logger(),
		dirty:     make(chan struct{}, 1),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}

	s.rehydrate(ctx)

	go s.flushLoop()

	return s
}

func (s *Store) rehydrate(ctx context.Context) {
	data, found, err := s.persister.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load persisted session")
		return
	}
	if !found {
		return
	}

	state, err := decodeState(data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Discarding unreadable persisted session")
		return
	}

	s.mutex.Lock()
	s.state = state
	s.mutex.Unlock()
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.state.clone()
}

// Token returns the current access token, or "" if none is held
func (s *Store) Token() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.state.AccessToken
}

// User returns a copy of the current user, or nil
func (s *Store) User() *User {
	return s.Snapshot().User
}

// IsAuthenticated reports whether a token is held
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// SetToken replaces the token. Passing "" clears it. The user is untouched.
func (s *Store) SetToken(token string) {
	s.update(func(state *State) {
		state.AccessToken = token
	})
}

// SetUser replaces the user. Passing nil clears it. The token is untouched.
func (s *Store) SetUser(user *User) {
	if user != nil {
		u := *user
		user = &u
	}
	s.update(func(state *State) {
		state.User = user
	})
}

// Logout clears token and user in a single mutation
func (s *Store) Logout() {
	s.update(func(state *State) {
		*state = State{}
	})
}

func (s *Store) update(mutate func(*State)) {
	s.mutex.Lock()
	mutate(&s.state)
	// unsubscribe closes channels under the same lock
	for _, subscriber := range s.subscribers {
		select {
		case subscriber <- s.state.clone():
		default:
			// Subscriber buffer full. It only cares about the latest state,
			// which it can read with Snapshot.
		}
	}
	s.mutex.Unlock()

	select {
	case s.dirty <- struct{}{}:
	default:
		// a flush is already pending and will pick up this mutation
	}
}

// Subscribe returns a channel that receives the new State after every
// mutation, and a func that removes the subscription and closes the channel.
func (s *Store) Subscribe() (<-chan State, func()) {
	channel := make(chan State, 16)

	s.mutex.Lock()
	s.subscribers = append(s.subscribers, channel)
	s.mutex.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mutex.Lock()
			defer s.mutex.Unlock()
			for i, subscriber := range s.subscribers {
				if subscriber == channel {
					s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
					break
				}
			}
			close(channel)
		})
	}

	return channel, unsubscribe
}

func (s *Store) flushLoop() {
	defer close(s.stopped)
	for {
		select {
		case <-s.dirty:
			if err := s.Flush(context.Background()); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to persist session")
			}
		case <-s.done:
			return
		}
	}
}

// Flush writes the current state through the persister and waits for the
// write to complete. Mutations never surface persistence errors; Flush is
// the only place a caller can observe them.
func (s *Store) Flush(ctx context.Context) error {
	s.persistMutex.Lock()
	defer s.persistMutex.Unlock()

	data, err := encodeState(s.Snapshot())
	if err != nil {
		return err
	}
	return s.persister.Save(ctx, data)
}

// Close stops the background flusher and writes the final state
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.stopped
		err = s.Flush(context.Background())
	})
	return err
}
