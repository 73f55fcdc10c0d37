package fetch

import (
	"context"
	"fmt"
	"sync"

	"github.com/starlab-dev/starlab/internal/notify"
)

// Fetcher loads the data for a query's current key
type Fetcher[T any] func(ctx context.Context) (T, error)

// Options configures a Query
type Options[T any] struct {
	// Notifier receives the notifications selected by Notices. Defaults to
	// notify.Discard.
	Notifier notify.Notifier
	Notices  Notices
	// ErrorText renders a failure for a default-text Error notice
	ErrorText func(error) string
	// FailureNotification is the toast the HTTP pipeline would show for a
	// failure. Fetchers always run under notify.Suppress because their call
	// may be shared with other queries, so each query without an Error
	// notice shows this itself. Nil shows nothing.
	FailureNotification func(error) notify.Notification
	// KeepPipelineNotices shows FailureNotification even when the Error
	// notice is requested, producing two notifications per failure
	KeepPipelineNotices bool
	// RevalidateOnFocus makes Focus refetch. Off by default.
	RevalidateOnFocus bool

	OnSuccess func(key string, data T)
	OnError   func(key string, err error)

	Listeners []Listener
}

// Result is a query's current state
type Result[T any] struct {
	Key  string
	Data T
	Err  error
	// HasData reports whether Data holds a fetched or mutated value
	HasData bool
	// IsLoading is true while the first fetch for the key is in flight
	IsLoading bool
	// IsValidating is true while any fetch is in flight
	IsValidating bool
}

// Query binds a cache key to a fetcher. Safe for concurrent use.
type Query[T any] struct {
	cache     *Cache
	fetcher   Fetcher[T]
	opts      Options[T]
	listeners []Listener

	mutex    sync.Mutex
	key      string
	data     T
	hasData  bool
	err      error
	inflight int
	closed   bool
}

// NewQuery creates a query for key without fetching. Data already cached
// under key is visible immediately.
func NewQuery[T any](cache *Cache, key string, fetcher Fetcher[T], opts Options[T]) *Query[T] {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	q := &Query[T]{
		cache:   cache,
		fetcher: fetcher,
		opts:    opts,
	}
	if opts.Notices.any() {
		q.listeners = append(q.listeners, newNoticeListener(opts.Notifier, opts.Notices, opts.ErrorText))
	}
	q.listeners = append(q.listeners, opts.Listeners...)
	q.setKeyLocked(key)
	return q
}

// Use creates a query and loads it
func Use[T any](ctx context.Context, cache *Cache, key string, fetcher Fetcher[T], opts Options[T]) (*Query[T], Result[T]) {
	q := NewQuery(cache, key, fetcher, opts)
	return q, q.Load(ctx)
}

// Load fetches the current key, serving fresh cached data when available
func (q *Query[T]) Load(ctx context.Context) Result[T] {
	return q.run(ctx, false)
}

// Revalidate fetches the current key, bypassing the deduping interval
func (q *Query[T]) Revalidate(ctx context.Context) Result[T] {
	return q.run(ctx, true)
}

// SetKey switches the query to key and loads it. The empty key clears the
// query without fetching.
func (q *Query[T]) SetKey(ctx context.Context, key string) Result[T] {
	q.mutex.Lock()
	if key == q.key {
		q.mutex.Unlock()
		return q.Result()
	}
	q.setKeyLocked(key)
	q.mutex.Unlock()
	return q.Load(ctx)
}

func (q *Query[T]) setKeyLocked(key string) {
	var zero T
	q.key = key
	q.data = zero
	q.hasData = false
	q.err = nil
	if key == "" {
		return
	}
	if cached, ok := q.cache.Get(key); ok {
		if data, ok := cached.(T); ok {
			q.data = data
			q.hasData = true
		}
	}
}

// Mutate replaces the data of the current key locally and in the cache
func (q *Query[T]) Mutate(data T) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.key == "" {
		return
	}
	q.data = data
	q.hasData = true
	q.err = nil
	q.cache.Mutate(q.key, data)
}

// Focus revalidates when RevalidateOnFocus is set
func (q *Query[T]) Focus(ctx context.Context) Result[T] {
	if !q.opts.RevalidateOnFocus {
		return q.Result()
	}
	return q.Revalidate(ctx)
}

// Close stops lifecycle side effects. In-flight fetches still complete and
// update the cache.
func (q *Query[T]) Close() {
	q.mutex.Lock()
	if q.closed {
		q.mutex.Unlock()
		return
	}
	key := q.key
	q.mutex.Unlock()

	q.emit(Event{Kind: EventClosed, Key: key})

	q.mutex.Lock()
	q.closed = true
	q.mutex.Unlock()
}

func (q *Query[T]) Result() Result[T] {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.resultLocked()
}

func (q *Query[T]) resultLocked() Result[T] {
	return Result[T]{
		Key:          q.key,
		Data:         q.data,
		Err:          q.err,
		HasData:      q.hasData,
		IsLoading:    q.inflight > 0 && !q.hasData,
		IsValidating: q.inflight > 0,
	}
}

func (q *Query[T]) run(ctx context.Context, force bool) Result[T] {
	q.mutex.Lock()
	key := q.key
	if key == "" {
		defer q.mutex.Unlock()
		return q.resultLocked()
	}
	hadData := q.hasData
	q.inflight++
	q.mutex.Unlock()

	q.emit(Event{Kind: EventStarted, Key: key, HadData: hadData})

	// the shared call runs with the leader's ctx, so it never notifies
	raw, err := q.cache.fetch(notify.Suppress(ctx), key, func(ctx context.Context) (any, error) {
		data, err := q.fetcher(ctx)
		if err != nil {
			return nil, err
		}
		return data, nil
	}, force)

	var data T
	if err != nil {
		q.notifyFailure(err)
	} else {
		var ok bool
		if data, ok = raw.(T); !ok {
			err = fmt.Errorf("cached value for %q has type %T", key, raw)
		}
	}

	q.mutex.Lock()
	q.inflight--
	current := q.key == key
	if current {
		if err != nil {
			q.err = err
		} else {
			q.data = data
			q.hasData = true
			q.err = nil
		}
	}
	result := q.resultLocked()
	q.mutex.Unlock()

	if err != nil {
		q.emit(Event{Kind: EventFailed, Key: key, Err: err})
		if current && q.opts.OnError != nil && !q.isClosed() {
			q.opts.OnError(key, err)
		}
	} else {
		q.emit(Event{Kind: EventSucceeded, Key: key})
		if current && q.opts.OnSuccess != nil && !q.isClosed() {
			q.opts.OnSuccess(key, data)
		}
	}

	if !current {
		return q.Result()
	}
	return result
}

func (q *Query[T]) notifyFailure(err error) {
	if q.opts.FailureNotification == nil {
		return
	}
	if q.opts.Notices.Error.Enabled && !q.opts.KeepPipelineNotices {
		return
	}
	q.opts.Notifier.Show(q.opts.FailureNotification(err))
}

func (q *Query[T]) isClosed() bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.closed
}

func (q *Query[T]) emit(e Event) {
	if q.isClosed() {
		return
	}
	for _, l := range q.listeners {
		l.OnEvent(e)
	}
}
