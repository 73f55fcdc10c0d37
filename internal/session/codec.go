package session

import (
	"encoding/json"
	"fmt"
)

const stateVersion = 0

// envelope is the persisted form: {"state": {...}, "version": 0}
type envelope struct {
	State   persistedState `json:"state"`
	Version int            `json:"version"`
}

// persistedState writes an absent token as null rather than ""
type persistedState struct {
	AccessToken *string `json:"accessToken"`
	User        *User   `json:"user"`
}

func encodeState(state State) ([]byte, error) {
	env := envelope{Version: stateVersion}
	if state.AccessToken != "" {
		token := state.AccessToken
		env.State.AccessToken = &token
	}
	env.State.User = state.User

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return data, nil
}

func decodeState(data []byte) (State, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return State{}, fmt.Errorf("failed to parse session: %w", err)
	}
	if env.Version != stateVersion {
		return State{}, fmt.Errorf("unsupported session version %d", env.Version)
	}

	var state State
	if env.State.AccessToken != nil {
		state.AccessToken = *env.State.AccessToken
	}
	state.User = env.State.User
	return state, nil
}
