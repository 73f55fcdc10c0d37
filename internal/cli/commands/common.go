package commands

import (
	"errors"

	"github.com/starlab-dev/starlab/internal/api"
	"github.com/starlab-dev/starlab/internal/fetch"
	"github.com/starlab-dev/starlab/internal/notify"
)

// reportedError marks a failure the user has already seen as a notification.
// The command still exits non-zero but the error is not printed again.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// IsReported reports whether err was already shown to the user
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// queryOptions wires a query to the app's notifier with the pipeline's
// failure messages
func queryOptions[T any](notifier notify.Notifier, notices fetch.Notices) fetch.Options[T] {
	return fetch.Options[T]{
		Notifier:            notifier,
		Notices:             notices,
		ErrorText:           api.FailureText,
		FailureNotification: api.FailureNotification,
	}
}
