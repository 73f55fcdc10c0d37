// Package notify delivers short user-facing notifications ("toasts").
//
// A Notifier shows notifications and dismisses them by ID. Showing a
// notification whose ID is already active replaces it, which is how a
// loading toast turns into a success or error toast in place.
package notify

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// Severity classifies a notification
type Severity string

const (
	SeverityLoading Severity = "loading"
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ID identifies a shown notification
type ID string

// NewID returns a fresh notification ID
func NewID() ID {
	return ID(ulid.Make().String())
}

// Notification is a single toast
type Notification struct {
	ID       ID
	Severity Severity
	Message  string
}

// Notifier shows and dismisses notifications. Implementations must be safe
// for concurrent use.
type Notifier interface {
	// Show displays n and returns its ID. An empty n.ID gets a fresh one;
	// an ID that is already active replaces that notification.
	Show(n Notification) ID

	// Dismiss removes the notification. Unknown IDs are ignored.
	Dismiss(id ID)
}

func Loading(n Notifier, message string) ID {
	return n.Show(Notification{Severity: SeverityLoading, Message: message})
}

func Success(n Notifier, message string) ID {
	return n.Show(Notification{Severity: SeveritySuccess, Message: message})
}

func Info(n Notifier, message string) ID {
	return n.Show(Notification{Severity: SeverityInfo, Message: message})
}

func Warning(n Notifier, message string) ID {
	return n.Show(Notification{Severity: SeverityWarning, Message: message})
}

func Error(n Notifier, message string) ID {
	return n.Show(Notification{Severity: SeverityError, Message: message})
}

// Discard drops every notification
var Discard Notifier = discard{}

type discard struct{}

func (discard) Show(n Notification) ID {
	if n.ID == "" {
		return NewID()
	}
	return n.ID
}

func (discard) Dismiss(ID) {}

type suppressKey struct{}

// Suppress returns a context under which generic, pipeline-level
// notifications are skipped. Used when the caller shows its own.
func Suppress(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressKey{}, true)
}

// Suppressed reports whether ctx was derived from Suppress
func Suppressed(ctx context.Context) bool {
	suppressed, _ := ctx.Value(suppressKey{}).(bool)
	return suppressed
}
