package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/starlab-dev/starlab/internal/notify"
)

// RequestInterceptor runs before a request is sent. It may mutate req.
// Returning an error aborts the call; the request never reaches the network.
type RequestInterceptor func(ctx context.Context, req *http.Request, directive Directive) error

// ResponseInterceptor runs once per call after the outcome is known. resp is
// nil when nothing was received. err is nil for a 2xx response; the returned
// error replaces it for the rest of the chain.
type ResponseInterceptor func(ctx context.Context, resp *http.Response, err error) error

// TokenSource provides the current access token ("" when absent)
type TokenSource interface {
	Token() string
}

// Authenticator is the session surface LogoutOnUnauthorized needs
type Authenticator interface {
	Logout()
}

// Authenticate enforces the directive's auth policy and attaches
// "Authorization: Bearer <token>"
func Authenticate(tokens TokenSource) RequestInterceptor {
	return func(ctx context.Context, req *http.Request, directive Directive) error {
		token := tokens.Token()

		if directive.RequireAuth && token == "" {
			return ErrUnauthenticated
		}

		shouldAttach := token != ""
		if directive.Auth != AuthDefault {
			shouldAttach = directive.Auth == AuthAttach
		}

		if shouldAttach && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}
}

// StatusNotification maps a failure to the toast shown for it
func StatusNotification(status int, message string) notify.Notification {
	switch status {
	case http.StatusBadRequest:
		return notify.Notification{Severity: notify.SeverityWarning, Message: "Bad Request: " + message}
	case http.StatusUnauthorized:
		return notify.Notification{Severity: notify.SeverityError, Message: "Unauthorized, please log in again."}
	case http.StatusForbidden:
		return notify.Notification{Severity: notify.SeverityError, Message: "Forbidden: You do not have permission."}
	case http.StatusNotFound:
		return notify.Notification{Severity: notify.SeverityWarning, Message: "Not Found"}
	case http.StatusInternalServerError:
		return notify.Notification{Severity: notify.SeverityError, Message: "Server error, please try again later."}
	default:
		return notify.Notification{Severity: notify.SeverityError, Message: message}
	}
}

// FailureNotification is the toast NotifyFailures shows for err
func FailureNotification(err error) notify.Notification {
	return StatusNotification(Describe(err))
}

// FailureText is the message FailureNotification shows for err
func FailureText(err error) string {
	return FailureNotification(err).Message
}

// NotifyFailures shows a notification for every failed call and passes the
// error on unchanged. Calls made under notify.Suppress are skipped.
func NotifyFailures(notifier notify.Notifier) ResponseInterceptor {
	return func(ctx context.Context, resp *http.Response, err error) error {
		if err == nil || notify.Suppressed(ctx) {
			return err
		}
		notifier.Show(FailureNotification(err))
		return err
	}
}

// LogoutOnUnauthorized clears the session when the server answers 401
func LogoutOnUnauthorized(session Authenticator) ResponseInterceptor {
	return func(ctx context.Context, resp *http.Response, err error) error {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Status == http.StatusUnauthorized {
			session.Logout()
		}
		return err
	}
}
