package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned before a request is sent when the directive
// requires auth and no token is held
var ErrUnauthenticated = errors.New("unauthenticated")

// DefaultFailureMessage is used when a failure carries no text at all
const DefaultFailureMessage = "Request failed"

// StatusError is a non-2xx response
type StatusError struct {
	Status int
	// Message is the server-provided "message" field, or a generic
	// description when the body has none
	Message string
	Body    []byte
}

func (e *StatusError) Error() string {
	return e.Message
}

func newStatusError(status int, body []byte) *StatusError {
	var payload struct {
		Message string `json:"message"`
	}
	message := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		message = payload.Message
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status code %d", status)
	}
	return &StatusError{Status: status, Message: message, Body: body}
}

// TransportError is a failure with no HTTP status: the request could not be
// sent, the response could not be read, or a 2xx body could not be decoded
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Describe extracts the HTTP status (0 when there is none) and a human
// message from err. The server-provided message wins, then the error text,
// then DefaultFailureMessage.
func Describe(err error) (status int, message string) {
	if err == nil {
		return 0, ""
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		message = statusErr.Message
		status = statusErr.Status
	} else {
		message = err.Error()
	}

	if message == "" {
		message = DefaultFailureMessage
	}
	return status, message
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	status, _ := Describe(err)
	return status
}
