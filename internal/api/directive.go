package api

import (
	"net/http"
	"net/url"
)

// AuthMode controls whether the bearer token is attached
type AuthMode int

const (
	// AuthDefault attaches the token whenever one is held
	AuthDefault AuthMode = iota
	// AuthAttach explicitly asks for the token. Without a token nothing is
	// attached.
	AuthAttach
	// AuthOmit never attaches the token
	AuthOmit
)

func (m AuthMode) String() string {
	switch m {
	case AuthAttach:
		return "attach"
	case AuthOmit:
		return "omit"
	default:
		return "default"
	}
}

// Directive is the per-call auth policy, passed alongside a Request.
// Auth and RequireAuth are independent: RequireAuth only gates whether the
// request is sent, Auth only gates whether the header is attached.
type Directive struct {
	Auth        AuthMode
	RequireAuth bool
}

// Request describes one outbound call
type Request struct {
	Method string
	// URL is joined onto the client's base URL unless it is absolute
	URL    string
	Query  url.Values
	Header http.Header
	// Body is JSON-encoded when non-nil
	Body any
}
