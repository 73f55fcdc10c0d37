// Package api is the single outbound HTTP path of the client. Every call
// goes through an ordered chain of request interceptors (auth policy) and
// response interceptors (failure notifications, logout policy).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/rs/zerolog"

	"github.com/starlab-dev/starlab/internal/notify"
)

// Client represents an HTTP client with interceptor chains
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	logger     zerolog.Logger
	tokens     TokenSource
	notifier   notify.Notifier
	logoutOn   Authenticator
}

// WithHTTPClient replaces the underlying *http.Client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = httpClient }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(o *clientOptions) { o.logger = logger }
}

// WithTokens installs the Authenticate request interceptor
func WithTokens(tokens TokenSource) Option {
	return func(o *clientOptions) { o.tokens = tokens }
}

// WithNotifier installs the NotifyFailures response interceptor
func WithNotifier(notifier notify.Notifier) Option {
	return func(o *clientOptions) { o.notifier = notifier }
}

// WithLogoutOnUnauthorized installs the LogoutOnUnauthorized response
// interceptor after the notifier
func WithLogoutOnUnauthorized(session Authenticator) Option {
	return func(o *clientOptions) { o.logoutOn = session }
}

// New creates a new API client. An empty baseURL leaves request URLs as
// given, so they must be absolute.
func New(baseURL string, opts ...Option) *Client {
	options := clientOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&options)
	}

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     options.logger.With().Str("component", "api").Logger(),
	}

	if options.tokens != nil {
		c.UseRequest(Authenticate(options.tokens))
	}
	if options.notifier != nil {
		c.UseResponse(NotifyFailures(options.notifier))
	}
	if options.logoutOn != nil {
		c.UseResponse(LogoutOnUnauthorized(options.logoutOn))
	}

	return c
}

// defaultHTTPClient keeps cookies between calls and sets no timeout: a hung
// request waits until the caller's context gives up.
func defaultHTTPClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{Jar: jar}
}

// BaseURL returns the configured base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UseRequest appends request interceptors. They run in the order added.
func (c *Client) UseRequest(interceptors ...RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptors...)
}

// UseResponse appends response interceptors. They run in the order added.
func (c *Client) UseResponse(interceptors ...ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptors...)
}

// Do sends req and decodes a 2xx JSON body into out (skipped when out is
// nil or the body is empty). Failures pass through the response chain and
// are always returned.
func (c *Client) Do(ctx context.Context, req Request, directive Directive, out any) error {
	resp, err := c.send(ctx, req, directive, out)
	for _, intercept := range c.responseInterceptors {
		err = intercept(ctx, resp, err)
	}
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("Request failed")
	}
	return err
}

func (c *Client) send(ctx context.Context, req Request, directive Directive, out any) (*http.Response, error) {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return nil, err
	}

	for _, intercept := range c.requestInterceptors {
		if err := intercept(ctx, httpReq, directive); err != nil {
			return nil, err
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: "send request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, &TransportError{Op: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, newStatusError(resp.StatusCode, body)
	}

	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return resp, &TransportError{Op: "decode response", Err: err}
		}
	}

	c.logger.Debug().
		Str("method", httpReq.Method).
		Str("url", httpReq.URL.String()).
		Int("status", resp.StatusCode).
		Msg("Request succeeded")

	return resp, nil
}

func (c *Client) build(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := req.URL
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(target, "/")
	}
	if len(req.Query) > 0 {
		separator := "?"
		if strings.Contains(target, "?") {
			separator = "&"
		}
		target += separator + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &TransportError{Op: "marshal request", Err: err}
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &TransportError{Op: "create request", Err: fmt.Errorf("%s %s: %w", method, target, err)}
	}

	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return httpReq, nil
}
