package api

import (
	"context"
	"net/http"
)

// Send runs req through c and returns the decoded body
func Send[T any](ctx context.Context, c *Client, req Request, directive Directive) (T, error) {
	var out T
	err := c.Do(ctx, req, directive, &out)
	return out, err
}

func Get[T any](ctx context.Context, c *Client, url string, directive Directive) (T, error) {
	return Send[T](ctx, c, Request{Method: http.MethodGet, URL: url}, directive)
}

func Post[T, B any](ctx context.Context, c *Client, url string, body B, directive Directive) (T, error) {
	return Send[T](ctx, c, Request{Method: http.MethodPost, URL: url, Body: body}, directive)
}

func Put[T, B any](ctx context.Context, c *Client, url string, body B, directive Directive) (T, error) {
	return Send[T](ctx, c, Request{Method: http.MethodPut, URL: url, Body: body}, directive)
}

func Delete[T any](ctx context.Context, c *Client, url string, directive Directive) (T, error) {
	return Send[T](ctx, c, Request{Method: http.MethodDelete, URL: url}, directive)
}
