package client

import (
	"net/http"
	"strings"
)

// RefreshHeader mirrors the middleware's reissue header. Kept as a local
// constant so importing this package does not pull in net/http middleware.
const RefreshHeader = "X-Auth-Token"

// Client is an http.Client wrapper that speaks the gate's token protocol:
// it attaches the stored bearer token to every request, adopts reissued
// tokens from responses, and clears the store on a 401. It never retries;
// the caller decides what a failed request means.
type Client struct {
	http  *http.Client
	store *TokenStore

	// onUnauthorized, when set, runs after the store is cleared by a 401.
	// Typical use is redirecting to login.
	onUnauthorized func()
}

// Option adjusts Client construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenStore shares an externally managed store.
func WithTokenStore(store *TokenStore) Option {
	return func(c *Client) { c.store = store }
}

// WithUnauthorizedHook registers a callback invoked after a 401 clears
// the stored token.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func New(opts ...Option) *Client {
	c := &Client{
		http:  http.DefaultClient,
		store: NewTokenStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store exposes the token store for login flows to populate.
func (c *Client) Store() *TokenStore {
	return c.store
}

// Do sends the request with the stored token attached and processes the
// response's auth headers. An explicit Authorization header on the
// request is left untouched.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Authorization") == "" {
		if tok, ok := c.store.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	c.adopt(resp)
	return resp, nil
}

// adopt applies the response's token signals to the store: a reissued
// token replaces the stored one, and a 401 drops it.
func (c *Client) adopt(resp *http.Response) {
	if fresh := responseToken(resp); fresh != "" {
		c.store.Set(fresh, 0)
		return
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.store.Clear()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}
}

// responseToken scans the response for a reissued token. X-Auth-Token is
// the middleware's channel; an Authorization response header is accepted
// for servers that echo tokens back that way.
func responseToken(resp *http.Response) string {
	if v := resp.Header.Get(RefreshHeader); v != "" {
		return v
	}
	if v := resp.Header.Get("Authorization"); v != "" {
		return trimBearer(v)
	}
	return ""
}

func trimBearer(value string) string {
	const bearer = "bearer "
	if len(value) >= len(bearer) && strings.EqualFold(value[:len(bearer)], bearer) {
		return value[len(bearer):]
	}
	return value
}
