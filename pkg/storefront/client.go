// Package storefront implements the HTTP gateway to the storefront backend:
// verb helpers over a base URL with bearer-token attachment, bounded retry of
// network failures, unconditional session invalidation on 401 and error
// normalization into *apierr.Error.
package storefront

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/storekit/storefront_sdk_go/internal/config"
	"github.com/storekit/storefront_sdk_go/internal/httpx"
	"github.com/storekit/storefront_sdk_go/pkg/apierr"
	"github.com/storekit/storefront_sdk_go/pkg/session"

	"github.com/storekit/storefront_sdk_go/internal/backendapi"
)

// Option configures a Client.
type Option func(*Client)

// WithSession wires the token store consulted before every request and
// cleared on 401.
func WithSession(s *session.Store) Option {
	return func(c *Client) { c.session = s }
}

// WithLogger assigns the diagnostics logger (default: no-op).
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithUnauthorizedHook registers a callback fired after a 401 evicts the
// session token. UI embeddings use it to route to their login entry point;
// the guard against re-routing while already there belongs to the hook.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithRetryPolicy overrides the transport retry policy.
func WithRetryPolicy(p httpx.RetryPolicy) Option {
	return func(c *Client) { c.httpOpts = append(c.httpOpts, httpx.WithRetryPolicy(p)) }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpOpts = append(c.httpOpts, httpx.WithTimeout(d)) }
}

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpOpts = append(c.httpOpts, httpx.WithHTTPClient(h)) }
}

// Client is the storefront gateway. All failures it returns are *apierr.Error.
type Client struct {
	http           *httpx.Client
	session        *session.Store
	log            *zap.Logger
	onUnauthorized func()
	httpOpts       []httpx.Option
}

// New constructs a gateway for the provided base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	hc, err := httpx.NewClient(baseURL, c.httpOpts...)
	if err != nil {
		return nil, err
	}
	c.http = hc
	c.httpOpts = nil
	return c, nil
}

// NewFromConfig builds a gateway from loaded configuration.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("storefront: config is required")
	}
	base := []Option{
		WithTimeout(cfg.Timeout),
		WithRetryPolicy(httpx.RetryPolicy{
			MaxRetries: cfg.RetryAttempts,
			Delay:      cfg.RetryDelay,
		}),
	}
	return New(cfg.BaseURL, append(base, opts...)...)
}

// Get issues a GET and decodes the JSON response into out (skipped when nil).
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req := &httpx.Request{
		Method: method,
		Path:   path,
		Query:  query,
		Header: make(http.Header),
	}

	if body != nil {
		reader, contentType, err := httpx.WithJSONBody(body)
		if err != nil {
			return apierr.New("encode request body: "+err.Error(), 0, apierr.CodeInvalidData)
		}
		req.Body = reader
		req.Header.Set("Content-Type", contentType)
	}

	c.attachToken(ctx, req)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return c.fail(ctx, method, path, err)
	}

	data, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return apierr.Normalize(err)
	}
	if out == nil {
		return nil
	}
	if err := backendapi.DecodeJSON(data, out); err != nil {
		c.log.Warn("undecodable response payload",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return apierr.New("Invalid data received from server.", http.StatusInternalServerError, apierr.CodeInvalidData)
	}
	return nil
}

func (c *Client) attachToken(ctx context.Context, req *httpx.Request) {
	if c.session == nil {
		return
	}
	token, err := c.session.Token(ctx)
	if err != nil {
		c.log.Warn("session token read failed", zap.Error(err))
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) fail(ctx context.Context, method, path string, err error) error {
	var httpErr *httpx.HTTPError
	if errors.As(err, &httpErr) && httpErr.Unauthorized() {
		return c.unauthorized(ctx, method, path)
	}
	c.log.Debug("request failed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Error(err))
	return apierr.Normalize(err)
}

// unauthorized implements the 401 contract: evict the token, notify the
// embedding once, surface a fixed UNAUTHORIZED error. Never retried.
func (c *Client) unauthorized(ctx context.Context, method, path string) error {
	if c.session != nil {
		if err := c.session.Clear(ctx); err != nil {
			c.log.Warn("session eviction failed", zap.Error(err))
		}
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	c.log.Debug("unauthorized response",
		zap.String("method", method),
		zap.String("path", path))
	return apierr.New(apierr.MsgLoginNeeded, http.StatusUnauthorized, apierr.CodeUnauthorized)
}
