// Package httpx wraps http.Client with the transport behaviour every
// storefront call shares: request-ID stamping, bounded retry of network-level
// failures with a linearly growing delay, and typed errors for non-2xx
// responses.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storekit/storefront_sdk_go/internal/backendapi"
)

// RetryPolicy controls how transient failures are resubmitted. A request is
// retried only when no response was received; a delivered response, whatever
// its status, is terminal unless RetryIf says otherwise.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
	RetryIf    func(resp *http.Response, err error) bool
}

// DefaultRetryPolicy matches the backend contract: up to 3 resubmissions
// spaced at Delay*1, Delay*2, Delay*3.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 3,
	Delay:      time.Second,
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithHeaders assigns default headers added to every request.
func WithHeaders(h http.Header) Option {
	return func(c *Client) {
		for k, values := range h {
			for _, v := range values {
				c.headers.Add(k, v)
			}
		}
	}
}

// WithRetryPolicy overrides the default retry configuration.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) {
		c.retryPolicy = policy
	}
}

// WithTimeout overrides the per-request timeout (default 30s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// Client wraps http.Client providing retry and base URL utilities.
type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	headers     http.Header
	retryPolicy RetryPolicy
}

// Request describes a single outbound request.
type Request struct {
	Method       string
	Path         string
	Query        url.Values
	Header       http.Header
	DisableRetry bool
	Body         io.Reader
	GetBody      func() (io.ReadCloser, error)
}

// NewClient creates a Client for the provided base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("httpx: base URL is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("httpx: invalid base URL: %w", err)
	}

	c := &Client{
		baseURL: parsed,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers:     make(http.Header),
		retryPolicy: DefaultRetryPolicy,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.retryPolicy.MaxRetries < 0 {
		c.retryPolicy.MaxRetries = 0
	}
	if c.retryPolicy.Delay <= 0 {
		c.retryPolicy.Delay = DefaultRetryPolicy.Delay
	}
	return c, nil
}

// Do executes the provided request. Non-2xx responses become *HTTPError;
// network-level failures surface as the transport's own error once the retry
// budget is spent. The retry counter is local to this call, so concurrent
// requests never share a budget.
func (c *Client) Do(ctx context.Context, req *Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("httpx: request is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Method == "" {
		return nil, errors.New("httpx: HTTP method is required")
	}

	if req.DisableRetry {
		req.GetBody = nil
	} else if req.Body != nil && req.GetBody == nil {
		// Buffer the body so resubmissions can replay it.
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("httpx: read request body: %w", err)
		}
		req.Body = bytes.NewReader(data)
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
	}

	fullURL, err := c.buildURL(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	attempt := 0
	backoff := NewBackoff(c.retryPolicy.Delay)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		body, err := c.prepareBody(req, attempt == 0)
		if err != nil {
			return nil, err
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
		if err != nil {
			return nil, err
		}

		httpReq.Header = cloneHeader(c.headers)
		for k, values := range req.Header {
			for _, v := range values {
				httpReq.Header.Add(k, v)
			}
		}
		if httpReq.Header.Get("X-Request-Id") == "" {
			httpReq.Header.Set("X-Request-Id", requestID)
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if !c.shouldRetry(ctx, req, attempt, nil, err) {
				return nil, err
			}
			attempt++
			if err := c.sleep(ctx, backoff.ForAttempt(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode >= 400 {
			httpErr := c.handleError(resp)
			if !c.shouldRetry(ctx, req, attempt, resp, httpErr) {
				return nil, httpErr
			}
			attempt++
			if err := c.sleep(ctx, backoff.ForAttempt(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		return resp, nil
	}
}

func (c *Client) prepareBody(req *Request, first bool) (io.ReadCloser, error) {
	if first && req.Body != nil {
		body := req.Body
		req.Body = nil
		if rc, ok := body.(io.ReadCloser); ok {
			return rc, nil
		}
		return io.NopCloser(body), nil
	}
	if req.GetBody != nil {
		return req.GetBody()
	}
	return http.NoBody, nil
}

func (c *Client) shouldRetry(ctx context.Context, req *Request, attempt int, resp *http.Response, err error) bool {
	if req.DisableRetry {
		return false
	}
	if attempt >= c.retryPolicy.MaxRetries {
		return false
	}
	if c.retryPolicy.RetryIf != nil {
		return c.retryPolicy.RetryIf(resp, err)
	}
	if resp != nil {
		// A delivered response is terminal, 401 included.
		return false
	}
	if ctx.Err() != nil {
		// The caller's own deadline or cancellation is terminal. A
		// per-attempt Client.Timeout expiry also reports DeadlineExceeded,
		// but leaves the caller context live, so it still retries.
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) buildURL(path string, q url.Values) (string, error) {
	joined := strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(path, "/")
	ref := *c.baseURL
	ref.Path = joined
	if len(q) > 0 {
		ref.RawQuery = q.Encode()
	} else {
		ref.RawQuery = ""
	}
	return ref.String(), nil
}

func (c *Client) handleError(resp *http.Response) *HTTPError {
	defer closeBody(resp.Body)
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		body = nil
	}
	httpErr := &HTTPError{
		StatusCode: resp.StatusCode,
		Body:       body,
		Header:     resp.Header.Clone(),
	}
	if isJSON(resp.Header.Get("Content-Type")) {
		httpErr.Envelope = backendapi.DecodeErrorBody(body)
	}
	return httpErr
}

// WithJSONBody serializes the supplied value into JSON and returns a reusable
// reader plus the matching content type.
func WithJSONBody(v any) (io.Reader, string, error) {
	data, err := jsonMarshal(v)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

// ReadAllAndClose drains the reader and ensures it is closed.
func ReadAllAndClose(rc io.ReadCloser) ([]byte, error) {
	defer closeBody(rc)
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func closeBody(rc io.ReadCloser) {
	if rc != nil {
		_ = rc.Close()
	}
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(contentType) == "application/json"
}

func cloneHeader(src http.Header) http.Header {
	dst := make(http.Header, len(src))
	for k, values := range src {
		vCopy := make([]string, len(values))
		copy(vCopy, values)
		dst[k] = vCopy
	}
	return dst
}

func jsonMarshal(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
