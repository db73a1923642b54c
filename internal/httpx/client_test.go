package httpx_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekit/storefront_sdk_go/internal/httpx"
)

// fastRetry keeps test retries quick while preserving the default count.
var fastRetry = httpx.RetryPolicy{MaxRetries: 3, Delay: time.Millisecond}

// hijackAndDrop terminates the connection without writing a response, so the
// client observes a network-level failure.
func hijackAndDrop(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic("response writer is not a hijacker")
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		panic(err)
	}
	conn.Close()
}

func TestNetworkFailureRetriesThenFails(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		hijackAndDrop(w)
	}))
	defer srv.Close()

	client, err := httpx.NewClient(srv.URL, httpx.WithRetryPolicy(fastRetry))
	require.NoError(t, err)

	_, err = client.Do(context.Background(), &httpx.Request{Method: http.MethodGet, Path: "/things"})
	require.Error(t, err)

	var httpErr *httpx.HTTPError
	assert.False(t, errors.As(err, &httpErr), "network failure must not be an HTTPError")
	assert.Equal(t, int32(4), atomic.LoadInt32(&attempts), "initial attempt plus 3 retries")
}

func TestNetworkFailureRecovers(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) <= 2 {
			hijackAndDrop(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	client, err := httpx.NewClient(srv.URL, httpx.WithRetryPolicy(fastRetry))
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), &httpx.Request{Method: http.MethodGet, Path: "/things"})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestDeliveredResponsesAreNeverRetried(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		var attempts int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			io.WriteString(w, `{"message":"nope"}`)
		}))

		client, err := httpx.NewClient(srv.URL, httpx.WithRetryPolicy(fastRetry))
		require.NoError(t, err)

		_, err = client.Do(context.Background(), &httpx.Request{Method: http.MethodGet, Path: "/x"})
		require.Error(t, err, "status %d", status)

		var httpErr *httpx.HTTPError
		require.ErrorAs(t, err, &httpErr, "status %d", status)
		assert.Equal(t, status, httpErr.StatusCode)
		require.NotNil(t, httpErr.Envelope)
		assert.Equal(t, "nope", httpErr.Envelope.Message)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "status %d", status)
		srv.Close()
	}
}

func TestDisableRetry(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		hijackAndDrop(w)
	}))
	defer srv.Close()

	client, err := httpx.NewClient(srv.URL, httpx.WithRetryPolicy(fastRetry))
	require.NoError(t, err)

	_, err = client.Do(context.Background(), &httpx.Request{
		Method:       http.MethodGet,
		Path:         "/x",
		DisableRetry: true,
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestBodyReplayedOnRetry(t *testing.T) {
	var attempts int32
	var lastBody atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		lastBody.Store(string(data))
		if atomic.AddInt32(&attempts, 1) == 1 {
			hijackAndDrop(w)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := httpx.NewClient(srv.URL, httpx.WithRetryPolicy(fastRetry))
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), &httpx.Request{
		Method: http.MethodPost,
		Path:   "/x",
		Body:   strings.NewReader(`{"count":2}`),
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, `{"count":2}`, lastBody.Load())
}

func TestRequestIDStableAcrossRetries(t *testing.T) {
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get("X-Request-Id"))
		if len(ids) < 2 {
			hijackAndDrop(w)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := httpx.NewClient(srv.URL, httpx.WithRetryPolicy(fastRetry))
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), &httpx.Request{Method: http.MethodGet, Path: "/x"})
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.Equal(t, ids[0], ids[1])
}

func TestBaseURLPathPreserved(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := httpx.NewClient(srv.URL + "/api")
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), &httpx.Request{Method: http.MethodGet, Path: "/products"})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/api/products", gotPath)
}

func TestPerAttemptTimeoutIsRetried(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client, err := httpx.NewClient(srv.URL,
		httpx.WithRetryPolicy(fastRetry),
		httpx.WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = client.Do(context.Background(), &httpx.Request{Method: http.MethodGet, Path: "/slow"})
	require.Error(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&attempts),
		"an attempt that times out counts as no response received")
}

func TestCallerDeadlineIsNotRetried(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client, err := httpx.NewClient(srv.URL, httpx.WithRetryPolicy(fastRetry))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = client.Do(ctx, &httpx.Request{Method: http.MethodGet, Path: "/slow"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestContextCancellationStopsRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hijackAndDrop(w)
	}))
	defer srv.Close()

	client, err := httpx.NewClient(srv.URL, httpx.WithRetryPolicy(httpx.RetryPolicy{
		MaxRetries: 3,
		Delay:      time.Minute,
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = client.Do(ctx, &httpx.Request{Method: http.MethodGet, Path: "/x"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second, "cancellation must cut the backoff wait short")
}

func TestNewClientValidation(t *testing.T) {
	_, err := httpx.NewClient("  ")
	require.Error(t, err)

	client, err := httpx.NewClient("http://localhost:1")
	require.NoError(t, err)
	_, err = client.Do(context.Background(), nil)
	require.Error(t, err)
	_, err = client.Do(context.Background(), &httpx.Request{Path: "/x"})
	require.Error(t, err)
}
