package httpx

import (
	"fmt"
	"net/http"

	"github.com/storekit/storefront_sdk_go/internal/backendapi"
)

// HTTPError represents a non-2xx response received from the backend. A
// response was delivered, so these are terminal: the retry loop only
// resubmits requests that received no response at all.
type HTTPError struct {
	StatusCode int
	Body       []byte
	Header     http.Header
	Envelope   *backendapi.ErrorBody
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if msg := e.Envelope.BestMessage(); msg != "" {
		return fmt.Sprintf("http error: status=%d message=%s", e.StatusCode, msg)
	}
	return fmt.Sprintf("http error: status=%d body=%s", e.StatusCode, string(e.Body))
}

// Unauthorized reports whether the response was a 401.
func (e *HTTPError) Unauthorized() bool {
	return e != nil && e.StatusCode == http.StatusUnauthorized
}
