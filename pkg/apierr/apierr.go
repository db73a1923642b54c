// Package apierr defines the single failure type surfaced by the storefront
// gateway and domain clients, and the normalizer that collapses transport
// errors, backend error bodies and arbitrary failures into it.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/storekit/storefront_sdk_go/internal/httpx"
)

// Machine-readable error categories.
const (
	CodeAPIError     = "API_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidID    = "INVALID_ID"
	CodeInvalidData  = "INVALID_DATA"
	CodeTimeout      = "TIMEOUT"
	CodeNetwork      = "NETWORK_ERROR"
)

// Fixed messages for failures without a usable backend message.
const (
	MsgTimeout     = "Request timed out. Please try again."
	MsgNoConnect   = "Unable to connect to server. Please check your internet connection."
	MsgUnexpected  = "An unexpected error occurred."
	MsgLoginNeeded = "Please login to continue."
)

// Error is the normalized API failure. Status is the HTTP status code, or 0
// when no response was received. Details carries field-level validation
// messages when the backend supplied them. Instances are constructed once per
// failed call and never mutated afterwards.
type Error struct {
	Message string            `json:"message"`
	Status  int               `json:"status"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("api error: status=%d code=%s message=%s", e.Status, e.Code, e.Message)
}

// New constructs an Error without details.
func New(message string, status int, code string) *Error {
	if code == "" {
		code = CodeAPIError
	}
	return &Error{Message: message, Status: status, Code: code}
}

// Normalize collapses any failure into an *Error. Resolution order: an
// existing *Error passes through untouched; a backend error body's message or
// error field is used verbatim; transport conditions map to fixed timeout and
// connectivity messages; known HTTP statuses map to fixed strings; anything
// else falls back to the underlying error's own message.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var httpErr *httpx.HTTPError
	if errors.As(err, &httpErr) {
		return fromResponse(httpErr)
	}

	if isTimeout(err) {
		return New(MsgTimeout, 0, CodeTimeout)
	}
	if isTransport(err) {
		return New(MsgNoConnect, 0, CodeNetwork)
	}

	msg := err.Error()
	if msg == "" {
		msg = MsgUnexpected
	}
	return New(msg, 0, CodeAPIError)
}

// Message resolves the human-readable message for any failure.
func Message(err error) string {
	if e := Normalize(err); e != nil {
		return e.Message
	}
	return ""
}

// FieldErrors extracts field-level validation details. Only backend error
// bodies carry them; every other failure shape yields nil.
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && len(apiErr.Details) > 0 {
		return apiErr.Details
	}
	var httpErr *httpx.HTTPError
	if errors.As(err, &httpErr) && httpErr.Envelope != nil && len(httpErr.Envelope.Details) > 0 {
		return httpErr.Envelope.Details
	}
	return nil
}

func fromResponse(httpErr *httpx.HTTPError) *Error {
	status := httpErr.StatusCode
	code := CodeAPIError
	if status == 401 {
		code = CodeUnauthorized
	}

	var details map[string]string
	if httpErr.Envelope != nil {
		details = httpErr.Envelope.Details
	}

	if msg := httpErr.Envelope.BestMessage(); msg != "" {
		return &Error{Message: msg, Status: status, Code: code, Details: details}
	}
	if msg, ok := statusMessage(status); ok {
		return &Error{Message: msg, Status: status, Code: code, Details: details}
	}
	return &Error{Message: MsgUnexpected, Status: status, Code: code, Details: details}
}

func statusMessage(status int) (string, bool) {
	switch status {
	case 400:
		return "Invalid request. Please check your input.", true
	case 401:
		return MsgLoginNeeded, true
	case 403:
		return "You do not have permission to perform this action.", true
	case 404:
		return "The requested resource was not found.", true
	case 409:
		return "This resource already exists.", true
	case 422:
		return "Invalid data provided.", true
	case 429:
		return "Too many requests. Please try again later.", true
	case 500:
		return "An unexpected error occurred. Please try again later.", true
	case 502, 503:
		return "Service temporarily unavailable. Please try again later.", true
	default:
		return "", false
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isTransport(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
