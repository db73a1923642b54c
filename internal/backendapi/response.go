// Package backendapi decodes storefront backend payloads. Error responses
// follow one fixed envelope emitted by the backend's exception handler:
//
//	{"timestamp": "...", "status": 400, "error": "Bad Request",
//	 "message": "...", "details": {"field": "problem"}}
package backendapi

import (
	"bytes"
	"encoding/json"
)

// ErrorBody is the backend's error envelope. All fields are optional on the
// wire.
type ErrorBody struct {
	Timestamp string            `json:"timestamp"`
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details"`
}

// BestMessage returns the human-readable message carried by the envelope,
// preferring "message" over "error". Empty when the body carries neither.
func (e *ErrorBody) BestMessage() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// DecodeErrorBody parses body as an error envelope. It returns nil when the
// body is empty, not a JSON object, or carries none of the envelope fields.
func DecodeErrorBody(body []byte) *ErrorBody {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var eb ErrorBody
	if err := json.Unmarshal(trimmed, &eb); err != nil {
		return nil
	}
	if eb.Message == "" && eb.Error == "" && eb.Status == 0 && len(eb.Details) == 0 {
		return nil
	}
	return &eb
}

// DecodeJSON unmarshals a response payload into out. Empty bodies decode as
// JSON null so optional payloads leave out untouched.
func DecodeJSON(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		trimmed = []byte("null")
	}
	return json.Unmarshal(trimmed, out)
}
