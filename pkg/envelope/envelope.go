// Package envelope writes the JSON success/error envelopes shared by the
// panel endpoints.
package envelope

import (
	"encoding/json"
	"net/http"
)

// ContentType is the response content type.
const ContentType = "application/json; charset=utf-8"

// Success is a fluent builder for `{"success":true,...}` responses.
type Success struct {
	fields map[string]any
}

// OK starts a success envelope.
func OK() *Success {
	return &Success{fields: map[string]any{"success": true}}
}

// Field adds one response field. "success" cannot be overwritten.
func (s *Success) Field(key string, value any) *Success {
	if key != "success" {
		s.fields[key] = value
	}
	return s
}

// Merge adds every entry of m. Handler-provided fields never overwrite
// the success flag.
func (s *Success) Merge(m map[string]any) *Success {
	for k, v := range m {
		s.Field(k, v)
	}
	return s
}

// Write encodes the envelope with a 200 status.
func (s *Success) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(s.fields)
}

// Error is the error envelope body.
type Error struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError encodes an error envelope with the given HTTP status.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Error{Code: code, Message: message})
}
