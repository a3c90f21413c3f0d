package app

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable machine-readable failure codes surfaced to transport.
const (
	CodeMalformedIdentifier = "malformed_identifier"
	CodeNotFound            = "not_found"
	CodeForbidden           = "forbidden"
	CodeValidationFailed    = "validation_failed"
	CodeMisconfigured       = "misconfigured"
	CodeInternalFailure     = "internal_failure"
)

// Error is a terminal dispatch failure: a stable code, a human message,
// and the HTTP status the transport should answer with. Host-callback
// detail is preserved through Err.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts a dispatch error from an error chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// ErrMalformedID reports an unparseable compound identifier.
func ErrMalformedID(id string) *Error {
	return &Error{
		Code:    CodeMalformedIdentifier,
		Message: fmt.Sprintf("malformed identifier %q", id),
		Status:  http.StatusBadRequest,
	}
}

// ErrNotFound reports an unknown namespace, panel, field, record, or
// action key.
func ErrNotFound(what string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: what + " not found",
		Status:  http.StatusNotFound,
	}
}

// ErrForbidden reports a failed capability check.
func ErrForbidden(capability string) *Error {
	return &Error{
		Code:    CodeForbidden,
		Message: fmt.Sprintf("capability %q required", capability),
		Status:  http.StatusForbidden,
	}
}

// ErrValidation reports a host validation rejection.
func ErrValidation(message string) *Error {
	if message == "" {
		message = "validation failed"
	}
	return &Error{
		Code:    CodeValidationFailed,
		Message: message,
		Status:  http.StatusUnprocessableEntity,
	}
}

// ErrMisconfigured reports a panel missing a callback the operation needs.
func ErrMisconfigured(detail string) *Error {
	return &Error{
		Code:    CodeMisconfigured,
		Message: detail,
		Status:  http.StatusInternalServerError,
	}
}

// ErrInternal wraps a host-callback failure, preserving its detail.
func ErrInternal(message string, err error) *Error {
	return &Error{
		Code:    CodeInternalFailure,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}
