package apperr

import (
	"errors"
	"net/http"
)

// Error is an API-facing error with a stable machine-readable code. Callers
// render their own UI text from the code; the message is never translated
// server-side. An optional wrapped cause is kept for logs only and never
// serialized to the client.
type Error struct {
	Code       string
	HTTPStatus int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation marks caller input as incomplete or malformed (400)
func Validation(code string) *Error {
	return &Error{Code: code, HTTPStatus: http.StatusBadRequest}
}

// Forbidden marks a role/capability failure (403)
func Forbidden(code string) *Error {
	return &Error{Code: code, HTTPStatus: http.StatusForbidden}
}

// NotFound marks a missing work product, approval task, or membership (404)
func NotFound(code string) *Error {
	return &Error{Code: code, HTTPStatus: http.StatusNotFound}
}

// Conflict marks a state-machine precondition violation (409): already
// terminal, already resolved, stage already pending.
func Conflict(code string) *Error {
	return &Error{Code: code, HTTPStatus: http.StatusConflict}
}

// Internal wraps an underlying store failure (500). The cause is logged but
// the client only ever sees the code.
func Internal(code string, err error) *Error {
	return &Error{Code: code, HTTPStatus: http.StatusInternalServerError, Err: err}
}

// Storage wraps a store failure under the generic internal_error code
func Storage(err error) *Error {
	return Internal("internal_error", err)
}

// CodeOf extracts the machine code from any error, defaulting to internal_error
func CodeOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return "internal_error"
}

// StatusOf extracts the HTTP status from any error, defaulting to 500
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
