// Package apperr defines the typed errors the storefront raises from its
// service layer. Every Error carries the HTTP status the API should answer
// with, so controllers hand failures to a single mapper instead of deciding
// status codes ad hoc.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a business-rule or validation failure with an HTTP status.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// New creates an Error with the given status and message.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(status int, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

// BadRequest creates a 400 error.
func BadRequest(message string) *Error { return New(http.StatusBadRequest, message) }

// Unauthorized creates a 401 error.
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }

// Forbidden creates a 403 error.
func Forbidden(message string) *Error { return New(http.StatusForbidden, message) }

// NotFound creates a 404 error.
func NotFound(message string) *Error { return New(http.StatusNotFound, message) }

// Status returns the HTTP status for err: the carried status for an *Error,
// 500 for anything else.
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// Message returns the client-safe message for err. Unexpected errors map to a
// generic message; their details belong in the server log, not the response.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal Server Error"
}
