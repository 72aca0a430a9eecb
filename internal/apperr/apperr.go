// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"net/http"
)

// Kinds. Match with errors.Is.
var (
	ErrValidation  = errors.New("validation error")
	ErrConflict    = errors.New("conflict")
	ErrAuth        = errors.New("authentication error")
	ErrForbidden   = errors.New("forbidden")
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrInternal    = errors.New("internal error")
)

// Error is a classified failure. Message is safe to show to callers;
// Cause is kept for server-side logging only.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation returns a ValidationError with the given message.
func Validation(msg string) *Error {
	return &Error{Kind: ErrValidation, Message: msg}
}

// Conflict returns a ConflictError with the given message.
func Conflict(msg string) *Error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// Auth returns an AuthError with the given message.
func Auth(msg string) *Error {
	return &Error{Kind: ErrAuth, Message: msg}
}

// Forbidden returns an error for an authenticated caller acting on another user's data.
func Forbidden(msg string) *Error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

// NotFound returns a NotFoundError with the given message.
func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Unavailable reports an optional backend that is not configured.
func Unavailable(msg string) *Error {
	return &Error{Kind: ErrUnavailable, Message: msg}
}

// Internal wraps cause as an InternalError. msg is what the caller sees.
func Internal(msg string, cause error) *Error {
	return &Error{Kind: ErrInternal, Message: msg, Cause: cause}
}

// Status maps err to an HTTP status code. Unclassified errors are 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message for err. Anything that is not
// a classified *Error, or is internal, yields fallback.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != ErrInternal && e.Message != "" {
		return e.Message
	}
	return fallback
}
