// Package apperror defines the error taxonomy shared by services and HTTP handlers.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error by who is at fault and how it is reported.
type Kind int

const (
	Internal Kind = iota
	InvalidInput
	Unauthorized
	Conflict
	NotFound
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case Unauthorized:
		return "unauthorized"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code used for the kind.
// Conflict and NotFound are reported as 400, matching the public API contract.
func (k Kind) Status() int {
	switch k {
	case InvalidInput, Conflict, NotFound:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is an error carrying a Kind and a fixed human-readable message.
// Err holds the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewInvalidInput(message string) *Error { return newError(InvalidInput, message, nil) }
func NewUnauthorized(message string) *Error { return newError(Unauthorized, message, nil) }
func NewConflict(message string) *Error     { return newError(Conflict, message, nil) }
func NewNotFound(message string) *Error     { return newError(NotFound, message, nil) }

// NewInternal wraps an unexpected failure. The cause is exposed to clients
// in the "error" field of the response body.
func NewInternal(message string, err error) *Error {
	return newError(Internal, message, err)
}

// KindOf returns the Kind of err, or Internal if err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
