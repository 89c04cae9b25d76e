// Package apierr provides the five-way error taxonomy shared by every
// component that can fail in a way the Session Orchestrator's HTTP layer
// must translate into a status code: Validation, NotFound, Conflict,
// Unavailable and Fatal (spec §7).
//
// Lower layers (pkg/store, pkg/broker, pkg/provider/*) raise their own
// narrower sentinels. Callers at the orchestration boundary wrap those into
// one of this package's classes with [FromStore], [FromBroker] or a constructor such as
// [NotFound], then dispatch on class with [As] or [StatusCode] — mirroring
// the layered fmt.Errorf("...: %w") / errors.Is style used throughout this
// codebase's other packages.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Class identifies which of the five buckets an [Error] falls into.
type Class string

const (
	Validation  Class = "validation"
	NotFoundErr Class = "not_found"
	Conflict    Class = "conflict"
	Unavailable Class = "unavailable"
	Fatal       Class = "fatal"
)

// Error is a classified error carrying a caller-facing message distinct from
// the wrapped cause's (often internal-only) message.
type Error struct {
	class   Class
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %s", e.message, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// Class reports which bucket e belongs to.
func (e *Error) Class() Class { return e.class }

// newf builds a classified Error, wrapping cause if non-nil.
func newf(class Class, cause error, format string, args ...any) *Error {
	return &Error{class: class, message: fmt.Sprintf(format, args...), cause: cause}
}

// ValidationErr classifies a caller input error.
func ValidationErr(cause error, format string, args ...any) *Error {
	return newf(Validation, cause, format, args...)
}

// NotFound classifies a missing-resource error.
func NotFound(cause error, format string, args ...any) *Error {
	return newf(NotFoundErr, cause, format, args...)
}

// ConflictErr classifies a state-conflict error (e.g. a write-once violation
// or an already-finalized session).
func ConflictErr(cause error, format string, args ...any) *Error {
	return newf(Conflict, cause, format, args...)
}

// UnavailableErr classifies a transient dependency failure: the caller
// should consider degrading gracefully or retrying, not treat it as fatal.
func UnavailableErr(cause error, format string, args ...any) *Error {
	return newf(Unavailable, cause, format, args...)
}

// FatalErr classifies an unexpected, non-recoverable error.
func FatalErr(cause error, format string, args ...any) *Error {
	return newf(Fatal, cause, format, args...)
}

// As extracts the classified *Error from err, if any layer in its chain is
// one.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// ClassOf reports the Class of err, defaulting to Fatal if err does not
// wrap a classified *Error.
func ClassOf(err error) Class {
	if e, ok := As(err); ok {
		return e.class
	}
	return Fatal
}

// StatusCode maps err's Class to the HTTP status code the orchestrator's
// handlers should write.
func StatusCode(err error) int {
	switch ClassOf(err) {
	case Validation:
		return http.StatusBadRequest
	case NotFoundErr:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
