package apierr

import (
	"errors"

	"github.com/hirecoach/interviewcore/pkg/broker"
	"github.com/hirecoach/interviewcore/pkg/store"
)

// FromStore classifies an error returned by a [store.Store] method into the
// matching [Error], for handlers that need a uniform class to dispatch on
// regardless of which storage backend is wired.
func FromStore(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, store.ErrValidation):
		return ValidationErr(err, format, args...)
	case errors.Is(err, store.ErrNotFound):
		return NotFound(err, format, args...)
	case errors.Is(err, store.ErrConflict):
		return ConflictErr(err, format, args...)
	default:
		return FatalErr(err, format, args...)
	}
}

// FromBroker classifies an error returned by a [broker.Broker] method.
func FromBroker(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, broker.ErrUnavailable) {
		return UnavailableErr(err, format, args...)
	}
	return FatalErr(err, format, args...)
}
