package broker

import (
	"context"
	"time"
)

// Compile-time interface assertion.
var _ Broker = Unconfigured{}

// Unconfigured is the zero-cost [Broker] used when no transport broker is
// configured (BROKER_URL unset). Every credentialing call returns
// ErrUnavailable, which the Session Orchestrator treats as a signal to fall
// back to the text-only interview path rather than a fatal error.
type Unconfigured struct{}

func (Unconfigured) Configured() bool { return false }

func (Unconfigured) MintRoomToken(context.Context, string, string, time.Duration, Grants) (*RoomToken, error) {
	return nil, ErrUnavailable
}

func (Unconfigured) DeclareDispatchRule(context.Context, string) error {
	return ErrUnavailable
}

func (Unconfigured) RoomEvents(context.Context, string) (<-chan RoomEvent, error) {
	return nil, ErrUnavailable
}
