package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Compile-time interface assertion.
var _ Broker = (*LiveKitBroker)(nil)

const (
	defaultTimeout    = 10 * time.Second
	dispatchRuleRoute = "/twirp/livekit.RoomService/CreateRoom"
	roomEventsRoute   = "/twirp/livekit.RoomService/RoomEvents"
)

// Option configures a [LiveKitBroker].
type Option func(*LiveKitBroker)

// WithTimeout sets the per-request HTTP timeout for calls to the transport's
// control-plane API. Defaults to 10s if not set.
func WithTimeout(d time.Duration) Option {
	return func(b *LiveKitBroker) {
		b.httpClient.Timeout = d
	}
}

// WithHTTPClient overrides the HTTP client used for control-plane calls, for
// tests.
func WithHTTPClient(c *http.Client) Option {
	return func(b *LiveKitBroker) {
		b.httpClient = c
	}
}

// LiveKitBroker is a [Broker] backed by an HTTP/JSON control plane compatible
// with LiveKit's server API: JWT room tokens signed locally with an API
// secret, and a dispatch rule declared once over HTTP so the configured
// agent worker auto-joins any room matching the "interview-*" pattern.
type LiveKitBroker struct {
	serverURL  string
	apiKey     string
	apiSecret  []byte
	httpClient *http.Client
}

// NewLiveKitBroker returns a LiveKitBroker targeting serverURL (the
// transport's control-plane base URL), authenticating with apiKey/apiSecret.
func NewLiveKitBroker(serverURL, apiKey, apiSecret string, opts ...Option) (*LiveKitBroker, error) {
	if serverURL == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("broker: serverURL, apiKey and apiSecret are all required")
	}
	b := &LiveKitBroker{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		apiSecret: []byte(apiSecret),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, o := range opts {
		o(b)
	}
	return b, nil
}

// Configured always reports true for a LiveKitBroker constructed via
// NewLiveKitBroker; its credentials were validated at construction time.
func (b *LiveKitBroker) Configured() bool { return true }

// MintRoomToken signs a room-scoped bearer credential locally; no network
// call is required since the credential is a self-contained JWT that the
// transport's own control plane verifies against the shared apiSecret.
func (b *LiveKitBroker) MintRoomToken(_ context.Context, room, participantIdentity string, ttl time.Duration, grants Grants) (*RoomToken, error) {
	signed, expiresAt, err := signRoomToken(b.apiSecret, room, participantIdentity, ttl, grants)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return &RoomToken{
		Token:     signed,
		Room:      room,
		Identity:  participantIdentity,
		ExpiresAt: expiresAt,
	}, nil
}

// dispatchRuleRequest is the JSON body posted to declare an agent dispatch
// rule for a room name pattern.
type dispatchRuleRequest struct {
	RoomPattern string `json:"room_pattern"`
	AgentName   string `json:"agent_name"`
}

// DeclareDispatchRule registers a dispatch rule against the transport's
// control plane. Idempotent: re-declaring the same pattern is a no-op on the
// server side.
func (b *LiveKitBroker) DeclareDispatchRule(ctx context.Context, pattern string) error {
	body, err := json.Marshal(dispatchRuleRequest{RoomPattern: pattern, AgentName: "interview-agent"})
	if err != nil {
		return fmt.Errorf("broker: marshal dispatch rule: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.serverURL+dispatchRuleRoute, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("broker: create dispatch rule request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	b.setAuth(req)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: POST %s: %w", ErrUnavailable, dispatchRuleRoute, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: POST %s returned status %d", ErrUnavailable, dispatchRuleRoute, resp.StatusCode)
	}
	return nil
}

// RoomEvents is not used by the orchestrator process (which only mints
// tokens and declares the dispatch rule); the dispatched agent process
// instead receives room events directly from its realtime provider session.
// It returns ErrUnavailable unconditionally.
func (b *LiveKitBroker) RoomEvents(context.Context, string) (<-chan RoomEvent, error) {
	return nil, fmt.Errorf("broker: RoomEvents: %w: not served over the control-plane API", ErrUnavailable)
}

func (b *LiveKitBroker) setAuth(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
}
