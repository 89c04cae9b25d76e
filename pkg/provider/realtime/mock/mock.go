// Package mock provides test doubles for the realtime package interfaces.
//
// Use Provider to verify Connect calls and feed controlled realtime sessions.
// Use Session to drive the bidirectional audio/transcript streams and inspect
// which methods were invoked by the agent.
//
// Example:
//
//	sess := &mock.Session{
//	    AudioCh:       make(chan []byte, 8),
//	    TranscriptsCh: make(chan types.TranscriptEntry, 4),
//	}
//	p := &mock.Provider{Session: sess}
//	handle, _ := p.Connect(ctx, cfg)
package mock

import (
	"context"
	"sync"

	"github.com/hirecoach/interviewcore/pkg/provider/realtime"
	"github.com/hirecoach/interviewcore/pkg/types"
)

// ConnectCall records a single invocation of Provider.Connect.
type ConnectCall struct {
	// Ctx is the context passed to Connect.
	Ctx context.Context
	// Cfg is the SessionConfig passed to Connect.
	Cfg realtime.SessionConfig
}

// Provider is a mock implementation of realtime.Provider.
type Provider struct {
	mu sync.Mutex

	// Session is the SessionHandle returned by Connect. If nil, Connect returns
	// a new default Session with buffered channels.
	Session realtime.SessionHandle

	// ConnectErr, if non-nil, is returned as the error from Connect.
	ConnectErr error

	// ProviderCapabilities is returned by Capabilities.
	ProviderCapabilities realtime.Capabilities

	// ConnectCalls records every call to Connect in order.
	ConnectCalls []ConnectCall

	// CapabilitiesCallCount is the number of times Capabilities was called.
	CapabilitiesCallCount int
}

// Connect records the call and returns Session, ConnectErr.
func (p *Provider) Connect(ctx context.Context, cfg realtime.SessionConfig) (realtime.SessionHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ConnectCalls = append(p.ConnectCalls, ConnectCall{Ctx: ctx, Cfg: cfg})
	if p.ConnectErr != nil {
		return nil, p.ConnectErr
	}
	if p.Session != nil {
		return p.Session, nil
	}
	return &Session{
		AudioCh:       make(chan []byte, 64),
		TranscriptsCh: make(chan types.TranscriptEntry, 16),
	}, nil
}

// Capabilities records the call and returns ProviderCapabilities.
func (p *Provider) Capabilities() realtime.Capabilities {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CapabilitiesCallCount++
	return p.ProviderCapabilities
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ConnectCalls = nil
	p.CapabilitiesCallCount = 0
}

// Ensure Provider implements realtime.Provider at compile time.
var _ realtime.Provider = (*Provider)(nil)

// SendAudioCall records a single invocation of Session.SendAudio.
type SendAudioCall struct {
	// Chunk is a copy of the audio bytes that were passed to SendAudio.
	Chunk []byte
}

// SayCall records a single invocation of Session.Say.
type SayCall struct {
	// Text is the string passed to Say.
	Text string
}

// UpdateInstructionsCall records a single invocation of Session.UpdateInstructions.
type UpdateInstructionsCall struct {
	// Instructions is the string passed to UpdateInstructions.
	Instructions string
}

// InjectTextContextCall records a single invocation of Session.InjectTextContext.
type InjectTextContextCall struct {
	// Items is a copy of the context items passed to InjectTextContext.
	Items []realtime.ContextItem
}

// Session is a mock implementation of realtime.SessionHandle.
// Callers should pre-populate AudioCh and TranscriptsCh, then close them to
// signal end-of-session.
type Session struct {
	mu sync.Mutex

	// AudioCh is the channel returned by Audio(). Callers own this channel.
	AudioCh chan []byte

	// TranscriptsCh is the channel returned by Transcripts(). Callers own this
	// channel.
	TranscriptsCh chan types.TranscriptEntry

	// committedFn is the currently registered OnCommittedUtterance callback.
	committedFn func(role types.Role, text string, committedAt int64)

	// --- Configurable errors ---

	// SendAudioErr, if non-nil, is returned by every SendAudio call.
	SendAudioErr error

	// SayErr, if non-nil, is returned by every Say call.
	SayErr error

	// UpdateInstructionsErr, if non-nil, is returned by every UpdateInstructions call.
	UpdateInstructionsErr error

	// InjectTextContextErr, if non-nil, is returned by every InjectTextContext call.
	InjectTextContextErr error

	// InterruptErr, if non-nil, is returned by every Interrupt call.
	InterruptErr error

	// CloseErr, if non-nil, is returned by Close.
	CloseErr error

	// --- Call records ---

	// SendAudioCalls records every call to SendAudio in order.
	SendAudioCalls []SendAudioCall

	// SayCalls records every call to Say in order.
	SayCalls []SayCall

	// UpdateInstructionsCalls records every call to UpdateInstructions in order.
	UpdateInstructionsCalls []UpdateInstructionsCall

	// InjectTextContextCalls records every call to InjectTextContext in order.
	InjectTextContextCalls []InjectTextContextCall

	// InterruptCallCount is the number of times Interrupt was called.
	InterruptCallCount int

	// CloseCallCount is the number of times Close was called.
	CloseCallCount int

	// OnCommittedUtteranceSetCount is the number of times OnCommittedUtterance
	// was called.
	OnCommittedUtteranceSetCount int
}

// SendAudio records the call and returns SendAudioErr.
func (s *Session) SendAudio(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(chunk))
	copy(cp, chunk)
	s.SendAudioCalls = append(s.SendAudioCalls, SendAudioCall{Chunk: cp})
	return s.SendAudioErr
}

// Say records the call and returns SayErr.
func (s *Session) Say(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SayCalls = append(s.SayCalls, SayCall{Text: text})
	return s.SayErr
}

// Audio returns AudioCh.
func (s *Session) Audio() <-chan []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.AudioCh
}

// Err always returns nil; tests that need a non-nil error should read from
// AudioCh/TranscriptsCh being closed instead.
func (s *Session) Err() error { return nil }

// Transcripts returns TranscriptsCh.
func (s *Session) Transcripts() <-chan types.TranscriptEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.TranscriptsCh
}

// OnError is a no-op in the mock; errors are surfaced by closing AudioCh.
func (s *Session) OnError(func(error)) {}

// OnCommittedUtterance stores the callback and increments
// OnCommittedUtteranceSetCount.
func (s *Session) OnCommittedUtterance(fn func(role types.Role, text string, committedAt int64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committedFn = fn
	s.OnCommittedUtteranceSetCount++
}

// CommittedFn returns the currently registered OnCommittedUtterance callback.
// Thread-safe. Useful in tests to invoke it directly and verify wiring.
func (s *Session) CommittedFn() func(role types.Role, text string, committedAt int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committedFn
}

// UpdateInstructions records the call and returns UpdateInstructionsErr.
func (s *Session) UpdateInstructions(instructions string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdateInstructionsCalls = append(s.UpdateInstructionsCalls, UpdateInstructionsCall{Instructions: instructions})
	return s.UpdateInstructionsErr
}

// InjectTextContext records the call and returns InjectTextContextErr.
func (s *Session) InjectTextContext(items []realtime.ContextItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]realtime.ContextItem, len(items))
	copy(cp, items)
	s.InjectTextContextCalls = append(s.InjectTextContextCalls, InjectTextContextCall{Items: cp})
	return s.InjectTextContextErr
}

// Interrupt records the call and returns InterruptErr.
func (s *Session) Interrupt() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InterruptCallCount++
	return s.InterruptErr
}

// Close records the call and returns CloseErr.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CloseCallCount++
	return s.CloseErr
}

// ResetCalls clears all recorded calls. Thread-safe.
func (s *Session) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SendAudioCalls = nil
	s.SayCalls = nil
	s.UpdateInstructionsCalls = nil
	s.InjectTextContextCalls = nil
	s.InterruptCallCount = 0
	s.CloseCallCount = 0
	s.OnCommittedUtteranceSetCount = 0
}

// Ensure Session implements realtime.SessionHandle at compile time.
var _ realtime.SessionHandle = (*Session)(nil)
