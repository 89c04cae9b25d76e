// Package realtime defines the Provider interface for Speech-to-Speech (S2S)
// backends.
//
// A realtime provider wraps a low-latency voice AI service that accepts raw
// audio input and returns synthesised audio output within a single, stateful
// session, bypassing the separate STT → LLM → TTS pipeline entirely.
// Examples include the OpenAI Realtime API and the Gemini Live API. This is
// the transport the Interview Agent uses to conduct the spoken interview; the
// agent has no cascaded stt/llm/tts interview path.
//
// The central abstraction is SessionHandle: a bidirectional, multiplexed
// channel that carries audio and transcripts concurrently. Sessions are
// designed to be long-lived (minutes) and support mid-session
// reconfiguration.
//
// All implementations must be safe for concurrent use.
package realtime

import (
	"context"

	"github.com/hirecoach/interviewcore/pkg/provider/tts"
	"github.com/hirecoach/interviewcore/pkg/types"
)

// ContextItem is a text message injected into the session's context
// mid-conversation, such as a question or a coaching note, without resending
// the full conversation history.
type ContextItem struct {
	// Role is the speaker role for this context item. Typical values match LLM
	// message roles: "system", "user", "assistant".
	Role string

	// Content is the text content of the context item.
	Content string
}

// SessionConfig is the initial configuration for a new realtime session.
type SessionConfig struct {
	// Voice defines the voice the model will use for synthesised speech output.
	Voice tts.VoiceProfile

	// Instructions is the system-level prompt that defines the interviewer's
	// persona, the candidate's target role and seniority, and the behavioural
	// constraints for the session. Equivalent to a system message in the LLM
	// paradigm.
	Instructions string
}

// Capabilities describes static properties of the realtime provider.
// The values are assumed constant for the lifetime of the Provider instance.
type Capabilities struct {
	// ContextWindow is the maximum token count (or provider-equivalent unit) the
	// model can maintain across the session.
	ContextWindow int

	// MaxSessionDurationMs is the hard upper bound on session lifetime in
	// milliseconds, as imposed by the provider. Zero means no documented limit.
	MaxSessionDurationMs int

	// SupportsResumption indicates whether a session can be reconnected after a
	// transient network failure without losing accumulated context.
	SupportsResumption bool

	// Voices lists the voice profiles available for this provider.
	Voices []tts.VoiceProfile
}

// SessionHandle represents an open realtime session. It is an interface so
// that test code can supply mock implementations without a live provider
// connection.
//
// The session is the hot path of the interview voice pipeline — every method
// must return quickly. Audio I/O is channel-based to avoid blocking the
// caller's audio thread. All methods must be safe for concurrent use.
//
// Callers must call Close when the session is no longer needed.
type SessionHandle interface {
	// SendAudio delivers a raw PCM audio chunk to the provider for processing.
	// The chunk must match the audio format negotiated when the session was opened.
	// Returns an error if the session is closed or if the provider cannot accept
	// the chunk (e.g., buffer full, network error).
	SendAudio(chunk []byte) error

	// Say injects text directly into the session for immediate synthesis,
	// bypassing the model's own turn generation. The interview agent uses this
	// to speak its fixed greeting line verbatim, rather than leaving phrasing
	// to the model.
	Say(text string) error

	// Audio returns a read-only channel that emits raw PCM audio byte slices as
	// the model synthesises its spoken response. The channel is closed when the
	// session ends or when a mid-stream error occurs. After the channel closes,
	// call [SessionHandle.Err] to check whether the session ended cleanly.
	// Consumers must drain this channel promptly to prevent backpressure from
	// stalling the provider's receive loop.
	Audio() <-chan []byte

	// Err returns the error that caused the Audio channel to close prematurely,
	// or nil if the session ended cleanly. Callers should check Err after the
	// Audio channel is closed.
	Err() error

	// Transcripts returns a read-only channel that emits TranscriptEntry values
	// for both candidate speech (as recognised by the model) and agent
	// responses (as generated text). The channel is closed when the session
	// ends.
	Transcripts() <-chan types.TranscriptEntry

	// OnCommittedUtterance registers a callback invoked whenever the model
	// commits a finished utterance — from either party — to the transcript.
	// This lets the agent drive its completion-detection and snapshot logic
	// off the same event that produces Transcripts, without polling the
	// channel from a second goroutine. Passing nil clears the callback.
	OnCommittedUtterance(fn func(role types.Role, text string, committedAt int64))

	// UpdateInstructions replaces the system-level instructions for the
	// interviewer persona. Providers that do not support mid-session
	// instruction updates may return an error. Effective immediately for the
	// next model turn.
	UpdateInstructions(instructions string) error

	// InjectTextContext inserts one or more ContextItems into the session's
	// rolling context without waiting for the candidate to finish speaking.
	// The interview agent does not call it. Implementations
	// should append items in order and truncate oldest context if the
	// session's ContextWindow is exceeded.
	InjectTextContext(items []ContextItem) error

	// Interrupt signals the provider to stop generating the current response and
	// discard any buffered audio. Use this when the candidate begins speaking
	// mid-response (barge-in). Returns an error if the provider does not
	// support interruption.
	Interrupt() error

	// Close terminates the session, releases all resources, and closes the Audio and
	// Transcripts channels. Calling Close more than once is safe and returns nil.
	Close() error
}

// Provider is the abstraction over any realtime S2S backend.
//
// Implementations must be safe for concurrent use. The orchestrator may open
// multiple concurrent sessions, one per active interview.
type Provider interface {
	// Connect establishes a new realtime session with the given configuration.
	// The returned SessionHandle is ready to accept audio immediately.
	//
	// Returns an error if the session cannot be established (e.g., authentication
	// failure, invalid voice, or ctx already cancelled). The caller owns the
	// SessionHandle and is responsible for calling Close.
	Connect(ctx context.Context, cfg SessionConfig) (SessionHandle, error)

	// Capabilities returns static metadata about this provider's underlying model.
	// The result is assumed to be constant for the lifetime of the Provider instance.
	Capabilities() Capabilities
}
