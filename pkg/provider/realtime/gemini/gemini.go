// Package gemini implements the realtime.Provider interface for Google's
// Gemini Live API.
//
// It establishes a bidirectional WebSocket connection to the Gemini Live
// endpoint and exchanges JSON messages according to the BidiGenerateContent
// protocol. Audio is transmitted as base64-encoded PCM chunks.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/hirecoach/interviewcore/pkg/provider/realtime"
	"github.com/hirecoach/interviewcore/pkg/provider/tts"
	"github.com/hirecoach/interviewcore/pkg/types"
)

// Compile-time assertions that Provider and session satisfy the realtime interfaces.
var _ realtime.Provider = (*Provider)(nil)
var _ realtime.SessionHandle = (*session)(nil)

const (
	defaultModel   = "gemini-2.0-flash-live-001"
	defaultBaseURL = "wss://generativelanguage.googleapis.com/ws"

	keepaliveInterval = 20 * time.Second
	keepaliveTimeout  = 5 * time.Second
)

// ── Options ────────────────────────────────────────────────────────────────────

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithModel sets the Gemini model used for sessions.
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithBaseURL overrides the base WebSocket URL. Primarily used in tests to
// point at a local mock server.
func WithBaseURL(url string) Option {
	return func(p *Provider) { p.baseURL = url }
}

// ── Provider ───────────────────────────────────────────────────────────────────

// Provider implements realtime.Provider for Google's Gemini Live API.
type Provider struct {
	apiKey  string
	model   string
	baseURL string
}

// New creates a new Gemini Live Provider with the given API key and options.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: defaultBaseURL,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Capabilities returns static metadata about the Gemini Live provider.
func (p *Provider) Capabilities() realtime.Capabilities {
	return realtime.Capabilities{
		ContextWindow:        1_000_000,
		MaxSessionDurationMs: 15 * 60 * 1000,
		SupportsResumption:   false,
		Voices: []tts.VoiceProfile{
			{ID: "Aoede", Name: "Aoede", Provider: "gemini"},
			{ID: "Charon", Name: "Charon", Provider: "gemini"},
			{ID: "Fenrir", Name: "Fenrir", Provider: "gemini"},
			{ID: "Kore", Name: "Kore", Provider: "gemini"},
			{ID: "Puck", Name: "Puck", Provider: "gemini"},
		},
	}
}

// Connect establishes a new Gemini Live session with the given configuration.
// The returned SessionHandle is ready to accept audio immediately after the
// setup message is sent.
func (p *Provider) Connect(ctx context.Context, cfg realtime.SessionConfig) (realtime.SessionHandle, error) {
	wsURL := fmt.Sprintf(
		"%s/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent?key=%s",
		p.baseURL, p.apiKey,
	)

	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{
			"Content-Type": []string{"application/json"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: dial: %w", err)
	}

	sessCtx, sessCancel := context.WithCancel(context.Background())
	sess := &session{
		conn:        conn,
		audioCh:     make(chan []byte, 64),
		transcripts: make(chan types.TranscriptEntry, 16),
		done:        make(chan struct{}),
		ctx:         sessCtx,
		cancel:      sessCancel,
	}

	if err := sess.sendSetup(p.model, cfg); err != nil {
		sessCancel()
		conn.Close(websocket.StatusInternalError, "setup failed")
		return nil, fmt.Errorf("gemini: setup: %w", err)
	}

	go sess.receiveLoop()
	go sess.keepaliveLoop()

	return sess, nil
}

// ── Protocol message types (outgoing) ─────────────────────────────────────────

type setupMessage struct {
	Setup setupConfig `json:"setup"`
}

type setupConfig struct {
	Model             string             `json:"model"`
	GenerationConfig  generationConfig   `json:"generationConfig"`
	SystemInstruction *systemInstruction `json:"systemInstruction,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type systemInstruction struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64-encoded
}

type realtimeInputMessage struct {
	RealtimeInput realtimeInput `json:"realtimeInput"`
}

type realtimeInput struct {
	MediaChunks []mediaChunk `json:"mediaChunks"`
}

type mediaChunk struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64-encoded
}

type clientContentMessage struct {
	ClientContent clientContent `json:"clientContent"`
}

type clientContent struct {
	Turns        []contentTurn `json:"turns"`
	TurnComplete bool          `json:"turnComplete"`
}

type contentTurn struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

// ── Protocol message types (incoming) ─────────────────────────────────────────

type serverMessage struct {
	SetupComplete *json.RawMessage `json:"setupComplete,omitempty"`
	ServerContent *serverContent   `json:"serverContent,omitempty"`
	Error         *geminiError     `json:"error,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

type serverContent struct {
	ModelTurn           *modelTurn     `json:"modelTurn,omitempty"`
	TurnComplete        bool           `json:"turnComplete,omitempty"`
	Interrupted         bool           `json:"interrupted,omitempty"`
	InputTranscription  *transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *transcription `json:"outputTranscription,omitempty"`
}

type modelTurn struct {
	Parts []part `json:"parts"`
}

type transcription struct {
	Text string `json:"text"`
}

// ── session ────────────────────────────────────────────────────────────────────

type session struct {
	conn         *websocket.Conn
	audioCh      chan []byte
	transcripts  chan types.TranscriptEntry
	errorHandler func(error)
	committedFn  func(role types.Role, text string, committedAt int64)

	mu     sync.Mutex
	errVal error
	done   chan struct{}
	closed bool

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// sendSetup sends the initial BidiGenerateContent setup message.
func (s *session) sendSetup(model string, cfg realtime.SessionConfig) error {
	msg := setupMessage{
		Setup: setupConfig{
			Model: fmt.Sprintf("models/%s", model),
			GenerationConfig: generationConfig{
				ResponseModalities: []string{"audio"},
			},
		},
	}

	if cfg.Instructions != "" {
		msg.Setup.SystemInstruction = &systemInstruction{
			Parts: []part{{Text: cfg.Instructions}},
		}
	}

	if cfg.Voice.ID != "" {
		msg.Setup.GenerationConfig.SpeechConfig = &speechConfig{
			VoiceConfig: voiceConfig{
				PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: cfg.Voice.ID},
			},
		}
	}

	return s.writeJSON(msg)
}

// writeJSON marshals v and writes it as a text WebSocket message.
func (s *session) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("gemini: marshal: %w", err)
	}
	return s.conn.Write(s.ctx, websocket.MessageText, data)
}

// receiveLoop reads messages from the WebSocket and dispatches them.
// It owns audioCh and transcripts: it closes both when it exits.
func (s *session) receiveLoop() {
	defer s.closeChannels()

	for {
		_, data, err := s.conn.Read(s.ctx)
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.setErr(err)
			return
		}

		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue // skip malformed frames
		}

		s.handleServerMessage(&msg)
	}
}

func (s *session) handleServerMessage(msg *serverMessage) {
	if msg.Error != nil {
		s.handleError(msg.Error)
	}
	if msg.ServerContent != nil {
		s.handleServerContent(msg.ServerContent)
	}
}

func (s *session) handleError(ge *geminiError) {
	s.mu.Lock()
	handler := s.errorHandler
	s.mu.Unlock()

	if handler == nil {
		return
	}

	msg := "unknown error"
	if ge.Message != "" {
		msg = ge.Message
	}
	handler(fmt.Errorf("gemini: %s", msg))
}

func (s *session) handleServerContent(sc *serverContent) {
	if sc.ModelTurn != nil {
		for _, p := range sc.ModelTurn.Parts {
			if p.InlineData != nil {
				audioData, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
				if err != nil || len(audioData) == 0 {
					continue
				}
				select {
				case s.audioCh <- audioData:
				case <-s.ctx.Done():
					return
				}
			}
			if p.Text != "" {
				s.commitEntry(types.RoleAssistant, p.Text)
			}
		}
	}

	if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
		s.commitEntry(types.RoleUser, sc.InputTranscription.Text)
	}

	if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
		s.commitEntry(types.RoleAssistant, sc.OutputTranscription.Text)
	}
}

// commitEntry publishes a finished utterance to both the Transcripts channel
// and the OnCommittedUtterance callback, if one is registered.
func (s *session) commitEntry(role types.Role, text string) {
	now := time.Now()
	entry := types.TranscriptEntry{Role: role, Text: text, Timestamp: now}
	select {
	case s.transcripts <- entry:
	case <-s.ctx.Done():
		return
	}

	s.mu.Lock()
	fn := s.committedFn
	s.mu.Unlock()
	if fn != nil {
		fn(role, text, now.UnixMilli())
	}
}

// keepaliveLoop sends WebSocket pings to keep the Gemini Live connection alive.
func (s *session) keepaliveLoop() {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(s.ctx, keepaliveTimeout)
			_ = s.conn.Ping(pingCtx)
			cancel()
		}
	}
}

func (s *session) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errVal == nil {
		s.errVal = err
	}
}

func (s *session) closeChannels() {
	s.closeOnce.Do(func() {
		close(s.audioCh)
		close(s.transcripts)
	})
}

// ── SessionHandle methods ──────────────────────────────────────────────────────

// SendAudio delivers a raw PCM audio chunk (16 kHz, s16le, mono) to the model.
func (s *session) SendAudio(chunk []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("gemini: session closed")
	}
	s.mu.Unlock()

	encoded := base64.StdEncoding.EncodeToString(chunk)
	msg := realtimeInputMessage{
		RealtimeInput: realtimeInput{
			MediaChunks: []mediaChunk{
				{MIMEType: "audio/pcm;rate=16000", Data: encoded},
			},
		},
	}
	return s.writeJSON(msg)
}

// Say injects the text as a model-role turn with TurnComplete set, which
// causes Gemini Live to synthesise it close to verbatim rather than
// generating its own continuation.
func (s *session) Say(text string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("gemini: session closed")
	}
	s.mu.Unlock()

	msg := clientContentMessage{
		ClientContent: clientContent{
			Turns: []contentTurn{
				{Role: "model", Parts: []part{{Text: text}}},
			},
			TurnComplete: true,
		},
	}
	return s.writeJSON(msg)
}

// Audio returns the channel on which the model's synthesised audio arrives.
func (s *session) Audio() <-chan []byte { return s.audioCh }

// Err returns the first non-nil error that caused the session to terminate.
func (s *session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errVal
}

// Transcripts returns the channel on which transcript entries arrive.
func (s *session) Transcripts() <-chan types.TranscriptEntry { return s.transcripts }

// OnError registers a callback for non-fatal error events from the provider.
func (s *session) OnError(handler func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorHandler = handler
}

// OnCommittedUtterance registers a callback invoked whenever a finished
// utterance is committed to the transcript.
func (s *session) OnCommittedUtterance(fn func(role types.Role, text string, committedAt int64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committedFn = fn
}

// UpdateInstructions is not supported by the Gemini Live protocol; an error is
// always returned.
func (s *session) UpdateInstructions(_ string) error {
	return fmt.Errorf("gemini: mid-session instruction updates are not supported")
}

// InjectTextContext inserts ContextItems into the session as clientContent turns.
func (s *session) InjectTextContext(items []realtime.ContextItem) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("gemini: session closed")
	}
	s.mu.Unlock()

	if len(items) == 0 {
		return nil
	}

	turns := make([]contentTurn, len(items))
	for i, item := range items {
		role := item.Role
		switch role {
		case "assistant":
			role = "model"
		case "model":
			// already correct
		default:
			role = "user"
		}
		turns[i] = contentTurn{
			Role:  role,
			Parts: []part{{Text: item.Content}},
		}
	}

	msg := clientContentMessage{
		ClientContent: clientContent{
			Turns:        turns,
			TurnComplete: true,
		},
	}
	return s.writeJSON(msg)
}

// Interrupt is not supported by the Gemini Live protocol; an error is always
// returned.
func (s *session) Interrupt() error {
	return fmt.Errorf("gemini: interrupt not supported")
}

// Close terminates the session and releases all resources. Idempotent.
func (s *session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()    // unblocks receiveLoop and keepaliveLoop
	close(s.done) // signals keepaliveLoop via done channel
	s.conn.Close(websocket.StatusNormalClosure, "session closed")
	return nil
}
