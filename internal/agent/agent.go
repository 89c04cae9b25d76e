// Package agent implements the Interview Agent (C4): a single-threaded
// cooperative task, one instance per session, that drives a realtime voice
// model through a scripted interview and converges on a Report via the
// Finalizer when the session ends.
//
// [Agent] owns its realtime session handle and in-memory transcript; within
// one Agent, realtime events, the periodic snapshot timer, and the
// disconnect signal are all handled on the same goroutine via a single
// select loop, so no locking is needed around the transcript or state.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hirecoach/interviewcore/internal/finalizer"
	"github.com/hirecoach/interviewcore/pkg/provider/realtime"
	"github.com/hirecoach/interviewcore/pkg/provider/tts"
	"github.com/hirecoach/interviewcore/pkg/types"
)

// defaultConnectTimeout bounds how long the agent waits in Connecting
// before giving up and transitioning to Failed.
const defaultConnectTimeout = 30 * time.Second

// defaultSnapshotInterval is how often the agent persists a transcript
// snapshot while the interview is in progress.
const defaultSnapshotInterval = 30 * time.Second

// greetingLine is the fixed welcome utterance spoken at session start.
const greetingLine = "Hi, thanks for joining. I'll be conducting your mock interview today. Let's get started."

// closingLine is the fixed thank-you utterance spoken before finalization.
const closingLine = "Thank you for completing the interview. I'm compiling your report now."

// Config configures one Agent instance.
type Config struct {
	SessionID        string
	JobTitle         string
	Seniority        types.Seniority
	NumQuestions     int
	Voice            tts.VoiceProfile
	ClosingPhrases   []string
	ConnectTimeout   time.Duration
	SnapshotInterval time.Duration
}

// withDefaults fills zero-value fields with package defaults.
func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.SnapshotInterval <= 0 {
		c.SnapshotInterval = defaultSnapshotInterval
	}
	if len(c.ClosingPhrases) == 0 {
		c.ClosingPhrases = defaultClosingPhrases
	}
	return c
}

// Agent drives one interview session end to end.
type Agent struct {
	cfg       Config
	provider  realtime.Provider
	finalizer *finalizer.Finalizer

	state          State
	transcript     []types.TranscriptEntry
	questionsAsked int
}

// New builds an Agent for cfg, ready to Run once.
func New(cfg Config, provider realtime.Provider, fin *finalizer.Finalizer) *Agent {
	return &Agent{
		cfg:       cfg.withDefaults(),
		provider:  provider,
		finalizer: fin,
		state:     StateConnecting,
	}
}

// committedUtterance is a single realtime-model callback event, queued onto
// an internal channel so the single select loop can process it in order
// alongside the snapshot ticker and the disconnect signal.
type committedUtterance struct {
	role types.Role
	text string
}

// Run connects to the realtime provider and drives the session to
// completion, to Failed, or until disconnect fires. It returns when the
// agent has reached a terminal state and has made a best-effort attempt to
// persist its transcript and finalize the session.
func (a *Agent) Run(ctx context.Context, disconnect <-chan struct{}) error {
	handle, err := a.connect(ctx)
	if err != nil {
		return a.fail(ctx, err)
	}
	defer handle.Close()

	events := make(chan committedUtterance, 16)
	handle.OnCommittedUtterance(func(role types.Role, text string, _ int64) {
		select {
		case events <- committedUtterance{role: role, text: text}:
		default:
			slog.Warn("agent: dropped committed utterance, event channel full",
				"session_id", a.cfg.SessionID)
		}
	})

	a.state = next(a.state, transitionInput{evt: eventRoomConnected})
	if err := handle.Say(greetingLine); err != nil {
		return a.fail(ctx, fmt.Errorf("agent: speak greeting: %w", err))
	}

	ticker := time.NewTicker(a.cfg.SnapshotInterval)
	defer ticker.Stop()

	for a.state != StateFinalizing && !a.state.terminal() {
		select {
		case <-ctx.Done():
			return a.fail(ctx, ctx.Err())

		case <-disconnect:
			a.snapshot(ctx)
			if len(a.transcript) > 0 {
				if _, err := a.finalizer.Finalize(ctx, a.cfg.SessionID); err != nil {
					slog.Warn("agent: finalize on disconnect failed", "session_id", a.cfg.SessionID, "error", err)
				}
			}
			a.state = StateDone
			return nil

		case <-ticker.C:
			a.snapshot(ctx)

		case ev := <-events:
			a.appendTranscript(ev.role, ev.text)
			a.handleUtterance(ev)
		}
	}

	if a.state == StateFinalizing {
		return a.finalize(ctx)
	}
	return nil
}

// connect opens the realtime session, bounded by the Connecting timeout.
func (a *Agent) connect(ctx context.Context) (realtime.SessionHandle, error) {
	connectCtx, cancel := context.WithTimeout(ctx, a.cfg.ConnectTimeout)
	defer cancel()

	handle, err := a.provider.Connect(connectCtx, realtime.SessionConfig{
		Voice:        a.cfg.Voice,
		Instructions: a.instructions(),
	})
	if err != nil {
		return nil, fmt.Errorf("agent: connect realtime session for %q: %w", a.cfg.SessionID, err)
	}
	return handle, nil
}

// instructions builds the static system prompt handed to the realtime
// model: interviewer persona, target role/seniority, the exact question
// count it must ask, and the required closing phrase.
func (a *Agent) instructions() string {
	return fmt.Sprintf(
		"You are conducting a mock interview for a %s position at %s seniority. "+
			"You must ask exactly %d interview questions, one at a time, waiting for "+
			"the candidate's answer before asking the next. When you have asked all "+
			"%d questions and heard the candidate's final answer, conclude the "+
			"interview by saying a sentence that includes the phrase %q.",
		a.cfg.JobTitle, a.cfg.Seniority, a.cfg.NumQuestions, a.cfg.NumQuestions, closingLine,
	)
}

// handleUtterance processes one committed utterance against the current
// state and advances the state machine in place.
func (a *Agent) handleUtterance(ev committedUtterance) {
	switch ev.role {
	case types.RoleAssistant:
		if a.state == StateGreeting {
			a.state = next(a.state, transitionInput{evt: eventGreetingCommitted})
			return
		}
		if a.state == StateClosing {
			// The agent is waiting on exactly one thing: the model's own
			// closing remark, owed after the final answer was evaluated.
			// This utterance is it.
			a.state = next(a.state, transitionInput{evt: eventClosingCommitted})
			return
		}
		a.questionsAsked++
		closingByKeyword := detectsClosingPhrase(ev.text, a.cfg.ClosingPhrases)
		a.state = next(a.state, transitionInput{evt: eventModelYielded, closingPhraseFound: closingByKeyword})
		if a.state == StateClosing {
			// The utterance that tripped the closing phrase is the closing
			// remark itself — the candidate is not expected to speak again
			// before finalization, so commit the transition in the same
			// step instead of waiting on another user turn.
			a.state = next(a.state, transitionInput{evt: eventClosingCommitted})
		}

	case types.RoleUser:
		if a.state != StateListening {
			return
		}
		a.state = next(a.state, transitionInput{evt: eventUserUtteranceCommitted})
		a.state = next(a.state, transitionInput{
			evt:            eventEvaluationComplete,
			questionsAsked: a.questionsAsked,
			numQuestions:   a.cfg.NumQuestions,
		})
		// If this was the final answer, a.state is now StateClosing; the
		// agent still owes the candidate a spoken closing line and waits
		// for that assistant utterance (handled above) before finalizing.
	}
}

// appendTranscript records one committed utterance with the current wall
// clock as its timestamp.
func (a *Agent) appendTranscript(role types.Role, text string) {
	a.transcript = append(a.transcript, types.TranscriptEntry{
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	})
}

// snapshot persists the current transcript via the Finalizer, logging but
// not propagating failures so a storage hiccup never halts the agent.
func (a *Agent) snapshot(ctx context.Context) {
	if err := a.finalizer.PersistPartialTranscript(ctx, a.cfg.SessionID, a.transcript, a.questionsAsked); err != nil {
		slog.Warn("agent: snapshot failed", "session_id", a.cfg.SessionID, "error", err)
	}
}

// finalize snapshots one last time and hands off to the Finalizer,
// advancing to Done or Failed based on the outcome. This is the session's
// one genuinely terminal finalize attempt — the interview has already
// ended — so an error here also marks the session Failed in the store,
// unlike an on-demand report read through the same Finalizer.
func (a *Agent) finalize(ctx context.Context) error {
	a.snapshot(ctx)
	if _, err := a.finalizer.Finalize(ctx, a.cfg.SessionID); err != nil {
		a.state = StateFailed
		wrapped := fmt.Errorf("agent: finalize session %q: %w", a.cfg.SessionID, err)
		if failErr := a.finalizer.Fail(ctx, a.cfg.SessionID, wrapped); failErr != nil {
			slog.Warn("agent: failed to mark session failed", "session_id", a.cfg.SessionID, "error", failErr)
		}
		return wrapped
	}
	a.state = next(a.state, transitionInput{evt: eventFinalizeDone})
	return nil
}

// fail snapshots on a best-effort basis before surfacing err, matching the
// "agent-internal exceptions are logged" propagation policy: user data is
// preserved even when the agent itself fails. It also marks the session
// Failed in the store — a connect timeout or other agent-internal error
// means the interview will never otherwise reach a terminal status.
func (a *Agent) fail(ctx context.Context, err error) error {
	a.snapshot(ctx)
	a.state = StateFailed
	if failErr := a.finalizer.Fail(ctx, a.cfg.SessionID, err); failErr != nil {
		slog.Warn("agent: failed to mark session failed", "session_id", a.cfg.SessionID, "error", failErr)
	}
	return err
}
