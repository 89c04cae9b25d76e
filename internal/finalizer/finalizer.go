// Package finalizer implements the convergence point where a session's
// transcript and answers are turned into a committed Report, whoever
// reaches it first — the agent on completion or disconnect, or a client
// calling for a report on demand.
//
// Finalizer is a small stateless struct gluing the session store and the
// Summarizer together: no state of its own, just orchestration of calls that
// already know how to do their one job.
package finalizer

import (
	"context"
	"fmt"

	"github.com/hirecoach/interviewcore/internal/aiservice"
	"github.com/hirecoach/interviewcore/pkg/store"
	"github.com/hirecoach/interviewcore/pkg/types"
)

// noInterviewDataNote is the completion_note attached to the degenerate
// Report produced when a session has neither a transcript nor any answers.
const noInterviewDataNote = "No interview data was captured for this session."

// Finalizer persists partial transcripts and drives sessions to a committed
// Report.
type Finalizer struct {
	store      store.Store
	summarizer *aiservice.Summarizer
}

// New builds a Finalizer over st and summarizer.
func New(st store.Store, summarizer *aiservice.Summarizer) *Finalizer {
	return &Finalizer{store: st, summarizer: summarizer}
}

// PersistPartialTranscript delegates to the store's idempotent transcript
// snapshot write. Safe under concurrent calls: the agent is the sole writer
// per session, so last-writer-wins is an acceptable semantics here.
func (f *Finalizer) PersistPartialTranscript(ctx context.Context, sessionID string, entries []types.TranscriptEntry, questionsAsked int) error {
	if err := f.store.AppendOrReplaceTranscript(ctx, sessionID, entries, questionsAsked); err != nil {
		return fmt.Errorf("finalizer: persist partial transcript for session %q: %w", sessionID, err)
	}
	return nil
}

// Finalize is the five-step convergence algorithm:
//  1. Load the Session; if already completed, return its stored Report unchanged.
//  2. Determine partiality from the session's mode.
//  3. Call the Summarizer (LLM-backed, falling back to the heuristic on failure).
//  4. Conditionally commit via the store, which only writes if still active.
//  5. Return whichever Report was committed — ours, or a concurrent writer's.
func (f *Finalizer) Finalize(ctx context.Context, sessionID string) (*types.Report, error) {
	session, err := f.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("finalizer: load session %q: %w", sessionID, err)
	}

	if session.Status == types.StatusCompleted {
		if session.Summary != nil {
			return session.Summary, nil
		}
	}

	report, err := f.summarize(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("finalizer: summarize session %q: %w", sessionID, err)
	}

	committed, err := f.store.FinalizeSession(ctx, sessionID, *report)
	if err != nil {
		return nil, fmt.Errorf("finalizer: commit report for session %q: %w", sessionID, err)
	}
	return committed, nil
}

// Fail transitions sessionID to types.StatusFailed after cause has made
// finalization unrecoverable, preserving whatever transcript or partial
// report the session already has. Callers invoke this from genuinely
// terminal paths — an explicit client finish request, the agent's own
// shutdown on error — not from Finalize itself, since Finalize also backs
// the idempotent report-read path and a transient store/LLM error there
// should stay retryable rather than permanently brick the session.
func (f *Finalizer) Fail(ctx context.Context, sessionID string, cause error) error {
	if err := f.store.FailSession(ctx, sessionID, cause.Error()); err != nil {
		return fmt.Errorf("finalizer: fail session %q: %w", sessionID, err)
	}
	return nil
}

// summarize dispatches to the session-based or transcript-based Summarizer
// entry point depending on mode, applying the empty-transcript degenerate
// Report policy when neither a transcript nor answers exist.
func (f *Finalizer) summarize(ctx context.Context, session *types.Session) (*types.Report, error) {
	switch session.Mode {
	case types.ModeScripted:
		return f.summarizeScripted(ctx, session)
	default:
		return f.summarizeConversational(ctx, session)
	}
}

func (f *Finalizer) summarizeScripted(ctx context.Context, session *types.Session) (*types.Report, error) {
	questions, err := f.store.ListQuestions(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	answers, err := f.store.ListAnswers(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	if len(session.Transcript) == 0 && len(answers) == 0 {
		return emptyReport(), nil
	}

	partial := len(answers) < len(questions)
	report, err := f.summarizer.SummarizeSession(ctx, aiservice.SessionSummaryRequest{
		JobTitle:  session.JobTitle,
		Seniority: session.Seniority,
		Questions: questions,
		Answers:   answers,
		Partial:   partial,
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (f *Finalizer) summarizeConversational(ctx context.Context, session *types.Session) (*types.Report, error) {
	if len(session.Transcript) == 0 {
		return emptyReport(), nil
	}

	partial := session.QuestionsAsked < session.NumQuestions
	report, err := f.summarizer.SummarizeTranscript(ctx, aiservice.TranscriptSummaryRequest{
		JobTitle:        session.JobTitle,
		Seniority:       session.Seniority,
		Transcript:      session.Transcript,
		QuestionsAsked:  session.QuestionsAsked,
		TargetQuestions: session.NumQuestions,
		Partial:         partial,
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// emptyReport is the degenerate Report written when a session has neither a
// transcript nor any answers, preserving the invariant that a completed
// session always has a Report.
func emptyReport() *types.Report {
	return &types.Report{
		OverallScore:   0,
		Weaknesses:     []string{"no interview data"},
		CompletionNote: noInterviewDataNote,
		GeneratedBy:    types.ReportSourceFallback,
	}
}
