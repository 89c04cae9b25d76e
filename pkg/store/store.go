// Package store defines the [Store] interface that persists the interview
// session domain model declared in pkg/types.
//
// The architecture mirrors a single, flat relational schema: Session owns
// zero or more Question rows (scripted mode only); each Question owns at
// most one Answer; every Session owns an ordered, append-only transcript.
// [Store] implementations must enforce referential integrity between these
// entities and must reject out-of-range scores at the storage boundary.
//
// Two implementations are provided: postgres (pkg/store/postgres) for
// production use, and memstore (pkg/store/memstore) for tests and for
// deployments without a configured database. Both must satisfy the same
// conditional-write and write-once semantics.
//
// All implementations must be safe for concurrent use.
package store

import (
	"context"
	"time"

	"github.com/hirecoach/interviewcore/pkg/types"
)

// SearchOpts refines [Store.SearchTranscripts]. All non-zero fields are
// applied as AND conditions.
type SearchOpts struct {
	SessionID string
	After     time.Time
	Before    time.Time
	Limit     int
}

// kind is a tiny comparable sentinel-error type, following the same
// minimal-error-taxonomy idiom used throughout this codebase.
type kind string

func (k kind) Error() string { return string(k) }

// Sentinel errors forming the taxonomy described in spec §7. Implementations
// must wrap one of these with fmt.Errorf("...: %w", ...) so callers can use
// errors.Is.
const (
	// ErrValidation marks malformed or out-of-range input.
	ErrValidation = kind("store: validation failed")

	// ErrNotFound marks an unknown session, question, or answer.
	ErrNotFound = kind("store: not found")

	// ErrConflict marks a write that violates a write-once or mode invariant
	// (duplicate answer, already finalized, not all questions answered).
	ErrConflict = kind("store: conflict")
)

// Store is the durable record of sessions, questions, answers, transcripts,
// and reports (component C1). Implementations must enforce Session →
// Question → Answer referential integrity and reject out-of-range scores.
type Store interface {
	// CreateSession inserts a new Session row in types.StatusActive.
	CreateSession(ctx context.Context, s types.Session) error

	// GetSession retrieves a Session by ID. Returns ErrNotFound if absent.
	GetSession(ctx context.Context, id string) (*types.Session, error)

	// CreateQuestions bulk-inserts the Questions for a scripted-mode session.
	// Indexes must be unique within the session; violating that is ErrValidation.
	CreateQuestions(ctx context.Context, sessionID string, qs []types.Question) error

	// ListQuestions returns all Questions for sessionID, ordered by Index.
	ListQuestions(ctx context.Context, sessionID string) ([]types.Question, error)

	// GetQuestion retrieves a Question by ID. Returns ErrNotFound if absent.
	GetQuestion(ctx context.Context, id string) (*types.Question, error)

	// CreateAnswer writes an Answer for a Question that does not yet have
	// one. Returns ErrConflict if an Answer already exists for this Question.
	CreateAnswer(ctx context.Context, a types.Answer) error

	// GetAnswer retrieves the Answer for a Question by Question ID. Returns
	// ErrNotFound if the Question has not yet been answered.
	GetAnswer(ctx context.Context, questionID string) (*types.Answer, error)

	// ListAnswers returns all Answers for the Questions belonging to
	// sessionID, in Question.Index order.
	ListAnswers(ctx context.Context, sessionID string) ([]types.Answer, error)

	// AppendOrReplaceTranscript idempotently overwrites the full transcript
	// snapshot for sessionID and updates its questions-asked counter. Takes a
	// row-level lock on the session for the duration of the write.
	AppendOrReplaceTranscript(ctx context.Context, sessionID string, entries []types.TranscriptEntry, questionsAsked int) error

	// SearchTranscripts performs a keyword search over stored transcript text,
	// refined by opts. Returns an empty (non-nil) slice when nothing matches.
	SearchTranscripts(ctx context.Context, query string, opts SearchOpts) ([]types.TranscriptEntry, error)

	// FinalizeSession conditionally commits report and transitions sessionID
	// to types.StatusCompleted, iff its current status is types.StatusActive.
	// Returns the committed Report whether this call wrote it or observed one
	// committed concurrently (read-after-write convergence).
	FinalizeSession(ctx context.Context, sessionID string, report types.Report) (*types.Report, error)

	// FailSession transitions sessionID to types.StatusFailed on an
	// unrecoverable finalize error, preserving any transcript or partial
	// report already present. A no-op if the session is already terminal.
	FailSession(ctx context.Context, sessionID string, reason string) error

	// Ping verifies the store is reachable, for readiness checks.
	Ping(ctx context.Context) error

	// Close releases any resources (connection pools) held by the store.
	Close()
}
