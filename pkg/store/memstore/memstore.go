// Package memstore provides a thread-safe, in-memory implementation of
// [store.Store] for tests and for deployments run without a configured
// Postgres database ([store.ErrNotFound] degradation is never engaged by
// this package — it is a fully functional Store, just non-durable).
//
// Each session's mutable state (transcript, questions-asked counter,
// finalize outcome) is guarded by its own sync.Mutex so that concurrent
// finalize attempts on different sessions never contend, while the
// conditional-write and write-once semantics required by spec invariants 5
// and 6 are still enforced per-session.
package memstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/hirecoach/interviewcore/pkg/store"
	"github.com/hirecoach/interviewcore/pkg/types"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// record holds one session's full mutable state behind a dedicated mutex.
type record struct {
	mu        sync.Mutex
	session   types.Session
	questions []types.Question
	answers   map[string]types.Answer // keyed by question ID
}

// Store is an in-memory [store.Store]. The zero value is not ready to use;
// construct with [New].
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*record
}

// New returns an initialised Store.
func New() *Store {
	return &Store{sessions: make(map[string]*record)}
}

// GenerateID produces a random 16-byte hex string, following the same
// crypto/rand-backed ID idiom used elsewhere in this codebase.
func GenerateID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("memstore: generate id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *Store) getRecord(id string) (*record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.sessions[id]
	return r, ok
}

// CreateSession inserts a new Session row in types.StatusActive.
func (s *Store) CreateSession(_ context.Context, sess types.Session) error {
	if sess.Status == "" {
		sess.Status = types.StatusActive
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[sess.ID]; exists {
		return fmt.Errorf("memstore: create session %q: %w", sess.ID, store.ErrConflict)
	}
	s.sessions[sess.ID] = &record{
		session: sess,
		answers: make(map[string]types.Answer),
	}
	return nil
}

// GetSession retrieves a Session by ID. Returns store.ErrNotFound if absent.
func (s *Store) GetSession(_ context.Context, id string) (*types.Session, error) {
	r, ok := s.getRecord(id)
	if !ok {
		return nil, fmt.Errorf("memstore: get session %q: %w", id, store.ErrNotFound)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sess := r.session
	return &sess, nil
}

// CreateQuestions bulk-inserts the Questions for a scripted-mode session.
// Duplicate indexes within the session are rejected as store.ErrValidation.
func (s *Store) CreateQuestions(_ context.Context, sessionID string, qs []types.Question) error {
	r, ok := s.getRecord(sessionID)
	if !ok {
		return fmt.Errorf("memstore: create questions for %q: %w", sessionID, store.ErrNotFound)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[int]bool, len(r.questions)+len(qs))
	for _, existing := range r.questions {
		seen[existing.Index] = true
	}
	for _, q := range qs {
		if seen[q.Index] {
			return fmt.Errorf("memstore: create questions: duplicate index %d: %w", q.Index, store.ErrValidation)
		}
		seen[q.Index] = true
	}

	r.questions = append(r.questions, qs...)
	slices.SortFunc(r.questions, func(a, b types.Question) int { return a.Index - b.Index })
	return nil
}

// ListQuestions returns all Questions for sessionID, ordered by Index.
func (s *Store) ListQuestions(_ context.Context, sessionID string) ([]types.Question, error) {
	r, ok := s.getRecord(sessionID)
	if !ok {
		return nil, fmt.Errorf("memstore: list questions for %q: %w", sessionID, store.ErrNotFound)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Question, len(r.questions))
	copy(out, r.questions)
	return out, nil
}

// GetQuestion retrieves a Question by ID. Returns store.ErrNotFound if absent.
func (s *Store) GetQuestion(_ context.Context, id string) (*types.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.sessions {
		r.mu.Lock()
		for _, q := range r.questions {
			if q.ID == id {
				found := q
				r.mu.Unlock()
				return &found, nil
			}
		}
		r.mu.Unlock()
	}
	return nil, fmt.Errorf("memstore: get question %q: %w", id, store.ErrNotFound)
}

// CreateAnswer writes an Answer for a Question that does not yet have one.
// Returns store.ErrConflict if an Answer already exists for this Question.
func (s *Store) CreateAnswer(_ context.Context, a types.Answer) error {
	for _, v := range []int{a.Relevance, a.Clarity, a.Structure, a.Impact, a.Overall} {
		if !types.ScoreInRange(v) {
			return fmt.Errorf("memstore: create answer for question %q: score %d out of range: %w", a.QuestionID, v, store.ErrValidation)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.sessions {
		r.mu.Lock()
		owns := false
		for _, q := range r.questions {
			if q.ID == a.QuestionID {
				owns = true
				break
			}
		}
		if !owns {
			r.mu.Unlock()
			continue
		}
		if _, exists := r.answers[a.QuestionID]; exists {
			r.mu.Unlock()
			return fmt.Errorf("memstore: create answer for question %q: %w", a.QuestionID, store.ErrConflict)
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now()
		}
		r.answers[a.QuestionID] = a
		r.mu.Unlock()
		return nil
	}
	return fmt.Errorf("memstore: create answer: question %q: %w", a.QuestionID, store.ErrNotFound)
}

// GetAnswer retrieves the Answer for a Question by Question ID.
func (s *Store) GetAnswer(_ context.Context, questionID string) (*types.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.sessions {
		r.mu.Lock()
		a, ok := r.answers[questionID]
		r.mu.Unlock()
		if ok {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("memstore: get answer for question %q: %w", questionID, store.ErrNotFound)
}

// ListAnswers returns all Answers for the Questions belonging to sessionID,
// in Question.Index order.
func (s *Store) ListAnswers(_ context.Context, sessionID string) ([]types.Answer, error) {
	r, ok := s.getRecord(sessionID)
	if !ok {
		return nil, fmt.Errorf("memstore: list answers for %q: %w", sessionID, store.ErrNotFound)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Answer, 0, len(r.questions))
	for _, q := range r.questions {
		if a, ok := r.answers[q.ID]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// AppendOrReplaceTranscript idempotently overwrites the full transcript
// snapshot for sessionID and updates its questions-asked counter.
func (s *Store) AppendOrReplaceTranscript(_ context.Context, sessionID string, entries []types.TranscriptEntry, questionsAsked int) error {
	r, ok := s.getRecord(sessionID)
	if !ok {
		return fmt.Errorf("memstore: append transcript for %q: %w", sessionID, store.ErrNotFound)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make([]types.TranscriptEntry, len(entries))
	copy(snapshot, entries)
	r.session.Transcript = snapshot
	r.session.QuestionsAsked = questionsAsked
	return nil
}

// SearchTranscripts performs a case-insensitive substring search over stored
// transcript text, refined by opts. This is the in-memory analogue of the
// postgres implementation's plainto_tsquery full-text search.
func (s *Store) SearchTranscripts(_ context.Context, query string, opts store.SearchOpts) ([]types.TranscriptEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lowerQuery := toLower(query)
	out := []types.TranscriptEntry{}
	for id, r := range s.sessions {
		if opts.SessionID != "" && opts.SessionID != id {
			continue
		}
		r.mu.Lock()
		for _, e := range r.session.Transcript {
			if !opts.After.IsZero() && !e.Timestamp.After(opts.After) {
				continue
			}
			if !opts.Before.IsZero() && !e.Timestamp.Before(opts.Before) {
				continue
			}
			if lowerQuery != "" && !containsFold(e.Text, lowerQuery) {
				continue
			}
			out = append(out, e)
		}
		r.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b types.TranscriptEntry) int { return a.Timestamp.Compare(b.Timestamp) })
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// FinalizeSession conditionally commits report and transitions sessionID to
// types.StatusCompleted, iff its current status is types.StatusActive.
func (s *Store) FinalizeSession(_ context.Context, sessionID string, report types.Report) (*types.Report, error) {
	r, ok := s.getRecord(sessionID)
	if !ok {
		return nil, fmt.Errorf("memstore: finalize session %q: %w", sessionID, store.ErrNotFound)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.Status != types.StatusActive {
		if r.session.Summary == nil {
			return nil, fmt.Errorf("memstore: finalize session %q: status %q has no summary: %w",
				sessionID, r.session.Status, store.ErrConflict)
		}
		existing := *r.session.Summary
		return &existing, nil
	}

	if !types.ScoreInRange(report.OverallScore) {
		return nil, fmt.Errorf("memstore: finalize session %q: overall score %d out of range: %w",
			sessionID, report.OverallScore, store.ErrValidation)
	}

	committed := report
	now := time.Now()
	r.session.Summary = &committed
	r.session.OverallScore = &committed.OverallScore
	r.session.Status = types.StatusCompleted
	r.session.CompletedAt = &now
	return &committed, nil
}

// FailSession transitions sessionID to types.StatusFailed. A no-op if the
// session is already terminal.
func (s *Store) FailSession(_ context.Context, sessionID string, reason string) error {
	r, ok := s.getRecord(sessionID)
	if !ok {
		return fmt.Errorf("memstore: fail session %q: %w", sessionID, store.ErrNotFound)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session.Status != types.StatusActive {
		return nil
	}
	now := time.Now()
	r.session.Status = types.StatusFailed
	r.session.CompletedAt = &now
	slog.Warn("session failed", "session_id", sessionID, "reason", reason)
	return nil
}

// Ping always succeeds; memstore has no external dependency to probe.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op; memstore holds no external resources.
func (s *Store) Close() {}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func containsFold(haystack, lowerNeedle string) bool {
	return len(lowerNeedle) == 0 || indexFold(haystack, lowerNeedle) >= 0
}

func indexFold(haystack, lowerNeedle string) int {
	lower := toLower(haystack)
	for i := 0; i+len(lowerNeedle) <= len(lower); i++ {
		if lower[i:i+len(lowerNeedle)] == lowerNeedle {
			return i
		}
	}
	return -1
}
