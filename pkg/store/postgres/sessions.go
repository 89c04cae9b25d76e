package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hirecoach/interviewcore/pkg/store"
	"github.com/hirecoach/interviewcore/pkg/types"
)

// CreateSession inserts a new Session row in types.StatusActive.
func (s *Store) CreateSession(ctx context.Context, sess types.Session) error {
	if sess.Status == "" {
		sess.Status = types.StatusActive
	}
	transcript, err := json.Marshal(sess.Transcript)
	if err != nil {
		return fmt.Errorf("postgres store: create session: marshal transcript: %w", err)
	}

	const q = `
		INSERT INTO sessions
		    (id, job_title, seniority, language, num_questions, mode, status,
		     questions_asked, transcript, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = s.pool.Exec(ctx, q,
		sess.ID, sess.JobTitle, sess.Seniority, sess.Language, sess.NumQuestions,
		sess.Mode, sess.Status, sess.QuestionsAsked, transcript, sess.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres store: create session: %w: %v", store.ErrValidation, err)
	}
	return nil
}

// GetSession retrieves a Session by ID. Returns store.ErrNotFound if absent.
func (s *Store) GetSession(ctx context.Context, id string) (*types.Session, error) {
	const q = `
		SELECT id, job_title, seniority, language, num_questions, mode, status,
		       overall_score, summary, transcript, questions_asked, created_at, completed_at
		FROM   sessions
		WHERE  id = $1`

	row := s.pool.QueryRow(ctx, q, id)
	sess, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres store: get session %q: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres store: get session: %w", err)
	}
	return sess, nil
}

// scanSession scans a single sessions row into a types.Session.
func scanSession(row pgx.Row) (*types.Session, error) {
	var (
		sess          types.Session
		summaryBytes  []byte
		transcriptRaw []byte
	)
	if err := row.Scan(
		&sess.ID, &sess.JobTitle, &sess.Seniority, &sess.Language, &sess.NumQuestions,
		&sess.Mode, &sess.Status, &sess.OverallScore, &summaryBytes, &transcriptRaw,
		&sess.QuestionsAsked, &sess.CreatedAt, &sess.CompletedAt,
	); err != nil {
		return nil, err
	}
	if len(summaryBytes) > 0 {
		var r types.Report
		if err := json.Unmarshal(summaryBytes, &r); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
		sess.Summary = &r
	}
	if len(transcriptRaw) > 0 {
		if err := json.Unmarshal(transcriptRaw, &sess.Transcript); err != nil {
			return nil, fmt.Errorf("unmarshal transcript: %w", err)
		}
	}
	return &sess, nil
}
