package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hirecoach/interviewcore/pkg/store"
	"github.com/hirecoach/interviewcore/pkg/types"
)

// CreateQuestions bulk-inserts the Questions for a scripted-mode session in a
// single transaction. Indexes must be unique within the session; a
// duplicate-index violation surfaces as store.ErrValidation.
func (s *Store) CreateQuestions(ctx context.Context, sessionID string, qs []types.Question) error {
	if len(qs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres store: create questions: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		INSERT INTO questions (id, session_id, index, kind, competency, text)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, question := range qs {
		if _, err := tx.Exec(ctx, q,
			question.ID, sessionID, question.Index, question.Kind,
			question.Competency, question.Text,
		); err != nil {
			return fmt.Errorf("postgres store: create questions: %w: %v", store.ErrValidation, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres store: create questions: commit: %w", err)
	}
	return nil
}

// ListQuestions returns all Questions for sessionID, ordered by Index.
func (s *Store) ListQuestions(ctx context.Context, sessionID string) ([]types.Question, error) {
	const q = `
		SELECT id, session_id, index, kind, competency, text
		FROM   questions
		WHERE  session_id = $1
		ORDER  BY index`

	rows, err := s.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("postgres store: list questions: %w", err)
	}
	qs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Question, error) {
		var question types.Question
		err := row.Scan(&question.ID, &question.SessionID, &question.Index,
			&question.Kind, &question.Competency, &question.Text)
		return question, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres store: list questions: scan: %w", err)
	}
	if qs == nil {
		qs = []types.Question{}
	}
	return qs, nil
}

// GetQuestion retrieves a Question by ID. Returns store.ErrNotFound if absent.
func (s *Store) GetQuestion(ctx context.Context, id string) (*types.Question, error) {
	const q = `
		SELECT id, session_id, index, kind, competency, text
		FROM   questions
		WHERE  id = $1`

	var question types.Question
	err := s.pool.QueryRow(ctx, q, id).Scan(&question.ID, &question.SessionID,
		&question.Index, &question.Kind, &question.Competency, &question.Text)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres store: get question %q: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres store: get question: %w", err)
	}
	return &question, nil
}
