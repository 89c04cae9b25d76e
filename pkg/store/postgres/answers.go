package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hirecoach/interviewcore/pkg/store"
	"github.com/hirecoach/interviewcore/pkg/types"
)

// pgUniqueViolation is the SQLSTATE code Postgres returns for a unique
// constraint violation.
const pgUniqueViolation = "23505"

// CreateAnswer writes an Answer for a Question that does not yet have one.
// The UNIQUE constraint on answers.question_id enforces the write-once
// invariant; a violation is translated to store.ErrConflict.
func (s *Store) CreateAnswer(ctx context.Context, a types.Answer) error {
	const q = `
		INSERT INTO answers
		    (id, question_id, text, relevance, clarity, structure, impact, overall, coach_notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.pool.Exec(ctx, q,
		a.ID, a.QuestionID, a.Text, a.Relevance, a.Clarity, a.Structure,
		a.Impact, a.Overall, a.CoachNotes, a.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("postgres store: create answer for question %q: %w", a.QuestionID, store.ErrConflict)
		}
		return fmt.Errorf("postgres store: create answer: %w: %v", store.ErrValidation, err)
	}
	return nil
}

// GetAnswer retrieves the Answer for a Question by Question ID. Returns
// store.ErrNotFound if the Question has not yet been answered.
func (s *Store) GetAnswer(ctx context.Context, questionID string) (*types.Answer, error) {
	const q = `
		SELECT id, question_id, text, relevance, clarity, structure, impact, overall, coach_notes, created_at
		FROM   answers
		WHERE  question_id = $1`

	var a types.Answer
	err := s.pool.QueryRow(ctx, q, questionID).Scan(&a.ID, &a.QuestionID, &a.Text,
		&a.Relevance, &a.Clarity, &a.Structure, &a.Impact, &a.Overall, &a.CoachNotes, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres store: get answer for question %q: %w", questionID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres store: get answer: %w", err)
	}
	return &a, nil
}

// ListAnswers returns all Answers for the Questions belonging to sessionID,
// in Question.Index order.
func (s *Store) ListAnswers(ctx context.Context, sessionID string) ([]types.Answer, error) {
	const q = `
		SELECT a.id, a.question_id, a.text, a.relevance, a.clarity, a.structure,
		       a.impact, a.overall, a.coach_notes, a.created_at
		FROM   answers a
		JOIN   questions q ON q.id = a.question_id
		WHERE  q.session_id = $1
		ORDER  BY q.index`

	rows, err := s.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("postgres store: list answers: %w", err)
	}
	answers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Answer, error) {
		var a types.Answer
		err := row.Scan(&a.ID, &a.QuestionID, &a.Text, &a.Relevance, &a.Clarity,
			&a.Structure, &a.Impact, &a.Overall, &a.CoachNotes, &a.CreatedAt)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres store: list answers: scan: %w", err)
	}
	if answers == nil {
		answers = []types.Answer{}
	}
	return answers, nil
}
