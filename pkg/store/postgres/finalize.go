package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/hirecoach/interviewcore/pkg/store"
	"github.com/hirecoach/interviewcore/pkg/types"
)

// FinalizeSession conditionally commits report and transitions sessionID to
// types.StatusCompleted, iff its current status is types.StatusActive. If
// zero rows are affected — because a concurrent caller already finalized —
// it re-selects and returns the committed report unchanged (read-after-write
// convergence, spec invariant 5).
func (s *Store) FinalizeSession(ctx context.Context, sessionID string, report types.Report) (*types.Report, error) {
	summary, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("postgres store: finalize session: marshal report: %w", err)
	}

	const q = `
		UPDATE sessions
		SET    summary = $1, overall_score = $2, status = 'completed', completed_at = now()
		WHERE  id = $3 AND status = 'active'
		RETURNING summary`

	var committed []byte
	err = s.pool.QueryRow(ctx, q, summary, report.OverallScore, sessionID).Scan(&committed)
	if err == nil {
		var r types.Report
		if err := json.Unmarshal(committed, &r); err != nil {
			return nil, fmt.Errorf("postgres store: finalize session: unmarshal committed report: %w", err)
		}
		return &r, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres store: finalize session: %w", err)
	}

	// Zero rows affected: either the session is already completed (a
	// concurrent finalize won) or it does not exist.
	existing, getErr := s.GetSession(ctx, sessionID)
	if getErr != nil {
		return nil, fmt.Errorf("postgres store: finalize session: %w", getErr)
	}
	if existing.Summary == nil {
		return nil, fmt.Errorf("postgres store: finalize session %q: status is %q with no summary: %w",
			sessionID, existing.Status, store.ErrConflict)
	}
	return existing.Summary, nil
}

// FailSession transitions sessionID to types.StatusFailed on an
// unrecoverable finalize error, preserving any transcript or partial report
// already present. A no-op if the session is already terminal.
func (s *Store) FailSession(ctx context.Context, sessionID string, reason string) error {
	const q = `
		UPDATE sessions
		SET    status = 'failed', completed_at = now()
		WHERE  id = $1 AND status = 'active'`

	tag, err := s.pool.Exec(ctx, q, sessionID)
	if err != nil {
		return fmt.Errorf("postgres store: fail session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Already terminal (completed or failed) — no-op, per spec.
		return nil
	}
	slog.Warn("session failed", "session_id", sessionID, "reason", reason)
	return nil
}
