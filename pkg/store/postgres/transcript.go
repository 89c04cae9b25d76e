package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/hirecoach/interviewcore/pkg/store"
	"github.com/hirecoach/interviewcore/pkg/types"
)

// AppendOrReplaceTranscript idempotently overwrites the full transcript
// snapshot for sessionID and updates its questions-asked counter. A
// SELECT ... FOR UPDATE takes a row-level lock on the session for the
// duration of the write, so concurrent snapshot calls from the same agent
// serialize rather than interleave.
func (s *Store) AppendOrReplaceTranscript(ctx context.Context, sessionID string, entries []types.TranscriptEntry, questionsAsked int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres store: append transcript: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `SELECT true FROM sessions WHERE id = $1 FOR UPDATE`, sessionID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("postgres store: append transcript for %q: %w", sessionID, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("postgres store: append transcript: lock session: %w", err)
	}

	snapshot, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("postgres store: append transcript: marshal: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE sessions SET transcript = $1, questions_asked = $2 WHERE id = $3`,
		snapshot, questionsAsked, sessionID,
	); err != nil {
		return fmt.Errorf("postgres store: append transcript: update snapshot: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM transcript_entries WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("postgres store: append transcript: clear entries: %w", err)
	}

	const insertEntry = `
		INSERT INTO transcript_entries (session_id, role, text, timestamp)
		VALUES ($1, $2, $3, $4)`
	for _, e := range entries {
		if _, err := tx.Exec(ctx, insertEntry, sessionID, e.Role, e.Text, e.Timestamp); err != nil {
			return fmt.Errorf("postgres store: append transcript: insert entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres store: append transcript: commit: %w", err)
	}
	return nil
}

// SearchTranscripts performs a PostgreSQL full-text search over transcript
// text, refined by opts. The query is passed to plainto_tsquery so no
// special operator syntax is required.
func (s *Store) SearchTranscripts(ctx context.Context, query string, opts store.SearchOpts) ([]types.TranscriptEntry, error) {
	args := []any{query} // $1 = FTS query string
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conditions := []string{
		"to_tsvector('english', text) @@ plainto_tsquery('english', $1)",
	}
	if opts.SessionID != "" {
		conditions = append(conditions, "session_id = "+next(opts.SessionID))
	}
	if !opts.After.IsZero() {
		conditions = append(conditions, "timestamp > "+next(opts.After))
	}
	if !opts.Before.IsZero() {
		conditions = append(conditions, "timestamp < "+next(opts.Before))
	}

	q := "SELECT role, text, timestamp\n" +
		"FROM   transcript_entries\n" +
		"WHERE  " + strings.Join(conditions, "\n  AND  ") + "\n" +
		"ORDER  BY timestamp"

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		q += fmt.Sprintf("\nLIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres store: search transcripts: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.TranscriptEntry, error) {
		var e types.TranscriptEntry
		err := row.Scan(&e.Role, &e.Text, &e.Timestamp)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres store: search transcripts: scan: %w", err)
	}
	if entries == nil {
		entries = []types.TranscriptEntry{}
	}
	return entries, nil
}
