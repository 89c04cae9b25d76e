// Package postgres provides a PostgreSQL-backed implementation of
// [store.Store] (component C1, the interview Session Store).
//
// A single [pgxpool.Pool] backs four tables: sessions, questions, answers,
// and transcript_entries. The sessions table additionally carries a
// denormalized JSONB transcript snapshot column (written by
// AppendOrReplaceTranscript) alongside the normalized transcript_entries
// table, which exists solely to support full-text search over transcript
// content via SearchTranscripts.
//
// Usage:
//
//	st, err := postgres.NewStore(ctx, dsn)
//	if err != nil { … }
//	defer st.Close()
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlSessions = `
CREATE TABLE IF NOT EXISTS sessions (
    id              TEXT         PRIMARY KEY,
    job_title       TEXT         NOT NULL,
    seniority       TEXT         NOT NULL,
    language        TEXT         NOT NULL DEFAULT 'en',
    num_questions   INT          NOT NULL CHECK (num_questions BETWEEN 1 AND 20),
    mode            TEXT         NOT NULL,
    status          TEXT         NOT NULL DEFAULT 'active',
    overall_score   INT          CHECK (overall_score IS NULL OR overall_score BETWEEN 0 AND 100),
    summary         JSONB,
    transcript      JSONB        NOT NULL DEFAULT '[]',
    questions_asked INT          NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ  NOT NULL DEFAULT now(),
    completed_at    TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions (status);
`

const ddlQuestions = `
CREATE TABLE IF NOT EXISTS questions (
    id          TEXT  PRIMARY KEY,
    session_id  TEXT  NOT NULL REFERENCES sessions (id) ON DELETE CASCADE,
    index       INT   NOT NULL,
    kind        TEXT  NOT NULL,
    competency  TEXT  NOT NULL DEFAULT '',
    text        TEXT  NOT NULL,
    UNIQUE (session_id, index)
);

CREATE INDEX IF NOT EXISTS idx_questions_session_id ON questions (session_id);
`

const ddlAnswers = `
CREATE TABLE IF NOT EXISTS answers (
    id          TEXT        PRIMARY KEY,
    question_id TEXT        NOT NULL UNIQUE REFERENCES questions (id) ON DELETE CASCADE,
    text        TEXT        NOT NULL,
    relevance   INT         NOT NULL CHECK (relevance BETWEEN 0 AND 100),
    clarity     INT         NOT NULL CHECK (clarity BETWEEN 0 AND 100),
    structure   INT         NOT NULL CHECK (structure BETWEEN 0 AND 100),
    impact      INT         NOT NULL CHECK (impact BETWEEN 0 AND 100),
    overall     INT         NOT NULL CHECK (overall BETWEEN 0 AND 100),
    coach_notes TEXT        NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const ddlTranscriptEntries = `
CREATE TABLE IF NOT EXISTS transcript_entries (
    id          BIGSERIAL    PRIMARY KEY,
    session_id  TEXT         NOT NULL REFERENCES sessions (id) ON DELETE CASCADE,
    role        TEXT         NOT NULL,
    text        TEXT         NOT NULL,
    timestamp   TIMESTAMPTZ  NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transcript_entries_session_id
    ON transcript_entries (session_id);

CREATE INDEX IF NOT EXISTS idx_transcript_entries_session_ts
    ON transcript_entries (session_id, timestamp);

CREATE INDEX IF NOT EXISTS idx_transcript_entries_fts
    ON transcript_entries USING GIN (to_tsvector('english', text));
`

// Migrate creates or ensures all required tables and indexes exist. It is
// idempotent (CREATE TABLE/INDEX IF NOT EXISTS) and safe to call on every
// application start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		ddlSessions,
		ddlQuestions,
		ddlAnswers,
		ddlTranscriptEntries,
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migrate: %w", err)
		}
	}
	return nil
}
