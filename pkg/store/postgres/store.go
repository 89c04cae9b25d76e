package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hirecoach/interviewcore/pkg/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is the PostgreSQL-backed implementation of [store.Store]. It holds a
// single [pgxpool.Pool] and is safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store, establishes a connection pool to the
// PostgreSQL database at dsn, and runs [Migrate] to ensure all required
// tables exist.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Ping verifies the store is reachable, for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres store: ping: %w", err)
	}
	return nil
}

// Close releases all connections held by the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
