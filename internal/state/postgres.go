package state

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists user state in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_state (
			user_id TEXT PRIMARY KEY,
			profile_snapshot JSONB NOT NULL DEFAULT '{}'::jsonb,
			active_threads JSONB NOT NULL DEFAULT '[]'::jsonb,
			open_loops JSONB NOT NULL DEFAULT '[]'::jsonb,
			interview_mode TEXT NOT NULL DEFAULT 'guided',
			last_session_id TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init user_state schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (UserState, bool, error) {
	var st UserState
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, profile_snapshot, active_threads, open_loops, interview_mode, last_session_id, updated_at
		 FROM user_state WHERE user_id=$1`,
		userID,
	).Scan(
		&st.UserID,
		&st.ProfileSnapshot,
		&st.ActiveThreads,
		&st.OpenLoops,
		&st.InterviewMode,
		&st.LastSessionID,
		&st.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserState{}, false, nil
	}
	if err != nil {
		return UserState{}, false, fmt.Errorf("get user state: %w", err)
	}
	return st, true, nil
}

func (s *PostgresStore) Put(ctx context.Context, st UserState) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_state (user_id, profile_snapshot, active_threads, open_loops, interview_mode, last_session_id, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (user_id) DO UPDATE SET
			profile_snapshot=EXCLUDED.profile_snapshot,
			active_threads=EXCLUDED.active_threads,
			open_loops=EXCLUDED.open_loops,
			interview_mode=EXCLUDED.interview_mode,
			last_session_id=EXCLUDED.last_session_id,
			updated_at=EXCLUDED.updated_at`,
		st.UserID,
		st.ProfileSnapshot,
		st.ActiveThreads,
		st.OpenLoops,
		st.InterviewMode,
		st.LastSessionID,
		st.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("put user state: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
