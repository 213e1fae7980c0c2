package turns

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists conversational turns in PostgreSQL.
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
		`CREATE TABLE IF NOT EXISTS turns (
			user_id TEXT NOT NULL,
			sort_key TEXT NOT NULL,
			session_id TEXT NOT NULL,
			ts TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			model_id TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (user_id, sort_key)
		);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init turns schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, t Turn) error {
	// Plain insert only: turns are immutable and a key collision must
	// surface instead of silently overwriting history.
	_, err := s.pool.Exec(ctx,
		`INSERT INTO turns (user_id, sort_key, session_id, ts, role, content, model_id)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.UserID,
		t.SortKey,
		t.SessionID,
		t.Timestamp,
		t.Role,
		t.Content,
		t.ModelID,
	)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (s *PostgresStore) QueryRecent(ctx context.Context, userID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 12
	}

	// Newest-first is the contract here. Unlike a prompt-history query
	// the caller does its own windowing, so rows are not re-reversed.
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, sort_key, session_id, ts, role, content, model_id
		 FROM turns WHERE user_id=$1 ORDER BY sort_key DESC LIMIT $2`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent turns: %w", err)
	}
	defer rows.Close()

	items := make([]Turn, 0, limit)
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.UserID, &t.SortKey, &t.SessionID, &t.Timestamp, &t.Role, &t.Content, &t.ModelID); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn rows: %w", err)
	}

	return items, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
