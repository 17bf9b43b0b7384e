package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/unera/backend/internal/db"
)

// PostgresKV stores persisted state in the local_state table.
type PostgresKV struct {
	pool db.Pool
}

// NewPostgresKV constructs a PostgreSQL-backed store.
func NewPostgresKV(pool db.Pool) *PostgresKV {
	return &PostgresKV{pool: pool}
}

// Get returns the value stored under key.
func (p *PostgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var value []byte
	row := conn.QueryRow(ctx, `
        SELECT value
        FROM local_state
        WHERE key = $1
    `, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select local state %s: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key.
func (p *PostgresKV) Set(ctx context.Context, key string, value []byte) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO local_state (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key)
        DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
    `, key, value)
	if err != nil {
		return fmt.Errorf("upsert local state %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (p *PostgresKV) Delete(ctx context.Context, key string) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `DELETE FROM local_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete local state %s: %w", key, err)
	}
	return nil
}

var _ KV = (*PostgresKV)(nil)
