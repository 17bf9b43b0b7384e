package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the subset of *pgxpool.Pool the state and session stores rely on.
type Pool interface {
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

const applicationName = "unera-backend"

// Option tunes the pool created by Connect.
type Option func(*options)

type options struct {
	maxConns     int32
	pingAttempts int
	pingBackoff  time.Duration
}

// WithMaxConns caps the number of pooled connections.
func WithMaxConns(n int32) Option {
	return func(o *options) { o.maxConns = n }
}

// WithPing makes Connect verify the server is reachable, retrying attempts times with a
// linear backoff.
func WithPing(attempts int, backoff time.Duration) Option {
	return func(o *options) {
		o.pingAttempts = attempts
		o.pingBackoff = backoff
	}
}

// Connect initialises a PostgreSQL connection pool using the provided database URL.
func Connect(ctx context.Context, databaseURL string, opts ...Option) (*pgxpool.Pool, error) {
	o := options{pingAttempts: 3, pingBackoff: 500 * time.Millisecond}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}
	if o.maxConns > 0 {
		cfg.MaxConns = o.maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := ping(ctx, pool, o); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func ping(ctx context.Context, pool *pgxpool.Pool, o options) error {
	var err error
	for attempt := 1; attempt <= o.pingAttempts; attempt++ {
		if err = pool.Ping(ctx); err == nil {
			return nil
		}
		if attempt == o.pingAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping database: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * o.pingBackoff):
		}
	}
	if err != nil {
		return fmt.Errorf("ping database after %d attempts: %w", o.pingAttempts, err)
	}
	return nil
}
