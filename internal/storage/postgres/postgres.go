// Package postgres provides the PostgreSQL roll-log backend using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dicetool/internal/config"
	"github.com/cory-johannsen/dicetool/internal/storage"
)

// Pool wraps a pgx connection pool with health-check and lifecycle methods.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool creates a PostgreSQL connection pool from the given configuration.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// Health checks that the database answers within timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}

// LogRepository stores each roll log as one JSONB document in roll_logs.
type LogRepository struct {
	db *pgxpool.Pool
}

// NewLogRepository creates a LogRepository backed by db.
//
// Precondition: db must be an open pool whose schema is migrated.
func NewLogRepository(db *pgxpool.Pool) *LogRepository {
	return &LogRepository{db: db}
}

// Load returns the document stored under key.
//
// Postcondition: Returns storage.ErrKeyNotFound when no row exists.
func (r *LogRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT payload::text FROM roll_logs WHERE key = $1`, key,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, fmt.Errorf("querying roll log: %w", err)
	}
	return payload, nil
}

// Save upserts data under key. data must be a JSON document.
func (r *LogRepository) Save(ctx context.Context, key string, data []byte) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO roll_logs (key, payload, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`,
		key, string(data),
	)
	if err != nil {
		return fmt.Errorf("saving roll log: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *LogRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM roll_logs WHERE key = $1`, key); err != nil {
		return fmt.Errorf("deleting roll log: %w", err)
	}
	return nil
}
