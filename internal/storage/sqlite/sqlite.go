// Package sqlite provides a single-file roll-log backend on modernc.org/sqlite,
// the local equivalent of a browser's key/value storage.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/dicetool/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT    PRIMARY KEY,
	value      TEXT    NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Backend stores documents in a kv table.
type Backend struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and applies the schema.
//
// Precondition: path must be non-empty; ":memory:" opens a private in-memory database.
// Postcondition: Returns a ready Backend or a non-nil error.
func Open(path string) (*Backend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying sqlite schema: %w", err)
	}
	return &Backend{db: db}, nil
}

// Load returns the document stored under key.
//
// Postcondition: Returns storage.ErrKeyNotFound when no row exists.
func (b *Backend) Load(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, fmt.Errorf("loading %q: %w", key, err)
	}
	return []byte(value), nil
}

// Save upserts data under key.
func (b *Backend) Save(ctx context.Context, key string, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("saving %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (b *Backend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
