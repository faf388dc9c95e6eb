// Package local implements the local-only backend: every collection is a JSON
// list stored under one key of a SQLite key/value table, the same way a browser
// keeps it in local storage.
package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const kvSchemaSQL = `
CREATE TABLE IF NOT EXISTS local_storage (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// KV is a durable string-keyed byte store.
type KV struct {
	conn *sql.DB
	path string
}

// OpenKV opens (or creates) the SQLite file at path and applies the schema.
func OpenKV(path string) (*KV, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("local: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("local: ping: %w", err)
	}
	if _, err := conn.Exec(kvSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("local: apply schema: %w", err)
	}
	return &KV{conn: conn, path: path}, nil
}

// Path returns the database file path.
func (kv *KV) Path() string { return kv.path }

// Close closes the underlying database connection.
func (kv *KV) Close() error {
	return kv.conn.Close()
}

// Get returns the value stored under key. ok is false when the key is absent.
func (kv *KV) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	err = kv.conn.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("local: get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key.
func (kv *KV) Set(ctx context.Context, key string, value []byte) error {
	if _, err := kv.conn.ExecContext(ctx, upsertSQL, key, value); err != nil {
		return fmt.Errorf("local: set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Removing an absent key is not an error.
func (kv *KV) Delete(ctx context.Context, key string) error {
	if _, err := kv.conn.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, key); err != nil {
		return fmt.Errorf("local: delete %s: %w", key, err)
	}
	return nil
}

// Update reads key, passes the current value (nil when absent) to fn and
// stores what fn returns, all inside one transaction. It returns the new value.
func (kv *KV) Update(ctx context.Context, key string, fn func(cur []byte) ([]byte, error)) ([]byte, error) {
	tx, err := kv.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("local: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var cur []byte
	err = tx.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&cur)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("local: read %s: %w", key, err)
	}

	next, err := fn(cur)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, upsertSQL, key, next); err != nil {
		return nil, fmt.Errorf("local: write %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("local: commit: %w", err)
	}
	return next, nil
}

const upsertSQL = `
INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
