package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/weavehq/weave/internal/state"
)

const schema = `
CREATE TABLE IF NOT EXISTS project_state (
	key        TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// SQLiteBackend persists ProjectState as a JSON document, one row per key
// in the project_state table, using the pure-Go modernc.org/sqlite driver so the binary
// stays cgo-free.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (creating if absent) a SQLite database at path and
// ensures the project_state table exists.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Save implements Backend.
func (b *SQLiteBackend) Save(key string, s *state.ProjectState) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	_, err = b.db.Exec(
		`INSERT INTO project_state (key, document, updated_at) VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		key, string(data),
	)
	if err != nil {
		return fmt.Errorf("save state %s: %w", key, err)
	}
	return nil
}

// Load implements Backend.
func (b *SQLiteBackend) Load(key string) (*state.ProjectState, error) {
	var doc string
	err := b.db.QueryRow(`SELECT document FROM project_state WHERE key = ?`, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no state saved for key %s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("load state %s: %w", key, err)
	}
	var s state.ProjectState
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		return nil, fmt.Errorf("unmarshal state %s: %w", key, err)
	}
	return &s, nil
}

// Exists implements Backend.
func (b *SQLiteBackend) Exists(key string) (bool, error) {
	var count int
	err := b.db.QueryRow(`SELECT COUNT(1) FROM project_state WHERE key = ?`, key).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check state %s: %w", key, err)
	}
	return count > 0, nil
}

// Close implements Backend.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
