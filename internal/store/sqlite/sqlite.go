// Package sqlite implements store.Store on an embedded SQLite database via
// modernc.org/sqlite. It is the default backend: zero external services,
// one file next to the workspace.
//
// Embedding vectors are stored as little-endian float32 BLOBs and
// nearest-approved search is an in-memory scan; installations that need
// indexed vector search use the postgres backend instead.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/callsift/callsift/internal/store"
)

// Ensure Store implements the store.Store interface.
var _ store.Store = (*Store)(nil)

// Store is a SQLite-backed store.Store.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the database at path and applies
// migrations. The parent directory must exist.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite store: path must not be empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS phrases (
        id         INTEGER PRIMARY KEY AUTOINCREMENT,
        category   TEXT NOT NULL,
        phrase     TEXT NOT NULL,
        embedding  BLOB,
        created_at TEXT NOT NULL,
        UNIQUE (category, phrase)
    )`,
	`CREATE TABLE IF NOT EXISTS pending_phrases (
        id              TEXT PRIMARY KEY,
        phrase          TEXT NOT NULL,
        category        TEXT NOT NULL,
        confidence      REAL NOT NULL,
        detection_count INTEGER NOT NULL DEFAULT 1,
        first_seen_at   TEXT NOT NULL,
        last_seen_at    TEXT NOT NULL,
        contexts        TEXT NOT NULL DEFAULT '',
        quality_score   REAL NOT NULL DEFAULT 0,
        canonical_form  TEXT NOT NULL DEFAULT '',
        similar_to      TEXT NOT NULL DEFAULT '',
        status          TEXT NOT NULL DEFAULT 'pending'
    )`,
	`CREATE INDEX IF NOT EXISTS idx_pending_status
        ON pending_phrases (status)`,
	`CREATE TABLE IF NOT EXISTS blacklist (
        phrase     TEXT NOT NULL,
        category   TEXT NOT NULL,
        reason     TEXT NOT NULL DEFAULT '',
        created_at TEXT NOT NULL,
        PRIMARY KEY (phrase, category)
    )`,
	`CREATE TABLE IF NOT EXISTS settings (
        user_id    TEXT NOT NULL,
        key        TEXT NOT NULL,
        value      TEXT NOT NULL,
        updated_at TEXT NOT NULL,
        PRIMARY KEY (user_id, key)
    )`,
}

// applyMigrations creates the schema. Every statement is idempotent, so this
// runs on each open. The unique pending-phrase index is created last, after
// merging any duplicate rows a pre-uniqueness database may carry.
func (s *Store) applyMigrations(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}

	// Databases created before the unique index had a plain one and could
	// accumulate duplicate pending rows.
	if _, err := s.db.ExecContext(ctx,
		`DROP INDEX IF EXISTS idx_pending_phrase_norm`); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	if _, err := s.MergeDuplicatePending(ctx); err != nil {
		return fmt.Errorf("apply migration: merge duplicates: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_pending_phrase_norm
         ON pending_phrases (lower(trim(phrase))) WHERE status = 'pending'`); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
