// Package postgres implements store.Store on PostgreSQL with pgvector.
//
// It is the optional backend for installations that want indexed vector
// search: approved-phrase embeddings live in a vector(dims) column under an
// HNSW cosine index, so NearestApproved is a single `<=>` query instead of
// the SQLite backend's in-memory scan. The pgvector extension must be
// available in the target database; Migrate installs it via
// CREATE EXTENSION IF NOT EXISTS.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/callsift/callsift/internal/store"
)

// Ensure Store implements the store.Store interface.
var _ store.Store = (*Store)(nil)

// Store is a PostgreSQL-backed store.Store. All operations are safe for
// concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore establishes a connection pool to the database at dsn, registers
// pgvector types on every connection, and migrates the schema.
//
// embeddingDimensions must match the output dimension of the configured
// embeddings provider (e.g., 1536 for OpenAI text-embedding-3-small).
// Changing it after the first migration requires a manual schema change.
func NewStore(ctx context.Context, dsn string, embeddingDimensions int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}

	// Register pgvector types on every new connection so the embedding
	// column can be scanned into and inserted from pgvector.Vector values.
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if err := Migrate(ctx, pool, embeddingDimensions); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// ddlPhrases returns the approved-phrase DDL with the embedding dimension
// substituted. The dimension is baked into the column type at creation time.
func ddlPhrases(embeddingDimensions int) string {
	return fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS phrases (
    id         BIGSERIAL    PRIMARY KEY,
    category   TEXT         NOT NULL,
    phrase     TEXT         NOT NULL,
    embedding  vector(%d),
    created_at TIMESTAMPTZ  NOT NULL DEFAULT now(),
    UNIQUE (category, phrase)
);

CREATE INDEX IF NOT EXISTS idx_phrases_embedding
    ON phrases USING hnsw (embedding vector_cosine_ops);
`, embeddingDimensions)
}

const ddlLearning = `
CREATE TABLE IF NOT EXISTS pending_phrases (
    id              TEXT              PRIMARY KEY,
    phrase          TEXT              NOT NULL,
    category        TEXT              NOT NULL,
    confidence      DOUBLE PRECISION  NOT NULL,
    detection_count INTEGER           NOT NULL DEFAULT 1,
    first_seen_at   TIMESTAMPTZ       NOT NULL,
    last_seen_at    TIMESTAMPTZ       NOT NULL,
    contexts        TEXT              NOT NULL DEFAULT '',
    quality_score   DOUBLE PRECISION  NOT NULL DEFAULT 0,
    canonical_form  TEXT              NOT NULL DEFAULT '',
    similar_to      TEXT              NOT NULL DEFAULT '',
    status          TEXT              NOT NULL DEFAULT 'pending'
);

CREATE INDEX IF NOT EXISTS idx_pending_status
    ON pending_phrases (status);

CREATE TABLE IF NOT EXISTS blacklist (
    phrase     TEXT         NOT NULL,
    category   TEXT         NOT NULL,
    reason     TEXT         NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ  NOT NULL DEFAULT now(),
    PRIMARY KEY (phrase, category)
);

CREATE TABLE IF NOT EXISTS settings (
    user_id    TEXT         NOT NULL,
    key        TEXT         NOT NULL,
    value      TEXT         NOT NULL,
    updated_at TIMESTAMPTZ  NOT NULL DEFAULT now(),
    PRIMARY KEY (user_id, key)
);
`

// Migrate creates or ensures all required tables, indexes, and extensions.
// Idempotent, safe to run on every application start. The unique
// pending-phrase index is created last, after merging any duplicate rows a
// pre-uniqueness database may carry.
func Migrate(ctx context.Context, pool *pgxpool.Pool, embeddingDimensions int) error {
	statements := []string{
		ddlPhrases(embeddingDimensions),
		ddlLearning,
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
	}

	if _, err := pool.Exec(ctx,
		`DROP INDEX IF EXISTS idx_pending_phrase_norm`); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	if _, err := (&Store{pool: pool}).MergeDuplicatePending(ctx); err != nil {
		return fmt.Errorf("postgres migrate: merge duplicates: %w", err)
	}
	if _, err := pool.Exec(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_pending_phrase_norm
         ON pending_phrases (lower(btrim(phrase))) WHERE status = 'pending'`); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

// LoadPhrases implements store.Store.
func (s *Store) LoadPhrases(ctx context.Context) ([]store.PhraseEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, category, phrase, embedding, created_at FROM phrases ORDER BY category, phrase`)
	if err != nil {
		return nil, fmt.Errorf("load phrases: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.PhraseEntry, error) {
		var (
			e   store.PhraseEntry
			vec *pgvector.Vector
		)
		if err := row.Scan(&e.ID, &e.Category, &e.Phrase, &vec, &e.CreatedAt); err != nil {
			return store.PhraseEntry{}, err
		}
		if vec != nil {
			e.Embedding = vec.Slice()
		}
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load phrases: scan rows: %w", err)
	}
	return entries, nil
}

// SavePhraseEmbedding implements store.Store.
func (s *Store) SavePhraseEmbedding(ctx context.Context, category, phrase string, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO phrases (category, phrase, embedding, created_at) VALUES ($1, $2, $3, $4)
         ON CONFLICT (category, phrase) DO UPDATE SET embedding = EXCLUDED.embedding`,
		category, phrase, vec, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save phrase embedding: %w", err)
	}
	return nil
}

// NearestApproved implements store.Store. The HNSW index makes this a single
// ordered `<=>` scan; cosine distance converts to similarity as 1 - d.
func (s *Store) NearestApproved(ctx context.Context, embedding []float32) (string, float64, error) {
	vec := pgvector.NewVector(embedding)
	var (
		phrase   string
		distance float64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT phrase, embedding <=> $1 AS distance
         FROM phrases WHERE embedding IS NOT NULL
         ORDER BY distance LIMIT 1`, vec).Scan(&phrase, &distance)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("nearest approved: %w", err)
	}
	return phrase, 1 - distance, nil
}
