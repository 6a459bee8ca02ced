package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/callsift/callsift/internal/store"
	"github.com/callsift/callsift/pkg/provider/embeddings"
)

// LoadPhrases implements store.Store.
func (s *Store) LoadPhrases(ctx context.Context) ([]store.PhraseEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, phrase, embedding, created_at FROM phrases ORDER BY category, phrase`)
	if err != nil {
		return nil, fmt.Errorf("load phrases: %w", err)
	}
	defer rows.Close()

	var entries []store.PhraseEntry
	for rows.Next() {
		var (
			e         store.PhraseEntry
			blob      []byte
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.Category, &e.Phrase, &blob, &createdAt); err != nil {
			return nil, fmt.Errorf("scan phrase: %w", err)
		}
		e.Embedding = decodeVector(blob)
		if t, err := parseTimeString(createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SavePhraseEmbedding implements store.Store.
func (s *Store) SavePhraseEmbedding(ctx context.Context, category, phrase string, embedding []float32) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO phrases (category, phrase, embedding, created_at) VALUES (?, ?, ?, ?)
         ON CONFLICT (category, phrase) DO UPDATE SET embedding = excluded.embedding`,
		category, phrase, encodeVector(embedding), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("save phrase embedding: %w", err)
	}
	return nil
}

// NearestApproved implements store.Store. SQLite has no vector index, so
// this scans every persisted embedding and keeps the best cosine similarity.
func (s *Store) NearestApproved(ctx context.Context, embedding []float32) (string, float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT phrase, embedding FROM phrases WHERE embedding IS NOT NULL`)
	if err != nil {
		return "", 0, fmt.Errorf("nearest approved: %w", err)
	}
	defer rows.Close()

	best := ""
	bestSim := math.Inf(-1)
	for rows.Next() {
		var (
			phrase string
			blob   []byte
		)
		if err := rows.Scan(&phrase, &blob); err != nil {
			return "", 0, fmt.Errorf("scan embedding: %w", err)
		}
		if sim := embeddings.Cosine(embedding, decodeVector(blob)); sim > bestSim {
			best, bestSim = phrase, sim
		}
	}
	if err := rows.Err(); err != nil {
		return "", 0, err
	}
	if best == "" {
		return "", 0, nil
	}
	return best, bestSim, nil
}

// upsertApproved inserts the phrase into the approved catalogue, keeping any
// existing embedding. Runs inside the approval transaction.
func upsertApproved(ctx context.Context, tx *sql.Tx, category, phrase string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO phrases (category, phrase, created_at) VALUES (?, ?, ?)
         ON CONFLICT (category, phrase) DO NOTHING`,
		category, phrase, formatTime(time.Now()))
	return err
}

// encodeVector serializes a vector as little-endian float32s. nil in, nil out.
func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector is the inverse of encodeVector. Truncated blobs yield nil.
func decodeVector(buf []byte) []float32 {
	if len(buf) == 0 || len(buf)%4 != 0 {
		return nil
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}
