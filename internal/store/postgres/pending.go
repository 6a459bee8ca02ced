package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/callsift/callsift/internal/store"
)

const pendingColumns = "id, phrase, category, confidence, detection_count, first_seen_at, last_seen_at, contexts, quality_score, canonical_form, similar_to, status"

// UpsertPendingPhrase implements store.Store. The merge rides on the partial
// unique index over lower(btrim(phrase)), so two concurrent observations of
// the same phrase collapse into one row inside PostgreSQL rather than racing
// a lookup in Go.
func (s *Store) UpsertPendingPhrase(ctx context.Context, p *store.PendingPhrase) (*store.PendingPhrase, error) {
	if p == nil {
		return nil, errors.New("pending phrase is nil")
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO pending_phrases (`+pendingColumns+`)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
         ON CONFLICT (lower(btrim(phrase))) WHERE status = 'pending' DO UPDATE SET
            detection_count = pending_phrases.detection_count + EXCLUDED.detection_count,
            confidence = GREATEST(pending_phrases.confidence, EXCLUDED.confidence),
            first_seen_at = LEAST(pending_phrases.first_seen_at, EXCLUDED.first_seen_at),
            last_seen_at = GREATEST(pending_phrases.last_seen_at, EXCLUDED.last_seen_at),
            contexts = CASE
                WHEN EXCLUDED.contexts = '' THEN pending_phrases.contexts
                WHEN pending_phrases.contexts = '' THEN EXCLUDED.contexts
                WHEN position(EXCLUDED.contexts IN pending_phrases.contexts) > 0 THEN pending_phrases.contexts
                ELSE left(pending_phrases.contexts || ' | ' || EXCLUDED.contexts, 500)
            END,
            quality_score = GREATEST(pending_phrases.quality_score, EXCLUDED.quality_score),
            canonical_form = EXCLUDED.canonical_form,
            similar_to = CASE
                WHEN pending_phrases.similar_to = '' THEN EXCLUDED.similar_to
                ELSE pending_phrases.similar_to
            END
         RETURNING `+pendingColumns,
		p.ID, p.Phrase, p.Category, p.Confidence, p.DetectionCount,
		p.FirstSeenAt.UTC(), p.LastSeenAt.UTC(),
		p.Contexts, p.QualityScore, p.CanonicalForm, p.SimilarTo, p.Status)
	merged, err := scanPending(row)
	if err != nil {
		return nil, fmt.Errorf("upsert pending phrase: %w", err)
	}
	return merged, nil
}

// GetPendingByPhrase implements store.Store.
func (s *Store) GetPendingByPhrase(ctx context.Context, phrase string) (*store.PendingPhrase, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pendingColumns+` FROM pending_phrases
         WHERE lower(btrim(phrase)) = lower(btrim($1)) AND status = $2
         ORDER BY detection_count DESC LIMIT 1`,
		phrase, store.StatusPending)
	p, err := scanPending(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pending by phrase: %w", err)
	}
	return p, nil
}

// ListPending implements store.Store.
func (s *Store) ListPending(ctx context.Context, limit int) ([]store.PendingPhrase, error) {
	query := `SELECT ` + pendingColumns + ` FROM pending_phrases
        WHERE status = $1 ORDER BY quality_score DESC, detection_count DESC`
	args := []any{store.StatusPending}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.PendingPhrase, error) {
		p, err := scanPending(row)
		if err != nil {
			return store.PendingPhrase{}, err
		}
		return *p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list pending: scan rows: %w", err)
	}
	return out, nil
}

// ApprovePhrase implements store.Store.
func (s *Store) ApprovePhrase(ctx context.Context, id string) (*store.PendingPhrase, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("approve phrase: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+pendingColumns+` FROM pending_phrases WHERE id = $1`, id)
	p, err := scanPending(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("approve phrase: load: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE pending_phrases SET status = $1 WHERE id = $2`, store.StatusApproved, id); err != nil {
		return nil, fmt.Errorf("approve phrase: update: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO phrases (category, phrase) VALUES ($1, $2)
         ON CONFLICT (category, phrase) DO NOTHING`,
		p.Category, p.Phrase); err != nil {
		return nil, fmt.Errorf("approve phrase: upsert approved: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("approve phrase: commit: %w", err)
	}

	p.Status = store.StatusApproved
	return p, nil
}

// RejectPhrase implements store.Store.
func (s *Store) RejectPhrase(ctx context.Context, id, reason string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("reject phrase: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+pendingColumns+` FROM pending_phrases WHERE id = $1`, id)
	p, err := scanPending(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reject phrase: load: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE pending_phrases SET status = $1 WHERE id = $2`, store.StatusRejected, id); err != nil {
		return fmt.Errorf("reject phrase: update: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO blacklist (phrase, category, reason) VALUES ($1, $2, $3)
         ON CONFLICT (phrase, category) DO NOTHING`,
		strings.ToLower(strings.TrimSpace(p.Phrase)), p.Category, reason); err != nil {
		return fmt.Errorf("reject phrase: blacklist: %w", err)
	}
	return tx.Commit(ctx)
}

// AddBlacklist implements store.Store.
func (s *Store) AddBlacklist(ctx context.Context, phrase, category, reason string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO blacklist (phrase, category, reason) VALUES ($1, $2, $3)
         ON CONFLICT (phrase, category) DO NOTHING`,
		strings.ToLower(strings.TrimSpace(phrase)), category, reason)
	if err != nil {
		return fmt.Errorf("add blacklist: %w", err)
	}
	return nil
}

// IsBlacklisted implements store.Store.
func (s *Store) IsBlacklisted(ctx context.Context, phrase string) (bool, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(1) FROM blacklist WHERE phrase = lower(btrim($1))`, phrase).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("is blacklisted: %w", err)
	}
	return count > 0, nil
}

// MergeDuplicatePending implements store.Store. Same merge policy as the
// sqlite backend; grouping happens in Go.
func (s *Store) MergeDuplicatePending(ctx context.Context) (int, error) {
	pending, err := s.ListPending(ctx, 0)
	if err != nil {
		return 0, err
	}

	groups := make(map[string][]store.PendingPhrase)
	for _, p := range pending {
		key := strings.ToLower(strings.TrimSpace(p.Phrase))
		groups[key] = append(groups[key], p)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("merge duplicates: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	removed := 0
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			if group[i].Confidence != group[j].Confidence {
				return group[i].Confidence > group[j].Confidence
			}
			return group[i].DetectionCount > group[j].DetectionCount
		})

		keep := group[0]
		for _, dup := range group[1:] {
			keep.DetectionCount += dup.DetectionCount
			keep.Contexts = mergeContexts(keep.Contexts, dup.Contexts)
			if dup.FirstSeenAt.Before(keep.FirstSeenAt) {
				keep.FirstSeenAt = dup.FirstSeenAt
			}
			if dup.LastSeenAt.After(keep.LastSeenAt) {
				keep.LastSeenAt = dup.LastSeenAt
			}
			if _, err := tx.Exec(ctx,
				`DELETE FROM pending_phrases WHERE id = $1`, dup.ID); err != nil {
				return 0, fmt.Errorf("merge duplicates: delete: %w", err)
			}
			removed++
		}

		if _, err := tx.Exec(ctx,
			`UPDATE pending_phrases
             SET detection_count = $1, contexts = $2, first_seen_at = $3, last_seen_at = $4
             WHERE id = $5`,
			keep.DetectionCount, keep.Contexts,
			keep.FirstSeenAt.UTC(), keep.LastSeenAt.UTC(), keep.ID); err != nil {
			return 0, fmt.Errorf("merge duplicates: update: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("merge duplicates: commit: %w", err)
	}
	return removed, nil
}

// CategoryPerformance implements store.Store.
func (s *Store) CategoryPerformance(ctx context.Context, category string) (store.CategoryPerformance, error) {
	perf := store.CategoryPerformance{Category: category}
	err := s.pool.QueryRow(ctx,
		`SELECT
            COALESCE(SUM(CASE WHEN status = $1 THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN status = $2 THEN 1 ELSE 0 END), 0)
         FROM pending_phrases WHERE category = $3`,
		store.StatusApproved, store.StatusRejected, category).Scan(&perf.Approved, &perf.Rejected)
	if err != nil {
		return perf, fmt.Errorf("category performance: %w", err)
	}
	if total := perf.Approved + perf.Rejected; total > 0 {
		perf.ApprovalRate = float64(perf.Approved) / float64(total)
	}
	return perf, nil
}

// LoadSettings implements store.Store.
func (s *Store) LoadSettings(ctx context.Context, userID string) (map[string]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, value FROM settings WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[k] = v
	}
	return settings, rows.Err()
}

// SaveSettings implements store.Store.
func (s *Store) SaveSettings(ctx context.Context, userID string, values map[string]string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save settings: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for k, v := range values {
		if _, err := tx.Exec(ctx,
			`INSERT INTO settings (user_id, key, value) VALUES ($1, $2, $3)
             ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			userID, k, v); err != nil {
			return fmt.Errorf("save setting %q: %w", k, err)
		}
	}
	return tx.Commit(ctx)
}

// mergeContexts joins two context strings, deduplicating snippets and capping
// the result at 500 chars.
func mergeContexts(a, b string) string {
	const maxLen = 500
	seen := make(map[string]bool)
	var parts []string
	for _, s := range strings.Split(a+" | "+b, " | ") {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		parts = append(parts, s)
	}
	joined := strings.Join(parts, " | ")
	if len(joined) > maxLen {
		joined = joined[:maxLen]
	}
	return joined
}

func scanPending(row pgx.Row) (*store.PendingPhrase, error) {
	var p store.PendingPhrase
	if err := row.Scan(
		&p.ID,
		&p.Phrase,
		&p.Category,
		&p.Confidence,
		&p.DetectionCount,
		&p.FirstSeenAt,
		&p.LastSeenAt,
		&p.Contexts,
		&p.QualityScore,
		&p.CanonicalForm,
		&p.SimilarTo,
		&p.Status,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
