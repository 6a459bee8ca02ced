package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/callsift/callsift/internal/store"
)

const pendingColumns = "id, phrase, category, confidence, detection_count, first_seen_at, last_seen_at, contexts, quality_score, canonical_form, similar_to, status"

// UpsertPendingPhrase implements store.Store. The merge rides on the partial
// unique index over lower(trim(phrase)), so two concurrent observations of
// the same phrase collapse into one row inside SQLite rather than racing a
// lookup in Go.
func (s *Store) UpsertPendingPhrase(ctx context.Context, p *store.PendingPhrase) (*store.PendingPhrase, error) {
	if p == nil {
		return nil, errors.New("pending phrase is nil")
	}
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO pending_phrases (`+pendingColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (lower(trim(phrase))) WHERE status = 'pending' DO UPDATE SET
            detection_count = pending_phrases.detection_count + excluded.detection_count,
            confidence = max(pending_phrases.confidence, excluded.confidence),
            first_seen_at = min(pending_phrases.first_seen_at, excluded.first_seen_at),
            last_seen_at = max(pending_phrases.last_seen_at, excluded.last_seen_at),
            contexts = CASE
                WHEN excluded.contexts = '' THEN pending_phrases.contexts
                WHEN pending_phrases.contexts = '' THEN excluded.contexts
                WHEN instr(pending_phrases.contexts, excluded.contexts) > 0 THEN pending_phrases.contexts
                ELSE substr(pending_phrases.contexts || ' | ' || excluded.contexts, 1, 500)
            END,
            quality_score = max(pending_phrases.quality_score, excluded.quality_score),
            canonical_form = excluded.canonical_form,
            similar_to = CASE
                WHEN pending_phrases.similar_to = '' THEN excluded.similar_to
                ELSE pending_phrases.similar_to
            END
         RETURNING `+pendingColumns,
		p.ID, p.Phrase, p.Category, p.Confidence, p.DetectionCount,
		formatTime(p.FirstSeenAt), formatTime(p.LastSeenAt),
		p.Contexts, p.QualityScore, p.CanonicalForm, p.SimilarTo, p.Status)
	merged, err := scanPending(row)
	if err != nil {
		return nil, fmt.Errorf("upsert pending phrase: %w", err)
	}
	return merged, nil
}

// GetPendingByPhrase implements store.Store. Dedup is on the normalized
// phrase alone; category is deliberately ignored.
func (s *Store) GetPendingByPhrase(ctx context.Context, phrase string) (*store.PendingPhrase, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pendingColumns+` FROM pending_phrases
         WHERE lower(trim(phrase)) = lower(trim(?)) AND status = ?
         ORDER BY detection_count DESC LIMIT 1`,
		phrase, store.StatusPending)
	p, err := scanPending(row)
	if errors.Is(err, sql.ErrNoRows) {
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
        WHERE status = ? ORDER BY quality_score DESC, detection_count DESC`
	args := []any{store.StatusPending}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	var out []store.PendingPhrase
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// ApprovePhrase implements store.Store.
func (s *Store) ApprovePhrase(ctx context.Context, id string) (*store.PendingPhrase, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("approve phrase: begin: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+pendingColumns+` FROM pending_phrases WHERE id = ?`, id)
	p, err := scanPending(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("approve phrase: load: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE pending_phrases SET status = ? WHERE id = ?`, store.StatusApproved, id); err != nil {
		return nil, fmt.Errorf("approve phrase: update: %w", err)
	}
	if err := upsertApproved(ctx, tx, p.Category, p.Phrase); err != nil {
		return nil, fmt.Errorf("approve phrase: upsert approved: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("approve phrase: commit: %w", err)
	}

	p.Status = store.StatusApproved
	return p, nil
}

// RejectPhrase implements store.Store.
func (s *Store) RejectPhrase(ctx context.Context, id, reason string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reject phrase: begin: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+pendingColumns+` FROM pending_phrases WHERE id = ?`, id)
	p, err := scanPending(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reject phrase: load: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE pending_phrases SET status = ? WHERE id = ?`, store.StatusRejected, id); err != nil {
		return fmt.Errorf("reject phrase: update: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO blacklist (phrase, category, reason, created_at) VALUES (?, ?, ?, ?)
         ON CONFLICT (phrase, category) DO NOTHING`,
		strings.ToLower(strings.TrimSpace(p.Phrase)), p.Category, reason, formatTime(time.Now())); err != nil {
		return fmt.Errorf("reject phrase: blacklist: %w", err)
	}
	return tx.Commit()
}

// AddBlacklist implements store.Store.
func (s *Store) AddBlacklist(ctx context.Context, phrase, category, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blacklist (phrase, category, reason, created_at) VALUES (?, ?, ?, ?)
         ON CONFLICT (phrase, category) DO NOTHING`,
		strings.ToLower(strings.TrimSpace(phrase)), category, reason, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("add blacklist: %w", err)
	}
	return nil
}

// IsBlacklisted implements store.Store.
func (s *Store) IsBlacklisted(ctx context.Context, phrase string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM blacklist WHERE phrase = lower(trim(?))`, phrase).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("is blacklisted: %w", err)
	}
	return count > 0, nil
}

// MergeDuplicatePending implements store.Store. Grouping and merge policy
// live in Go; the transaction only applies the outcome.
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("merge duplicates: begin: %w", err)
	}
	defer tx.Rollback()

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
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM pending_phrases WHERE id = ?`, dup.ID); err != nil {
				return 0, fmt.Errorf("merge duplicates: delete: %w", err)
			}
			removed++
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE pending_phrases
             SET detection_count = ?, contexts = ?, first_seen_at = ?, last_seen_at = ?
             WHERE id = ?`,
			keep.DetectionCount, keep.Contexts,
			formatTime(keep.FirstSeenAt), formatTime(keep.LastSeenAt), keep.ID); err != nil {
			return 0, fmt.Errorf("merge duplicates: update: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("merge duplicates: commit: %w", err)
	}
	return removed, nil
}

// CategoryPerformance implements store.Store.
func (s *Store) CategoryPerformance(ctx context.Context, category string) (store.CategoryPerformance, error) {
	perf := store.CategoryPerformance{Category: category}
	err := s.db.QueryRowContext(ctx,
		`SELECT
            COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
         FROM pending_phrases WHERE category = ?`,
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
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM settings WHERE user_id = ?`, userID)
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
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save settings: begin: %w", err)
	}
	defer tx.Rollback()

	now := formatTime(time.Now())
	for k, v := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (user_id, key, value, updated_at) VALUES (?, ?, ?, ?)
             ON CONFLICT (user_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			userID, k, v, now); err != nil {
			return fmt.Errorf("save setting %q: %w", k, err)
		}
	}
	return tx.Commit()
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

func scanPending(scanner interface{ Scan(dest ...any) error }) (*store.PendingPhrase, error) {
	var (
		p            store.PendingPhrase
		firstSeenRaw string
		lastSeenRaw  string
	)
	if err := scanner.Scan(
		&p.ID,
		&p.Phrase,
		&p.Category,
		&p.Confidence,
		&p.DetectionCount,
		&firstSeenRaw,
		&lastSeenRaw,
		&p.Contexts,
		&p.QualityScore,
		&p.CanonicalForm,
		&p.SimilarTo,
		&p.Status,
	); err != nil {
		return nil, err
	}
	if t, err := parseTimeString(firstSeenRaw); err == nil {
		p.FirstSeenAt = t
	}
	if t, err := parseTimeString(lastSeenRaw); err == nil {
		p.LastSeenAt = t
	}
	return &p, nil
}
