package learning

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/callsift/callsift/internal/store"
)

// Guard wraps a store.Store and makes all operations non-fatal. If the
// underlying store fails, operations return defaults and log warnings
// instead of propagating errors.
//
// Phrase learning is a side channel of detection: a database restart or a
// locked file must never fail a batch run. The IsDegraded method reports
// whether the store is currently experiencing failures.
//
// Guard implements store.Store. All methods are safe for concurrent use.
type Guard struct {
	store    store.Store
	degraded atomic.Bool
}

// NewGuard creates a new Guard wrapping the given store.
func NewGuard(st store.Store) *Guard {
	return &Guard{store: st}
}

// IsDegraded reports whether the most recent operation on the underlying
// store failed.
func (g *Guard) IsDegraded() bool {
	return g.degraded.Load()
}

// observe updates the degraded flag. ErrNotFound is a normal outcome, not a
// failure.
func (g *Guard) observe(op string, err error) {
	if err == nil || errors.Is(err, store.ErrNotFound) {
		g.degraded.Store(false)
		return
	}
	g.degraded.Store(true)
	slog.Warn("learning store degraded, swallowing error", "op", op, "error", err)
}

// LoadPhrases implements store.Store. On failure an empty slice is returned.
func (g *Guard) LoadPhrases(ctx context.Context) ([]store.PhraseEntry, error) {
	entries, err := g.store.LoadPhrases(ctx)
	g.observe("LoadPhrases", err)
	if err != nil {
		return nil, nil
	}
	return entries, nil
}

// SavePhraseEmbedding implements store.Store. Failures are swallowed.
func (g *Guard) SavePhraseEmbedding(ctx context.Context, category, phrase string, embedding []float32) error {
	g.observe("SavePhraseEmbedding", g.store.SavePhraseEmbedding(ctx, category, phrase, embedding))
	return nil
}

// NearestApproved implements store.Store. On failure an empty result is
// returned.
func (g *Guard) NearestApproved(ctx context.Context, embedding []float32) (string, float64, error) {
	phrase, sim, err := g.store.NearestApproved(ctx, embedding)
	g.observe("NearestApproved", err)
	if err != nil {
		return "", 0, nil
	}
	return phrase, sim, nil
}

// UpsertPendingPhrase implements store.Store. On failure nil, nil is
// returned; callers must treat a nil row as "not recorded".
func (g *Guard) UpsertPendingPhrase(ctx context.Context, p *store.PendingPhrase) (*store.PendingPhrase, error) {
	merged, err := g.store.UpsertPendingPhrase(ctx, p)
	g.observe("UpsertPendingPhrase", err)
	if err != nil {
		return nil, nil
	}
	return merged, nil
}

// GetPendingByPhrase implements store.Store. ErrNotFound passes through;
// other failures surface as ErrNotFound so callers fall back to an insert.
func (g *Guard) GetPendingByPhrase(ctx context.Context, phrase string) (*store.PendingPhrase, error) {
	p, err := g.store.GetPendingByPhrase(ctx, phrase)
	g.observe("GetPendingByPhrase", err)
	if err != nil {
		return nil, store.ErrNotFound
	}
	return p, nil
}

// ListPending implements store.Store. On failure an empty slice is returned.
func (g *Guard) ListPending(ctx context.Context, limit int) ([]store.PendingPhrase, error) {
	out, err := g.store.ListPending(ctx, limit)
	g.observe("ListPending", err)
	if err != nil {
		return nil, nil
	}
	return out, nil
}

// ApprovePhrase implements store.Store. On failure nil, nil is returned;
// callers must treat a nil row as "not approved".
func (g *Guard) ApprovePhrase(ctx context.Context, id string) (*store.PendingPhrase, error) {
	p, err := g.store.ApprovePhrase(ctx, id)
	g.observe("ApprovePhrase", err)
	if err != nil {
		return nil, nil
	}
	return p, nil
}

// RejectPhrase implements store.Store. Failures are swallowed.
func (g *Guard) RejectPhrase(ctx context.Context, id, reason string) error {
	g.observe("RejectPhrase", g.store.RejectPhrase(ctx, id, reason))
	return nil
}

// AddBlacklist implements store.Store. Failures are swallowed.
func (g *Guard) AddBlacklist(ctx context.Context, phrase, category, reason string) error {
	g.observe("AddBlacklist", g.store.AddBlacklist(ctx, phrase, category, reason))
	return nil
}

// IsBlacklisted implements store.Store. On failure false is returned, which
// errs on the side of keeping the observation.
func (g *Guard) IsBlacklisted(ctx context.Context, phrase string) (bool, error) {
	blocked, err := g.store.IsBlacklisted(ctx, phrase)
	g.observe("IsBlacklisted", err)
	if err != nil {
		return false, nil
	}
	return blocked, nil
}

// MergeDuplicatePending implements store.Store. On failure 0 is returned.
func (g *Guard) MergeDuplicatePending(ctx context.Context) (int, error) {
	n, err := g.store.MergeDuplicatePending(ctx)
	g.observe("MergeDuplicatePending", err)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// CategoryPerformance implements store.Store. On failure a zero value is
// returned.
func (g *Guard) CategoryPerformance(ctx context.Context, category string) (store.CategoryPerformance, error) {
	perf, err := g.store.CategoryPerformance(ctx, category)
	g.observe("CategoryPerformance", err)
	if err != nil {
		return store.CategoryPerformance{Category: category}, nil
	}
	return perf, nil
}

// LoadSettings implements store.Store. On failure an empty map is returned.
func (g *Guard) LoadSettings(ctx context.Context, userID string) (map[string]string, error) {
	settings, err := g.store.LoadSettings(ctx, userID)
	g.observe("LoadSettings", err)
	if err != nil {
		return map[string]string{}, nil
	}
	return settings, nil
}

// SaveSettings implements store.Store. Failures are swallowed.
func (g *Guard) SaveSettings(ctx context.Context, userID string, values map[string]string) error {
	g.observe("SaveSettings", g.store.SaveSettings(ctx, userID, values))
	return nil
}

// Close implements store.Store. Close errors do propagate; shutdown should
// not hide a broken flush.
func (g *Guard) Close() error {
	return g.store.Close()
}

// Compile-time check that Guard satisfies store.Store.
var _ store.Store = (*Guard)(nil)
