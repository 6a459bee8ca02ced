// Package mock provides an in-memory test double for the store.Store
// interface.
//
// Unlike the provider mocks, which replay canned responses, this mock keeps
// real state: pending rows, the approved catalogue, the blacklist, and
// settings all live in maps, so learning and repository tests can exercise
// multi-step flows (observe, dedup, approve, refresh) without a database.
// Err, when set, makes every method fail, which is how guard-degradation
// paths are tested.
package mock

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/callsift/callsift/internal/store"
	"github.com/callsift/callsift/pkg/provider/embeddings"
)

// Ensure Store implements the store.Store interface.
var _ store.Store = (*Store)(nil)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu sync.Mutex

	// Err, if non-nil, is returned by every method.
	Err error

	phrases   map[string]store.PhraseEntry // key: category + "\x00" + phrase
	pending   map[string]store.PendingPhrase
	blacklist map[string]bool // normalized phrase
	settings  map[string]map[string]string

	nextID int64
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		phrases:   make(map[string]store.PhraseEntry),
		pending:   make(map[string]store.PendingPhrase),
		blacklist: make(map[string]bool),
		settings:  make(map[string]map[string]string),
	}
}

func phraseKey(category, phrase string) string {
	return category + "\x00" + phrase
}

func normalize(phrase string) string {
	return strings.ToLower(strings.TrimSpace(phrase))
}

// LoadPhrases implements store.Store.
func (s *Store) LoadPhrases(ctx context.Context) ([]store.PhraseEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]store.PhraseEntry, 0, len(s.phrases))
	for _, e := range s.phrases {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Phrase < out[j].Phrase
	})
	return out, nil
}

// SavePhraseEmbedding implements store.Store.
func (s *Store) SavePhraseEmbedding(ctx context.Context, category, phrase string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	key := phraseKey(category, phrase)
	e, ok := s.phrases[key]
	if !ok {
		s.nextID++
		e = store.PhraseEntry{ID: s.nextID, Category: category, Phrase: phrase}
	}
	e.Embedding = embedding
	s.phrases[key] = e
	return nil
}

// NearestApproved implements store.Store.
func (s *Store) NearestApproved(ctx context.Context, embedding []float32) (string, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", 0, s.Err
	}
	best := ""
	bestSim := -2.0
	for _, e := range s.phrases {
		if e.Embedding == nil {
			continue
		}
		if sim := embeddings.Cosine(embedding, e.Embedding); sim > bestSim {
			best, bestSim = e.Phrase, sim
		}
	}
	if best == "" {
		return "", 0, nil
	}
	return best, bestSim, nil
}

// UpsertPendingPhrase implements store.Store. Mirrors the SQL backends'
// phrase-keyed merge: an observation of an already-pending phrase lands on
// the existing row, never on a second one.
func (s *Store) UpsertPendingPhrase(ctx context.Context, p *store.PendingPhrase) (*store.PendingPhrase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	norm := normalize(p.Phrase)
	for id := range s.pending {
		existing := s.pending[id]
		if existing.ID == p.ID || existing.Status != store.StatusPending || normalize(existing.Phrase) != norm {
			continue
		}
		existing.DetectionCount += p.DetectionCount
		if p.Confidence > existing.Confidence {
			existing.Confidence = p.Confidence
		}
		if p.QualityScore > existing.QualityScore {
			existing.QualityScore = p.QualityScore
		}
		if p.FirstSeenAt.Before(existing.FirstSeenAt) {
			existing.FirstSeenAt = p.FirstSeenAt
		}
		if p.LastSeenAt.After(existing.LastSeenAt) {
			existing.LastSeenAt = p.LastSeenAt
		}
		existing.Contexts = mergeContexts(existing.Contexts, p.Contexts)
		existing.CanonicalForm = p.CanonicalForm
		if existing.SimilarTo == "" {
			existing.SimilarTo = p.SimilarTo
		}
		s.pending[id] = existing
		cp := existing
		return &cp, nil
	}

	s.pending[p.ID] = *p
	cp := *p
	return &cp, nil
}

// mergeContexts joins two context strings, deduplicating snippets and capping
// the result at 500 chars. Same policy as the SQL backends.
func mergeContexts(a, b string) string {
	const maxLen = 500
	switch {
	case b == "":
		return a
	case a == "":
		return b
	case strings.Contains(a, b):
		return a
	}
	joined := a + " | " + b
	if len(joined) > maxLen {
		joined = joined[:maxLen]
	}
	return joined
}

// GetPendingByPhrase implements store.Store.
func (s *Store) GetPendingByPhrase(ctx context.Context, phrase string) (*store.PendingPhrase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	norm := normalize(phrase)
	var found *store.PendingPhrase
	for id := range s.pending {
		p := s.pending[id]
		if p.Status != store.StatusPending || normalize(p.Phrase) != norm {
			continue
		}
		if found == nil || p.DetectionCount > found.DetectionCount {
			cp := p
			found = &cp
		}
	}
	if found == nil {
		return nil, store.ErrNotFound
	}
	return found, nil
}

// ListPending implements store.Store.
func (s *Store) ListPending(ctx context.Context, limit int) ([]store.PendingPhrase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []store.PendingPhrase
	for _, p := range s.pending {
		if p.Status == store.StatusPending {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].QualityScore != out[j].QualityScore {
			return out[i].QualityScore > out[j].QualityScore
		}
		return out[i].DetectionCount > out[j].DetectionCount
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ApprovePhrase implements store.Store.
func (s *Store) ApprovePhrase(ctx context.Context, id string) (*store.PendingPhrase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.pending[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Status = store.StatusApproved
	s.pending[id] = p
	key := phraseKey(p.Category, p.Phrase)
	if _, exists := s.phrases[key]; !exists {
		s.nextID++
		s.phrases[key] = store.PhraseEntry{ID: s.nextID, Category: p.Category, Phrase: p.Phrase}
	}
	cp := p
	return &cp, nil
}

// RejectPhrase implements store.Store.
func (s *Store) RejectPhrase(ctx context.Context, id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	p, ok := s.pending[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Status = store.StatusRejected
	s.pending[id] = p
	s.blacklist[normalize(p.Phrase)] = true
	return nil
}

// AddBlacklist implements store.Store.
func (s *Store) AddBlacklist(ctx context.Context, phrase, category, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.blacklist[normalize(phrase)] = true
	return nil
}

// IsBlacklisted implements store.Store.
func (s *Store) IsBlacklisted(ctx context.Context, phrase string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	return s.blacklist[normalize(phrase)], nil
}

// MergeDuplicatePending implements store.Store.
func (s *Store) MergeDuplicatePending(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	groups := make(map[string][]store.PendingPhrase)
	for _, p := range s.pending {
		if p.Status == store.StatusPending {
			groups[normalize(p.Phrase)] = append(groups[normalize(p.Phrase)], p)
		}
	}
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
			delete(s.pending, dup.ID)
			removed++
		}
		s.pending[keep.ID] = keep
	}
	return removed, nil
}

// CategoryPerformance implements store.Store.
func (s *Store) CategoryPerformance(ctx context.Context, category string) (store.CategoryPerformance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	perf := store.CategoryPerformance{Category: category}
	if s.Err != nil {
		return perf, s.Err
	}
	for _, p := range s.pending {
		if p.Category != category {
			continue
		}
		switch p.Status {
		case store.StatusApproved:
			perf.Approved++
		case store.StatusRejected:
			perf.Rejected++
		}
	}
	if total := perf.Approved + perf.Rejected; total > 0 {
		perf.ApprovalRate = float64(perf.Approved) / float64(total)
	}
	return perf, nil
}

// LoadSettings implements store.Store.
func (s *Store) LoadSettings(ctx context.Context, userID string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make(map[string]string, len(s.settings[userID]))
	for k, v := range s.settings[userID] {
		out[k] = v
	}
	return out, nil
}

// SaveSettings implements store.Store.
func (s *Store) SaveSettings(ctx context.Context, userID string, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.settings[userID] == nil {
		s.settings[userID] = make(map[string]string)
	}
	for k, v := range values {
		s.settings[userID][k] = v
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// PendingCount returns the number of rows currently in StatusPending.
// Test helper.
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.pending {
		if p.Status == store.StatusPending {
			n++
		}
	}
	return n
}

// SeedApproved inserts an approved phrase directly. Test helper.
func (s *Store) SeedApproved(category, phrase string, embedding []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.phrases[phraseKey(category, phrase)] = store.PhraseEntry{
		ID: s.nextID, Category: category, Phrase: phrase, Embedding: embedding,
	}
}
