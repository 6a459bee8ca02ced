package phrase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/callsift/callsift/internal/store"
	"github.com/callsift/callsift/pkg/provider/embeddings"
)

// Phrase is one catalogue entry.
type Phrase struct {
	Category string
	Text     string
	Learned  bool // false for seed entries
}

// Snapshot is an immutable view of the catalogue at one refresh. Embeddings
// is parallel to Phrases and nil when no embedder is configured.
type Snapshot struct {
	Phrases     []Phrase
	Embeddings  [][]float32
	ModelID     string
	RefreshedAt time.Time

	index map[string]int // normalized text -> position in Phrases
}

// Contains reports whether the normalized phrase is in the snapshot.
func (s *Snapshot) Contains(text string) bool {
	_, ok := s.index[normalizeText(text)]
	return ok
}

// Repository serves the merged seed + learned phrase catalogue. Readers get
// the current snapshot through an atomic pointer; Refresh builds a new
// snapshot off to the side and swaps it in, so lookups never block and never
// see a torn state.
type Repository struct {
	store     store.Store         // nil in seed-only mode
	embedder  embeddings.Provider // nil when semantic matching is disabled
	batchSize int
	log       *slog.Logger

	snap atomic.Pointer[Snapshot]
}

// Option is a functional option for Repository.
type Option func(*Repository)

// WithBatchSize sets the embedding sub-batch size used during Refresh.
func WithBatchSize(n int) Option {
	return func(r *Repository) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Repository) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRepository creates a Repository seeded with the built-in catalogue.
// st and embedder may each be nil; the repository then serves seed phrases
// without learned entries or without embeddings respectively. Call Refresh
// to load learned phrases and build the embedding index.
func NewRepository(st store.Store, embedder embeddings.Provider, opts ...Option) *Repository {
	r := &Repository{
		store:     st,
		embedder:  embedder,
		batchSize: embeddings.DefaultBatchSize,
		log:       slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	r.snap.Store(buildSnapshot(seedPhrases(), nil, "", time.Now()))
	return r
}

// Snapshot returns the current catalogue snapshot. Never nil.
func (r *Repository) Snapshot() *Snapshot {
	return r.snap.Load()
}

// All returns the catalogue grouped by category.
func (r *Repository) All() map[string][]string {
	snap := r.Snapshot()
	out := make(map[string][]string)
	for _, p := range snap.Phrases {
		out[p.Category] = append(out[p.Category], p.Text)
	}
	return out
}

// ByCategory returns the phrases in one category.
func (r *Repository) ByCategory(category string) []string {
	snap := r.Snapshot()
	var out []string
	for _, p := range snap.Phrases {
		if p.Category == category {
			out = append(out, p.Text)
		}
	}
	return out
}

// Contains reports whether the phrase (case-insensitive, trimmed) is already
// in the catalogue. The learning store uses this to skip phrases that have
// already been approved.
func (r *Repository) Contains(text string) bool {
	return r.Snapshot().Contains(text)
}

// Refresh reloads learned phrases from the store, re-encodes the full
// catalogue, and swaps the snapshot. On error the previous snapshot stays in
// place, so a failed refresh degrades to stale data rather than no data.
func (r *Repository) Refresh(ctx context.Context) error {
	phrases := seedPhrases()

	if r.store != nil {
		entries, err := r.store.LoadPhrases(ctx)
		if err != nil {
			return fmt.Errorf("phrase repository: load learned: %w", err)
		}
		seen := make(map[string]bool, len(phrases))
		for _, p := range phrases {
			seen[normalizeText(p.Text)] = true
		}
		for _, e := range entries {
			norm := normalizeText(e.Phrase)
			if seen[norm] {
				continue // built-ins win on collision
			}
			seen[norm] = true
			phrases = append(phrases, Phrase{Category: e.Category, Text: e.Phrase, Learned: true})
		}
	}

	var (
		vecs    [][]float32
		modelID string
	)
	if r.embedder != nil {
		texts := make([]string, len(phrases))
		for i, p := range phrases {
			texts[i] = p.Text
		}
		var err error
		vecs, err = embeddings.EncodeBatched(ctx, r.embedder, texts, r.batchSize)
		if err != nil {
			return fmt.Errorf("phrase repository: encode catalogue: %w", err)
		}
		if len(vecs) != len(phrases) {
			return fmt.Errorf("phrase repository: encoded %d vectors for %d phrases", len(vecs), len(phrases))
		}
		modelID = r.embedder.ModelID()
	}

	r.snap.Store(buildSnapshot(phrases, vecs, modelID, time.Now()))
	r.log.Debug("phrase catalogue refreshed",
		"phrases", len(phrases), "embedded", len(vecs), "model", modelID)

	r.persistEmbeddings(ctx, phrases, vecs)
	return nil
}

// persistEmbeddings writes the catalogue vectors back to the store so
// nearest-approved lookups have something to search. Best-effort: failures
// are logged and do not fail the refresh.
func (r *Repository) persistEmbeddings(ctx context.Context, phrases []Phrase, vecs [][]float32) {
	if r.store == nil || len(vecs) != len(phrases) {
		return
	}
	for i, p := range phrases {
		if err := r.store.SavePhraseEmbedding(ctx, p.Category, p.Text, vecs[i]); err != nil {
			r.log.Warn("persist phrase embedding failed", "phrase", p.Text, "error", err)
			return
		}
	}
}

func seedPhrases() []Phrase {
	var out []Phrase
	for _, cat := range SeedCategories {
		for _, text := range seedCatalogue[cat] {
			out = append(out, Phrase{Category: cat, Text: text})
		}
	}
	return out
}

func buildSnapshot(phrases []Phrase, vecs [][]float32, modelID string, at time.Time) *Snapshot {
	index := make(map[string]int, len(phrases))
	for i, p := range phrases {
		index[normalizeText(p.Text)] = i
	}
	return &Snapshot{
		Phrases:     phrases,
		Embeddings:  vecs,
		ModelID:     modelID,
		RefreshedAt: at,
		index:       index,
	}
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
