// Package learning implements the phrase learning store: the write path
// that turns high-confidence semantic matches into pending phrases, merges
// repeat observations, and auto-approves phrases that prove themselves.
//
// Learning is strictly best-effort. Every store interaction goes through
// Guard, so persistence failures degrade learning silently and never fail a
// detection run.
package learning

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/callsift/callsift/internal/phrase"
	"github.com/callsift/callsift/internal/store"
	"github.com/callsift/callsift/internal/transcript"
)

// Limits applied to observed phrases before they become pending rows.
const (
	minPhraseChars = 3
	maxPhraseWords = 20
	maxPhraseChars = 200
	maxContextLen  = 500
)

// adaptiveCacheTTL is how long a computed per-category approval threshold
// stays valid.
const adaptiveCacheTTL = 7 * 24 * time.Hour

// Config tunes the learning pipeline. Zero values are replaced by defaults.
type Config struct {
	// ConfidenceThreshold is the minimum semantic confidence for an
	// observation to enter the pipeline at all. Default 0.85.
	ConfidenceThreshold float64

	// AutoApproveThreshold is the confidence needed for the standard
	// auto-approval path. Default 0.95.
	AutoApproveThreshold float64

	// FrequencyThreshold is the detection count needed for the standard
	// auto-approval path. Default 5.
	FrequencyThreshold int
}

func (c *Config) applyDefaults() {
	if c.ConfidenceThreshold <= 0 {
		c.ConfidenceThreshold = 0.85
	}
	if c.AutoApproveThreshold <= 0 {
		c.AutoApproveThreshold = 0.95
	}
	if c.FrequencyThreshold <= 0 {
		c.FrequencyThreshold = 5
	}
}

// Observation is one semantic-tier candidate reported to the learner.
type Observation struct {
	// Phrase is the transcript chunk that matched.
	Phrase string
	// Category is the catalogue category of the matched phrase.
	Category string
	// Confidence is the semantic similarity of the match.
	Confidence float64
	// Context is a snippet of surrounding transcript, for reviewers.
	Context string
	// Embedding is the chunk's vector, used for the similar-to lookup.
	// May be nil.
	Embedding []float32
}

type adaptiveEntry struct {
	threshold float64
	computed  time.Time
}

// Learner is the phrase learning store.
type Learner struct {
	store   store.Store
	repo    *phrase.Repository
	cfg     Config
	log     *slog.Logger
	quality *qualityCache

	mu       sync.Mutex
	adaptive map[string]adaptiveEntry

	now func() time.Time // test hook
}

// New creates a Learner. st should normally be a Guard-wrapped store; repo
// is consulted for already-approved phrases and refreshed after approvals.
func New(st store.Store, repo *phrase.Repository, cfg Config, log *slog.Logger) *Learner {
	cfg.applyDefaults()
	if log == nil {
		log = slog.Default()
	}
	return &Learner{
		store:    st,
		repo:     repo,
		cfg:      cfg,
		log:      log,
		quality:  newQualityCache(),
		adaptive: make(map[string]adaptiveEntry),
		now:      time.Now,
	}
}

// Reset clears per-run caches. Call at the start of a batch run.
func (l *Learner) Reset() {
	l.quality.reset()
}

// Observe feeds one semantic match into the learning pipeline. It never
// returns an error: learning failures are logged by the guard and absorbed.
func (l *Learner) Observe(ctx context.Context, obs Observation) {
	if obs.Confidence < l.cfg.ConfidenceThreshold {
		return
	}

	text := strings.TrimSpace(obs.Phrase)
	if len(text) < minPhraseChars {
		return
	}
	if transcript.IsPoliteClosing(text) {
		return
	}
	text = truncatePhrase(text)

	if blocked, _ := l.store.IsBlacklisted(ctx, text); blocked {
		return
	}
	if l.repo != nil && l.repo.Contains(text) {
		return
	}

	// One row per observation; the store merges it into any existing
	// pending row for the same phrase under its uniqueness index, so two
	// workers observing the same phrase at once still yield one row.
	now := l.now().UTC()
	p := &store.PendingPhrase{
		ID:             uuid.NewString(),
		Phrase:         text,
		Category:       obs.Category,
		Confidence:     obs.Confidence,
		DetectionCount: 1,
		FirstSeenAt:    now,
		LastSeenAt:     now,
		Contexts:       appendContext("", obs.Context),
		CanonicalForm:  Canonicalize(text),
		Status:         store.StatusPending,
	}
	if len(obs.Embedding) > 0 {
		if similar, _, nerr := l.store.NearestApproved(ctx, obs.Embedding); nerr == nil {
			p.SimilarTo = similar
		}
	}
	p.QualityScore = l.quality.score(p, now)

	merged, err := l.store.UpsertPendingPhrase(ctx, p)
	if err != nil || merged == nil {
		return
	}
	merged.QualityScore = l.quality.score(merged, now)

	if l.shouldApprove(ctx, merged) {
		l.approve(ctx, merged)
	}
}

// shouldApprove applies the two auto-approval paths. High-priority
// approvals (very high confidence or quality) skip the frequency
// requirement; standard approvals additionally clear the per-category
// adaptive quality threshold.
func (l *Learner) shouldApprove(ctx context.Context, p *store.PendingPhrase) bool {
	if p.Confidence >= 0.90 || p.QualityScore >= 0.90 {
		return true
	}
	if p.Confidence >= l.cfg.AutoApproveThreshold && p.DetectionCount >= l.cfg.FrequencyThreshold {
		return p.QualityScore >= l.categoryThreshold(ctx, p.Category)
	}
	return false
}

// approve marks the phrase approved and refreshes the repository so the
// next file in the batch already matches against it.
func (l *Learner) approve(ctx context.Context, p *store.PendingPhrase) {
	approved, err := l.store.ApprovePhrase(ctx, p.ID)
	if err != nil || approved == nil {
		return
	}
	l.log.Info("phrase auto-approved",
		"phrase", approved.Phrase,
		"category", approved.Category,
		"confidence", approved.Confidence,
		"quality", approved.QualityScore,
		"tier", QualityTier(approved.QualityScore))

	if l.repo != nil {
		if err := l.repo.Refresh(ctx); err != nil {
			l.log.Warn("catalogue refresh after approval failed", "error", err)
		}
	}
}

// categoryThreshold returns the adaptive approval threshold for a category:
// a per-category base, lowered when the category's historical approval rate
// is high and raised when it is low. Cached for seven days.
func (l *Learner) categoryThreshold(ctx context.Context, category string) float64 {
	now := l.now()

	l.mu.Lock()
	if e, ok := l.adaptive[category]; ok && now.Sub(e.computed) < adaptiveCacheTTL {
		l.mu.Unlock()
		return e.threshold
	}
	l.mu.Unlock()

	base := 0.80
	switch category {
	case phrase.CategoryOtherProperty:
		base = 0.88
	case phrase.CategoryMixedFutureOther:
		base = 0.85
	}

	perf, err := l.store.CategoryPerformance(ctx, category)
	if err == nil && perf.Approved+perf.Rejected > 0 {
		if perf.ApprovalRate > 0.95 {
			base -= 0.02
		} else if perf.ApprovalRate < 0.80 {
			base += 0.02
		}
	}

	l.mu.Lock()
	l.adaptive[category] = adaptiveEntry{threshold: base, computed: now}
	l.mu.Unlock()
	return base
}

// Cleanup merges duplicate pending rows. Invoked opportunistically before
// listing pending phrases.
func (l *Learner) Cleanup(ctx context.Context) int {
	n, err := l.store.MergeDuplicatePending(ctx)
	if err != nil {
		return 0
	}
	if n > 0 {
		l.log.Debug("merged duplicate pending phrases", "removed", n)
	}
	return n
}

// truncatePhrase caps a phrase at maxPhraseWords words and maxPhraseChars
// chars.
func truncatePhrase(text string) string {
	if words := strings.Fields(text); len(words) > maxPhraseWords {
		text = strings.Join(words[:maxPhraseWords], " ")
	}
	if len(text) > maxPhraseChars {
		text = strings.TrimSpace(text[:maxPhraseChars])
	}
	return text
}

// appendContext joins a new context snippet onto the existing list, capped
// at maxContextLen chars.
func appendContext(existing, snippet string) string {
	snippet = strings.TrimSpace(snippet)
	if snippet == "" {
		return existing
	}
	joined := snippet
	if existing != "" {
		joined = existing + " | " + snippet
	}
	if len(joined) > maxContextLen {
		joined = joined[:maxContextLen]
	}
	return joined
}
