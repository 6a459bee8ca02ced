package learning

import (
	"sync"
	"time"

	"github.com/callsift/callsift/internal/store"
)

// Quality tiers, from the quality score.
const (
	TierAutoApprove = "auto_approve" // >= 0.90
	TierHighValue   = "high_value"   // >= 0.80
	TierMediumValue = "medium_value" // >= 0.65
	TierLowValue    = "low_value"
)

// qualityCacheTTL bounds how stale a cached quality score may be. The
// recency term decays over days, so an hour of staleness is invisible.
const qualityCacheTTL = time.Hour

type qualityKey struct {
	id         string
	confidence float64
}

type qualityEntry struct {
	score    float64
	computed time.Time
}

type qualityCache struct {
	mu      sync.Mutex
	entries map[qualityKey]qualityEntry
}

func newQualityCache() *qualityCache {
	return &qualityCache{entries: make(map[qualityKey]qualityEntry)}
}

// score returns the quality score for p, computing and caching it when the
// cached value is missing or older than the TTL.
func (c *qualityCache) score(p *store.PendingPhrase, now time.Time) float64 {
	key := qualityKey{id: p.ID, confidence: p.Confidence}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && now.Sub(e.computed) < qualityCacheTTL {
		return e.score
	}
	s := qualityScore(p, now)
	c.entries[key] = qualityEntry{score: s, computed: now}
	return s
}

// reset drops all cached scores. Called between batch runs.
func (c *qualityCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[qualityKey]qualityEntry)
}

// qualityScore combines confidence, detection frequency, recency, and
// context richness into one [0,1] figure. Weights sum to 1; each term is
// individually clamped, so the score is monotone in confidence and count.
func qualityScore(p *store.PendingPhrase, now time.Time) float64 {
	frequency := float64(p.DetectionCount) / 10
	if frequency > 1 {
		frequency = 1
	}

	days := now.Sub(p.LastSeenAt).Hours() / 24
	recency := 1 - days/30
	if recency < 0 {
		recency = 0
	}

	richness := float64(len(p.Contexts)) / 500
	if richness > 1 {
		richness = 1
	}

	return 0.50*p.Confidence + 0.25*frequency + 0.15*recency + 0.10*richness
}

// QualityTier maps a quality score to its tier label.
func QualityTier(score float64) string {
	switch {
	case score >= 0.90:
		return TierAutoApprove
	case score >= 0.80:
		return TierHighValue
	case score >= 0.65:
		return TierMediumValue
	default:
		return TierLowValue
	}
}
