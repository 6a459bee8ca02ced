// Package rebuttal detects whether a sales agent attempted a rebuttal,
// using three escalating tiers: exact substring matching against the
// phrase catalogue, embedding similarity over transcript chunks, and an
// LLM classifier for transcripts the first two tiers cannot decide.
package rebuttal

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/callsift/callsift/internal/learning"
	"github.com/callsift/callsift/internal/phrase"
	"github.com/callsift/callsift/internal/resilience"
	"github.com/callsift/callsift/pkg/provider/classify"
	"github.com/callsift/callsift/pkg/provider/embeddings"
)

// Match tiers, cheapest first.
const (
	TierExact    = "exact"
	TierSemantic = "semantic"
	TierLLM      = "llm"
)

// Match is one rebuttal candidate found in a transcript.
type Match struct {
	// Category is the catalogue category of the matched phrase.
	Category string
	// Phrase is the catalogue phrase (or, for the LLM tier, the
	// classifier's reasoning).
	Phrase string
	// MatchedText is the transcript text that triggered the match.
	MatchedText string
	// Confidence is in [0, 1]. Exact matches score by word overlap,
	// semantic matches by cosine similarity, LLM matches by the
	// classifier's self-reported confidence.
	Confidence float64
	// Tier is one of TierExact, TierSemantic, TierLLM.
	Tier string
}

// Observer receives every semantic candidate so new phrasings can be
// learned. *learning.Learner satisfies it.
type Observer interface {
	Observe(ctx context.Context, obs learning.Observation)
}

var _ Observer = (*learning.Learner)(nil)

// Matcher runs the three detection tiers over a transcript.
type Matcher struct {
	repo       *phrase.Repository
	embedder   embeddings.Provider // nil disables the semantic tier
	classifier classify.Classifier // nil disables the LLM tier
	observer   Observer            // nil disables learning
	threshold  float64
	batchSize  int
	retry      resilience.RetryConfig
	log        *slog.Logger
}

// MatcherOption is a functional option for NewMatcher.
type MatcherOption func(*Matcher)

// WithEmbedder enables the semantic tier.
func WithEmbedder(p embeddings.Provider) MatcherOption {
	return func(m *Matcher) { m.embedder = p }
}

// WithClassifier enables the LLM escalation tier.
func WithClassifier(c classify.Classifier) MatcherOption {
	return func(m *Matcher) { m.classifier = c }
}

// WithObserver routes semantic candidates into the learning loop.
func WithObserver(o Observer) MatcherOption {
	return func(m *Matcher) { m.observer = o }
}

// WithSimilarityThreshold sets the semantic similarity floor. Values are
// clamped to [0.5, 0.9]; zero keeps the default 0.68.
func WithSimilarityThreshold(v float64) MatcherOption {
	return func(m *Matcher) { m.threshold = clampThreshold(v) }
}

// WithMatcherLogger sets the logger.
func WithMatcherLogger(log *slog.Logger) MatcherOption {
	return func(m *Matcher) {
		if log != nil {
			m.log = log
		}
	}
}

// WithRetry sets the retry policy for embedding calls.
func WithRetry(cfg resilience.RetryConfig) MatcherOption {
	return func(m *Matcher) { m.retry = cfg }
}

// NewMatcher builds a Matcher over the given catalogue repository. With no
// options only the exact tier runs.
func NewMatcher(repo *phrase.Repository, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		repo:      repo,
		threshold: defaultSimilarityThreshold,
		batchSize: 32,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Detect runs all applicable tiers over the transcript and returns the
// candidate matches, highest confidence first. An empty result means no
// rebuttal was attempted.
func (m *Matcher) Detect(ctx context.Context, transcript string) []Match {
	if strings.TrimSpace(transcript) == "" {
		return nil
	}
	snap := m.repo.Snapshot()

	candidates := matchExact(snap, transcript)
	candidates = append(candidates, dedupAgainst(candidates, m.matchSemantic(ctx, snap, transcript))...)

	if needsLLM(candidates) {
		candidates = append(candidates, m.matchLLM(ctx, transcript)...)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates
}

// Attempted reports the yes/no verdict: any candidate at all counts as a
// rebuttal attempt.
func (m *Matcher) Attempted(ctx context.Context, transcript string) bool {
	return len(m.Detect(ctx, transcript)) > 0
}

// dedupAgainst drops semantic candidates whose catalogue phrase already
// appeared as an exact match; the exact hit is strictly stronger evidence.
func dedupAgainst(existing, incoming []Match) []Match {
	if len(existing) == 0 {
		return incoming
	}
	seen := make(map[string]bool, len(existing))
	for _, m := range existing {
		seen[m.Phrase] = true
	}
	out := incoming[:0]
	for _, m := range incoming {
		if seen[m.Phrase] {
			continue
		}
		out = append(out, m)
	}
	return out
}

// learningObservation packages a semantic candidate for the learner,
// trimming the context snippet to something a reviewer can scan.
func learningObservation(category, chunk string, sim float64, transcript string, vec []float32) learning.Observation {
	const snippetLen = 200
	snippet := transcript
	if len(snippet) > snippetLen {
		snippet = snippet[:snippetLen]
	}
	return learning.Observation{
		Phrase:     chunk,
		Category:   category,
		Confidence: sim,
		Context:    snippet,
		Embedding:  vec,
	}
}
