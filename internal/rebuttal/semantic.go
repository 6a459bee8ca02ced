package rebuttal

import (
	"context"
	"log/slog"

	"github.com/callsift/callsift/internal/phrase"
	"github.com/callsift/callsift/internal/resilience"
	"github.com/callsift/callsift/pkg/provider/embeddings"
)

const (
	// defaultSimilarityThreshold is the cosine similarity floor for a
	// semantic candidate. Configured values are clamped to
	// [minSimilarityThreshold, maxSimilarityThreshold].
	defaultSimilarityThreshold = 0.68
	minSimilarityThreshold     = 0.5
	maxSimilarityThreshold     = 0.9
)

func clampThreshold(v float64) float64 {
	if v <= 0 {
		return defaultSimilarityThreshold
	}
	if v < minSimilarityThreshold {
		return minSimilarityThreshold
	}
	if v > maxSimilarityThreshold {
		return maxSimilarityThreshold
	}
	return v
}

// matchSemantic embeds every transcript chunk and finds the nearest
// catalogue phrase by cosine similarity. Chunks whose best similarity
// clears the threshold become candidates; every candidate is also handed
// to the observer so the learning loop sees it regardless of what the
// caller does with the match.
//
// The tier degrades to a no-op when the embedder is missing, the snapshot
// carries no vectors, or the batch encode fails after retries. It never
// returns an error: a transcript still gets the exact and LLM tiers.
func (m *Matcher) matchSemantic(ctx context.Context, snap *phrase.Snapshot, transcript string) []Match {
	if m.embedder == nil || len(snap.Embeddings) == 0 {
		return nil
	}
	chunks := chunkTranscript(transcript)
	if len(chunks) == 0 {
		return nil
	}

	var vecs [][]float32
	err := resilience.Retry(ctx, m.retry, func(ctx context.Context) error {
		var encErr error
		vecs, encErr = embeddings.EncodeBatched(ctx, m.embedder, chunks, m.batchSize)
		return encErr
	})
	if err != nil {
		m.log.Warn("semantic tier skipped, chunk encoding failed",
			slog.Int("chunks", len(chunks)), slog.String("error", err.Error()))
		return nil
	}
	if len(vecs) != len(chunks) {
		m.log.Warn("semantic tier skipped, embedding count mismatch",
			slog.Int("chunks", len(chunks)), slog.Int("vectors", len(vecs)))
		return nil
	}

	var matches []Match
	for i, chunk := range chunks {
		best, sim := nearestPhrase(snap, vecs[i])
		if best == nil || sim < m.threshold {
			continue
		}

		matches = append(matches, Match{
			Category:    best.Category,
			Phrase:      best.Text,
			MatchedText: chunk,
			Confidence:  sim,
			Tier:        TierSemantic,
		})
		if m.observer != nil {
			m.observer.Observe(ctx, learningObservation(best.Category, chunk, sim, transcript, vecs[i]))
		}
	}
	return matches
}

// nearestPhrase returns the catalogue phrase closest to vec, or nil when
// the snapshot is empty.
func nearestPhrase(snap *phrase.Snapshot, vec []float32) (*phrase.Phrase, float64) {
	bestIdx := -1
	bestSim := -1.0
	for i := range snap.Embeddings {
		if sim := embeddings.Cosine(vec, snap.Embeddings[i]); sim > bestSim {
			bestSim = sim
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nil, 0
	}
	return &snap.Phrases[bestIdx], bestSim
}
