// Package embeddings defines the Provider interface for sentence-embedding
// backends.
//
// An embeddings provider maps text to dense float32 vectors. The rebuttal
// matcher uses it twice: the phrase repository encodes its full phrase
// catalogue into a detection index, and the semantic tier encodes transcript
// chunks for cosine comparison against that index.
//
// Implementations must be safe for concurrent use.
package embeddings

import (
	"context"
	"math"
)

// DefaultBatchSize is the sub-batch size EncodeBatched submits per request.
const DefaultBatchSize = 8

// Provider is the abstraction over any text-embedding backend.
//
// All vectors returned by a single Provider instance share the same
// dimensionality (returned by Dimensions). Vectors from different providers
// or models must never be mixed in one similarity computation.
type Provider interface {
	// Embed computes the embedding vector for a single text. Returns a
	// float32 slice of length Dimensions() or an error if the request fails
	// or ctx is cancelled.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch computes embedding vectors for a slice of texts in a single
	// provider call. The returned slice has the same length as texts and the
	// i-th element corresponds to texts[i]. On error the entire slice is nil;
	// partial results are not returned.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed length of every embedding vector produced
	// by this provider.
	Dimensions() int

	// ModelID returns the provider-specific model identifier (e.g.
	// "text-embedding-3-small"). Used to detect index/model mismatches after
	// configuration changes.
	ModelID() string
}

// EncodeBatched encodes texts through p in sub-batches of batchSize,
// concatenating the results in input order. batchSize <= 0 uses
// DefaultBatchSize. This keeps individual requests small when re-embedding
// a whole phrase catalogue.
func EncodeBatched(ctx context.Context, p Provider, texts []string, batchSize int) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		vecs, err := p.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// Cosine returns the cosine similarity of two vectors. Mismatched lengths or
// zero vectors yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
