package embeddings_test

import (
	"context"
	"math"
	"testing"

	"github.com/callsift/callsift/pkg/provider/embeddings"
	"github.com/callsift/callsift/pkg/provider/embeddings/mock"
)

func TestEncodeBatched_SplitsIntoSubBatches(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{
		EmbedBatchResult: [][]float32{{1, 0}, {0, 1}},
	}
	texts := []string{"a", "b", "c", "d"}

	vecs, err := embeddings.EncodeBatched(context.Background(), p, texts, 2)
	if err != nil {
		t.Fatalf("EncodeBatched: %v", err)
	}
	if len(vecs) != 4 {
		t.Fatalf("expected 4 vectors, got %d", len(vecs))
	}
	if len(p.EmbedBatchCalls) != 2 {
		t.Fatalf("expected 2 sub-batch calls, got %d", len(p.EmbedBatchCalls))
	}
	for i, call := range p.EmbedBatchCalls {
		if len(call.Texts) != 2 {
			t.Errorf("call %d: expected 2 texts, got %d", i, len(call.Texts))
		}
	}
}

func TestEncodeBatched_Empty(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{}
	vecs, err := embeddings.EncodeBatched(context.Background(), p, nil, 8)
	if err != nil {
		t.Fatalf("EncodeBatched: %v", err)
	}
	if vecs != nil {
		t.Errorf("expected nil result for empty input, got %v", vecs)
	}
	if len(p.EmbedBatchCalls) != 0 {
		t.Errorf("expected no provider calls for empty input")
	}
}

func TestCosine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"mismatched lengths", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := embeddings.Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
