package rebuttal

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/callsift/callsift/internal/learning"
	"github.com/callsift/callsift/internal/phrase"
	storemock "github.com/callsift/callsift/internal/store/mock"
	"github.com/callsift/callsift/pkg/provider/classify"
	classifymock "github.com/callsift/callsift/pkg/provider/classify/mock"
	embmock "github.com/callsift/callsift/pkg/provider/embeddings/mock"
)

// recordingObserver captures learning observations for assertions.
type recordingObserver struct {
	mu  sync.Mutex
	obs []learning.Observation
}

func (r *recordingObserver) Observe(_ context.Context, o learning.Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, o)
}

func (r *recordingObserver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.obs)
}

// keywordEmbedder maps texts onto three orthogonal axes so tests can steer
// which catalogue phrases a chunk lands near.
func keywordEmbedder() *embmock.Provider {
	return &embmock.Provider{
		DimensionsValue: 3,
		ModelIDValue:    "test-embed-v1",
		EmbedBatchFunc: func(texts []string) ([][]float32, error) {
			vecs := make([][]float32, len(texts))
			for i, text := range texts {
				switch {
				case strings.Contains(strings.ToLower(text), "sell"):
					vecs[i] = []float32{1, 0, 0}
				case strings.Contains(strings.ToLower(text), "weather"):
					vecs[i] = []float32{0, 0, 1}
				default:
					vecs[i] = []float32{0, 1, 0}
				}
			}
			return vecs, nil
		},
	}
}

func TestNormalizeForMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"Would you consider selling?", "would you consider selling"},
		{"  SO...   many,   spaces!  ", "so many spaces"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeForMatch(tt.in); got != tt.want {
			t.Errorf("normalizeForMatch(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetect_ExactTier(t *testing.T) {
	t.Parallel()

	m := NewMatcher(phrase.NewRepository(nil, nil))
	matches := m.Detect(context.Background(),
		"Well, do you have any other property you might want to sell, maybe?")

	if len(matches) == 0 {
		t.Fatal("expected an exact match")
	}
	got := matches[0]
	if got.Tier != TierExact {
		t.Errorf("Tier = %q, want %q", got.Tier, TierExact)
	}
	if got.Category != phrase.CategoryOtherProperty {
		t.Errorf("Category = %q, want %q", got.Category, phrase.CategoryOtherProperty)
	}
	if got.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", got.Confidence)
	}
}

func TestDetect_NoMatchEmptyAndIrrelevant(t *testing.T) {
	t.Parallel()

	m := NewMatcher(phrase.NewRepository(nil, nil))
	if got := m.Detect(context.Background(), ""); len(got) != 0 {
		t.Errorf("empty transcript produced matches: %v", got)
	}
	if m.Attempted(context.Background(), "the quick brown fox jumps over the lazy dog") {
		t.Error("irrelevant transcript reported as rebuttal attempt")
	}
}

func TestDetect_SemanticTierReportsToObserver(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := phrase.NewRepository(storemock.New(), keywordEmbedder())
	if err := repo.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	rec := &recordingObserver{}
	m := NewMatcher(repo, WithEmbedder(keywordEmbedder()), WithObserver(rec))

	matches := m.Detect(ctx, "I am not interested right now. Would you ever think about selling later?")
	if len(matches) == 0 {
		t.Fatal("expected a semantic match")
	}
	if matches[0].Tier != TierSemantic {
		t.Errorf("Tier = %q, want %q", matches[0].Tier, TierSemantic)
	}
	if rec.count() != 1 {
		t.Errorf("observer saw %d observations, want 1", rec.count())
	}
	if rec.obs[0].Embedding == nil {
		t.Error("observation carried no embedding")
	}
}

func TestDetect_SemanticTierBelowThreshold(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := phrase.NewRepository(storemock.New(), keywordEmbedder())
	if err := repo.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	rec := &recordingObserver{}
	m := NewMatcher(repo, WithEmbedder(keywordEmbedder()), WithObserver(rec))

	// Orthogonal to every catalogue vector.
	if got := m.Detect(ctx, "The weather is terrible today."); len(got) != 0 {
		t.Errorf("off-topic transcript produced matches: %v", got)
	}
	if rec.count() != 0 {
		t.Errorf("observer saw %d observations, want 0", rec.count())
	}
}

func TestDetect_SemanticDedupedAgainstExact(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := phrase.NewRepository(storemock.New(), keywordEmbedder())
	if err := repo.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	m := NewMatcher(repo, WithEmbedder(keywordEmbedder()))
	matches := m.Detect(ctx, "do you have any other property you might want to sell")

	for i, match := range matches {
		for j := i + 1; j < len(matches); j++ {
			if match.Phrase == matches[j].Phrase {
				t.Errorf("duplicate candidates for phrase %q", match.Phrase)
			}
		}
	}
	if len(matches) == 0 || matches[0].Tier != TierExact {
		t.Fatalf("expected the exact hit to win, got %v", matches)
	}
}

func TestDetect_SemanticSurvivesEmbedderFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := phrase.NewRepository(storemock.New(), keywordEmbedder())
	if err := repo.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	broken := &embmock.Provider{EmbedBatchErr: context.DeadlineExceeded}
	m := NewMatcher(repo, WithEmbedder(broken))

	// The exact tier still works while the semantic tier silently skips.
	matches := m.Detect(ctx, "do you have any other property you might want to sell")
	if len(matches) != 1 || matches[0].Tier != TierExact {
		t.Fatalf("expected only the exact match, got %v", matches)
	}
}

func TestDetect_LLMEscalation(t *testing.T) {
	t.Parallel()

	cls := &classifymock.Classifier{Verdict: &classify.Verdict{
		Rebuttal:   true,
		Confidence: 0.8,
		Reasoning:  "agent pivoted to asking about other properties",
	}}
	m := NewMatcher(phrase.NewRepository(nil, nil), WithClassifier(cls))

	matches := m.Detect(context.Background(),
		"so about that thing we discussed, any movement on your end")
	if len(matches) != 1 {
		t.Fatalf("expected 1 classifier match, got %v", matches)
	}
	if matches[0].Tier != TierLLM {
		t.Errorf("Tier = %q, want %q", matches[0].Tier, TierLLM)
	}
	if matches[0].Category != phrase.CategoryLLMComplexCase {
		t.Errorf("Category = %q, want %q", matches[0].Category, phrase.CategoryLLMComplexCase)
	}
	if cls.CallCount() != 1 {
		t.Errorf("classifier called %d times, want 1", cls.CallCount())
	}
}

func TestDetect_LLMSkippedOnConfidentMatch(t *testing.T) {
	t.Parallel()

	cls := &classifymock.Classifier{Verdict: &classify.Verdict{Rebuttal: true, Confidence: 0.9}}
	m := NewMatcher(phrase.NewRepository(nil, nil), WithClassifier(cls))

	m.Detect(context.Background(), "do you have any other property you might want to sell")
	if cls.CallCount() != 0 {
		t.Errorf("classifier called %d times for a confident exact match, want 0", cls.CallCount())
	}
}

func TestDetect_LLMErrorSwallowed(t *testing.T) {
	t.Parallel()

	cls := &classifymock.Classifier{Err: context.DeadlineExceeded}
	m := NewMatcher(phrase.NewRepository(nil, nil), WithClassifier(cls))

	if got := m.Detect(context.Background(), "nothing relevant here at all"); len(got) != 0 {
		t.Errorf("classifier failure produced matches: %v", got)
	}
}

func TestNeedsLLM(t *testing.T) {
	t.Parallel()

	if !needsLLM(nil) {
		t.Error("empty candidate set must escalate")
	}
	if !needsLLM([]Match{{Confidence: 0.6}}) {
		t.Error("weak candidates must escalate")
	}
	if needsLLM([]Match{{Confidence: 0.6}, {Confidence: 0.85}}) {
		t.Error("a strong candidate must not escalate")
	}
}

func TestClampThreshold(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want float64 }{
		{0, defaultSimilarityThreshold},
		{0.3, minSimilarityThreshold},
		{0.95, maxSimilarityThreshold},
		{0.75, 0.75},
	}
	for _, tt := range tests {
		if got := clampThreshold(tt.in); got != tt.want {
			t.Errorf("clampThreshold(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
