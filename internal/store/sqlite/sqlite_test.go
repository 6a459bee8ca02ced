package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/callsift/callsift/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "callsift.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newPending(phrase, category string, confidence float64) *store.PendingPhrase {
	now := time.Now().UTC()
	return &store.PendingPhrase{
		ID:             uuid.NewString(),
		Phrase:         phrase,
		Category:       category,
		Confidence:     confidence,
		DetectionCount: 1,
		FirstSeenAt:    now,
		LastSeenAt:     now,
		Status:         store.StatusPending,
	}
}

func TestPendingRoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	p := newPending("would you consider selling", "WOULD_CONSIDER", 0.87)
	p.Contexts = "agent asked about selling"
	if _, err := s.UpsertPendingPhrase(ctx, p); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Lookup is normalized: case and surrounding whitespace are ignored.
	got, err := s.GetPendingByPhrase(ctx, "  Would You Consider Selling ")
	if err != nil {
		t.Fatalf("get by phrase: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("ID = %q, want %q", got.ID, p.ID)
	}
	if got.Confidence != 0.87 {
		t.Errorf("Confidence = %v, want 0.87", got.Confidence)
	}
	if got.Contexts != p.Contexts {
		t.Errorf("Contexts = %q, want %q", got.Contexts, p.Contexts)
	}
}

func TestGetPendingByPhrase_NotFound(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	_, err := s.GetPendingByPhrase(context.Background(), "never seen")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApprovePhrase(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	p := newPending("we buy houses in any condition", "WE_BUY_OFFER", 0.96)
	if _, err := s.UpsertPendingPhrase(ctx, p); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	approved, err := s.ApprovePhrase(ctx, p.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != store.StatusApproved {
		t.Errorf("Status = %q, want approved", approved.Status)
	}

	phrases, err := s.LoadPhrases(ctx)
	if err != nil {
		t.Fatalf("load phrases: %v", err)
	}
	found := false
	for _, e := range phrases {
		if e.Category == "WE_BUY_OFFER" && e.Phrase == p.Phrase {
			found = true
		}
	}
	if !found {
		t.Error("approved phrase missing from catalogue")
	}

	// Approved rows no longer show up in the pending list.
	pending, err := s.ListPending(ctx, 0)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected empty pending list, got %d rows", len(pending))
	}
}

func TestRejectPhrase_Blacklists(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	p := newPending("Have A Nice Day", "CALLBACK_SCHEDULE", 0.86)
	if _, err := s.UpsertPendingPhrase(ctx, p); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.RejectPhrase(ctx, p.ID, "polite closing, not a rebuttal"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	blocked, err := s.IsBlacklisted(ctx, "have a nice day")
	if err != nil {
		t.Fatalf("is blacklisted: %v", err)
	}
	if !blocked {
		t.Error("rejected phrase is not blacklisted")
	}
}

func TestUpsertPendingPhrase_MergesSamePhrase(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	a := newPending("thinking about it", "FUTURE_CONSIDERATION", 0.90)
	a.DetectionCount = 3
	a.Contexts = "ctx one"
	if _, err := s.UpsertPendingPhrase(ctx, a); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Same normalized phrase under a new ID lands on the existing row.
	b := newPending("Thinking About It", "MIXED_FUTURE_OTHER", 0.85)
	b.DetectionCount = 2
	b.Contexts = "ctx two"
	merged, err := s.UpsertPendingPhrase(ctx, b)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if merged.ID != a.ID {
		t.Errorf("merged into %q, want the existing row %q", merged.ID, a.ID)
	}
	if merged.DetectionCount != 5 {
		t.Errorf("DetectionCount = %d, want 5", merged.DetectionCount)
	}
	if merged.Confidence != 0.90 {
		t.Errorf("Confidence = %v, want the max 0.90", merged.Confidence)
	}
	if merged.Contexts != "ctx one | ctx two" {
		t.Errorf("Contexts = %q", merged.Contexts)
	}

	pending, err := s.ListPending(ctx, 0)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending row, got %d", len(pending))
	}
}

func TestUpsertPendingPhrase_ConcurrentObservations(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	// Two workers observe the same phrase at the same time. The uniqueness
	// index makes the second insert merge instead of creating a second row.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := newPending("would you entertain an offer", "WOULD_CONSIDER", 0.88)
			_, errs[i] = s.UpsertPendingPhrase(ctx, p)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Fatalf("concurrent upsert: %v", err)
		}
	}

	pending, err := s.ListPending(ctx, 0)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending rows = %d, want exactly 1", len(pending))
	}
	if pending[0].DetectionCount != 2 {
		t.Errorf("DetectionCount = %d, want 2", pending[0].DetectionCount)
	}
}

func TestMergeDuplicatePending_LegacyRows(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "callsift.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ctx := context.Background()

	// Recreate the pre-uniqueness state: drop the index and insert duplicate
	// rows directly, as a database written by an older build would hold.
	if _, err := s.db.ExecContext(ctx, `DROP INDEX uq_pending_phrase_norm`); err != nil {
		t.Fatalf("drop index: %v", err)
	}
	a := newPending("thinking about it", "FUTURE_CONSIDERATION", 0.90)
	a.DetectionCount = 3
	b := newPending("Thinking About It", "MIXED_FUTURE_OTHER", 0.85)
	b.DetectionCount = 2
	for _, p := range []*store.PendingPhrase{a, b} {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO pending_phrases (`+pendingColumns+`)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Phrase, p.Category, p.Confidence, p.DetectionCount,
			formatTime(p.FirstSeenAt), formatTime(p.LastSeenAt),
			p.Contexts, p.QualityScore, p.CanonicalForm, p.SimilarTo, p.Status); err != nil {
			t.Fatalf("raw insert: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening migrates: duplicates merge before the unique index returns.
	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	pending, err := s.ListPending(ctx, 0)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 surviving row, got %d", len(pending))
	}
	keep := pending[0]
	if keep.ID != a.ID {
		t.Errorf("kept %q, want the higher-confidence row %q", keep.ID, a.ID)
	}
	if keep.DetectionCount != 5 {
		t.Errorf("DetectionCount = %d, want 5", keep.DetectionCount)
	}
}

func TestCategoryPerformance(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	phrases := []string{"phrase alpha", "phrase beta", "phrase gamma", "phrase delta"}
	var ids []string
	for _, text := range phrases {
		p := newPending(text, "WE_BUY_OFFER", 0.9)
		if _, err := s.UpsertPendingPhrase(ctx, p); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		ids = append(ids, p.ID)
	}
	for _, id := range ids[:3] {
		if _, err := s.ApprovePhrase(ctx, id); err != nil {
			t.Fatalf("approve: %v", err)
		}
	}
	if err := s.RejectPhrase(ctx, ids[3], "noise"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	perf, err := s.CategoryPerformance(ctx, "WE_BUY_OFFER")
	if err != nil {
		t.Fatalf("category performance: %v", err)
	}
	if perf.Approved != 3 || perf.Rejected != 1 {
		t.Errorf("approved/rejected = %d/%d, want 3/1", perf.Approved, perf.Rejected)
	}
	if perf.ApprovalRate != 0.75 {
		t.Errorf("ApprovalRate = %v, want 0.75", perf.ApprovalRate)
	}
}

func TestNearestApproved(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	// No embeddings yet: empty result, no error.
	phrase, _, err := s.NearestApproved(ctx, []float32{1, 0, 0})
	if err != nil {
		t.Fatalf("nearest approved: %v", err)
	}
	if phrase != "" {
		t.Errorf("expected empty phrase, got %q", phrase)
	}

	if err := s.SavePhraseEmbedding(ctx, "WE_BUY_OFFER", "we make cash offers", []float32{1, 0, 0}); err != nil {
		t.Fatalf("save embedding: %v", err)
	}
	if err := s.SavePhraseEmbedding(ctx, "CALLBACK_SCHEDULE", "call you next week", []float32{0, 1, 0}); err != nil {
		t.Fatalf("save embedding: %v", err)
	}

	phrase, sim, err := s.NearestApproved(ctx, []float32{0.9, 0.1, 0})
	if err != nil {
		t.Fatalf("nearest approved: %v", err)
	}
	if phrase != "we make cash offers" {
		t.Errorf("phrase = %q, want the cash-offer phrase", phrase)
	}
	if sim <= 0.9 {
		t.Errorf("similarity = %v, want > 0.9", sim)
	}
}

func TestEmbeddingRoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	vec := []float32{0.25, -1.5, 3.75, 0}
	if err := s.SavePhraseEmbedding(ctx, "WOULD_CONSIDER", "would you take an offer", vec); err != nil {
		t.Fatalf("save embedding: %v", err)
	}

	phrases, err := s.LoadPhrases(ctx)
	if err != nil {
		t.Fatalf("load phrases: %v", err)
	}
	if len(phrases) != 1 {
		t.Fatalf("expected 1 phrase, got %d", len(phrases))
	}
	got := phrases[0].Embedding
	if len(got) != len(vec) {
		t.Fatalf("embedding length = %d, want %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("embedding[%d] = %v, want %v", i, got[i], vec[i])
		}
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveSettings(ctx, "user-1", map[string]string{
		"semantic.threshold": "0.72",
		"batch.workers":      "8",
	}); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	// Partial update leaves other keys intact.
	if err := s.SaveSettings(ctx, "user-1", map[string]string{
		"semantic.threshold": "0.70",
	}); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	settings, err := s.LoadSettings(ctx, "user-1")
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings["semantic.threshold"] != "0.70" {
		t.Errorf("semantic.threshold = %q, want 0.70", settings["semantic.threshold"])
	}
	if settings["batch.workers"] != "8" {
		t.Errorf("batch.workers = %q, want 8", settings["batch.workers"])
	}

	// Unknown user yields an empty map.
	other, err := s.LoadSettings(ctx, "user-2")
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected empty settings for unknown user, got %v", other)
	}
}
