package rebuttal

import (
	"strings"
	"testing"
)

func TestChunkTranscript_MergesQuestionIntoSetup(t *testing.T) {
	t.Parallel()

	chunks := chunkTranscript("We buy houses in the area. Would you consider an offer?")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 merged chunk, got %d: %v", len(chunks), chunks)
	}
	if !strings.Contains(chunks[0], "We buy houses") || !strings.Contains(chunks[0], "consider an offer?") {
		t.Errorf("merged chunk lost text: %q", chunks[0])
	}
}

func TestChunkTranscript_QuestionWithoutSetup(t *testing.T) {
	t.Parallel()

	chunks := chunkTranscript("Would you sell?")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %v", len(chunks), chunks)
	}
}

func TestChunkTranscript_NoMergePastWordCap(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 50)
	chunks := chunkTranscript(long + ". Right?")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks when merge would exceed %d words, got %d", maxChunkWords, len(chunks))
	}
}

func TestChunkTranscript_DropsNoise(t *testing.T) {
	t.Parallel()

	chunks := chunkTranscript("A. Thank you, goodbye. I might sell next year.")
	if len(chunks) != 1 {
		t.Fatalf("expected short and polite chunks dropped, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "I might sell next year." {
		t.Errorf("surviving chunk = %q", chunks[0])
	}
}

func TestChunkTranscript_DropsWrapUpChatter(t *testing.T) {
	t.Parallel()

	// None of the call-ending courtesy lines may reach the semantic tier.
	for _, text := range []string{
		"Thanks for your time.",
		"Have a good one.",
		"Enjoy your day.",
		"Talk to you later.",
		"Thank you, have a great day.",
	} {
		if chunks := chunkTranscript(text); len(chunks) != 0 {
			t.Errorf("chunkTranscript(%q) = %v, want wrap-up dropped", text, chunks)
		}
	}

	// A content token keeps the chunk alive.
	chunks := chunkTranscript("Take care, and think about selling the house.")
	if len(chunks) != 1 {
		t.Fatalf("content-bearing closing dropped: %v", chunks)
	}
}

func TestChunkTranscript_Empty(t *testing.T) {
	t.Parallel()

	if chunks := chunkTranscript(""); len(chunks) != 0 {
		t.Errorf("expected no chunks, got %v", chunks)
	}
}
