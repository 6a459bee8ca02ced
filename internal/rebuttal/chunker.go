package rebuttal

import (
	"strings"

	"github.com/callsift/callsift/internal/transcript"
)

// maxChunkWords caps chunk size during regrouping. Embedding quality falls
// off for very long inputs, and a 50-word window is plenty for one rebuttal.
const maxChunkWords = 50

// chunkTranscript splits a transcript into sentence chunks for embedding.
//
// Sentences split on `.`, `!`, `?`. Question sentences are greedily merged
// into the preceding chunk so a rebuttal question keeps its setup ("We buy
// houses. Would you consider an offer?" stays one chunk), as long as the
// merged chunk stays under maxChunkWords. Chunks under 3 chars are dropped,
// as are wrap-up chunks per [transcript.IsPoliteClosing].
func chunkTranscript(text string) []string {
	sentences := splitSentences(text)

	var chunks []string
	for _, s := range sentences {
		isQuestion := strings.HasSuffix(s, "?")
		if isQuestion && len(chunks) > 0 {
			merged := chunks[len(chunks)-1] + " " + s
			if len(strings.Fields(merged)) <= maxChunkWords {
				chunks[len(chunks)-1] = merged
				continue
			}
		}
		chunks = append(chunks, s)
	}

	out := chunks[:0]
	for _, c := range chunks {
		if len(c) < 3 || transcript.IsPoliteClosing(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// splitSentences splits on sentence-final punctuation, keeping the
// terminator attached and trimming whitespace.
func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
