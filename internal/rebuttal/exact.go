package rebuttal

import (
	"strings"

	"github.com/callsift/callsift/internal/phrase"
)

// normalizeForMatch lowercases, strips sentence punctuation, and collapses
// whitespace. Both sides of the exact tier pass through it, so "Would you
// consider selling?" contains "would you consider selling".
func normalizeForMatch(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case '.', ',', '!', '?', ';', ':', '-':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// matchExact runs the substring tier over every catalogue phrase.
// Confidence is the fraction of the phrase's words present in the
// transcript, which is 1.0 whenever the substring test passes with distinct
// words; repeated words can only lower it, never raise it above 1.
func matchExact(snap *phrase.Snapshot, transcript string) []Match {
	normTranscript := normalizeForMatch(transcript)
	if normTranscript == "" {
		return nil
	}

	transcriptWords := make(map[string]bool)
	for _, w := range strings.Fields(normTranscript) {
		transcriptWords[w] = true
	}

	var matches []Match
	for _, p := range snap.Phrases {
		normPhrase := normalizeForMatch(p.Text)
		if normPhrase == "" || !strings.Contains(normTranscript, normPhrase) {
			continue
		}

		phraseWords := strings.Fields(normPhrase)
		overlap := 0
		for _, w := range phraseWords {
			if transcriptWords[w] {
				overlap++
			}
		}
		confidence := float64(overlap) / float64(len(phraseWords))
		if confidence > 1 {
			confidence = 1
		}

		matches = append(matches, Match{
			Category:    p.Category,
			Phrase:      p.Text,
			MatchedText: normPhrase,
			Confidence:  confidence,
			Tier:        TierExact,
		})
	}
	return matches
}
