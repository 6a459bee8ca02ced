// Package transcript post-processes raw speech-to-text output before it
// reaches the detectors.
//
// Whisper transcriptions of accented or low-quality call audio carry
// systematic artefacts (stopped th-sounds, dropped g's, garbled domain
// vocabulary). The Normalizer repairs them with a static phonetic dictionary
// so downstream phrase matching sees canonical English. Corrections are
// deliberately conservative: when the rewrite changes the text too much the
// original is kept, because a wrong "fix" is worse for matching than a
// garbled word.
package transcript

import (
	"log/slog"
	"sort"
	"strings"
)

// maxCorrections is the most dictionary entries allowed to fire on one
// transcript. More hits than this means the transcript is probably not
// accented speech but noise, and rewriting it would compound the damage.
const maxCorrections = 10

// maxWordCountDrift is the relative word-count change beyond which a
// correction pass is discarded.
const maxWordCountDrift = 0.2

// Normalizer applies phonetic dictionary corrections to transcripts.
// The zero value is not usable; construct with NewNormalizer.
type Normalizer struct {
	enabled bool
	keys    []string // dictionary keys in sorted order, for determinism
	log     *slog.Logger
}

// NewNormalizer returns a Normalizer. When enabled is false, Normalize
// returns its input unchanged.
func NewNormalizer(enabled bool, log *slog.Logger) *Normalizer {
	if log == nil {
		log = slog.Default()
	}
	keys := make([]string, 0, len(phoneticDictionary))
	for k := range phoneticDictionary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Normalizer{enabled: enabled, keys: keys, log: log}
}

// Normalize returns the corrected form of text, or text unchanged when
// correction is disabled, when no dictionary entry applies, or when the
// safety gate rejects the rewrite.
//
// The gate discards the pass when more than maxCorrections entries fired or
// when the corrected word count drifts more than 20% from the original.
// Because every dictionary value is already canonical, a text that passed the
// gate once passes through unchanged a second time.
func (n *Normalizer) Normalize(text string) string {
	if !n.enabled || text == "" {
		return text
	}

	lower := strings.ToLower(text)
	corrected := lower
	fired := 0
	for _, key := range n.keys {
		val := phoneticDictionary[key]
		if val == key || !strings.Contains(corrected, key) {
			continue
		}
		corrected = strings.ReplaceAll(corrected, key, val)
		fired++
		if fired > maxCorrections {
			n.log.Debug("phonetic correction rejected", "reason", "too many corrections", "fired", fired)
			return text
		}
	}
	if fired == 0 {
		return text
	}

	before := len(strings.Fields(lower))
	after := len(strings.Fields(corrected))
	if before > 0 {
		drift := float64(after-before) / float64(before)
		if drift > maxWordCountDrift || drift < -maxWordCountDrift {
			n.log.Debug("phonetic correction rejected", "reason", "word count drift",
				"before", before, "after", after)
			return text
		}
	}

	n.log.Debug("phonetic correction applied", "corrections", fired)
	return corrected
}
