package learning

import (
	"strings"
	"sync"
)

// fillerWords are stripped when computing a phrase's canonical form. The
// canonical form exists so near-identical observations ("well, would you
// consider selling" vs "would you just consider selling") can be compared.
var fillerWords = map[string]bool{
	"okay": true, "ok": true, "well": true, "so": true,
	"um": true, "uh": true, "like": true, "actually": true,
	"basically": true, "literally": true, "really": true,
	"very": true, "just": true,
}

// fillerBigrams are two-word fillers removed before the word-level pass.
var fillerBigrams = []string{"you know", "i mean"}

// canonicalCache memoizes Canonicalize per input string. Phrases repeat
// heavily across a batch run, so the hit rate is high.
var canonicalCache sync.Map // string -> string

// Canonicalize lowercases the phrase, strips filler words, and collapses
// whitespace. Results are cached per input.
func Canonicalize(phrase string) string {
	if cached, ok := canonicalCache.Load(phrase); ok {
		return cached.(string)
	}

	lower := strings.ToLower(strings.TrimSpace(phrase))
	for _, bigram := range fillerBigrams {
		lower = strings.ReplaceAll(lower, bigram, " ")
	}

	var kept []string
	for _, word := range strings.Fields(lower) {
		trimmed := strings.Trim(word, ".,!?;:-")
		if trimmed == "" || fillerWords[trimmed] {
			continue
		}
		kept = append(kept, trimmed)
	}
	canonical := strings.Join(kept, " ")

	canonicalCache.Store(phrase, canonical)
	return canonical
}
