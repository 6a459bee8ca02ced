package transcript

import "strings"

// closingPhrases are the wrap-up markers. A chunk containing one of these is
// call-ending courtesy unless it also carries a content token.
var closingPhrases = []string{
	"thank you", "thanks for your time", "have a good one",
	"have a great day", "have a nice day", "enjoy your day",
	"bye", "goodbye", "talk to you later", "take care",
}

// contentTokens rescue a chunk from the closing filter: "take care, and
// think about selling" is still worth matching.
var contentTokens = map[string]bool{
	"sell": true, "selling": true, "buyer": true, "buying": true,
	"offer": true, "price": true, "property": true, "house": true,
	"home": true, "future": true,
}

// IsPoliteClosing reports whether text is call wrap-up courtesy: it contains
// a closing phrase and none of the content tokens. Both the semantic tier
// and the learning pipeline drop such chunks; they embed near catalogue
// courtesy phrases and produce false candidates.
func IsPoliteClosing(text string) bool {
	lower := strings.ToLower(text)

	closing := false
	for _, p := range closingPhrases {
		if containsPhrase(lower, p) {
			closing = true
			break
		}
	}
	if !closing {
		return false
	}

	for _, w := range strings.Fields(lower) {
		if contentTokens[strings.Trim(w, ".,!?;:-'\"")] {
			return false
		}
	}
	return true
}

// containsPhrase reports whether text contains phrase on word boundaries, so
// "maybe" does not count as "bye".
func containsPhrase(text, phrase string) bool {
	for idx := 0; ; {
		i := strings.Index(text[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		startOK := start == 0 || !isLetter(text[start-1])
		endOK := end == len(text) || !isLetter(text[end])
		if startOK && endOK {
			return true
		}
		idx = start + 1
	}
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z'
}
