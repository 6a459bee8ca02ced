package score

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

// nameStopList holds tokens that follow intro/greeting patterns in real
// transcripts but are never a person's name. Sourced from reviewing flagged
// calls; roughly 80 entries.
var nameStopList = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "but": true, "or": true,
	"so": true, "well": true, "okay": true, "ok": true, "yes": true, "yeah": true,
	"no": true, "not": true, "this": true, "that": true, "there": true,
	"here": true, "it": true, "its": true, "is": true, "was": true, "are": true,
	"am": true, "be": true, "been": true, "me": true, "my": true, "mine": true,
	"you": true, "your": true, "yours": true, "we": true, "our": true,
	"they": true, "them": true, "their": true, "he": true, "she": true,
	"him": true, "her": true, "his": true, "hers": true, "who": true,
	"what": true, "when": true, "where": true, "why": true, "how": true,
	"just": true, "like": true, "really": true, "very": true, "actually": true,
	"calling": true, "call": true, "called": true, "speaking": true,
	"trying": true, "looking": true, "reaching": true, "going": true,
	"gonna": true, "wanted": true, "want": true, "hoping": true,
	"today": true, "tonight": true, "tomorrow": true, "morning": true,
	"afternoon": true, "evening": true, "now": true, "again": true,
	"about": true, "with": true, "from": true, "for": true, "on": true,
	"in": true, "at": true, "to": true, "of": true, "by": true, "up": true,
	"out": true, "over": true, "back": true, "one": true, "two": true,
	"good": true, "great": true, "fine": true, "nice": true, "right": true,
	"sorry": true, "please": true, "thanks": true, "thank": true,
	"hello": true, "hi": true, "hey": true, "everyone": true, "everybody": true,
	"somebody": true, "someone": true, "anybody": true, "anyone": true,
	"company": true, "office": true, "phone": true, "number": true,
	"interested": true, "available": true, "busy": true, "wrong": true,
}

var respectfulAddresses = []string{"ma'am", "maam", "sir", "madam", "miss", "mister"}

// greetingLeads are tokens that commonly precede the owner's name.
var greetingLeads = map[string]bool{
	"hi": true, "hello": true, "hey": true,
	"mr": true, "mrs": true, "ms": true,
}

var propertyKeywords = []string{
	"property", "house", "home", "apartment", "condo", "land", "address",
	"street", "avenue", "road", "drive", "lane", "way", "place", "court",
	"circle", "boulevard", "parkway", "highway", "route",
}

// numericStreetPattern matches spoken addresses like "1428 elm st" where the
// street type is abbreviated and so missed by the keyword list.
var numericStreetPattern = regexp.MustCompile(
	`\b\d{1,5}\s+[a-z]+\s+(?:st|ave|rd|dr|ln|ct|blvd|pl|hwy|rte)\b`)

// nameSimilarityFloor is the Levenshtein ratio (0-100) at which a token
// counts as the agent's name. Transcription mangles names badly enough that
// an exact match is too strict.
const nameSimilarityFloor = 75

// levenshteinRatio returns a 0-100 similarity between two tokens.
func levenshteinRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	dist := matchr.Levenshtein(a, b)
	if dist >= longest {
		return 0
	}
	return (longest - dist) * 100 / longest
}

// matchesAgentName reports whether token is close enough to any word of the
// agent's name.
func matchesAgentName(token, agentName string) bool {
	for _, part := range strings.Fields(strings.ToLower(agentName)) {
		if levenshteinRatio(token, part) >= nameSimilarityFloor {
			return true
		}
	}
	return false
}

// soundsLikeAgentName reports whether token shares a Double Metaphone code
// with any word of the agent's name. Catches transcription spellings that
// Levenshtein misses ("jon" for "john", "dayve" for "dave").
func soundsLikeAgentName(token, agentName string) bool {
	p1, s1 := matchr.DoubleMetaphone(token)
	if p1 == "" && s1 == "" {
		return false
	}
	for _, part := range strings.Fields(strings.ToLower(agentName)) {
		p2, s2 := matchr.DoubleMetaphone(part)
		if p1 != "" && (p1 == p2 || p1 == s2) {
			return true
		}
		if s1 != "" && (s1 == p2 || s1 == s2) {
			return true
		}
	}
	return false
}

// plausibleNameToken filters tokens that could be a person's name: purely
// alphabetic, at least 3 chars, and not on the stop list.
func plausibleNameToken(token string) bool {
	token = strings.Trim(token, ".,!?;:'\"")
	if len(token) < 3 || nameStopList[token] {
		return false
	}
	for _, r := range token {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
