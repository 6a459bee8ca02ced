// Package score computes the composite intro score: six yes/no checks over
// the agent transcript and the detector verdicts, averaged into a
// percentage and mapped to a training status.
package score

import (
	"regexp"
	"strings"

	"github.com/callsift/callsift/internal/detect"
)

// introWindow is how much of the transcript the intro-specific checks scan.
// Agents introduce themselves up front; scanning further only finds the
// owner saying their own name.
const introWindow = 450

// Check is one scored intro criterion.
type Check struct {
	Display detect.Verdict // Yes, No, or N/A
	Score   int            // 0 or 100
}

// Card holds the six intro checks for one call.
type Card struct {
	AgentIntro   Check // agent said who they are
	OwnerName    Check // agent addressed the owner
	PropertyRef  Check // agent said why they are calling
	RebuttalUsed Check
	OnTimeHello  Check // late hello absent
	AgentSpoke   Check // releasing absent
}

func (c Card) checks() [6]Check {
	return [6]Check{
		c.AgentIntro, c.OwnerName, c.PropertyRef,
		c.RebuttalUsed, c.OnTimeHello, c.AgentSpoke,
	}
}

// Percent is the arithmetic mean of the six check scores.
func (c Card) Percent() float64 {
	sum := 0
	for _, ch := range c.checks() {
		sum += ch.Score
	}
	return float64(sum) / 6
}

// Status is the training status derived from the intro percentage.
type Status string

const (
	StatusExcellent     Status = "Excellent"
	StatusGood          Status = "Good"
	StatusNeedsTraining Status = "Needs Training"
	StatusCritical      Status = "Critical"
	StatusError         Status = "Error"
)

// StatusFor maps an intro percentage onto a status.
func StatusFor(pct float64) Status {
	switch {
	case pct >= 83:
		return StatusExcellent
	case pct >= 50:
		return StatusGood
	case pct >= 17:
		return StatusNeedsTraining
	default:
		return StatusCritical
	}
}

// Status returns the status for this card's percentage.
func (c Card) Status() Status {
	return StatusFor(c.Percent())
}

// Input carries everything Evaluate needs for one call.
type Input struct {
	Transcript string
	AgentName  string
	Releasing  detect.Verdict
	LateHello  detect.Verdict
	Rebuttal   detect.Verdict
}

// agentIntroPattern captures the token after a self-introduction lead-in.
var agentIntroPattern = regexp.MustCompile(
	`(?:this is|my name is|i'm|i am|it's|it is)\s+([a-z]+)`)

// Evaluate runs the six intro checks. The transcript is lowercased first;
// the agent-intro and owner-name checks scan only the opening introWindow
// characters.
func Evaluate(in Input) Card {
	transcript := strings.ToLower(in.Transcript)
	opening := transcript
	if len(opening) > introWindow {
		opening = opening[:introWindow]
	}

	return Card{
		AgentIntro:   boolCheck(hasAgentIntro(opening, in.AgentName)),
		OwnerName:    boolCheck(hasOwnerName(opening, in.AgentName)),
		PropertyRef:  boolCheck(hasPropertyReference(transcript)),
		RebuttalUsed: verdictCheck(in.Rebuttal, false),
		OnTimeHello:  verdictCheck(in.LateHello, true),
		AgentSpoke:   verdictCheck(in.Releasing, true),
	}
}

func boolCheck(ok bool) Check {
	if ok {
		return Check{Display: detect.Yes, Score: 100}
	}
	return Check{Display: detect.No, Score: 0}
}

// verdictCheck scores a detector verdict, inverting when absence of the
// condition is what earns the point. Error and N/A verdicts score zero and
// display N/A.
func verdictCheck(v detect.Verdict, invert bool) Check {
	switch v {
	case detect.Yes:
		if invert {
			return Check{Display: detect.No, Score: 0}
		}
		return Check{Display: detect.Yes, Score: 100}
	case detect.No:
		if invert {
			return Check{Display: detect.Yes, Score: 100}
		}
		return Check{Display: detect.No, Score: 0}
	default:
		return Check{Display: detect.NotAvailable, Score: 0}
	}
}

// hasAgentIntro looks for a self-introduction whose following token is
// either close to the agent's name or at least a plausible name.
func hasAgentIntro(opening, agentName string) bool {
	for _, m := range agentIntroPattern.FindAllStringSubmatch(opening, -1) {
		token := m[1]
		if agentName != "" && matchesAgentName(token, agentName) {
			return true
		}
		if plausibleNameToken(token) {
			return true
		}
	}
	return false
}

// hasOwnerName looks for a respectful address, or a greeting immediately
// followed by a plausible name token. A token that is the agent's own name
// (fuzzy or phonetic) does not count; "hello dave here" is the agent again,
// not the owner.
func hasOwnerName(opening, agentName string) bool {
	for _, addr := range respectfulAddresses {
		if containsWord(opening, addr) {
			return true
		}
	}
	tokens := strings.Fields(opening)
	for i := 0; i+1 < len(tokens); i++ {
		lead := strings.Trim(tokens[i], ".,!?;:'\"")
		if !greetingLeads[lead] {
			continue
		}
		name := strings.Trim(tokens[i+1], ".,!?;:'\"")
		if !plausibleNameToken(name) {
			continue
		}
		if agentName != "" && (matchesAgentName(name, agentName) || soundsLikeAgentName(name, agentName)) {
			continue
		}
		return true
	}
	return false
}

// hasPropertyReference looks for a reason-for-calling mention anywhere in
// the transcript.
func hasPropertyReference(transcript string) bool {
	for _, kw := range propertyKeywords {
		if containsWord(transcript, kw) {
			return true
		}
	}
	return numericStreetPattern.MatchString(transcript)
}

// containsWord reports whether transcript contains w as a whole word.
func containsWord(transcript, w string) bool {
	idx := 0
	for {
		i := strings.Index(transcript[idx:], w)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(w)
		beforeOK := start == 0 || !isWordChar(transcript[start-1])
		afterOK := end == len(transcript) || !isWordChar(transcript[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '\''
}
