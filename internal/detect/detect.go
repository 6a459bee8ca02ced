// Package detect derives the call-quality verdicts from VAD segments:
// releasing (the agent never spoke) and late hello (the agent spoke too
// late).
package detect

import "github.com/callsift/callsift/internal/vad"

// Verdict is a detector outcome as it appears in result rows.
type Verdict string

const (
	Yes          Verdict = "Yes"
	No           Verdict = "No"
	Error        Verdict = "Error"
	NotAvailable Verdict = "N/A"
)

// DefaultLateHelloThresholdSec is the default number of seconds after which
// the first agent speech counts as late.
const DefaultLateHelloThresholdSec = 5

// Releasing reports Yes when the agent channel produced no speech at all
// over a clip long enough to expect speech in. Clips shorter than the
// late-hello threshold return No: too little signal to accuse anyone.
func Releasing(segments []vad.Segment, durationMs, thresholdSec int) Verdict {
	if thresholdSec <= 0 {
		thresholdSec = DefaultLateHelloThresholdSec
	}
	if len(segments) == 0 && durationMs >= thresholdSec*1000 {
		return Yes
	}
	return No
}

// LateHello reports Yes when the earliest agent speech starts strictly after
// the threshold. No speech at all returns No; that case belongs to
// Releasing.
func LateHello(segments []vad.Segment, thresholdSec int) Verdict {
	if thresholdSec <= 0 {
		thresholdSec = DefaultLateHelloThresholdSec
	}
	if len(segments) == 0 {
		return No
	}
	earliest := segments[0].StartMs
	for _, s := range segments[1:] {
		if s.StartMs < earliest {
			earliest = s.StartMs
		}
	}
	if earliest > thresholdSec*1000 {
		return Yes
	}
	return No
}
