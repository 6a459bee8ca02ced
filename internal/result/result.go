// Package result assembles per-file audit outcomes into the flagged and
// full views and renders them as a terminal table or CSV.
package result

import (
	"time"

	"github.com/callsift/callsift/internal/callmeta"
	"github.com/callsift/callsift/internal/detect"
	"github.com/callsift/callsift/internal/score"
)

// FileResult is the audit outcome for one recording.
type FileResult struct {
	Meta callmeta.Meta

	Releasing detect.Verdict
	LateHello detect.Verdict
	Rebuttal  detect.Verdict
	// RebuttalConfidence is the confidence of the best rebuttal candidate;
	// zero when Rebuttal is not Yes.
	RebuttalConfidence float64

	Transcript string
	Intro      score.Card

	ProcessingTime time.Duration

	// Note records a non-fatal problem (e.g. "timeout" when transcription
	// timed out and rebuttal defaulted to No). The row still counts.
	Note string

	// Err is set when the file could not be audited; such rows render with
	// StatusError and are excluded from both views.
	Err string
}

// Failed reports whether the file errored out before producing verdicts.
func (r *FileResult) Failed() bool {
	return r.Err != ""
}

// Status returns the row's training status, or StatusError for failed rows.
func (r *FileResult) Status() score.Status {
	if r.Failed() {
		return score.StatusError
	}
	return r.Intro.Status()
}

// Flagged reports whether the row needs supervisor attention: the agent
// released the call, said hello late, or never attempted a rebuttal.
func (r *FileResult) Flagged() bool {
	if r.Failed() {
		return false
	}
	return r.Releasing == detect.Yes ||
		r.LateHello == detect.Yes ||
		r.Rebuttal == detect.No
}
