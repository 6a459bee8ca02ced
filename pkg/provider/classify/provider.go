// Package classify defines the Classifier interface for the LLM rebuttal
// tier.
//
// The first two matching tiers work from the phrase catalogue; the classifier
// is the escalation path for transcripts where neither an exact nor a
// semantic phrase hit is convincing. It reads the raw agent transcript and
// answers one question: did the agent attempt a rebuttal at all?
//
// Implementations must be safe for concurrent use.
package classify

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the classifier backend cannot be reached.
// Callers treat it as a signal to skip the LLM tier, not as a file error.
var ErrUnavailable = errors.New("classify: backend unavailable")

// Verdict is the classifier's answer for one transcript.
type Verdict struct {
	// Rebuttal reports whether the agent made any rebuttal attempt.
	Rebuttal bool

	// Confidence is the model's self-reported confidence in [0, 1].
	Confidence float64

	// Reasoning is a short free-text justification. Informational only;
	// it is logged but never parsed.
	Reasoning string
}

// Classifier is the abstraction over any LLM backend used for rebuttal
// classification.
type Classifier interface {
	// ClassifyRebuttal inspects an agent-channel transcript and reports
	// whether it contains a rebuttal attempt. transcript is the full
	// normalized agent text, not a single chunk.
	ClassifyRebuttal(ctx context.Context, transcript string) (*Verdict, error)
}
