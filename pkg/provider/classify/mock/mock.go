// Package mock provides a test double for the classify.Classifier interface.
//
// Use Classifier to return a pre-canned verdict without a live LLM and to
// verify which transcripts reached the classification tier.
package mock

import (
	"context"
	"sync"

	"github.com/callsift/callsift/pkg/provider/classify"
)

// Classifier is a mock implementation of classify.Classifier.
type Classifier struct {
	mu sync.Mutex

	// Verdict is returned by ClassifyRebuttal. If nil, a zero verdict is
	// returned.
	Verdict *classify.Verdict

	// Err, if non-nil, is returned as the error from ClassifyRebuttal.
	Err error

	// VerdictFunc, if non-nil, overrides Verdict/Err and computes the
	// response per call.
	VerdictFunc func(transcript string) (*classify.Verdict, error)

	// Transcripts records every transcript passed to ClassifyRebuttal in order.
	Transcripts []string
}

// ClassifyRebuttal records the call and returns the configured response.
func (c *Classifier) ClassifyRebuttal(ctx context.Context, transcript string) (*classify.Verdict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Transcripts = append(c.Transcripts, transcript)
	if c.VerdictFunc != nil {
		return c.VerdictFunc(transcript)
	}
	if c.Err != nil {
		return nil, c.Err
	}
	if c.Verdict != nil {
		v := *c.Verdict
		return &v, nil
	}
	return &classify.Verdict{}, nil
}

// CallCount returns the number of recorded calls. Thread-safe.
func (c *Classifier) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Transcripts)
}

// Reset clears all recorded calls. Thread-safe.
func (c *Classifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Transcripts = nil
}

// Ensure Classifier implements classify.Classifier at compile time.
var _ classify.Classifier = (*Classifier)(nil)
