package resilience

import (
	"context"

	"github.com/callsift/callsift/pkg/provider/transcribe"
)

// BreakerTranscriber wraps a transcription provider with a [CircuitBreaker]
// so a dead backend fails fast instead of holding worker slots for the full
// request timeout on every file.
type BreakerTranscriber struct {
	inner transcribe.Provider
	cb    *CircuitBreaker
}

// NewBreakerTranscriber wraps inner with a breaker built from cfg. An empty
// cfg.Name defaults to "transcribe".
func NewBreakerTranscriber(inner transcribe.Provider, cfg CircuitBreakerConfig) *BreakerTranscriber {
	if cfg.Name == "" {
		cfg.Name = "transcribe"
	}
	return &BreakerTranscriber{
		inner: inner,
		cb:    NewCircuitBreaker(cfg),
	}
}

// TranscribeFile delegates through the breaker. When the breaker is open it
// returns [ErrCircuitOpen] without touching the backend.
func (b *BreakerTranscriber) TranscribeFile(ctx context.Context, path string, opts transcribe.Options) (*transcribe.Result, error) {
	var res *transcribe.Result
	err := b.cb.Execute(func() error {
		var callErr error
		res, callErr = b.inner.TranscribeFile(ctx, path, opts)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// State exposes the breaker state for health reporting.
func (b *BreakerTranscriber) State() State {
	return b.cb.State()
}

var _ transcribe.Provider = (*BreakerTranscriber)(nil)
