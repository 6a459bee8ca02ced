package resilience

import (
	"context"
	"math/rand"
	"time"
)

// RetryConfig holds tuning knobs for [Retry]. Zero values are replaced by
// defaults.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts including the first.
	// Default 3.
	MaxAttempts int

	// InitialBackoff is the delay before the first retry. Default 200ms.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential growth. Default 5s.
	MaxBackoff time.Duration
}

func (c *RetryConfig) applyDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 200 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Second
	}
}

// Retry runs fn up to cfg.MaxAttempts times with exponential backoff and
// full jitter between attempts. It returns nil on the first success, the
// last error when all attempts fail, or ctx.Err() when the context is
// cancelled while waiting.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	cfg.applyDefaults()

	backoff := cfg.InitialBackoff
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			// Full jitter: sleep a uniform fraction of the current backoff.
			delay := time.Duration(rand.Int63n(int64(backoff) + 1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
			if backoff > cfg.MaxBackoff {
				backoff = cfg.MaxBackoff
			}
		}

		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}
