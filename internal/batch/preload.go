package batch

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/callsift/callsift/internal/phrase"
	"github.com/callsift/callsift/pkg/provider/classify"
	"github.com/callsift/callsift/pkg/provider/transcribe"
)

// pinger is the optional health-probe surface a provider may expose.
type pinger interface {
	Ping(ctx context.Context) error
}

// Preloader warms the expensive engines once per process: the phrase
// embedding index, the transcription backend, and the classifier. Warm is
// re-entrant and idempotent; concurrent callers share one warm-up via
// singleflight, and later callers return immediately once it has run.
//
// Warm-up failures are logged, not returned: a run with a cold or degraded
// engine still proceeds where it can.
type Preloader struct {
	log *slog.Logger

	group singleflight.Group
	done  atomic.Bool
}

// NewPreloader returns a Preloader logging through log.
func NewPreloader(log *slog.Logger) *Preloader {
	if log == nil {
		log = slog.Default()
	}
	return &Preloader{log: log}
}

// Done reports whether a warm-up has completed.
func (p *Preloader) Done() bool {
	return p.done.Load()
}

// Warm runs the warm-up once. Nil engines are skipped.
func (p *Preloader) Warm(ctx context.Context, repo *phrase.Repository, transcriber transcribe.Provider, classifier classify.Classifier) {
	if p.done.Load() {
		return
	}
	p.group.Do("warm", func() (any, error) {
		p.warm(ctx, repo, transcriber, classifier)
		p.done.Store(true)
		return nil, nil
	})
}

func (p *Preloader) warm(ctx context.Context, repo *phrase.Repository, transcriber transcribe.Provider, classifier classify.Classifier) {
	g, gctx := errgroup.WithContext(ctx)

	if repo != nil {
		g.Go(func() error {
			if err := repo.Refresh(gctx); err != nil {
				p.log.Warn("phrase index warm-up failed", "error", err)
			}
			return nil
		})
	}
	if pr, ok := transcriber.(pinger); ok {
		g.Go(func() error {
			if err := pr.Ping(gctx); err != nil {
				p.log.Warn("transcriber probe failed", "error", err)
			}
			return nil
		})
	}
	if classifier != nil {
		g.Go(func() error {
			// A tiny classification exercises auth and model load in one go.
			if _, err := classifier.ClassifyRebuttal(gctx, "warm up"); err != nil {
				p.log.Warn("classifier probe failed", "error", err)
			}
			return nil
		})
	}

	g.Wait()
}
