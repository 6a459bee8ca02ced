// Package app wires all callsift subsystems into a running application.
//
// New connects store, phrase repository, learning loop, rebuttal matcher and
// batch engine from a loaded config; Shutdown tears everything down in
// order. For testing, inject doubles via functional options (WithStore,
// WithLogger); when an option is not provided, New creates real
// implementations from the config.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/callsift/callsift/internal/batch"
	"github.com/callsift/callsift/internal/config"
	"github.com/callsift/callsift/internal/learning"
	"github.com/callsift/callsift/internal/phrase"
	"github.com/callsift/callsift/internal/rebuttal"
	"github.com/callsift/callsift/internal/resilience"
	"github.com/callsift/callsift/internal/store"
	"github.com/callsift/callsift/internal/store/postgres"
	"github.com/callsift/callsift/internal/store/sqlite"
	"github.com/callsift/callsift/internal/transcript"
	"github.com/callsift/callsift/internal/vad"
	"github.com/callsift/callsift/pkg/provider/classify"
	"github.com/callsift/callsift/pkg/provider/embeddings"
	"github.com/callsift/callsift/pkg/provider/transcribe"
)

// Providers holds one interface value per provider slot. Nil means the
// provider is not configured and the corresponding detection tier degrades.
// Populated by main.go via the config registry.
type Providers struct {
	Transcribe transcribe.Provider
	Embeddings embeddings.Provider
	Classify   classify.Classifier
}

// App owns all subsystem lifetimes for one callsift invocation.
type App struct {
	cfg       *config.Config
	providers *Providers
	log       *slog.Logger

	// Subsystems — initialised in New, torn down in Shutdown.
	store   store.Store
	guard   *learning.Guard
	repo    *phrase.Repository
	learner *learning.Learner
	matcher *rebuttal.Matcher
	engine  *batch.Engine

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithStore injects a store instead of opening one from config. The injected
// store is not closed by Shutdown.
func WithStore(s store.Store) Option {
	return func(a *App) { a.store = s }
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(a *App) {
		if log != nil {
			a.log = log
		}
	}
}

// New creates an App by wiring all subsystems together. The providers struct
// comes from main.go (populated via the config registry); nil slots disable
// their tiers rather than failing.
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil {
		providers = &Providers{}
	}
	a := &App{
		cfg:       cfg,
		providers: providers,
		log:       slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}

	if err := a.initStore(ctx); err != nil {
		return nil, fmt.Errorf("app: init store: %w", err)
	}
	a.initCatalogue()
	a.initMatcher()
	a.initEngine()

	return a, nil
}

// initStore opens the configured backend unless one was injected, then wraps
// it in the best-effort guard used by the learning side channel.
func (a *App) initStore(ctx context.Context) error {
	if a.store == nil {
		switch a.cfg.Store.Backend {
		case config.StorePostgres:
			st, err := postgres.NewStore(ctx, a.cfg.Store.PostgresDSN, a.cfg.Store.EmbeddingDimensions)
			if err != nil {
				return err
			}
			a.store = st
		default:
			st, err := sqlite.Open(a.cfg.Store.Path)
			if err != nil {
				return err
			}
			a.store = st
		}
		a.closers = append(a.closers, a.store.Close)
	}
	a.guard = learning.NewGuard(a.store)
	return nil
}

// initCatalogue builds the phrase repository and the learner feeding it.
// Both run against the guarded store so persistence failures degrade instead
// of aborting a run.
func (a *App) initCatalogue() {
	a.repo = phrase.NewRepository(a.guard, a.providers.Embeddings)
	a.learner = learning.New(a.guard, a.repo, learning.Config{
		ConfidenceThreshold:  a.cfg.Learning.ConfidenceThreshold,
		AutoApproveThreshold: a.cfg.Learning.AutoApproveThreshold,
		FrequencyThreshold:   a.cfg.Learning.FrequencyThreshold,
	}, a.log)
}

// initMatcher assembles the three-tier rebuttal matcher.
func (a *App) initMatcher() {
	mopts := []rebuttal.MatcherOption{
		rebuttal.WithObserver(a.learner),
		rebuttal.WithSimilarityThreshold(a.cfg.Semantic.Threshold),
		rebuttal.WithMatcherLogger(a.log),
	}
	if a.providers.Embeddings != nil {
		mopts = append(mopts, rebuttal.WithEmbedder(a.providers.Embeddings))
	}
	if a.providers.Classify != nil {
		mopts = append(mopts, rebuttal.WithClassifier(a.providers.Classify))
	}
	a.matcher = rebuttal.NewMatcher(a.repo, mopts...)
}

// initEngine builds the batch engine over the wired pipeline.
func (a *App) initEngine() {
	transcriber := a.providers.Transcribe
	if transcriber != nil {
		transcriber = resilience.NewBreakerTranscriber(transcriber, resilience.CircuitBreakerConfig{})
	}

	eopts := []batch.Option{
		batch.WithVAD(vad.New(vad.Config{
			EnergyThreshold:     a.cfg.VAD.EnergyThreshold,
			MinSpeechDurationMs: a.cfg.VAD.MinSpeechDurationMs,
		})),
		batch.WithMatcher(a.matcher),
		batch.WithNormalizer(transcript.NewNormalizer(a.cfg.AccentCorrection.Enabled, a.log)),
		batch.WithRepository(a.repo),
		batch.WithLateHelloThreshold(a.cfg.LateHello.ThresholdSec),
		batch.WithMaxFileSize(a.cfg.Audio.MaxFileSizeMB),
		batch.WithLogger(a.log),
	}
	if transcriber != nil {
		eopts = append(eopts, batch.WithTranscriber(transcriber))
	}
	if a.providers.Classify != nil {
		eopts = append(eopts, batch.WithClassifier(a.providers.Classify))
	}
	a.engine = batch.New(eopts...)
}

// Engine returns the batch engine.
func (a *App) Engine() *batch.Engine {
	return a.engine
}

// Store returns the raw (unguarded) store for management commands that want
// real errors.
func (a *App) Store() store.Store {
	return a.store
}

// Repository returns the phrase repository.
func (a *App) Repository() *phrase.Repository {
	return a.repo
}

// Learner returns the phrase learner.
func (a *App) Learner() *learning.Learner {
	return a.learner
}

// Degraded reports whether the learning store has been failing.
func (a *App) Degraded() bool {
	return a.guard.IsDegraded()
}

// Shutdown tears down all subsystems. It respects the context deadline: if
// ctx expires before all closers finish, remaining closers are skipped and
// the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		a.engine.Stop()
		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				a.log.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				a.log.Warn("closer error", "index", i, "error", err)
			}
		}
	})
	return shutdownErr
}
