// Package batch runs the audit pipeline over a folder of recordings: an
// adaptive batch sizer picks how many files to submit, a bounded worker
// pool runs the per-file pipeline (decode, VAD detectors, transcription,
// rebuttal matching, intro scoring), and results accumulate into a
// result.Table.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/callsift/callsift/internal/callmeta"
	"github.com/callsift/callsift/internal/detect"
	"github.com/callsift/callsift/internal/observe"
	"github.com/callsift/callsift/internal/phrase"
	"github.com/callsift/callsift/internal/rebuttal"
	"github.com/callsift/callsift/internal/result"
	"github.com/callsift/callsift/internal/score"
	"github.com/callsift/callsift/internal/transcript"
	"github.com/callsift/callsift/internal/vad"
	"github.com/callsift/callsift/pkg/audio"
	"github.com/callsift/callsift/pkg/provider/classify"
	"github.com/callsift/callsift/pkg/provider/transcribe"
)

const (
	// DefaultFileTimeout bounds one file's full pipeline.
	DefaultFileTimeout = 600 * time.Second

	// LiteFileTimeout bounds one file in lite mode, which skips
	// transcription and so never waits on a backend.
	LiteFileTimeout = 30 * time.Second

	freeTierWorkers = 5
	paidTierWorkers = 20
	liteWorkerCap   = 16
)

// Engine audits recordings. Construct with New; all detector and provider
// dependencies are optional and the pipeline degrades without them
// (no transcriber means rebuttal renders N/A).
type Engine struct {
	vad         *vad.Engine
	transcriber transcribe.Provider
	matcher     *rebuttal.Matcher
	normalizer  *transcript.Normalizer
	repo        *phrase.Repository
	classifier  classify.Classifier
	metrics     *observe.Metrics
	sizer       *Sizer
	preloader   *Preloader
	log         *slog.Logger

	lateHelloThresholdSec int
	maxFileSizeBytes      int64

	stopped atomic.Bool
}

// Option is a functional option for New.
type Option func(*Engine)

// WithVAD sets the voice-activity engine. Defaults to vad.New with default
// config.
func WithVAD(v *vad.Engine) Option {
	return func(e *Engine) { e.vad = v }
}

// WithTranscriber sets the transcription backend.
func WithTranscriber(p transcribe.Provider) Option {
	return func(e *Engine) { e.transcriber = p }
}

// WithMatcher sets the rebuttal matcher.
func WithMatcher(m *rebuttal.Matcher) Option {
	return func(e *Engine) { e.matcher = m }
}

// WithNormalizer sets the accent-correction normalizer applied to
// transcripts before matching.
func WithNormalizer(n *transcript.Normalizer) Option {
	return func(e *Engine) { e.normalizer = n }
}

// WithRepository sets the phrase repository, warmed during preload.
func WithRepository(r *phrase.Repository) Option {
	return func(e *Engine) { e.repo = r }
}

// WithClassifier sets the LLM classifier, probed during preload.
func WithClassifier(c classify.Classifier) Option {
	return func(e *Engine) { e.classifier = c }
}

// WithMetrics sets the metrics instruments. Defaults to
// observe.DefaultMetrics.
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLateHelloThreshold sets the late-hello threshold in seconds.
func WithLateHelloThreshold(sec int) Option {
	return func(e *Engine) {
		if sec > 0 {
			e.lateHelloThresholdSec = sec
		}
	}
}

// WithMaxFileSize skips recordings larger than mb megabytes instead of
// decoding them. Zero disables the limit.
func WithMaxFileSize(mb int) Option {
	return func(e *Engine) {
		if mb > 0 {
			e.maxFileSizeBytes = int64(mb) << 20
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New builds an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:                   slog.Default(),
		lateHelloThresholdSec: detect.DefaultLateHelloThresholdSec,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.vad == nil {
		e.vad = vad.New(vad.Config{})
	}
	if e.metrics == nil {
		e.metrics = observe.DefaultMetrics()
	}
	e.sizer = NewSizer(e.log)
	e.preloader = NewPreloader(e.log)
	return e
}

// RunOptions tunes one ProcessFolder run.
type RunOptions struct {
	// Progress, when set, is called after each batch with the number of
	// files completed so far and the total.
	Progress func(completed, total int)

	// Lite skips transcription and rebuttal: only the local detectors run,
	// with a short per-file timeout.
	Lite bool

	// Workers overrides the pool size. Zero derives it from Tier.
	Workers int

	// Tier is the account tier ("free" or "paid") used when Workers is
	// zero.
	Tier string

	// FileTimeout overrides the per-file wall-clock timeout.
	FileTimeout time.Duration
}

func (o RunOptions) fileTimeout() time.Duration {
	if o.FileTimeout > 0 {
		return o.FileTimeout
	}
	if o.Lite {
		return LiteFileTimeout
	}
	return DefaultFileTimeout
}

// Stop asks a running ProcessFolder to wind down: in-flight files finish,
// nothing new is submitted.
func (e *Engine) Stop() {
	e.stopped.Store(true)
}

// ProcessFolder audits every supported recording directly under folder for
// one user and returns the accumulated result table. File-level failures
// become Error rows; ProcessFolder itself only errors when the folder
// cannot be read or the context dies before any work is submitted.
func (e *Engine) ProcessFolder(ctx context.Context, folder, userID string, opts RunOptions) (*result.Table, error) {
	files, err := e.listRecordings(folder)
	if err != nil {
		return nil, err
	}
	table := result.NewTable()
	if len(files) == 0 {
		return table, nil
	}

	e.log.Info("starting batch run",
		"folder", folder, "user", userID, "files", len(files), "lite", opts.Lite)

	if !opts.Lite {
		e.preloader.Warm(ctx, e.repo, e.transcriber, e.classifier)
	}
	e.sizer.Reset()
	e.stopped.Store(false)

	workers := e.workerCount(opts)
	sem := semaphore.NewWeighted(int64(workers))
	total := len(files)
	completed := 0

	for completed < total && !e.stopped.Load() && ctx.Err() == nil {
		remaining := files[completed:]
		batchSize := e.sizer.Next(remaining)
		if batchSize > len(remaining) {
			batchSize = len(remaining)
		}
		e.metrics.RecordBatchSize(ctx, batchSize)

		g := new(errgroup.Group)
		submitted := 0
		for _, path := range remaining[:batchSize] {
			if e.stopped.Load() {
				break
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				break
			}
			submitted++
			g.Go(func() error {
				defer sem.Release(1)
				e.metrics.ActiveWorkers.Add(ctx, 1)
				defer e.metrics.ActiveWorkers.Add(ctx, -1)

				res := e.processFile(ctx, path, opts)
				table.Append(res)
				e.sizer.RecordFileTime(res.ProcessingTime)
				e.metrics.RecordFileProcessed(ctx, fileStatus(res))
				return nil
			})
		}
		g.Wait()

		completed += submitted
		if submitted == 0 {
			break
		}

		// Decoded PCM from a whole batch adds up; give it back before
		// sizing the next one.
		runtime.GC()
		if opts.Progress != nil {
			opts.Progress(completed, total)
		}
	}

	e.log.Info("batch run finished",
		"user", userID, "completed", completed, "total", total,
		"errors", len(table.Errors()))
	return table, ctx.Err()
}

func fileStatus(r *result.FileResult) string {
	switch {
	case r.Failed():
		return "error"
	case r.Flagged():
		return "flagged"
	default:
		return "ok"
	}
}

// workerCount derives the pool size: explicit override, else account tier
// capped by CPU count.
func (e *Engine) workerCount(opts RunOptions) int {
	if opts.Workers > 0 {
		return opts.Workers
	}
	cpu := runtime.NumCPU()
	if opts.Lite {
		if cpu > liteWorkerCap {
			return liteWorkerCap
		}
		return cpu
	}
	w := freeTierWorkers
	if strings.EqualFold(opts.Tier, "paid") {
		w = paidTierWorkers
	}
	if w > cpu {
		w = cpu
	}
	return w
}

// listRecordings returns the supported audio files directly under folder,
// sorted by name. Oversize files are skipped with a warning.
func (e *Engine) listRecordings(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("batch: read folder: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !audio.SupportedExtension(entry.Name()) {
			continue
		}
		if e.maxFileSizeBytes > 0 {
			if info, err := entry.Info(); err == nil && info.Size() > e.maxFileSizeBytes {
				e.log.Warn("skipping oversize recording",
					"file", entry.Name(), "size", info.Size(), "limit", e.maxFileSizeBytes)
				continue
			}
		}
		files = append(files, filepath.Join(folder, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// transcription is the output of the async transcription submission.
type transcription struct {
	res *transcribe.Result
	err error
}

// processFile runs the full pipeline for one recording and always returns a
// row; failures are encoded in the row, never panicked or dropped.
func (e *Engine) processFile(ctx context.Context, path string, opts RunOptions) *result.FileResult {
	start := time.Now()
	res := &result.FileResult{Meta: callmeta.ParseFile(path)}
	defer func() { res.ProcessingTime = time.Since(start) }()

	timeout := opts.fileTimeout()
	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	fctx, span := observe.StartSpan(fctx, "batch.file")
	defer span.End()

	channels, err := audio.DecodeChannels(path)
	if err != nil {
		e.metrics.RecordError(fctx, "decode")
		e.failRow(res, err.Error())
		return res
	}

	// Transcription goes out immediately, racing the local detectors.
	tctx, tcancel := context.WithCancel(fctx)
	defer tcancel()
	var transCh chan transcription
	if !opts.Lite && e.transcriber != nil && e.matcher != nil {
		transCh = make(chan transcription, 1)
		go e.submitTranscription(tctx, channels.Agent, transCh)
	}

	segments := e.vad.DetectSegmentsWithFallback(channels.Agent)

	var (
		releasing, lateHello detect.Verdict
		rebuttalVerdict      = detect.NotAvailable
		rebuttalConf         float64
		transcriptText       string
		note                 string
		fileTimedOut         bool
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		t0 := time.Now()
		releasing = detect.Releasing(segments, channels.DurationMs, e.lateHelloThresholdSec)
		e.metrics.ObserveDetector(fctx, "releasing", time.Since(t0))
		if releasing == detect.Yes {
			// No agent speech: the transcription result is worthless.
			// Cancel is best-effort; we never wait for it to land.
			tcancel()
		}
		return nil
	})
	g.Go(func() error {
		t0 := time.Now()
		lateHello = detect.LateHello(segments, e.lateHelloThresholdSec)
		e.metrics.ObserveDetector(fctx, "late_hello", time.Since(t0))
		return nil
	})
	g.Go(func() error {
		if transCh == nil {
			return nil
		}
		t0 := time.Now()
		defer func() { e.metrics.ObserveDetector(fctx, "rebuttal", time.Since(t0)) }()

		select {
		case out := <-transCh:
			switch {
			case out.err == nil:
				text := strings.ToLower(out.res.Text)
				if e.normalizer != nil {
					text = e.normalizer.Normalize(text)
				}
				transcriptText = text
				matches := e.matcher.Detect(fctx, text)
				if len(matches) > 0 {
					rebuttalVerdict = detect.Yes
					rebuttalConf = matches[0].Confidence
				} else {
					rebuttalVerdict = detect.No
				}
			case errors.Is(out.err, context.Canceled):
				// Cancelled because releasing fired; the verdict is
				// discarded below either way.
				rebuttalVerdict = detect.No
			case errors.Is(out.err, transcribe.ErrTimeout):
				rebuttalVerdict = detect.No
				note = "timeout"
			case errors.Is(out.err, context.DeadlineExceeded):
				fileTimedOut = true
			default:
				e.log.Warn("transcription failed",
					"file", filepath.Base(path), "error", out.err)
				e.metrics.RecordError(fctx, "transcription")
				rebuttalVerdict = detect.Error
			}
		case <-fctx.Done():
			fileTimedOut = errors.Is(fctx.Err(), context.DeadlineExceeded)
		}
		return nil
	})
	g.Wait()

	if fileTimedOut {
		e.metrics.RecordError(fctx, "timeout")
		e.failRow(res, fmt.Sprintf("Processing timeout after %ds", int(timeout.Seconds())))
		res.Releasing, res.LateHello = releasing, lateHello
		return res
	}

	if releasing == detect.Yes {
		rebuttalVerdict = detect.No
		rebuttalConf = 0
		transcriptText = ""
	}

	res.Releasing = releasing
	res.LateHello = lateHello
	res.Rebuttal = rebuttalVerdict
	res.RebuttalConfidence = rebuttalConf
	res.Transcript = transcriptText
	res.Note = note
	res.Intro = score.Evaluate(score.Input{
		Transcript: transcriptText,
		AgentName:  res.Meta.AgentName,
		Releasing:  releasing,
		LateHello:  lateHello,
		Rebuttal:   rebuttalVerdict,
	})
	return res
}

// submitTranscription writes the agent channel to a temp WAV, sends it to
// the backend and delivers the outcome on ch.
func (e *Engine) submitTranscription(ctx context.Context, agent *audio.Clip, ch chan<- transcription) {
	tmp, err := os.CreateTemp("", "callsift-*.wav")
	if err != nil {
		ch <- transcription{err: fmt.Errorf("batch: temp wav: %w", err)}
		return
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	if err := audio.WriteWAV(tmp.Name(), agent); err != nil {
		ch <- transcription{err: fmt.Errorf("batch: write wav: %w", err)}
		return
	}

	t0 := time.Now()
	res, err := e.transcriber.TranscribeFile(ctx, tmp.Name(), transcribe.Options{})
	e.metrics.ObserveTranscription(ctx, time.Since(t0))
	ch <- transcription{res: res, err: err}
}

// failRow marks the row as an error row with Error verdicts.
func (e *Engine) failRow(res *result.FileResult, msg string) {
	res.Err = msg
	res.Releasing = detect.Error
	res.LateHello = detect.Error
	res.Rebuttal = detect.Error
}
