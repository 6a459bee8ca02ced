// Package observe provides application-wide observability primitives for
// callsift: OpenTelemetry metrics, tracing for the per-file pipeline, and
// an optional Prometheus scrape endpoint for long batch runs.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all callsift metrics.
const meterName = "github.com/callsift/callsift"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// DetectorDuration tracks per-detector latency. Use with attribute:
	//   attribute.String("detector", "releasing"|"late_hello"|"rebuttal")
	DetectorDuration metric.Float64Histogram

	// TranscriptionDuration tracks transcription backend latency.
	TranscriptionDuration metric.Float64Histogram

	// EmbeddingDuration tracks embedding batch-encode latency.
	EmbeddingDuration metric.Float64Histogram

	// --- Counters ---

	// FilesProcessed counts audited files. Use with attribute:
	//   attribute.String("status", "ok"|"flagged"|"error")
	FilesProcessed metric.Int64Counter

	// LearningObservations counts phrase observations handed to the learning
	// store. Use with attribute:
	//   attribute.String("outcome", "pending"|"merged"|"approved"|"rejected")
	LearningObservations metric.Int64Counter

	// Errors counts pipeline errors by stage.
	Errors metric.Int64Counter

	// --- Gauges ---

	// BatchSize tracks the adaptive batch size chosen for the current batch.
	BatchSize metric.Int64Gauge

	// ActiveWorkers tracks the number of files being processed right now.
	ActiveWorkers metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) spanning
// the fast local detectors up to slow remote transcriptions.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.DetectorDuration, err = m.Float64Histogram("callsift.detector.duration",
		metric.WithDescription("Latency of one detector over one file."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranscriptionDuration, err = m.Float64Histogram("callsift.transcription.duration",
		metric.WithDescription("Latency of transcription backend calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.EmbeddingDuration, err = m.Float64Histogram("callsift.embedding.duration",
		metric.WithDescription("Latency of embedding batch encodes."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.FilesProcessed, err = m.Int64Counter("callsift.files.processed",
		metric.WithDescription("Total audited files by outcome status."),
	); err != nil {
		return nil, err
	}
	if met.LearningObservations, err = m.Int64Counter("callsift.learning.observations",
		metric.WithDescription("Total phrase observations by outcome."),
	); err != nil {
		return nil, err
	}
	if met.Errors, err = m.Int64Counter("callsift.errors",
		metric.WithDescription("Total pipeline errors by stage."),
	); err != nil {
		return nil, err
	}

	// Gauges.
	if met.BatchSize, err = m.Int64Gauge("callsift.batch.size",
		metric.WithDescription("Adaptive batch size of the current batch."),
	); err != nil {
		return nil, err
	}
	if met.ActiveWorkers, err = m.Int64UpDownCounter("callsift.active_workers",
		metric.WithDescription("Files currently being processed."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordFileProcessed records one finished file with its outcome status.
func (m *Metrics) RecordFileProcessed(ctx context.Context, status string) {
	m.FilesProcessed.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)))
}

// ObserveDetector records one detector's latency.
func (m *Metrics) ObserveDetector(ctx context.Context, detector string, d time.Duration) {
	m.DetectorDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("detector", detector)))
}

// ObserveTranscription records one transcription call's latency.
func (m *Metrics) ObserveTranscription(ctx context.Context, d time.Duration) {
	m.TranscriptionDuration.Record(ctx, d.Seconds())
}

// ObserveEmbedding records one embedding batch encode's latency.
func (m *Metrics) ObserveEmbedding(ctx context.Context, d time.Duration) {
	m.EmbeddingDuration.Record(ctx, d.Seconds())
}

// RecordLearningObservation records one phrase observation outcome.
func (m *Metrics) RecordLearningObservation(ctx context.Context, outcome string) {
	m.LearningObservations.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordError records one pipeline error for the given stage.
func (m *Metrics) RecordError(ctx context.Context, stage string) {
	m.Errors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordBatchSize records the batch size chosen for the current batch.
func (m *Metrics) RecordBatchSize(ctx context.Context, size int) {
	m.BatchSize.Record(ctx, int64(size))
}
