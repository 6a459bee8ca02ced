package observe

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ProviderConfig configures telemetry for a batch run.
type ProviderConfig struct {
	// ServiceName identifies this process in exported telemetry.
	// Default: "callsift".
	ServiceName string

	// ServiceVersion is the build version stamped on every metric and span.
	ServiceVersion string

	// TraceExporter receives per-file pipeline spans. A batch run is a CLI
	// process, so there is usually no collector to ship spans to and this is
	// left nil: spans still propagate trace IDs into logs but are never
	// exported. Set it when running under an OTLP collector.
	TraceExporter sdktrace.SpanExporter
}

// InitProvider wires up the global OTel providers for one audit run: a
// MeterProvider backed by a Prometheus registry, scraped through the
// /metrics endpoint served when observability.listenAddr is set, and a
// TracerProvider whose spans carry the per-recording trace IDs that
// [Logger] stitches into the batch log.
//
// The returned shutdown function flushes both providers; defer it in the
// command that called InitProvider.
func InitProvider(ctx context.Context, cfg ProviderConfig) (shutdown func(context.Context) error, err error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "callsift"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	// The Prometheus exporter doubles as the metric reader: batch metrics
	// land in the default registry that the listener serves.
	promExp, err := promexporter.New()
	if err != nil {
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExp),
	)
	otel.SetMeterProvider(mp)

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.TraceExporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(cfg.TraceExporter))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tp)

	shutdown = func(ctx context.Context) error {
		return errors.Join(mp.Shutdown(ctx), tp.Shutdown(ctx))
	}
	return shutdown, nil
}
