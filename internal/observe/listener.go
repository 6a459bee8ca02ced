package observe

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StartMetricsServer serves the Prometheus /metrics endpoint on addr for the
// duration of a batch run. It returns a stop function that shuts the server
// down; the caller defers it from main.
//
// The Prometheus exporter wired by [InitProvider] registers with the default
// Prometheus registry, which is what promhttp serves.
func StartMetricsServer(addr string, log *slog.Logger) func(context.Context) error {
	if log == nil {
		log = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics endpoint failed", "error", err)
		}
	}()

	return srv.Shutdown
}
