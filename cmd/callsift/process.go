package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/callsift/callsift/internal/batch"
	"github.com/callsift/callsift/internal/observe"
	"github.com/callsift/callsift/internal/result"
)

func newProcessCommand(configPath *string) *cobra.Command {
	var (
		user       string
		workers    int
		showAll    bool
		lite       bool
		timeoutSec int
		csvPath    string
	)

	cmd := &cobra.Command{
		Use:   "process <folder>",
		Short: "Audit every recording in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, cfg, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				_ = application.Shutdown(shutdownCtx)
			}()

			// One writer per workspace: a second concurrent run would race
			// on the learning store.
			lock := flock.New(cfg.Store.Path + ".lock")
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire workspace lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another callsift run is already processing this workspace")
			}
			defer lock.Unlock()

			otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
				ServiceVersion: version,
			})
			if err != nil {
				return fmt.Errorf("init telemetry: %w", err)
			}
			defer otelShutdown(context.Background())

			if addr := cfg.Observability.ListenAddr; addr != "" {
				stopMetrics := observe.StartMetricsServer(addr, nil)
				defer stopMetrics(context.Background())
			}

			if workers == 0 {
				workers = cfg.Batch.MaxWorkers
			}
			timeout := time.Duration(timeoutSec) * time.Second
			if timeoutSec == 0 {
				timeout = time.Duration(cfg.Batch.PerFileTimeoutSec) * time.Second
			}

			opts := batch.RunOptions{
				Workers:     workers,
				Lite:        lite,
				FileTimeout: timeout,
				Progress: func(done, total int) {
					fmt.Fprintf(os.Stderr, "\rprocessed %d/%d", done, total)
				},
			}

			start := time.Now()
			table, err := application.Engine().ProcessFolder(ctx, args[0], user, opts)
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return err
			}

			rows := table.Flagged()
			if showAll {
				rows = table.All()
			}
			rows = append(rows, table.Errors()...)
			if err := result.Render(os.Stdout, rows); err != nil {
				return err
			}

			if csvPath != "" {
				if err := exportCSV(csvPath, append(table.All(), table.Errors()...)); err != nil {
					return err
				}
				fmt.Printf("results written to %s\n", csvPath)
			}

			fmt.Printf("%d files audited, %d flagged, %d errors in %s\n",
				table.Len(), len(table.Flagged()), len(table.Errors()),
				time.Since(start).Round(time.Second))

			if application.Degraded() {
				fmt.Fprintln(os.Stderr, "warning: learning store degraded during the run; new phrases may not have been recorded")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "default", "user whose settings and phrase catalogue apply")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker pool size (0 derives it from the account tier)")
	cmd.Flags().BoolVar(&showAll, "show-all", false, "show every result, not only flagged calls")
	cmd.Flags().BoolVar(&lite, "lite", false, "skip transcription and rebuttal detection")
	cmd.Flags().IntVar(&timeoutSec, "timeout", 0, "per-file timeout in seconds (0 uses the config value)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "also export all results to this CSV file")

	return cmd
}

func exportCSV(path string, rows []*result.FileResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := result.WriteCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}
