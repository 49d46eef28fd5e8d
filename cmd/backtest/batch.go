package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/internal/monitoring"
	"github.com/ducminhle1904/strategy-backtester/pkg/config"
	"github.com/ducminhle1904/strategy-backtester/pkg/data"
	"github.com/ducminhle1904/strategy-backtester/pkg/orchestrator"
	"github.com/ducminhle1904/strategy-backtester/pkg/reporting"
)

func newBatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run every strategy against every data file concurrently",
		Long: `Run a batch of backtests: each strategy of --strategy (a file or a directory)
against each data file of --data (a file or a directory searched recursively).
Example: backtest batch --data data/ --strategy strategies/ --workers 8 --metrics-addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd)
		},
	}
	cmd.Flags().StringVar(&a.cfg.StrategyFile, "strategy", "", "Strategy file or directory of strategy files")
	cmd.Flags().IntVar(&a.cfg.Workers, "workers", a.cfg.Workers, "Concurrent backtests")
	cmd.Flags().StringVar(&a.cfg.MetricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address while the batch runs")
	return cmd
}

type batchPlan struct {
	requests []orchestrator.Request
	labels   []string
}

func (a *app) runBatch(cmd *cobra.Command) error {
	cfg := a.cfg
	if cfg.DataFile == "" {
		return errors.New("no data: use --data or " + config.EnvDataFile)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	plan, err := a.planBatch()
	if err != nil {
		return err
	}
	a.console.Header(fmt.Sprintf("Batch of %d backtests", len(plan.requests)))

	health := monitoring.NewHealthChecker(len(plan.requests))
	if cfg.MetricsAddr != "" {
		shutdown := a.serveMonitoring(cfg.MetricsAddr, health)
		defer shutdown()
	}

	sink, closeSink := a.openFileSink("batch")
	defer closeSink()

	runner := orchestrator.NewRunner(logger.Multi{a.console, sink}, monitoring.NewPrometheusRecorder()).
		WithObserver(func(result *orchestrator.BacktestResult) {
			health.RecordResult(result.Error)
		})

	started := time.Now()
	out, runErr := orchestrator.NewBatchWorkflow(runner, plan.requests, cfg.Workers).Execute(cmd.Context())
	summary := out.(*orchestrator.BatchResult)
	a.console.Progress("Finished %d backtests in %v (%d failed)",
		len(summary.Results), time.Since(started).Round(time.Millisecond), summary.Failed)

	// the batch table is printed for every format
	reportCfg := reporting.ConfigForFormat(cfg.OutputFormat, cfg.OutputDir)
	reportCfg.EnableConsole = true
	reports := reporting.NewReportingManagerWithReporter(reportCfg, reporting.NewReporterTo(cmd.OutOrStdout()))
	written, err := reports.ReportBatch(summary.Results, plan.labels)
	a.console.Info("Wrote %d report files", len(written))
	if err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}

	if summary.Best != nil {
		a.console.Success("Best: %s on %s with %.2f%% return", labelOf(summary, plan), summary.Best.Symbol, summary.Best.TotalReturn)
	}
	return runErr
}

// planBatch builds the cross product of data files and strategies
func (a *app) planBatch() (*batchPlan, error) {
	manager := data.NewDataManager(a.console)
	files, err := manager.FindDataFiles(a.cfg.DataFile)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no data files under %s", a.cfg.DataFile)
	}

	strategies := []config.NamedStrategy{{Name: "default"}}
	strategies[0].Spec = strategies[0].Spec.Normalize()
	if a.cfg.StrategyFile != "" {
		if strategies, err = config.LoadStrategies(a.cfg.StrategyFile); err != nil {
			return nil, err
		}
	}

	plan := &batchPlan{}
	for _, file := range files {
		bars, err := manager.LoadSeries(file, a.trailingPeriod())
		if err != nil {
			// an unreadable file is skipped, the rest of the batch still runs
			a.console.Warn("Skipping %s: %v", file, err)
			monitoring.RecordError("data")
			continue
		}
		symbol := manager.SymbolFromPath(file)
		for _, s := range strategies {
			plan.requests = append(plan.requests, orchestrator.Request{
				Symbol:         symbol,
				Bars:           bars,
				Strategy:       s.Spec,
				InitialCapital: a.cfg.InitialCapital,
				Commission:     a.cfg.Commission,
			})
			plan.labels = append(plan.labels, s.Name)
		}
	}
	if len(plan.requests) == 0 {
		return nil, errors.New("no data file could be loaded")
	}
	return plan, nil
}

// serveMonitoring exposes Prometheus metrics and batch health until the
// returned shutdown function is called
func (a *app) serveMonitoring(addr string, health *monitoring.HealthChecker) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.NewMetricsHandler())
	mux.Handle("/health", health)

	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		a.console.Info("Serving metrics on %s (/metrics, /health)", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.console.Warn("Metrics server stopped: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}
}

func labelOf(summary *orchestrator.BatchResult, plan *batchPlan) string {
	for i, result := range summary.Results {
		if result == summary.Best && i < len(plan.labels) {
			return plan.labels[i]
		}
	}
	return ""
}
