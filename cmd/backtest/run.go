package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/internal/monitoring"
	"github.com/ducminhle1904/strategy-backtester/internal/strategy"
	"github.com/ducminhle1904/strategy-backtester/pkg/config"
	"github.com/ducminhle1904/strategy-backtester/pkg/data"
	"github.com/ducminhle1904/strategy-backtester/pkg/orchestrator"
	"github.com/ducminhle1904/strategy-backtester/pkg/reporting"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one backtest",
		Long: `Run one backtest of a strategy file against one data file.
Example: backtest run --data data/BTCUSDT.csv --strategy strategies/rsi.yaml --format all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSingle(cmd)
		},
	}
	cmd.Flags().StringVar(&a.cfg.StrategyFile, "strategy", "", "Strategy file (.yaml, .yml or .json); empty runs with no rules")
	return cmd
}

func (a *app) runSingle(cmd *cobra.Command) error {
	cfg := a.cfg
	if cfg.DataFile == "" {
		return errors.New("no data file: use --data or " + config.EnvDataFile)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	spec, name, err := loadStrategyOrEmpty(cfg.StrategyFile)
	if err != nil {
		return err
	}

	manager := data.NewDataManager(a.console)
	symbol := cfg.Symbol
	if symbol == "" {
		symbol = manager.SymbolFromPath(cfg.DataFile)
	}

	a.console.Header("Backtest " + symbol)
	a.console.Info("Data: %s", cfg.DataFile)
	a.console.Info("Strategy: %s", name)

	sink, closeSink := a.openFileSink(symbol)
	defer closeSink()

	bars, err := manager.LoadSeries(cfg.DataFile, a.trailingPeriod())
	if err != nil {
		monitoring.RecordError("data")
		return err
	}
	a.console.Info("Loaded %d bars", len(bars))

	runner := orchestrator.NewRunner(logger.Multi{a.console, sink}, monitoring.NewPrometheusRecorder())
	workflow := orchestrator.NewSingleBacktestWorkflow(runner, orchestrator.Request{
		Symbol:         symbol,
		Bars:           bars,
		Strategy:       spec,
		InitialCapital: cfg.InitialCapital,
		Commission:     cfg.Commission,
	})
	out, runErr := workflow.Execute(cmd.Context())
	result := out.(*orchestrator.BacktestResult)

	reports := reporting.NewReportingManagerWithReporter(
		reporting.ConfigForFormat(cfg.OutputFormat, cfg.OutputDir),
		reporting.NewReporterTo(cmd.OutOrStdout()),
	)
	written, err := reports.ReportResult(result, name)
	for _, path := range written {
		a.console.Success("Wrote %s", path)
	}
	if err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}

	if runErr != nil {
		return fmt.Errorf("backtest of %s failed: %w", symbol, runErr)
	}
	a.console.Success("Backtest complete: %d trades, %.2f%% return", result.TotalTrades, result.TotalReturn)
	return nil
}

// openFileSink opens the per-symbol log file. A log file that cannot be
// created only costs the file log.
func (a *app) openFileSink(symbol string) (logger.Sink, func()) {
	minimum := logger.SeverityInfo
	if a.console.Verbose {
		minimum = logger.SeverityDebug
	}
	fileSink, err := logger.NewFileSink(a.cfg.LogDir, symbol, minimum)
	if err != nil {
		a.console.Warn("File logging disabled: %v", err)
		return logger.Nop{}, func() {}
	}
	a.console.Info("Logging to %s", fileSink.GetLogPath())
	return fileSink, func() { fileSink.Close() }
}

// loadStrategyOrEmpty returns the empty strategy when no file is given
func loadStrategyOrEmpty(path string) (strategy.Spec, string, error) {
	if path == "" {
		return strategy.Spec{}.Normalize(), "default", nil
	}
	spec, err := config.LoadStrategy(path)
	if err != nil {
		return strategy.Spec{}, "", err
	}
	base := filepath.Base(path)
	return spec, strings.TrimSuffix(base, filepath.Ext(base)), nil
}
