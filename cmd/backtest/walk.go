package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/internal/monitoring"
	"github.com/ducminhle1904/strategy-backtester/pkg/config"
	"github.com/ducminhle1904/strategy-backtester/pkg/data"
	"github.com/ducminhle1904/strategy-backtester/pkg/orchestrator"
	"github.com/ducminhle1904/strategy-backtester/pkg/reporting"
	"github.com/ducminhle1904/strategy-backtester/pkg/validation"
)

func newWalkCmd(a *app) *cobra.Command {
	wf := validation.WalkForwardConfig{SplitRatio: validation.DefaultSplitRatio}

	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Compare in-sample and out-of-sample performance of a strategy",
		Long: `Walk-forward validation: run the strategy on a train window and on the
following test window, either once (holdout split) or on rolling folds, and
report how much the out-of-sample return degrades.
Example: backtest walk --data data/BTCUSDT.csv --strategy rsi.yaml --rolling --train-days 180 --test-days 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wf.Workers = a.cfg.Workers
			return a.runWalk(cmd, wf)
		},
	}
	cmd.Flags().StringVar(&a.cfg.StrategyFile, "strategy", "", "Strategy file (.yaml, .yml or .json)")
	cmd.Flags().IntVar(&a.cfg.Workers, "workers", a.cfg.Workers, "Concurrent fold runs")
	cmd.Flags().BoolVar(&wf.Rolling, "rolling", false, "Use rolling folds instead of a single holdout split")
	cmd.Flags().Float64Var(&wf.SplitRatio, "split", wf.SplitRatio, "Train share of the series for the holdout split")
	cmd.Flags().IntVar(&wf.TrainDays, "train-days", 180, "Train window in days (rolling)")
	cmd.Flags().IntVar(&wf.TestDays, "test-days", 30, "Test window in days (rolling)")
	cmd.Flags().IntVar(&wf.RollDays, "roll-days", 30, "Step between folds in days (rolling)")
	return cmd
}

func (a *app) runWalk(cmd *cobra.Command, wf validation.WalkForwardConfig) error {
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
	a.console.Header("Walk-forward " + symbol)
	a.console.Info("Strategy: %s", name)

	bars, err := manager.LoadSeries(cfg.DataFile, a.trailingPeriod())
	if err != nil {
		return err
	}

	sink, closeSink := a.openFileSink(symbol)
	defer closeSink()
	sinks := logger.Multi{a.console, sink}

	runner := orchestrator.NewRunner(sinks, monitoring.NewPrometheusRecorder())
	summary, err := validation.NewDefaultWalkForwardValidator(runner, sinks).Validate(cmd.Context(), orchestrator.Request{
		Symbol:         symbol,
		Bars:           bars,
		Strategy:       spec,
		InitialCapital: cfg.InitialCapital,
		Commission:     cfg.Commission,
	}, wf)
	if err != nil {
		return err
	}

	reporting.NewConsoleReporterTo(cmd.OutOrStdout()).OutputWalkForward(summary)
	return nil
}
