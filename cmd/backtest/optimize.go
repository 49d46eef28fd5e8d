package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/internal/monitoring"
	"github.com/ducminhle1904/strategy-backtester/pkg/config"
	"github.com/ducminhle1904/strategy-backtester/pkg/data"
	"github.com/ducminhle1904/strategy-backtester/pkg/optimization"
	"github.com/ducminhle1904/strategy-backtester/pkg/orchestrator"
	"github.com/ducminhle1904/strategy-backtester/pkg/reporting"
)

func newOptimizeCmd(a *app) *cobra.Command {
	opt := optimization.GetDefaultOptimizationConfig()
	var (
		fitness string
		keys    []string
		save    string
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Search the indicator selection that scores best",
		Long: `Run a genetic algorithm over the selected indicators of a strategy. Text
conditions of the strategy file are kept; every candidate is a full backtest.
Example: backtest optimize --data data/BTCUSDT.csv --fitness sharpe --indicators rsi,macd,bb,sma --save best.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := optimization.ParseFitness(fitness)
			if err != nil {
				return err
			}
			opt.Fitness = f
			opt.Keys = keys
			opt.MaxWorkers = a.cfg.Workers
			return a.runOptimize(cmd, opt, save)
		},
	}
	cmd.Flags().StringVar(&a.cfg.StrategyFile, "strategy", "", "Base strategy file (.yaml, .yml or .json)")
	cmd.Flags().IntVar(&a.cfg.Workers, "workers", a.cfg.Workers, "Concurrent candidate runs")
	cmd.Flags().StringVar(&fitness, "fitness", string(opt.Fitness), "Ranking metric: return, sharpe or calmar")
	cmd.Flags().StringSliceVar(&keys, "indicators", nil, "Indicators to search (default all)")
	cmd.Flags().IntVar(&opt.PopulationSize, "population", opt.PopulationSize, "Population size")
	cmd.Flags().IntVar(&opt.Generations, "generations", opt.Generations, "Number of generations")
	cmd.Flags().IntVar(&opt.MaxIndicators, "max-indicators", opt.MaxIndicators, "Most indicators one candidate may select (0 = no cap)")
	cmd.Flags().Int64Var(&opt.Seed, "seed", 0, "Random seed (0 = clock)")
	cmd.Flags().StringVar(&save, "save", "", "Write the best strategy to this file")
	return cmd
}

func (a *app) runOptimize(cmd *cobra.Command, opt optimization.OptimizationConfig, save string) error {
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
	a.console.Header("Optimize " + symbol)
	a.console.Info("Base strategy: %s", name)

	bars, err := manager.LoadSeries(cfg.DataFile, a.trailingPeriod())
	if err != nil {
		monitoring.RecordError("data")
		return err
	}

	sink, closeSink := a.openFileSink(symbol)
	defer closeSink()

	// candidate runs only go to the file log
	runner := orchestrator.NewRunner(sink, monitoring.NewPrometheusRecorder())
	optimizer := optimization.NewGeneticOptimizer(runner, logger.Multi{a.console, sink})
	result, err := optimizer.Optimize(cmd.Context(), orchestrator.Request{
		Symbol:         symbol,
		Bars:           bars,
		Strategy:       spec,
		InitialCapital: cfg.InitialCapital,
		Commission:     cfg.Commission,
	}, opt)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	best := result.Best.Result
	reporting.NewConsoleReporterTo(out).OutputOptimization(result, opt.Fitness)
	reporting.NewConsoleReporterTo(out).OutputResult(best, name+"+"+strings.Join(result.Selection, "+"))

	if save != "" {
		if err := config.SaveStrategy(save, best.StrategyUsed); err != nil {
			return err
		}
		a.console.Success("Wrote %s", save)
	}
	return nil
}
