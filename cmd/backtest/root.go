package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ducminhle1904/strategy-backtester/cmd/common"
	"github.com/ducminhle1904/strategy-backtester/pkg/config"
	"github.com/ducminhle1904/strategy-backtester/pkg/data"
)

const appName = "backtest"

// app carries the state shared by every subcommand
type app struct {
	cfg     *config.RunConfig
	console *common.Console

	envFile    string
	configFile string
	noEmojis   bool
}

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	a := &app{cfg: config.DefaultRunConfig(), console: common.NewConsole()}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Backtest trading strategies against historical OHLCV data",
		Long: `backtest computes technical indicators over a price series, turns a strategy
description into buy and sell signals, simulates a long-only all-in account
and reports performance metrics with a plain-English summary.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.prepare(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env", config.DefaultEnvFile, "Environment file path")
	flags.StringVar(&a.configFile, "config", "", "Run configuration file (YAML)")
	flags.StringVar(&a.cfg.LogDir, "log-dir", a.cfg.LogDir, "Directory for run log files")
	flags.StringVar(&a.cfg.OutputDir, "output", a.cfg.OutputDir, "Directory for report files")
	flags.StringVar(&a.cfg.OutputFormat, "format", a.cfg.OutputFormat, "Output format: console, json, csv, xlsx or all")
	flags.Float64Var(&a.cfg.InitialCapital, "capital", a.cfg.InitialCapital, "Initial capital")
	flags.Float64Var(&a.cfg.Commission, "commission", a.cfg.Commission, "Commission per fill as a fraction (0.001 = 0.1%)")
	flags.StringVar(&a.cfg.Period, "period", "", "Trailing window to test, e.g. 30d, 6m, 1y (default all bars)")
	flags.StringVar(&a.cfg.DataFile, "data", "", "OHLCV data file (.csv, .parquet, .xlsx) or directory")
	flags.StringVar(&a.cfg.Symbol, "symbol", "", "Symbol label (default derived from the data file)")
	flags.BoolVarP(&a.console.Verbose, "verbose", "v", false, "Show pipeline debug and info events")
	flags.BoolVar(&a.console.SilentMode, "silent", false, "Only print warnings, errors and reports")
	flags.BoolVar(&a.noEmojis, "no-emojis", false, "Disable emoji output")

	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newBatchCmd(a))
	rootCmd.AddCommand(newWalkCmd(a))
	rootCmd.AddCommand(newOptimizeCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// prepare resolves the run configuration. Precedence from lowest to
// highest: defaults, config file, environment, explicit flags.
func (a *app) prepare(cmd *cobra.Command) error {
	a.console.ShowEmojis = !a.noEmojis

	if err := config.LoadEnv(a.envFile); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", a.envFile, err)
		}
		if cmd.Flags().Changed("env") {
			a.console.Warn("Env file %s not found", a.envFile)
		}
	}

	flagged := *a.cfg
	resolved := config.DefaultRunConfig()
	if a.configFile != "" {
		loaded, err := config.LoadRunConfig(a.configFile)
		if err != nil {
			return err
		}
		resolved = loaded
	}
	if err := config.ApplyEnvOverrides(resolved); err != nil {
		return err
	}
	applyChangedFlags(cmd, &flagged, resolved)
	*a.cfg = *resolved

	return nil
}

// applyChangedFlags copies every flag the user set explicitly onto cfg
func applyChangedFlags(cmd *cobra.Command, flagged, cfg *config.RunConfig) {
	changed := cmd.Flags().Changed
	if changed("log-dir") {
		cfg.LogDir = flagged.LogDir
	}
	if changed("output") {
		cfg.OutputDir = flagged.OutputDir
	}
	if changed("format") {
		cfg.OutputFormat = flagged.OutputFormat
	}
	if changed("capital") {
		cfg.InitialCapital = flagged.InitialCapital
	}
	if changed("commission") {
		cfg.Commission = flagged.Commission
	}
	if changed("period") {
		cfg.Period = flagged.Period
	}
	if changed("data") {
		cfg.DataFile = flagged.DataFile
	}
	if changed("symbol") {
		cfg.Symbol = flagged.Symbol
	}
	if changed("strategy") {
		cfg.StrategyFile = flagged.StrategyFile
	}
	if changed("workers") {
		cfg.Workers = flagged.Workers
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = flagged.MetricsAddr
	}
}

// trailingPeriod returns the configured window; zero means all bars
func (a *app) trailingPeriod() time.Duration {
	period, _ := data.ParseTrailingPeriod(a.cfg.Period)
	return period
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			common.PrintVersion(cmd.OutOrStdout(), appName)
		},
	}
}
