package config

// Package config provides run and strategy configuration for the backtester

// Validator interface for configuration validation
type Validator interface {
	Validate(cfg *RunConfig) error
}

// Output formats understood by the reporting layer
const (
	OutputConsole = "console"
	OutputJSON    = "json"
	OutputCSV     = "csv"
	OutputExcel   = "xlsx"
	OutputAll     = "all"
)

// Common configuration constants
const (
	// Default parameter values
	DefaultInitialCapital = 10000.0
	DefaultCommission     = 0.0
	DefaultWorkers        = 4
	DefaultOutputFormat   = OutputConsole

	// Validation limits
	MaxCommission = 1.0 // exclusive
	MaxWorkers    = 256

	// File and directory constants
	DefaultEnvFile   = ".env"
	DefaultOutputDir = "results"
	DefaultLogDir    = "logs"
)

// Environment variables read by ApplyEnvOverrides
const (
	EnvInitialCapital = "BACKTEST_INITIAL_CAPITAL"
	EnvCommission     = "BACKTEST_COMMISSION"
	EnvDataFile       = "BACKTEST_DATA_FILE"
	EnvOutputDir      = "BACKTEST_OUTPUT_DIR"
	EnvWorkers        = "BACKTEST_WORKERS"
	EnvLogDir         = "BACKTEST_LOG_DIR"
)
