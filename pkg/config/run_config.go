package config

import (
	"os"

	"gopkg.in/yaml.v3"

	bterrors "github.com/ducminhle1904/strategy-backtester/internal/errors"
)

// RunConfig holds everything a backtest invocation needs besides the strategy
type RunConfig struct {
	Symbol         string  `yaml:"symbol" json:"symbol"`
	DataFile       string  `yaml:"data_file" json:"data_file"`
	StrategyFile   string  `yaml:"strategy_file" json:"strategy_file"`
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital"`
	Commission     float64 `yaml:"commission" json:"commission"`
	Period         string  `yaml:"period" json:"period"` // trailing window such as "180d"; empty uses all bars
	OutputFormat   string  `yaml:"output_format" json:"output_format"`
	OutputDir      string  `yaml:"output_dir" json:"output_dir"`
	Workers        int     `yaml:"workers" json:"workers"`
	LogDir         string  `yaml:"log_dir" json:"log_dir"`
	MetricsAddr    string  `yaml:"metrics_addr" json:"metrics_addr"`
}

// DefaultRunConfig returns the configuration used when nothing overrides it
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		InitialCapital: DefaultInitialCapital,
		Commission:     DefaultCommission,
		OutputFormat:   DefaultOutputFormat,
		OutputDir:      DefaultOutputDir,
		Workers:        DefaultWorkers,
		LogDir:         DefaultLogDir,
	}
}

// LoadRunConfig reads a YAML run configuration on top of the defaults
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, bterrors.WrapError(err, bterrors.ErrorCategoryConfiguration, "config", "read run config")
	}

	cfg := DefaultRunConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, bterrors.WrapError(err, bterrors.ErrorCategoryConfiguration, "config", "parse run config")
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *RunConfig) Validate() error {
	return NewRunConfigValidator().Validate(c)
}
