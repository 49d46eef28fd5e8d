package config

import (
	"fmt"
	"path/filepath"
	"strings"

	bterrors "github.com/ducminhle1904/strategy-backtester/internal/errors"
	"github.com/ducminhle1904/strategy-backtester/pkg/data"
)

// RunConfigValidator implements validation for run configurations
type RunConfigValidator struct{}

// NewRunConfigValidator creates a new run configuration validator
func NewRunConfigValidator() *RunConfigValidator {
	return &RunConfigValidator{}
}

// Validate performs basic validation on configuration parameters
func (v *RunConfigValidator) Validate(cfg *RunConfig) error {
	if cfg.InitialCapital <= 0 {
		return invalid("initial capital must be positive, got: %.2f", cfg.InitialCapital)
	}

	if cfg.Commission < 0 || cfg.Commission >= MaxCommission {
		return invalid("commission must be in [0, %.2f), got: %.4f", MaxCommission, cfg.Commission)
	}

	if cfg.Workers <= 0 || cfg.Workers > MaxWorkers {
		return invalid("workers must be between 1 and %d, got: %d", MaxWorkers, cfg.Workers)
	}

	if !validOutputFormat(cfg.OutputFormat) {
		return invalid("unsupported output format %q (use %s)", cfg.OutputFormat,
			strings.Join([]string{OutputConsole, OutputJSON, OutputCSV, OutputExcel, OutputAll}, ", "))
	}

	if cfg.Period != "" {
		if _, ok := data.ParseTrailingPeriod(cfg.Period); !ok {
			return invalid("invalid period %q, expected forms like 30d or 168h", cfg.Period)
		}
	}

	// a data path without extension is a directory of bar files
	if filepath.Ext(cfg.DataFile) != "" && !data.IsSupportedFile(cfg.DataFile) {
		return invalid("data file %s must be .csv, .parquet or .xlsx", cfg.DataFile)
	}

	return nil
}

func validOutputFormat(format string) bool {
	switch format {
	case OutputConsole, OutputJSON, OutputCSV, OutputExcel, OutputAll:
		return true
	}
	return false
}

func invalid(format string, args ...interface{}) error {
	return bterrors.NewConfigurationError("config", "validate", fmt.Sprintf(format, args...))
}
