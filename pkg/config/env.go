package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	bterrors "github.com/ducminhle1904/strategy-backtester/internal/errors"
)

// LoadEnv loads a .env file into the process environment. Variables already
// set win over the file. A missing file returns an error wrapping
// os.ErrNotExist so callers can treat it as a warning.
func LoadEnv(envFile string) error {
	if _, err := os.Stat(envFile); err != nil {
		return fmt.Errorf("env file %s: %w", envFile, err)
	}
	return godotenv.Load(envFile)
}

// ApplyEnvOverrides checks the BACKTEST_* environment variables and overrides
// the corresponding configuration fields when they are set
func ApplyEnvOverrides(cfg *RunConfig) error {
	if v := os.Getenv(EnvInitialCapital); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError(EnvInitialCapital, v, err)
		}
		cfg.InitialCapital = f
	}
	if v := os.Getenv(EnvCommission); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError(EnvCommission, v, err)
		}
		cfg.Commission = f
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError(EnvWorkers, v, err)
		}
		cfg.Workers = n
	}
	if v := os.Getenv(EnvDataFile); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv(EnvLogDir); v != "" {
		cfg.LogDir = v
	}
	return nil
}

func envError(name, value string, err error) error {
	return bterrors.WrapError(err, bterrors.ErrorCategoryConfiguration, "config", "parse "+name).
		WithContext("value", value)
}
