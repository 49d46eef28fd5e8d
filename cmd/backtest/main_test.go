package main

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/strategy-backtester/pkg/config"
)

// writeBars writes a CSV series whose closes swing between 60 and 140
func writeBars(t *testing.T, dir, name string, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("timestamp,open,high,low,close,volume\n")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := 100 + 40*math.Sin(float64(i)/6)
		fmt.Fprintf(&b, "%s,%.4f,%.4f,%.4f,%.4f,%d\n",
			start.Add(time.Duration(i)*24*time.Hour).Format(time.RFC3339), c, c+1, c-1, c, 1000+i)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--silent", "--env", filepath.Join(t.TempDir(), ".env")))
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommand_WritesReports(t *testing.T) {
	dir := t.TempDir()
	dataPath := writeBars(t, dir, "btcusdt.csv", 120)
	strategyPath := filepath.Join(dir, "rsi.yaml")
	require.NoError(t, os.WriteFile(strategyPath, []byte("entry_conditions: [RSI below 30]\nexit_conditions: [RSI above 70]\n"), 0o644))
	outDir := filepath.Join(dir, "results")

	out, err := execute(t, "run",
		"--data", dataPath,
		"--strategy", strategyPath,
		"--format", config.OutputAll,
		"--output", outDir,
		"--log-dir", filepath.Join(dir, "logs"),
	)

	require.NoError(t, err)
	assert.Contains(t, out, "BACKTEST RESULTS: BTCUSDT")
	resultDir := filepath.Join(outDir, "BTCUSDT_rsi")
	assert.FileExists(t, filepath.Join(resultDir, "result.json"))
	assert.FileExists(t, filepath.Join(resultDir, "trades.csv"))
	assert.FileExists(t, filepath.Join(resultDir, "equity.csv"))
	assert.FileExists(t, filepath.Join(resultDir, "backtest.xlsx"))
}

func TestRunCommand_RequiresData(t *testing.T) {
	t.Setenv(config.EnvDataFile, "")
	_, err := execute(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data file")
}

func TestRunCommand_InvalidCommission(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "run", "--data", writeBars(t, dir, "eth.csv", 30), "--commission", "1.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFIG")
}

func TestBatchCommand_CrossProduct(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	writeBars(t, dataDir, "aaa.csv", 90)
	writeBars(t, dataDir, "bbb.csv", 90)
	strategies := filepath.Join(dir, "strategies")
	require.NoError(t, os.MkdirAll(strategies, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(strategies, "rsi.yaml"), []byte("selected_indicators: [rsi]\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(strategies, "macd.yaml"), []byte("selected_indicators: [macd]\n"), 0o644))
	outDir := filepath.Join(dir, "results")

	out, err := execute(t, "batch",
		"--data", dataDir,
		"--strategy", strategies,
		"--workers", "2",
		"--format", config.OutputJSON,
		"--output", outDir,
		"--log-dir", filepath.Join(dir, "logs"),
	)

	require.NoError(t, err)
	assert.Contains(t, out, "Batch Summary")
	for _, name := range []string{"AAA_macd", "AAA_rsi", "BBB_macd", "BBB_rsi"} {
		assert.FileExists(t, filepath.Join(outDir, name, "result.json"))
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, appName+" v")
}

func TestWalkCommand_Holdout(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "walk",
		"--data", writeBars(t, dir, "sol.csv", 150),
		"--split", "0.6",
		"--log-dir", filepath.Join(dir, "logs"),
	)

	require.NoError(t, err)
	assert.Contains(t, out, "Walk-Forward Validation")
	assert.Contains(t, out, "Return degradation")
}

func TestOptimizeCommand_SavesBestStrategy(t *testing.T) {
	dir := t.TempDir()
	save := filepath.Join(dir, "best.yaml")

	out, err := execute(t, "optimize",
		"--data", writeBars(t, dir, "ada.csv", 120),
		"--indicators", "rsi,macd",
		"--population", "4",
		"--generations", "2",
		"--seed", "5",
		"--fitness", "return",
		"--save", save,
		"--log-dir", filepath.Join(dir, "logs"),
	)

	require.NoError(t, err)
	assert.Contains(t, out, "Genetic Optimization (return)")
	assert.Contains(t, out, "BACKTEST RESULTS: ADA")
	spec, err := config.LoadStrategy(save)
	require.NoError(t, err)
	assert.NotEmpty(t, spec.SelectedIndicators)
}

func TestOptimizeCommand_UnknownFitness(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "optimize", "--data", writeBars(t, dir, "ada.csv", 30), "--fitness", "luck")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown fitness")
}
