package validation

import (
	"context"
	"time"

	"github.com/ducminhle1904/strategy-backtester/pkg/orchestrator"
	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// Package validation checks whether a strategy behaves consistently on
// data it was not tuned on, by comparing in-sample and out-of-sample runs

// WalkForwardValidator defines the interface for walk-forward validation
type WalkForwardValidator interface {
	Validate(ctx context.Context, req orchestrator.Request, cfg WalkForwardConfig) (*WalkForwardSummary, error)
}

// DataSplitter defines the interface for splitting data into train/test sets
type DataSplitter interface {
	SplitByRatio(data []types.OHLCV, ratio float64) ([]types.OHLCV, []types.OHLCV)
	CreateRollingFolds(data []types.OHLCV, cfg WalkForwardConfig) []WalkForwardFold
}

// Fold size limits used when the configuration leaves them at zero
const (
	DefaultMinTrainBars = 50
	DefaultMinTestBars  = 10
	DefaultSplitRatio   = 0.7
)

// Degradation thresholds in percent
const (
	HighOverfittingThreshold     = 30.0
	ModerateOverfittingThreshold = 15.0
)

// Overfitting risk levels
const (
	RiskLow      = "LOW"
	RiskModerate = "MODERATE"
	RiskHigh     = "HIGH"
)

// WalkForwardConfig holds the configuration for walk-forward validation
type WalkForwardConfig struct {
	Rolling      bool
	SplitRatio   float64
	TrainDays    int
	TestDays     int
	RollDays     int
	MinTrainBars int
	MinTestBars  int
	Workers      int
}

// WalkForwardFold represents a single fold in walk-forward validation
type WalkForwardFold struct {
	Train      []types.OHLCV
	Test       []types.OHLCV
	TrainStart time.Time
	TrainEnd   time.Time
	TestStart  time.Time
	TestEnd    time.Time
}

// FoldResult holds the in-sample and out-of-sample runs of one fold
type FoldResult struct {
	Fold  int
	Range WalkForwardFold
	Train *orchestrator.BacktestResult
	Test  *orchestrator.BacktestResult
}

// WalkForwardSummary holds the summary of all walk-forward validation results
type WalkForwardSummary struct {
	Results              []FoldResult
	AverageTrainReturn   float64
	AverageTestReturn    float64
	TrainReturnStdDev    float64
	TestReturnStdDev     float64
	AverageTrainDrawdown float64
	AverageTestDrawdown  float64
	ReturnDegradation    float64
	IsRobust             bool
	OverfittingRisk      string
}
