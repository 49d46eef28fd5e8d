package validation

import (
	"context"
	"fmt"
	"math"

	bterrors "github.com/ducminhle1904/strategy-backtester/internal/errors"
	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/pkg/orchestrator"
	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

const dateLayout = "2006-01-02"

// DefaultWalkForwardValidator runs every fold through an orchestrator
type DefaultWalkForwardValidator struct {
	splitter     DataSplitter
	orchestrator orchestrator.Orchestrator
	sink         logger.Sink
}

var _ WalkForwardValidator = (*DefaultWalkForwardValidator)(nil)

// NewDefaultWalkForwardValidator creates a new walk-forward validator
func NewDefaultWalkForwardValidator(orch orchestrator.Orchestrator, sink logger.Sink) *DefaultWalkForwardValidator {
	return &DefaultWalkForwardValidator{
		splitter:     NewDefaultDataSplitter(),
		orchestrator: orch,
		sink:         sink,
	}
}

// Validate runs the strategy of req on the in-sample and out-of-sample part
// of each fold and summarizes how much the out-of-sample return degrades
func (v *DefaultWalkForwardValidator) Validate(ctx context.Context, req orchestrator.Request, cfg WalkForwardConfig) (*WalkForwardSummary, error) {
	log := logger.For(v.sink, logger.StageValidation)

	folds, err := v.folds(req.Bars, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Rolling {
		log.Info("rolling walk-forward: train %dd, test %dd, roll %dd, %d folds",
			cfg.TrainDays, cfg.TestDays, cfg.RollDays, len(folds))
	} else {
		log.Info("holdout split at %.0f%%: %d train bars, %d test bars",
			splitRatio(cfg)*100, len(folds[0].Train), len(folds[0].Test))
	}

	reqs := make([]orchestrator.Request, 0, 2*len(folds))
	for _, fold := range folds {
		train, test := req, req
		train.Bars, test.Bars = fold.Train, fold.Test
		reqs = append(reqs, train, test)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	runs := v.orchestrator.RunBatch(ctx, reqs, workers)

	results := make([]FoldResult, len(folds))
	for i, fold := range folds {
		train, test := runs[2*i], runs[2*i+1]
		for _, run := range []struct {
			part   string
			result *orchestrator.BacktestResult
		}{{"train", train}, {"test", test}} {
			if run.result.Failed() {
				return nil, bterrors.NewBacktestError(bterrors.ErrorCategorySimulation, string(logger.StageValidation),
					fmt.Sprintf("fold %d %s", i+1, run.part), run.result.Error)
			}
		}
		results[i] = FoldResult{Fold: i + 1, Range: fold, Train: train, Test: test}
		log.Info("fold %d: train %s to %s %.2f%%, test %s to %s %.2f%%", i+1,
			fold.TrainStart.Format(dateLayout), fold.TrainEnd.Format(dateLayout), train.TotalReturn,
			fold.TestStart.Format(dateLayout), fold.TestEnd.Format(dateLayout), test.TotalReturn)
	}

	summary := calculateSummary(results)
	log.Info("return degradation %.1f%%, overfitting risk %s", summary.ReturnDegradation, summary.OverfittingRisk)
	return summary, nil
}

func (v *DefaultWalkForwardValidator) folds(data []types.OHLCV, cfg WalkForwardConfig) ([]WalkForwardFold, error) {
	if cfg.Rolling {
		if cfg.TrainDays <= 0 || cfg.TestDays <= 0 || cfg.RollDays < 0 {
			return nil, bterrors.NewConfigurationError(string(logger.StageValidation), "rolling folds",
				"train and test windows must be positive days")
		}
		folds := v.splitter.CreateRollingFolds(data, cfg)
		if len(folds) == 0 {
			return nil, bterrors.NewDataError(string(logger.StageValidation), "rolling folds",
				"not enough data for rolling walk-forward validation")
		}
		return folds, nil
	}

	ratio := splitRatio(cfg)
	if ratio <= 0 || ratio >= 1 {
		return nil, bterrors.NewConfigurationError(string(logger.StageValidation), "holdout split",
			fmt.Sprintf("split ratio %v must be between 0 and 1", ratio))
	}
	train, test := v.splitter.SplitByRatio(data, ratio)
	minTrain, minTest := cfg.minBars()
	if len(train) < minTrain || len(test) < minTest {
		return nil, bterrors.NewDataError(string(logger.StageValidation), "holdout split",
			fmt.Sprintf("need %d train and %d test bars, have %d and %d", minTrain, minTest, len(train), len(test)))
	}
	return []WalkForwardFold{{
		Train:      train,
		Test:       test,
		TrainStart: train[0].Timestamp,
		TrainEnd:   train[len(train)-1].Timestamp,
		TestStart:  test[0].Timestamp,
		TestEnd:    test[len(test)-1].Timestamp,
	}}, nil
}

func splitRatio(cfg WalkForwardConfig) float64 {
	if cfg.SplitRatio == 0 {
		return DefaultSplitRatio
	}
	return cfg.SplitRatio
}

// calculateSummary calculates summary statistics from all results
func calculateSummary(results []FoldResult) *WalkForwardSummary {
	if len(results) == 0 {
		return &WalkForwardSummary{OverfittingRisk: RiskLow, IsRobust: true}
	}

	var trainReturns, testReturns []float64
	var trainDrawdowns, testDrawdowns []float64
	for _, r := range results {
		trainReturns = append(trainReturns, r.Train.TotalReturn)
		testReturns = append(testReturns, r.Test.TotalReturn)
		trainDrawdowns = append(trainDrawdowns, r.Train.MaxDrawdown)
		testDrawdowns = append(testDrawdowns, r.Test.MaxDrawdown)
	}

	avgTrainReturn := average(trainReturns)
	avgTestReturn := average(testReturns)
	degradation := (avgTrainReturn - avgTestReturn) / math.Max(0.01, math.Abs(avgTrainReturn)) * 100

	risk := RiskLow
	switch {
	case degradation > HighOverfittingThreshold:
		risk = RiskHigh
	case degradation > ModerateOverfittingThreshold:
		risk = RiskModerate
	}

	return &WalkForwardSummary{
		Results:              results,
		AverageTrainReturn:   avgTrainReturn,
		AverageTestReturn:    avgTestReturn,
		TrainReturnStdDev:    stdDev(trainReturns),
		TestReturnStdDev:     stdDev(testReturns),
		AverageTrainDrawdown: average(trainDrawdowns),
		AverageTestDrawdown:  average(testDrawdowns),
		ReturnDegradation:    degradation,
		IsRobust:             degradation <= HighOverfittingThreshold,
		OverfittingRisk:      risk,
	}
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the sample standard deviation
func stdDev(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}

	avg := average(values)
	sumSquares := 0.0
	for _, v := range values {
		diff := v - avg
		sumSquares += diff * diff
	}

	return math.Sqrt(sumSquares / float64(len(values)-1))
}
