package validation

import (
	"time"

	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// DefaultDataSplitter implements the DataSplitter interface
type DefaultDataSplitter struct{}

// NewDefaultDataSplitter creates a new default data splitter
func NewDefaultDataSplitter() *DefaultDataSplitter {
	return &DefaultDataSplitter{}
}

// SplitByRatio splits data into train/test by ratio. An invalid ratio keeps
// everything in the train set.
func (s *DefaultDataSplitter) SplitByRatio(data []types.OHLCV, ratio float64) ([]types.OHLCV, []types.OHLCV) {
	if ratio <= 0 || ratio >= 1 {
		return data, nil
	}

	n := int(float64(len(data)) * ratio)
	if n < 1 || n >= len(data) {
		return data, nil
	}

	return data[:n], data[n:]
}

// CreateRollingFolds creates rolling walk-forward folds. Windows are measured
// in calendar days from each fold's first bar; a fold with fewer bars than
// the configured minimums ends the sequence.
func (s *DefaultDataSplitter) CreateRollingFolds(data []types.OHLCV, cfg WalkForwardConfig) []WalkForwardFold {
	var folds []WalkForwardFold

	minTrain, minTest := cfg.minBars()
	if cfg.TrainDays <= 0 || cfg.TestDays <= 0 || len(data) < minTrain+minTest {
		return folds
	}

	trainDur := days(cfg.TrainDays)
	testDur := days(cfg.TestDays)
	rollDur := days(cfg.RollDays)
	if cfg.RollDays <= 0 {
		rollDur = testDur
	}

	start := 0
	for {
		trainEndTs := data[start].Timestamp.Add(trainDur)
		trainEnd := start
		for trainEnd < len(data) && data[trainEnd].Timestamp.Before(trainEndTs) {
			trainEnd++
		}

		testEndTs := trainEndTs.Add(testDur)
		testEnd := trainEnd
		for testEnd < len(data) && data[testEnd].Timestamp.Before(testEndTs) {
			testEnd++
		}

		if trainEnd-start < minTrain || testEnd-trainEnd < minTest {
			break
		}

		folds = append(folds, WalkForwardFold{
			Train:      data[start:trainEnd],
			Test:       data[trainEnd:testEnd],
			TrainStart: data[start].Timestamp,
			TrainEnd:   data[trainEnd-1].Timestamp,
			TestStart:  data[trainEnd].Timestamp,
			TestEnd:    data[testEnd-1].Timestamp,
		})

		nextStartTs := data[start].Timestamp.Add(rollDur)
		nextStart := start
		for nextStart < len(data) && data[nextStart].Timestamp.Before(nextStartTs) {
			nextStart++
		}
		if nextStart <= start {
			nextStart = start + 1
		}
		if nextStart >= len(data) {
			break
		}

		start = nextStart
	}

	return folds
}

func (c WalkForwardConfig) minBars() (int, int) {
	minTrain, minTest := c.MinTrainBars, c.MinTestBars
	if minTrain <= 0 {
		minTrain = DefaultMinTrainBars
	}
	if minTest <= 0 {
		minTest = DefaultMinTestBars
	}
	return minTrain, minTest
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// SplitByRatio is a convenience function that uses the default splitter
func SplitByRatio(data []types.OHLCV, ratio float64) ([]types.OHLCV, []types.OHLCV) {
	return NewDefaultDataSplitter().SplitByRatio(data, ratio)
}

// CreateRollingFolds is a convenience function that uses the default splitter
func CreateRollingFolds(data []types.OHLCV, cfg WalkForwardConfig) []WalkForwardFold {
	return NewDefaultDataSplitter().CreateRollingFolds(data, cfg)
}
