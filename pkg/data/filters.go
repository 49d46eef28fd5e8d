package data

import (
	"fmt"
	"sort"
	"time"

	bterrors "github.com/ducminhle1904/strategy-backtester/internal/errors"
	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// DefaultDataFilter implements DataFilter for common filtering operations
type DefaultDataFilter struct{}

// NewDefaultDataFilter creates a new default data filter
func NewDefaultDataFilter() *DefaultDataFilter {
	return &DefaultDataFilter{}
}

// FilterByPeriod filters data to the last N period
func (f *DefaultDataFilter) FilterByPeriod(data []types.OHLCV, period time.Duration) []types.OHLCV {
	if period <= 0 || len(data) == 0 {
		return data
	}

	cutoffTime := data[len(data)-1].Timestamp.Add(-period)
	startIdx := sort.Search(len(data), func(i int) bool {
		return !data[i].Timestamp.Before(cutoffTime)
	})
	return data[startIdx:]
}

// FilterByDateRange filters data to a specific date range, both ends
// inclusive. A zero start or end leaves that side open.
func (f *DefaultDataFilter) FilterByDateRange(data []types.OHLCV, start, end time.Time) []types.OHLCV {
	filtered := make([]types.OHLCV, 0, len(data))
	for _, candle := range data {
		if !start.IsZero() && candle.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && candle.Timestamp.After(end) {
			continue
		}
		filtered = append(filtered, candle)
	}
	return filtered
}

// ValidateTimeSequence ensures data is in chronological order
func (f *DefaultDataFilter) ValidateTimeSequence(data []types.OHLCV) error {
	for i := 1; i < len(data); i++ {
		if data[i].Timestamp.Before(data[i-1].Timestamp) {
			return bterrors.NewDataError(string(logger.StageData), "validate sequence",
				fmt.Sprintf("data not in chronological order at index %d: %s comes after %s",
					i, data[i].Timestamp.Format(time.RFC3339), data[i-1].Timestamp.Format(time.RFC3339)))
		}
		if data[i].Timestamp.Equal(data[i-1].Timestamp) {
			return bterrors.NewDataError(string(logger.StageData), "validate sequence",
				fmt.Sprintf("duplicate timestamp at index %d: %s", i, data[i].Timestamp.Format(time.RFC3339)))
		}
	}
	return nil
}

// SortByTimestamp returns a copy of data sorted by timestamp. Bars sharing a
// timestamp keep their input order.
func (f *DefaultDataFilter) SortByTimestamp(data []types.OHLCV) []types.OHLCV {
	sorted := make([]types.OHLCV, len(data))
	copy(sorted, data)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// RemoveDuplicates drops repeated timestamps from sorted data, keeping the
// last occurrence
func (f *DefaultDataFilter) RemoveDuplicates(data []types.OHLCV) []types.OHLCV {
	filtered := make([]types.OHLCV, 0, len(data))
	for _, candle := range data {
		if n := len(filtered); n > 0 && filtered[n-1].Timestamp.Equal(candle.Timestamp) {
			filtered[n-1] = candle
			continue
		}
		filtered = append(filtered, candle)
	}
	return filtered
}

// NormalizeSeries sorts bars by timestamp and drops duplicate timestamps,
// keeping the last occurrence
func NormalizeSeries(data []types.OHLCV) []types.OHLCV {
	f := NewDefaultDataFilter()
	return f.RemoveDuplicates(f.SortByTimestamp(data))
}
