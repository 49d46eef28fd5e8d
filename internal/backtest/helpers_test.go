package backtest

import (
	"time"

	"github.com/ducminhle1904/strategy-backtester/internal/strategy"
	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// generateBarsFromCloses creates daily bars around the given closes
func generateBarsFromCloses(closes ...float64) []types.OHLCV {
	data := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		data[i] = types.OHLCV{
			Timestamp: testStart.AddDate(0, 0, i),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return data
}

// generateRisingData creates a steadily rising series
func generateRisingData(count int) []types.OHLCV {
	closes := make([]float64, count)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return generateBarsFromCloses(closes...)
}

// signalsFor builds a signal series with the given bars set
func signalsFor(bars []types.OHLCV, buys, sells []int) *strategy.SignalSeries {
	series := strategy.NewSignalSeries(types.Timestamps(bars))
	for _, i := range buys {
		series.Set(i, strategy.SignalBuy, "test entry")
	}
	for _, i := range sells {
		series.Set(i, strategy.SignalSell, "test exit")
	}
	return series
}
