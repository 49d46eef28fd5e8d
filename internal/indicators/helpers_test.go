package indicators

import (
	"math"
	"time"

	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// generateTestData creates a gently oscillating upward series
func generateTestData(count int) []types.OHLCV {
	data := make([]types.OHLCV, count)
	for i := 0; i < count; i++ {
		price := 100.0 + float64(i)*0.5 + math.Sin(float64(i)/3)*2
		data[i] = types.OHLCV{
			Timestamp: testStart.Add(time.Duration(i) * time.Hour),
			Open:      price - 0.5,
			High:      price + 1.0,
			Low:       price - 1.0,
			Close:     price,
			Volume:    1000.0 + float64(i%5)*100,
		}
	}
	return data
}

// generateFlatData creates a series where every close is 100
func generateFlatData(count int) []types.OHLCV {
	data := make([]types.OHLCV, count)
	for i := 0; i < count; i++ {
		data[i] = types.OHLCV{
			Timestamp: testStart.Add(time.Duration(i) * time.Hour),
			Open:      100.0,
			High:      101.0,
			Low:       99.0,
			Close:     100.0,
			Volume:    1000.0,
		}
	}
	return data
}

// generateTrendData creates a strictly rising (step > 0) or falling series
func generateTrendData(count int, step float64) []types.OHLCV {
	data := make([]types.OHLCV, count)
	for i := 0; i < count; i++ {
		price := 200.0 + float64(i)*step
		data[i] = types.OHLCV{
			Timestamp: testStart.Add(time.Duration(i) * time.Hour),
			Open:      price - step/2,
			High:      price + 1.0,
			Low:       price - 1.0,
			Close:     price,
			Volume:    1000.0,
		}
	}
	return data
}

// generateVolatileData alternates between large swings
func generateVolatileData(count int) []types.OHLCV {
	data := make([]types.OHLCV, count)
	basePrice := 100.0

	for i := 0; i < count; i++ {
		// Large price swings
		change := (float64(i%2)*2 - 1) * 20.0 // -20 or +20
		price := basePrice + change

		data[i] = types.OHLCV{
			Timestamp: testStart.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price + 5.0,
			Low:       price - 5.0,
			Close:     price,
			Volume:    1000.0,
		}
	}

	return data
}

func countDefined(values []float64) int {
	n := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

func lastValue(values []float64) float64 {
	return values[len(values)-1]
}
