package strategy

import (
	"testing"
	"time"

	"github.com/ducminhle1904/strategy-backtester/internal/indicators"
	"github.com/ducminhle1904/strategy-backtester/pkg/types"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// generateBars creates bars from closes with open equal to the previous close
func generateBars(closes []float64) []types.OHLCV {
	bars := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		bars[i] = types.OHLCV{
			Timestamp: testStart.Add(time.Duration(i) * 24 * time.Hour),
			Open:      open,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func flatCloses(count int, price float64) []float64 {
	out := make([]float64, count)
	for i := range out {
		out[i] = price
	}
	return out
}

// constant returns a series of count copies of v with overrides at given bars
func constant(count int, v float64, overrides map[int]float64) []float64 {
	out := flatCloses(count, v)
	for i, o := range overrides {
		out[i] = o
	}
	return out
}

// buildPanel creates a panel over bars with hand-made indicator columns
func buildPanel(t *testing.T, bars []types.OHLCV, columns map[string][]float64) *indicators.Panel {
	t.Helper()
	builder := indicators.NewPanelBuilder(bars)
	for name, values := range columns {
		require.NoError(t, builder.Set(name, values))
	}
	return builder.Build()
}

// rsiCrossingPanel has RSI crossing below 30 at bar 10 and above 70 at bar 50
func rsiCrossingPanel(t *testing.T, count int) *indicators.Panel {
	rsi := constant(count, 50, map[int]float64{9: 35, 10: 25, 11: 45, 49: 65, 50: 75, 51: 60})
	return buildPanel(t, generateBars(flatCloses(count, 100)), map[string][]float64{indicators.ColRSI: rsi})
}

func firedAt(fires []bool) []int {
	var out []int
	for i, f := range fires {
		if f {
			out = append(out, i)
		}
	}
	return out
}

func signalsAt(series *SignalSeries, signal Signal) []int {
	var out []int
	for i, v := range series.Values {
		if v == signal {
			out = append(out, i)
		}
	}
	return out
}
