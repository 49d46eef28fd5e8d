package indicators

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// RSI calculates the Relative Strength Index with Wilder smoothing
type RSI struct {
	period int
}

// NewRSI creates a new RSI instance with the given period
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

// Compute calculates the RSI series. The first value is defined at index period.
func (r *RSI) Compute(data []types.OHLCV) (map[string][]float64, error) {
	if r.period <= 0 {
		return nil, fmt.Errorf("invalid RSI period %d", r.period)
	}
	return map[string][]float64{ColRSI: rsiSeries(types.Closes(data), r.period)}, nil
}

func rsiSeries(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if len(closes) <= period {
		return out
	}

	// Seed average gain/loss with the simple mean of the first period changes
	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		change := priceChange(closes, i)
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += math.Abs(change)
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		change := priceChange(closes, i)
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = math.Abs(change)
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

// priceChange treats a move into or out of a malformed close as flat
func priceChange(closes []float64, i int) float64 {
	change := closes[i] - closes[i-1]
	if !isDefined(change) {
		return 0
	}
	return change
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// GetName returns the indicator name
func (r *RSI) GetName() string {
	return "RSI"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (r *RSI) GetRequiredPeriods() int {
	return r.period + 1
}

// Columns returns the produced panel columns
func (r *RSI) Columns() []string {
	return []string{ColRSI}
}
