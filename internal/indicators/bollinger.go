package indicators

import (
	"fmt"

	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// BollingerBands represents the Bollinger Bands technical indicator
type BollingerBands struct {
	period int
	stdDev float64
}

// NewBollingerBands creates a new Bollinger Bands indicator
func NewBollingerBands(period int, stdDev float64) *BollingerBands {
	return &BollingerBands{
		period: period,
		stdDev: stdDev,
	}
}

// Compute calculates the middle SMA and the bands at stdDev population deviations
func (bb *BollingerBands) Compute(data []types.OHLCV) (map[string][]float64, error) {
	if bb.period <= 1 {
		return nil, fmt.Errorf("invalid Bollinger period %d", bb.period)
	}

	closes := types.Closes(data)
	middle := smaSeries(closes, bb.period)
	deviation := rollingStd(closes, middle, bb.period)

	upper := nanSeries(len(closes))
	lower := nanSeries(len(closes))
	for i := range closes {
		if isDefined(middle[i]) && isDefined(deviation[i]) {
			upper[i] = middle[i] + bb.stdDev*deviation[i]
			lower[i] = middle[i] - bb.stdDev*deviation[i]
		}
	}

	return map[string][]float64{
		ColBBUpper:  upper,
		ColBBMiddle: middle,
		ColBBLower:  lower,
	}, nil
}

// GetName returns the indicator name
func (bb *BollingerBands) GetName() string {
	return "BollingerBands"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (bb *BollingerBands) GetRequiredPeriods() int {
	return bb.period
}

// Columns returns the produced panel columns
func (bb *BollingerBands) Columns() []string {
	return []string{ColBBUpper, ColBBMiddle, ColBBLower}
}
