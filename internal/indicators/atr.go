package indicators

import (
	"fmt"

	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// ATR represents the Average True Range technical indicator
// ATR measures market volatility as the mean true range over the period
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

// Compute calculates the ATR series
func (a *ATR) Compute(data []types.OHLCV) (map[string][]float64, error) {
	if a.period <= 0 {
		return nil, fmt.Errorf("invalid ATR period %d", a.period)
	}
	c := columnsOf(data)
	return map[string][]float64{ColATR: smaSeries(trueRange(c.highs, c.lows, c.closes), a.period)}, nil
}

// GetName returns the indicator name
func (a *ATR) GetName() string {
	return "ATR"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (a *ATR) GetRequiredPeriods() int {
	return a.period
}

// Columns returns the produced panel columns
func (a *ATR) Columns() []string {
	return []string{ColATR}
}
