package indicators

import (
	"fmt"

	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// EMA represents the Exponential Moving Average of closes
type EMA struct {
	period int
	column string
}

// NewEMA creates a new EMA indicator
func NewEMA(period int) *EMA {
	return &EMA{
		period: period,
		column: fmt.Sprintf("ema_%d", period),
	}
}

// Compute calculates the EMA series, seeded with the SMA of the first period closes
func (e *EMA) Compute(data []types.OHLCV) (map[string][]float64, error) {
	if e.period <= 0 {
		return nil, fmt.Errorf("invalid EMA period %d", e.period)
	}
	return map[string][]float64{e.column: emaSeries(types.Closes(data), e.period)}, nil
}

// GetName returns the indicator name
func (e *EMA) GetName() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

// GetRequiredPeriods returns the minimum number of periods needed
func (e *EMA) GetRequiredPeriods() int {
	return e.period
}

// Columns returns the produced panel columns
func (e *EMA) Columns() []string {
	return []string{e.column}
}
