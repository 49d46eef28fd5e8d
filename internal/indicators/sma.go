package indicators

import (
	"fmt"

	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// SMA represents the Simple Moving Average of closes
type SMA struct {
	period int
	column string
}

// NewSMA creates a new SMA indicator
func NewSMA(period int) *SMA {
	return &SMA{
		period: period,
		column: fmt.Sprintf("sma_%d", period),
	}
}

// Compute calculates the SMA series
func (s *SMA) Compute(data []types.OHLCV) (map[string][]float64, error) {
	if s.period <= 0 {
		return nil, fmt.Errorf("invalid SMA period %d", s.period)
	}
	return map[string][]float64{s.column: smaSeries(types.Closes(data), s.period)}, nil
}

// GetName returns the indicator name
func (s *SMA) GetName() string {
	return fmt.Sprintf("SMA(%d)", s.period)
}

// GetRequiredPeriods returns the minimum number of periods needed
func (s *SMA) GetRequiredPeriods() int {
	return s.period
}

// Columns returns the produced panel columns
func (s *SMA) Columns() []string {
	return []string{s.column}
}
