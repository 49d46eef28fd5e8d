package indicators

import (
	"fmt"

	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// WilliamsR is Williams %R, ranging from -100 (at the low) to 0 (at the high)
type WilliamsR struct {
	period int
}

// NewWilliamsR creates a new Williams %R indicator
func NewWilliamsR(period int) *WilliamsR {
	return &WilliamsR{period: period}
}

// Compute calculates the %R series. A flat range leaves the value undefined.
func (w *WilliamsR) Compute(data []types.OHLCV) (map[string][]float64, error) {
	if w.period <= 0 {
		return nil, fmt.Errorf("invalid Williams %%R period %d", w.period)
	}

	c := columnsOf(data)
	hh, ll := rollingExtremes(c.highs, c.lows, w.period)

	out := nanSeries(len(data))
	for i := range data {
		if !isDefined(hh[i]) || hh[i] == ll[i] {
			continue
		}
		out[i] = -100 * (hh[i] - c.closes[i]) / (hh[i] - ll[i])
	}
	return map[string][]float64{ColWilliamsR: out}, nil
}

// GetName returns the indicator name
func (w *WilliamsR) GetName() string {
	return "WilliamsR"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (w *WilliamsR) GetRequiredPeriods() int {
	return w.period
}

// Columns returns the produced panel columns
func (w *WilliamsR) Columns() []string {
	return []string{ColWilliamsR}
}
