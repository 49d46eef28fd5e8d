package indicators

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// cciScale is Lambert's constant that puts most CCI values inside ±100
const cciScale = 0.015

// CCI represents the Commodity Channel Index
type CCI struct {
	period int
}

// NewCCI creates a new CCI indicator
func NewCCI(period int) *CCI {
	return &CCI{period: period}
}

// Compute calculates the CCI series from the typical price
func (c *CCI) Compute(data []types.OHLCV) (map[string][]float64, error) {
	if c.period <= 0 {
		return nil, fmt.Errorf("invalid CCI period %d", c.period)
	}

	typical := make([]float64, len(data))
	for i, bar := range data {
		typical[i] = (bar.High + bar.Low + bar.Close) / 3
	}
	means := smaSeries(typical, c.period)

	out := nanSeries(len(data))
	for i := c.period - 1; i < len(data); i++ {
		if !isDefined(means[i]) {
			continue
		}
		meanDev := 0.0
		for j := i - c.period + 1; j <= i; j++ {
			meanDev += math.Abs(typical[j] - means[i])
		}
		meanDev /= float64(c.period)
		if meanDev == 0 {
			out[i] = 0
			continue
		}
		out[i] = (typical[i] - means[i]) / (cciScale * meanDev)
	}
	return map[string][]float64{ColCCI: out}, nil
}

// GetName returns the indicator name
func (c *CCI) GetName() string {
	return "CCI"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (c *CCI) GetRequiredPeriods() int {
	return c.period
}

// Columns returns the produced panel columns
func (c *CCI) Columns() []string {
	return []string{ColCCI}
}
