package indicators

import (
	"fmt"

	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// Stochastic is the stochastic oscillator: %K locates the close inside the
// high/low range of the last kPeriod bars, %D is the dPeriod mean of %K
type Stochastic struct {
	kPeriod int
	dPeriod int
}

// NewStochastic creates a new stochastic oscillator
func NewStochastic(kPeriod, dPeriod int) *Stochastic {
	return &Stochastic{kPeriod: kPeriod, dPeriod: dPeriod}
}

// Compute calculates %K and %D. A flat range leaves %K undefined.
func (s *Stochastic) Compute(data []types.OHLCV) (map[string][]float64, error) {
	if s.kPeriod <= 0 || s.dPeriod <= 0 {
		return nil, fmt.Errorf("invalid stochastic periods %d/%d", s.kPeriod, s.dPeriod)
	}

	c := columnsOf(data)
	hh, ll := rollingExtremes(c.highs, c.lows, s.kPeriod)

	k := nanSeries(len(data))
	for i := range data {
		if !isDefined(hh[i]) || hh[i] == ll[i] {
			continue
		}
		k[i] = 100 * (c.closes[i] - ll[i]) / (hh[i] - ll[i])
	}

	return map[string][]float64{
		ColStochK: k,
		ColStochD: smaSeries(k, s.dPeriod),
	}, nil
}

// GetName returns the indicator name
func (s *Stochastic) GetName() string {
	return "Stochastic"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (s *Stochastic) GetRequiredPeriods() int {
	return s.kPeriod + s.dPeriod - 1
}

// Columns returns the produced panel columns
func (s *Stochastic) Columns() []string {
	return []string{ColStochK, ColStochD}
}
