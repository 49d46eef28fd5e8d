package indicators

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// ADX represents the Average Directional Index technical indicator
// ADX measures trend strength regardless of direction (0-100 scale)
// Values > 20 indicate trending market, > 40 indicate strong trend
type ADX struct {
	period int
}

// NewADX creates a new ADX indicator
func NewADX(period int) *ADX {
	return &ADX{period: period}
}

// Compute calculates the ADX series using Wilder's smoothing.
// The first value is defined at index 2*period-1.
func (adx *ADX) Compute(data []types.OHLCV) (map[string][]float64, error) {
	if adx.period <= 0 {
		return nil, fmt.Errorf("invalid ADX period %d", adx.period)
	}

	n := len(data)
	p := float64(adx.period)
	out := nanSeries(n)
	if n < 2*adx.period {
		return map[string][]float64{ColADX: out}, nil
	}

	c := columnsOf(data)
	tr := trueRange(c.highs, c.lows, c.closes)

	dx := nanSeries(n)
	var trSum, plusDMSum, minusDMSum float64
	for i := 1; i < n; i++ {
		// Directional Movement calculation
		plusDM, minusDM := 0.0, 0.0
		highDiff := c.highs[i] - c.highs[i-1]
		lowDiff := c.lows[i-1] - c.lows[i]
		if highDiff > lowDiff && highDiff > 0 {
			plusDM = highDiff
		}
		if lowDiff > highDiff && lowDiff > 0 {
			minusDM = lowDiff
		}

		if i <= adx.period {
			trSum += tr[i]
			plusDMSum += plusDM
			minusDMSum += minusDM
			if i < adx.period {
				continue
			}
		} else {
			trSum = trSum - trSum/p + tr[i]
			plusDMSum = plusDMSum - plusDMSum/p + plusDM
			minusDMSum = minusDMSum - minusDMSum/p + minusDM
		}

		if trSum == 0 {
			dx[i] = 0
			continue
		}
		plusDI := plusDMSum / trSum * 100
		minusDI := minusDMSum / trSum * 100
		if diSum := plusDI + minusDI; diSum != 0 {
			dx[i] = math.Abs(plusDI-minusDI) / diSum * 100
		} else {
			dx[i] = 0
		}
	}

	// ADX seed is the mean of the first period DX values
	first := 2*adx.period - 1
	sum := 0.0
	for i := adx.period; i <= first; i++ {
		sum += dx[i]
	}
	value := sum / p
	out[first] = value
	for i := first + 1; i < n; i++ {
		value = (value*(p-1) + dx[i]) / p
		out[i] = value
	}

	return map[string][]float64{ColADX: out}, nil
}

// GetName returns the indicator name
func (adx *ADX) GetName() string {
	return "ADX"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (adx *ADX) GetRequiredPeriods() int {
	return adx.period * 2
}

// Columns returns the produced panel columns
func (adx *ADX) Columns() []string {
	return []string{ColADX}
}
