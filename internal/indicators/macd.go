package indicators

import (
	"fmt"

	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// MACD represents the Moving Average Convergence Divergence indicator
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator
func NewMACD(fastPeriod, slowPeriod, signalPeriod int) *MACD {
	return &MACD{
		fastPeriod:   fastPeriod,
		slowPeriod:   slowPeriod,
		signalPeriod: signalPeriod,
	}
}

// Compute calculates the MACD line, its signal EMA and the histogram
func (m *MACD) Compute(data []types.OHLCV) (map[string][]float64, error) {
	if m.fastPeriod <= 0 || m.slowPeriod <= 0 || m.signalPeriod <= 0 {
		return nil, fmt.Errorf("invalid MACD periods %d/%d/%d", m.fastPeriod, m.slowPeriod, m.signalPeriod)
	}
	if m.fastPeriod >= m.slowPeriod {
		return nil, fmt.Errorf("MACD fast period %d must be below slow period %d", m.fastPeriod, m.slowPeriod)
	}

	closes := types.Closes(data)
	fast := emaSeries(closes, m.fastPeriod)
	slow := emaSeries(closes, m.slowPeriod)

	line := nanSeries(len(closes))
	for i := range closes {
		if isDefined(fast[i]) && isDefined(slow[i]) {
			line[i] = fast[i] - slow[i]
		}
	}

	signal := emaSeries(line, m.signalPeriod)
	histogram := nanSeries(len(closes))
	for i := range closes {
		if isDefined(line[i]) && isDefined(signal[i]) {
			histogram[i] = line[i] - signal[i]
		}
	}

	return map[string][]float64{
		ColMACD:       line,
		ColMACDSignal: signal,
		ColMACDHist:   histogram,
	}, nil
}

// GetName returns the indicator name
func (m *MACD) GetName() string {
	return "MACD"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (m *MACD) GetRequiredPeriods() int {
	return m.slowPeriod + m.signalPeriod - 1
}

// Columns returns the produced panel columns
func (m *MACD) Columns() []string {
	return []string{ColMACD, ColMACDSignal, ColMACDHist}
}
