package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tradesWithReturns(returns ...float64) []Trade {
	trades := make([]Trade, len(returns))
	for i, r := range returns {
		trades[i] = Trade{
			EntryTime:   testStart.AddDate(0, 0, i*2),
			ExitTime:    testStart.AddDate(0, 0, i*2+1),
			EntryPrice:  100,
			ExitPrice:   100 * (1 + r),
			PnLFraction: r,
			PnLPercent:  r * 100,
		}
	}
	return trades
}

func TestCalculateMetrics_NoTrades(t *testing.T) {
	m := CalculateMetrics(nil, 10000, 10000, 0)

	assert.Equal(t, 0, m.TotalTrades)
	assert.Equal(t, 0.0, m.TotalReturn)
	assert.Equal(t, 0.0, m.WinRate)
	assert.Equal(t, 0.0, m.ProfitFactor)
	assert.Equal(t, 0.0, m.SharpeRatio)
}

func TestCalculateMetrics_MaxDrawdownPassedThrough(t *testing.T) {
	m := CalculateMetrics(nil, 10000, 10000, 3.5)
	assert.Equal(t, 3.5, m.MaxDrawdown)
}

func TestCalculateMetrics_TotalReturn(t *testing.T) {
	assert.InDelta(t, 25.0, CalculateMetrics(nil, 10000, 12500, 0).TotalReturn, 1e-9)
	assert.Equal(t, 0.0, CalculateMetrics(nil, 0, 12500, 0).TotalReturn)
}

func TestCalculateMetrics_WinLossCounts(t *testing.T) {
	m := CalculateMetrics(tradesWithReturns(0.1, -0.05, 0, 0.02), 10000, 10650, 5)

	assert.Equal(t, 4, m.TotalTrades)
	assert.Equal(t, 3, m.WinningTrades)
	assert.Equal(t, 1, m.LosingTrades)
	assert.Equal(t, m.TotalTrades, m.WinningTrades+m.LosingTrades)
	assert.Equal(t, 75.0, m.WinRate)
	assert.InDelta(t, 10.0, m.BestTrade, 1e-9)
	assert.InDelta(t, -5.0, m.WorstTrade, 1e-9)
}

func TestCalculateMetrics_ProfitFactor(t *testing.T) {
	m := CalculateMetrics(tradesWithReturns(0.1, -0.05, 0.05), 10000, 10000, 0)
	assert.InDelta(t, 3.0, m.ProfitFactor, 1e-9)
}

func TestCalculateMetrics_ProfitFactorInfiniteWithoutLosses(t *testing.T) {
	m := CalculateMetrics(tradesWithReturns(0.1, 0.05), 10000, 11550, 0)
	assert.True(t, math.IsInf(m.ProfitFactor, 1))
}

func TestCalculateMetrics_BreakEvenCountsAsWin(t *testing.T) {
	m := CalculateMetrics(tradesWithReturns(0.1, 0), 10000, 11000, 0)

	assert.Equal(t, 2, m.WinningTrades)
	assert.Equal(t, 0, m.LosingTrades)
	assert.True(t, math.IsInf(m.ProfitFactor, 1))
}

func TestCalculateMetrics_BreakEvenAutoCloseKeepsProfitFactorConsistent(t *testing.T) {
	bars := generateBarsFromCloses(100, 110, 120, 130)
	sim := NewSimulator(10000, 0, nil).Run(bars, signalsFor(bars, []int{0, 3}, []int{1}))

	require.Len(t, sim.Trades, 2)
	assert.Equal(t, AutoCloseReason, sim.Trades[1].ExitReason)
	assert.Equal(t, 0.0, sim.Trades[1].PnLFraction)

	m := CalculateMetrics(sim.Trades, sim.InitialCapital, sim.FinalCapital, sim.MaxDrawdown)
	assert.Equal(t, 2, m.WinningTrades)
	assert.Equal(t, 0, m.LosingTrades)
	assert.True(t, math.IsInf(m.ProfitFactor, 1))
}

func TestCalculateMetrics_ProfitFactorFiniteWhenAnyTradeLoses(t *testing.T) {
	m := CalculateMetrics(tradesWithReturns(0.1, 0, -0.02), 10000, 10780, 2)

	assert.Equal(t, 1, m.LosingTrades)
	assert.InDelta(t, 5.0, m.ProfitFactor, 1e-9)
}

func TestCalculateMetrics_ProfitFactorZeroWithOnlyLosses(t *testing.T) {
	m := CalculateMetrics(tradesWithReturns(-0.1, -0.05), 10000, 8550, 10)
	assert.Equal(t, 0.0, m.ProfitFactor)
}

func TestCalculateMetrics_SharpeUsesSampleDeviation(t *testing.T) {
	m := CalculateMetrics(tradesWithReturns(0.1, 0.2, 0.3), 10000, 17160, 0)

	// mean 0.2, sample std 0.1
	assert.InDelta(t, 2*math.Sqrt(252), m.SharpeRatio, 1e-9)
}

func TestCalculateMetrics_SharpeZeroForSingleTrade(t *testing.T) {
	m := CalculateMetrics(tradesWithReturns(0.1), 10000, 11000, 0)
	assert.Equal(t, 0.0, m.SharpeRatio)
}

func TestCalculateMetrics_SharpeZeroForIdenticalReturns(t *testing.T) {
	m := CalculateMetrics(tradesWithReturns(0.05, 0.05, 0.05), 10000, 11576.25, 0)
	assert.Equal(t, 0.0, m.SharpeRatio)
}

func TestCalculateMetrics_SharpeNegativeForLosses(t *testing.T) {
	m := CalculateMetrics(tradesWithReturns(-0.1, -0.2, -0.05), 10000, 6840, 0)
	assert.Less(t, m.SharpeRatio, 0.0)
}

func BenchmarkCalculateMetrics(b *testing.B) {
	returns := make([]float64, 1000)
	for i := range returns {
		returns[i] = math.Sin(float64(i)) / 10
	}
	trades := tradesWithReturns(returns...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CalculateMetrics(trades, 10000, 12000, 5)
	}
}
