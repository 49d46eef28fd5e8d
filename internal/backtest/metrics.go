package backtest

import (
	"math"
)

// tradingDaysPerYear annualizes the per-trade risk-adjusted ratio
const tradingDaysPerYear = 252

// Metrics summarizes a simulation
type Metrics struct {
	TotalReturn   float64 // percent
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64 // percent
	MaxDrawdown   float64 // percent
	SharpeRatio   float64
	ProfitFactor  float64 // +Inf when there are wins and no losses
	GrossProfit   float64
	GrossLoss     float64
	AvgTradePnL   float64 // percent
	BestTrade     float64 // percent
	WorstTrade    float64 // percent
}

// CalculateMetrics aggregates closed trades. maxDrawdown is taken as given
// from the simulator's running high-water mark.
func CalculateMetrics(trades []Trade, initialCapital, finalCapital, maxDrawdown float64) Metrics {
	m := Metrics{
		TotalReturn: calculateTotalReturn(initialCapital, finalCapital),
		TotalTrades: len(trades),
		MaxDrawdown: maxDrawdown,
	}
	if len(trades) == 0 {
		return m
	}

	returns := make([]float64, len(trades))
	m.BestTrade = math.Inf(-1)
	m.WorstTrade = math.Inf(1)
	for i, trade := range trades {
		returns[i] = trade.PnLFraction
		if trade.IsWin() {
			m.WinningTrades++
			m.GrossProfit += trade.PnLFraction
		} else {
			m.LosingTrades++
			m.GrossLoss += math.Abs(trade.PnLFraction)
		}
		m.BestTrade = math.Max(m.BestTrade, trade.PnLPercent)
		m.WorstTrade = math.Min(m.WorstTrade, trade.PnLPercent)
	}

	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	m.ProfitFactor = calculateProfitFactor(m.GrossProfit, m.GrossLoss, m.WinningTrades, m.LosingTrades)
	m.SharpeRatio = calculateSharpeRatio(returns)
	m.AvgTradePnL = mean(returns) * 100
	return m
}

func calculateTotalReturn(initialCapital, finalCapital float64) float64 {
	if initialCapital <= 0 {
		return 0
	}
	return (finalCapital - initialCapital) / initialCapital * 100
}

// calculateProfitFactor is gross profit over gross loss; +Inf with wins and
// no losing trade
func calculateProfitFactor(grossProfit, grossLoss float64, wins, losses int) float64 {
	if losses == 0 {
		if wins > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / grossLoss
}

// calculateSharpeRatio is mean over sample standard deviation of trade
// returns, scaled by sqrt(252)
func calculateSharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	avg := mean(returns)
	variance := 0.0
	for _, r := range returns {
		variance += (r - avg) * (r - avg)
	}
	variance /= float64(len(returns) - 1)
	stdDev := math.Sqrt(variance)
	if stdDev < 1e-12 {
		return 0
	}
	return avg / stdDev * math.Sqrt(tradingDaysPerYear)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
