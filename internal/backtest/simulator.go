package backtest

import (
	"math"
	"time"

	bterrors "github.com/ducminhle1904/strategy-backtester/internal/errors"
	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/internal/strategy"
	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// AutoCloseReason is the exit reason of a position still open at the last bar
const AutoCloseReason = "auto-closed-at-end"

// PositionState is the state of the single-position account
type PositionState int

const (
	StateFlat PositionState = iota
	StateLong
)

func (s PositionState) String() string {
	if s == StateLong {
		return "LONG"
	}
	return "FLAT"
}

// Trade is one closed round trip
type Trade struct {
	EntryTime   time.Time
	ExitTime    time.Time
	EntryPrice  float64
	ExitPrice   float64
	PnLFraction float64
	PnLPercent  float64
	Duration    time.Duration
	EntryReason string
	ExitReason  string
}

// DurationDays returns the holding period in days
func (t Trade) DurationDays() float64 {
	return t.Duration.Hours() / 24
}

// IsWin reports whether the trade did not lose money. Break-even trades
// count as wins so a losing trade always carries a gross loss.
func (t Trade) IsWin() bool {
	return t.PnLFraction >= 0
}

// EquitySample is the account value after one bar
type EquitySample struct {
	Timestamp       time.Time
	Equity          float64
	DrawdownPercent float64
}

// SimulationResult holds everything the simulator produced
type SimulationResult struct {
	InitialCapital float64
	FinalCapital   float64
	MaxDrawdown    float64 // percent, running high-water mark
	Trades         []Trade
	EquityCurve    []EquitySample
	SkippedBars    int
}

// Simulator replays signals against prices with one long position at most
type Simulator struct {
	initialCapital float64
	commission     float64
	log            logger.Scoped

	state       PositionState
	capital     float64
	peak        float64
	maxDrawdown float64
	entryPrice  float64
	entryTime   time.Time
	entryReason string
	lastClose   float64
	lastTime    time.Time
}

// NewSimulator creates a simulator. commission is a fraction deducted from
// every trade's return.
func NewSimulator(initialCapital, commission float64, sink logger.Sink) *Simulator {
	return &Simulator{
		initialCapital: initialCapital,
		commission:     commission,
		log:            logger.For(sink, logger.StageSimulation),
	}
}

// Run replays the signals bar by bar. Signals not aligned with the bars are
// reindexed first, missing bars becoming Hold. The run always ends Flat.
func (s *Simulator) Run(bars []types.OHLCV, signals *strategy.SignalSeries) *SimulationResult {
	s.reset()
	index := types.Timestamps(bars)
	if signals == nil {
		signals = strategy.NewSignalSeries(index)
	} else if !signals.AlignedWith(index) {
		s.log.Warning("signal index (%d bars) differs from price index (%d bars), reindexing with hold", signals.Len(), len(bars))
		signals = signals.Reindex(index)
	}

	result := &SimulationResult{
		InitialCapital: s.initialCapital,
		Trades:         make([]Trade, 0),
		EquityCurve:    make([]EquitySample, 0, len(bars)),
	}

	for i, bar := range bars {
		if bar.IsValid() {
			s.step(bar, signals.Values[i], signals.Reason(i), result)
		} else {
			result.SkippedBars++
			s.log.Warning("%v", bterrors.NewExecutionError(i, "malformed price, bar skipped"))
		}
		result.EquityCurve = append(result.EquityCurve, s.sample(bar.Timestamp))
	}

	if s.state == StateLong {
		s.close(s.lastClose, s.lastTime, AutoCloseReason, result)
		s.log.Info("position still open at the last bar, auto-closed at %.4f", s.lastClose)
		if n := len(result.EquityCurve); n > 0 {
			result.EquityCurve[n-1] = s.sample(result.EquityCurve[n-1].Timestamp)
		}
	}

	result.FinalCapital = s.capital
	result.MaxDrawdown = s.maxDrawdown
	s.log.Info("%d trades, final capital %.2f, max drawdown %.2f%%, %d bars skipped",
		len(result.Trades), result.FinalCapital, result.MaxDrawdown, result.SkippedBars)
	return result
}

func (s *Simulator) reset() {
	s.state = StateFlat
	s.capital = s.initialCapital
	s.peak = s.initialCapital
	s.maxDrawdown = 0
	s.entryPrice = 0
	s.entryTime = time.Time{}
	s.entryReason = ""
	s.lastClose = 0
	s.lastTime = time.Time{}
}

func (s *Simulator) step(bar types.OHLCV, signal strategy.Signal, reason string, result *SimulationResult) {
	s.lastClose, s.lastTime = bar.Close, bar.Timestamp

	switch {
	case signal == strategy.SignalBuy && s.state == StateFlat:
		s.state = StateLong
		s.entryPrice = bar.Close
		s.entryTime = bar.Timestamp
		s.entryReason = reason
		s.log.Debug("BUY at %.4f on %s", bar.Close, bar.Timestamp.Format(time.RFC3339))
	case signal == strategy.SignalSell && s.state == StateLong:
		s.close(bar.Close, bar.Timestamp, reason, result)
	}
}

func (s *Simulator) close(price float64, at time.Time, reason string, result *SimulationResult) {
	pnl := (price-s.entryPrice)/s.entryPrice - s.commission
	result.Trades = append(result.Trades, Trade{
		EntryTime:   s.entryTime,
		ExitTime:    at,
		EntryPrice:  s.entryPrice,
		ExitPrice:   price,
		PnLFraction: pnl,
		PnLPercent:  pnl * 100,
		Duration:    at.Sub(s.entryTime),
		EntryReason: s.entryReason,
		ExitReason:  reason,
	})
	s.capital *= 1 + pnl
	s.state = StateFlat
	s.log.Debug("SELL at %.4f on %s, pnl %.2f%%", price, at.Format(time.RFC3339), pnl*100)
}

// sample updates the high-water mark and records the equity after a bar
func (s *Simulator) sample(at time.Time) EquitySample {
	s.peak = math.Max(s.peak, s.capital)
	drawdown := 0.0
	if s.peak > 0 {
		drawdown = (s.peak - s.capital) / s.peak * 100
	}
	if drawdown > s.maxDrawdown {
		s.maxDrawdown = drawdown
	}
	return EquitySample{Timestamp: at, Equity: s.capital, DrawdownPercent: drawdown}
}
