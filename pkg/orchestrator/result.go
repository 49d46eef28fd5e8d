package orchestrator

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/ducminhle1904/strategy-backtester/internal/backtest"
	"github.com/ducminhle1904/strategy-backtester/internal/strategy"
)

// infinityLiteral is how an unbounded profit factor is written in JSON
const infinityLiteral = "Infinity"

// ProfitFactor is a ratio that may be +Inf. JSON has no infinity, so it is
// written as the string "Infinity".
type ProfitFactor float64

// IsInf reports whether the profit factor is unbounded
func (p ProfitFactor) IsInf() bool {
	return math.IsInf(float64(p), 1)
}

// MarshalJSON implements json.Marshaler
func (p ProfitFactor) MarshalJSON() ([]byte, error) {
	v := float64(p)
	switch {
	case math.IsInf(v, 1):
		return []byte(strconv.Quote(infinityLiteral)), nil
	case math.IsNaN(v) || math.IsInf(v, -1):
		return []byte("0"), nil
	}
	return json.Marshal(v)
}

// UnmarshalJSON implements json.Unmarshaler
func (p *ProfitFactor) UnmarshalJSON(data []byte) error {
	var literal string
	if err := json.Unmarshal(data, &literal); err == nil {
		if literal != infinityLiteral {
			return fmt.Errorf("invalid profit factor %q", literal)
		}
		*p = ProfitFactor(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = ProfitFactor(v)
	return nil
}

// String formats the ratio for humans
func (p ProfitFactor) String() string {
	if p.IsInf() {
		return "∞"
	}
	return strconv.FormatFloat(float64(p), 'f', 2, 64)
}

// EquityPoint is one equity curve sample
type EquityPoint struct {
	Date     time.Time `json:"date"`
	Equity   float64   `json:"equity"`
	Drawdown float64   `json:"drawdown"`
}

// TradeRecord is one closed trade as reported to callers
type TradeRecord struct {
	EntryDate    time.Time `json:"entry_date"`
	ExitDate     time.Time `json:"exit_date"`
	EntryPrice   float64   `json:"entry_price"`
	ExitPrice    float64   `json:"exit_price"`
	PnL          float64   `json:"pnl"`
	PnLPercent   float64   `json:"pnl_percent"`
	DurationDays float64   `json:"duration_days"`
	EntryReason  string    `json:"entry_reason"`
	ExitReason   string    `json:"exit_reason"`
}

// BacktestResult is the complete outcome of one run. On failure every
// numeric field is zero and Error is set.
type BacktestResult struct {
	TotalReturn   float64       `json:"total_return"`
	TotalTrades   int           `json:"total_trades"`
	WinningTrades int           `json:"winning_trades"`
	LosingTrades  int           `json:"losing_trades"`
	WinRate       float64       `json:"win_rate"`
	MaxDrawdown   float64       `json:"max_drawdown"`
	SharpeRatio   float64       `json:"sharpe_ratio"`
	ProfitFactor  ProfitFactor  `json:"profit_factor"`
	EquityCurve   []EquityPoint `json:"equity_curve"`
	Trades        []TradeRecord `json:"trades"`
	StrategyUsed  strategy.Spec `json:"strategy_used"`
	Symbol        string        `json:"symbol"`
	Description   string        `json:"description"`
	Error         string        `json:"error,omitempty"`

	// Run details kept for reports, not part of the wire format
	InitialCapital float64         `json:"-"`
	FinalCapital   float64         `json:"-"`
	SignalSource   strategy.Source `json:"-"`
	Unmatched      []string        `json:"-"`
	SkippedBars    int             `json:"-"`
}

// Failed reports whether the run ended with a structural failure
func (r *BacktestResult) Failed() bool {
	return r.Error != ""
}

// JSON returns the indented wire form of the result
func (r *BacktestResult) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func newResult(symbol string, spec strategy.Spec, sim *backtest.SimulationResult, metrics backtest.Metrics) *BacktestResult {
	result := &BacktestResult{
		TotalReturn:    metrics.TotalReturn,
		TotalTrades:    metrics.TotalTrades,
		WinningTrades:  metrics.WinningTrades,
		LosingTrades:   metrics.LosingTrades,
		WinRate:        metrics.WinRate,
		MaxDrawdown:    metrics.MaxDrawdown,
		SharpeRatio:    metrics.SharpeRatio,
		ProfitFactor:   ProfitFactor(metrics.ProfitFactor),
		EquityCurve:    make([]EquityPoint, len(sim.EquityCurve)),
		Trades:         make([]TradeRecord, len(sim.Trades)),
		StrategyUsed:   spec,
		Symbol:         symbol,
		InitialCapital: sim.InitialCapital,
		FinalCapital:   sim.FinalCapital,
		SkippedBars:    sim.SkippedBars,
	}
	for i, sample := range sim.EquityCurve {
		result.EquityCurve[i] = EquityPoint{Date: sample.Timestamp, Equity: sample.Equity, Drawdown: sample.DrawdownPercent}
	}
	for i, trade := range sim.Trades {
		result.Trades[i] = TradeRecord{
			EntryDate:    trade.EntryTime,
			ExitDate:     trade.ExitTime,
			EntryPrice:   trade.EntryPrice,
			ExitPrice:    trade.ExitPrice,
			PnL:          trade.PnLFraction,
			PnLPercent:   trade.PnLPercent,
			DurationDays: trade.DurationDays(),
			EntryReason:  trade.EntryReason,
			ExitReason:   trade.ExitReason,
		}
	}
	return result
}

// errorResult is the zeroed result returned for any structural failure
func errorResult(symbol string, spec strategy.Spec, err error) *BacktestResult {
	return &BacktestResult{
		EquityCurve:  []EquityPoint{},
		Trades:       []TradeRecord{},
		StrategyUsed: spec,
		Symbol:       symbol,
		Description:  fmt.Sprintf("Backtest of %s failed: %v", symbolLabel(symbol), err),
		Error:        err.Error(),
	}
}
