package orchestrator

import (
	"fmt"
	"strings"

	"github.com/ducminhle1904/strategy-backtester/internal/backtest"
	"github.com/ducminhle1904/strategy-backtester/internal/strategy"
)

const narrativeDateLayout = "2006-01-02"

// describe builds the audit narrative of a finished run: a headline, where
// the signals came from, and one line per trade with its reasons and P&L.
func describe(symbol string, signals *strategy.Result, sim *backtest.SimulationResult, metrics backtest.Metrics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Backtest of %s over %d bars: %d trades, total return %.2f%%, win rate %.2f%%, max drawdown %.2f%%.",
		symbolLabel(symbol), len(sim.EquityCurve), metrics.TotalTrades, metrics.TotalReturn, metrics.WinRate, metrics.MaxDrawdown)

	b.WriteString("\n")
	b.WriteString(describeSignals(signals))

	if len(signals.Unmatched) > 0 {
		fmt.Fprintf(&b, "\nIgnored %d clause(s) no rule understood: %s.", len(signals.Unmatched), quoteAll(signals.Unmatched))
	}
	if sim.SkippedBars > 0 {
		fmt.Fprintf(&b, "\nSkipped %d bar(s) with malformed prices.", sim.SkippedBars)
	}

	if len(sim.Trades) == 0 {
		b.WriteString("\nNo trades were executed")
		if signals.Signals.Buys() == 0 {
			b.WriteString(": the strategy never produced an entry signal.")
		} else {
			b.WriteString(".")
		}
		return b.String()
	}

	for i, trade := range sim.Trades {
		fmt.Fprintf(&b, "\nTrade %d: bought at %.4f on %s (%s), sold at %.4f on %s (%s), P&L %+.2f%% over %.1f days.",
			i+1,
			trade.EntryPrice, trade.EntryTime.Format(narrativeDateLayout), reasonLabel(trade.EntryReason),
			trade.ExitPrice, trade.ExitTime.Format(narrativeDateLayout), reasonLabel(trade.ExitReason),
			trade.PnLPercent, trade.DurationDays())
	}
	return b.String()
}

func describeSignals(signals *strategy.Result) string {
	series := signals.Signals
	switch signals.Source {
	case strategy.SourceNone:
		return "No entry/exit conditions or indicator triggers were given; every bar is hold."
	case strategy.SourceText:
		return fmt.Sprintf("Signals from the strategy rules: %d buy, %d sell.", series.Buys(), series.Sells())
	case strategy.SourceIndicators:
		return fmt.Sprintf("Signals from the selected indicators: %d buy, %d sell.", series.Buys(), series.Sells())
	case strategy.SourceCombined:
		return fmt.Sprintf("Signals where the strategy rules and the selected indicators agree: %d buy, %d sell.",
			series.Buys(), series.Sells())
	case strategy.SourceIndicatorsFallback:
		return fmt.Sprintf("Strategy rules and selected indicators never agreed; using the indicator signals: %d buy, %d sell.",
			series.Buys(), series.Sells())
	}
	return fmt.Sprintf("%d buy, %d sell signals.", series.Buys(), series.Sells())
}

func reasonLabel(reason string) string {
	if reason == "" {
		return "no reason recorded"
	}
	return reason
}

func symbolLabel(symbol string) string {
	if symbol == "" {
		return "unnamed series"
	}
	return symbol
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
