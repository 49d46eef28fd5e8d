package reporting

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ducminhle1904/strategy-backtester/pkg/validation"
)

const foldDateLayout = "2006-01-02"

// OutputWalkForward prints one row per fold followed by the averages and
// the overfitting verdict
func (r *DefaultConsoleReporter) OutputWalkForward(summary *validation.WalkForwardSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("Walk-Forward Validation")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Fold", "Train", "Train Return", "Train DD", "Test", "Test Return", "Test DD", "Test Trades"})
	for _, fold := range summary.Results {
		t.AppendRow(table.Row{
			fold.Fold,
			fold.Range.TrainStart.Format(foldDateLayout) + " → " + fold.Range.TrainEnd.Format(foldDateLayout),
			formatPercent(fold.Train.TotalReturn),
			formatPercent(fold.Train.MaxDrawdown),
			fold.Range.TestStart.Format(foldDateLayout) + " → " + fold.Range.TestEnd.Format(foldDateLayout),
			formatPercent(fold.Test.TotalReturn),
			formatPercent(fold.Test.MaxDrawdown),
			fold.Test.TotalTrades,
		})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{
		"avg", "",
		fmt.Sprintf("%s ± %s", formatPercent(summary.AverageTrainReturn), formatPercent(summary.TrainReturnStdDev)),
		formatPercent(summary.AverageTrainDrawdown),
		"",
		fmt.Sprintf("%s ± %s", formatPercent(summary.AverageTestReturn), formatPercent(summary.TestReturnStdDev)),
		formatPercent(summary.AverageTestDrawdown),
		"",
	})
	t.Render()

	fmt.Fprintf(r.out, "Return degradation: %s\n", formatPercent(summary.ReturnDegradation))
	switch summary.OverfittingRisk {
	case validation.RiskHigh:
		fmt.Fprintln(r.out, "⚠️  HIGH OVERFITTING RISK - strategy may not generalize well")
	case validation.RiskModerate:
		fmt.Fprintln(r.out, "⚠️  MODERATE OVERFITTING - some performance degradation")
	default:
		fmt.Fprintln(r.out, "✅ ROBUST STRATEGY - consistent across time periods")
	}
}

// OutputWalkForward prints a walk-forward summary
func (r *DefaultReporter) OutputWalkForward(summary *validation.WalkForwardSummary) {
	r.console.OutputWalkForward(summary)
}
