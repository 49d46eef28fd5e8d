package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/strategy-backtester/pkg/orchestrator"
)

// DefaultConsoleReporter renders results as tables on a writer
type DefaultConsoleReporter struct {
	out io.Writer
}

// NewDefaultConsoleReporter creates a console reporter writing to stdout
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return NewConsoleReporterTo(os.Stdout)
}

// NewConsoleReporterTo creates a console reporter writing to w
func NewConsoleReporterTo(w io.Writer) *DefaultConsoleReporter {
	return &DefaultConsoleReporter{out: w}
}

// OutputResult prints the summary, the trade list and the narrative
func (r *DefaultConsoleReporter) OutputResult(result *orchestrator.BacktestResult, strategyName string) {
	fmt.Fprintln(r.out, "\n"+strings.Repeat("=", 50))
	fmt.Fprintf(r.out, "📊 BACKTEST RESULTS: %s\n", displaySymbol(result.Symbol))
	fmt.Fprintln(r.out, strings.Repeat("=", 50))

	if result.Failed() {
		fmt.Fprintf(r.out, "❌ %s\n", result.Description)
		return
	}

	r.summaryTable(result, strategyName).Render()
	if len(result.Trades) > 0 {
		r.tradesTable(result).Render()
	}
	if len(result.Unmatched) > 0 {
		fmt.Fprintf(r.out, "⚠️  Unrecognized conditions: %s\n", strings.Join(result.Unmatched, "; "))
	}
	fmt.Fprintf(r.out, "\n📝 %s\n", result.Description)
}

func (r *DefaultConsoleReporter) summaryTable(result *orchestrator.BacktestResult, strategyName string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("Summary")
	t.SetStyle(table.StyleRounded)
	t.AppendRows([]table.Row{
		{"Strategy", strategyLabel(strategyName)},
		{"Signal Source", string(result.SignalSource)},
		{"Initial Capital", formatMoney(result.InitialCapital)},
		{"Final Capital", formatMoney(result.FinalCapital)},
		{"Total Return", formatPercent(result.TotalReturn)},
		{"Max Drawdown", formatPercent(result.MaxDrawdown)},
		{"Sharpe Ratio", formatRatio(result.SharpeRatio)},
		{"Profit Factor", formatProfitFactor(result.ProfitFactor)},
		{"Total Trades", result.TotalTrades},
		{"Winning / Losing", fmt.Sprintf("%d / %d", result.WinningTrades, result.LosingTrades)},
		{"Win Rate", formatPercent(result.WinRate)},
	})
	if result.SkippedBars > 0 {
		t.AppendRow(table.Row{"Skipped Bars", result.SkippedBars})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
	})
	return t
}

func (r *DefaultConsoleReporter) tradesTable(result *orchestrator.BacktestResult) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("Trades")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Entry", "Entry Price", "Exit", "Exit Price", "P&L", "Days", "Result"})
	for i, trade := range result.Trades {
		t.AppendRow(table.Row{
			i + 1,
			trade.EntryDate.Format(reportDateLayout),
			formatPrice(trade.EntryPrice),
			trade.ExitDate.Format(reportDateLayout),
			formatPrice(trade.ExitPrice),
			formatPercent(trade.PnLPercent),
			toDecimal(trade.DurationDays).StringFixed(1),
			winLoss(trade.PnL),
		})
	}
	return t
}

// OutputBatch prints one row per run sorted as given
func (r *DefaultConsoleReporter) OutputBatch(results []*orchestrator.BacktestResult, labels []string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("Batch Summary")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Run", "Symbol", "Return", "Trades", "Win Rate", "Max DD", "Sharpe", "PF", "Status"})
	for i, result := range results {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		if result == nil {
			continue
		}
		status := "✅"
		if result.Failed() {
			status = "❌ " + result.Error
		}
		t.AppendRow(table.Row{
			label,
			displaySymbol(result.Symbol),
			formatPercent(result.TotalReturn),
			result.TotalTrades,
			formatPercent(result.WinRate),
			formatPercent(result.MaxDrawdown),
			formatRatio(result.SharpeRatio),
			formatProfitFactor(result.ProfitFactor),
			status,
		})
	}
	t.Render()
}

func displaySymbol(symbol string) string {
	if symbol == "" {
		return "(unnamed)"
	}
	return symbol
}

func strategyLabel(name string) string {
	if name == "" {
		return "default"
	}
	return name
}
