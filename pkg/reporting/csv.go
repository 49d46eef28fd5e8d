package reporting

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ducminhle1904/strategy-backtester/pkg/orchestrator"
)

// DefaultCSVReporter writes trades and equity curves as CSV
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

var tradesHeader = []string{
	"Trade",
	"Entry_Time",
	"Exit_Time",
	"Entry_Price",
	"Exit_Price",
	"PnL_%",
	"Duration_Days",
	"Win_Loss",
	"Entry_Reason",
	"Exit_Reason",
}

var equityHeader = []string{"Time", "Equity", "Drawdown_%"}

// WriteTradesCSV writes one row per closed trade
func (r *DefaultCSVReporter) WriteTradesCSV(result *orchestrator.BacktestResult, path string) error {
	return writeCSVFile(path, func(w io.Writer) error {
		return r.EncodeTrades(result, w)
	})
}

// EncodeTrades writes the trades CSV to w
func (r *DefaultCSVReporter) EncodeTrades(result *orchestrator.BacktestResult, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tradesHeader); err != nil {
		return err
	}
	for i, t := range result.Trades {
		if err := cw.Write([]string{
			strconv.Itoa(i + 1),
			t.EntryDate.Format(time.RFC3339),
			t.ExitDate.Format(time.RFC3339),
			formatPrice(t.EntryPrice),
			formatPrice(t.ExitPrice),
			toDecimal(t.PnLPercent).StringFixed(4),
			toDecimal(t.DurationDays).StringFixed(2),
			winLoss(t.PnL),
			t.EntryReason,
			t.ExitReason,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEquityCSV writes the equity curve
func (r *DefaultCSVReporter) WriteEquityCSV(result *orchestrator.BacktestResult, path string) error {
	return writeCSVFile(path, func(w io.Writer) error {
		return r.EncodeEquity(result, w)
	})
}

// EncodeEquity writes the equity CSV to w
func (r *DefaultCSVReporter) EncodeEquity(result *orchestrator.BacktestResult, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(equityHeader); err != nil {
		return err
	}
	for _, p := range result.EquityCurve {
		if err := cw.Write([]string{
			p.Date.Format(time.RFC3339),
			toDecimal(p.Equity).StringFixed(moneyPlaces),
			toDecimal(p.Drawdown).StringFixed(4),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeCSVFile(path string, encode func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
