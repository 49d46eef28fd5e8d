package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/strategy-backtester/pkg/orchestrator"
)

// Sheet names of the workbook
const (
	SummarySheet = "Summary"
	TradesSheet  = "Trades"
	EquitySheet  = "Equity"
)

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteResultXLSX writes a Summary, Trades and Equity workbook
func (r *DefaultExcelReporter) WriteResultXLSX(result *orchestrator.BacktestResult, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), SummarySheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(TradesSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(EquitySheet); err != nil {
		return err
	}

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeSummarySheet(fx, result, styles); err != nil {
		return err
	}
	if err := r.writeTradesSheet(fx, result, styles); err != nil {
		return err
	}
	if err := r.writeEquitySheet(fx, result, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func lightBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}
}

func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	// Dark slate header with white text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    7,
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    lightBorders(),
	})
	if err != nil {
		return styles, err
	}

	// Percent cells hold fractions, 10 is 0.00%
	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10,
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    lightBorders(),
	})
	if err != nil {
		return styles, err
	}

	styles.RedPercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10,
		Font:      &excelize.Font{Color: "FF0000"},
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    lightBorders(),
	})
	if err != nil {
		return styles, err
	}

	styles.GreenPercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10,
		Font:      &excelize.Font{Color: "008000"},
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    lightBorders(),
	})
	if err != nil {
		return styles, err
	}

	priceFormat := "0.0000"
	styles.PriceStyle, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &priceFormat,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		Border:       lightBorders(),
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{Border: lightBorders()})
	if err != nil {
		return styles, err
	}

	styles.LabelStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"E6F3FF"},
			Pattern: 1,
		},
		Border: lightBorders(),
	})
	if err != nil {
		return styles, err
	}

	return styles, nil
}

func writeHeader(fx *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, style)
	}
}

func setCell(fx *excelize.File, sheet string, col, row int, value interface{}, style int) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	fx.SetCellValue(sheet, cell, value)
	fx.SetCellStyle(sheet, cell, cell, style)
}

func (r *DefaultExcelReporter) writeSummarySheet(fx *excelize.File, result *orchestrator.BacktestResult, styles ExcelStyles) error {
	sheet := SummarySheet
	fx.SetColWidth(sheet, "A", "A", 20)
	fx.SetColWidth(sheet, "B", "B", 60)
	writeHeader(fx, sheet, []string{"Metric", "Value"}, styles.HeaderStyle)

	returnStyle := styles.GreenPercentStyle
	if result.TotalReturn < 0 {
		returnStyle = styles.RedPercentStyle
	}

	var profitFactor interface{} = round(float64(result.ProfitFactor), ratioPlaces)
	if result.ProfitFactor.IsInf() {
		profitFactor = result.ProfitFactor.String()
	}

	rows := []struct {
		label string
		value interface{}
		style int
	}{
		{"Symbol", displaySymbol(result.Symbol), styles.BaseStyle},
		{"Signal Source", string(result.SignalSource), styles.BaseStyle},
		{"Initial Capital", round(result.InitialCapital, moneyPlaces), styles.CurrencyStyle},
		{"Final Capital", round(result.FinalCapital, moneyPlaces), styles.CurrencyStyle},
		{"Total Return", round(result.TotalReturn/100, 6), returnStyle},
		{"Max Drawdown", round(result.MaxDrawdown/100, 6), styles.RedPercentStyle},
		{"Sharpe Ratio", round(result.SharpeRatio, ratioPlaces), styles.BaseStyle},
		{"Profit Factor", profitFactor, styles.BaseStyle},
		{"Total Trades", result.TotalTrades, styles.BaseStyle},
		{"Winning Trades", result.WinningTrades, styles.BaseStyle},
		{"Losing Trades", result.LosingTrades, styles.BaseStyle},
		{"Win Rate", round(result.WinRate/100, 6), styles.PercentStyle},
		{"Skipped Bars", result.SkippedBars, styles.BaseStyle},
		{"Description", result.Description, styles.BaseStyle},
	}
	if result.Failed() {
		rows = append(rows, struct {
			label string
			value interface{}
			style int
		}{"Error", result.Error, styles.BaseStyle})
	}

	for i, row := range rows {
		setCell(fx, sheet, 1, i+2, row.label, styles.LabelStyle)
		setCell(fx, sheet, 2, i+2, row.value, row.style)
	}
	return nil
}

func (r *DefaultExcelReporter) writeTradesSheet(fx *excelize.File, result *orchestrator.BacktestResult, styles ExcelStyles) error {
	sheet := TradesSheet
	fx.SetColWidth(sheet, "A", "A", 8)
	fx.SetColWidth(sheet, "B", "C", 18)
	fx.SetColWidth(sheet, "D", "E", 12)
	fx.SetColWidth(sheet, "F", "G", 12)
	fx.SetColWidth(sheet, "H", "I", 30)
	writeHeader(fx, sheet, []string{
		"Trade", "Entry Time", "Exit Time", "Entry Price", "Exit Price", "PnL", "Days", "Entry Reason", "Exit Reason",
	}, styles.HeaderStyle)

	for i, t := range result.Trades {
		row := i + 2
		pnlStyle := styles.GreenPercentStyle
		if t.PnL <= 0 {
			pnlStyle = styles.RedPercentStyle
		}
		setCell(fx, sheet, 1, row, i+1, styles.BaseStyle)
		setCell(fx, sheet, 2, row, t.EntryDate.Format(reportDateLayout), styles.BaseStyle)
		setCell(fx, sheet, 3, row, t.ExitDate.Format(reportDateLayout), styles.BaseStyle)
		setCell(fx, sheet, 4, row, round(t.EntryPrice, pricePlaces), styles.PriceStyle)
		setCell(fx, sheet, 5, row, round(t.ExitPrice, pricePlaces), styles.PriceStyle)
		setCell(fx, sheet, 6, row, round(t.PnL, 6), pnlStyle)
		setCell(fx, sheet, 7, row, round(t.DurationDays, 2), styles.BaseStyle)
		setCell(fx, sheet, 8, row, t.EntryReason, styles.BaseStyle)
		setCell(fx, sheet, 9, row, t.ExitReason, styles.BaseStyle)
	}
	return nil
}

func (r *DefaultExcelReporter) writeEquitySheet(fx *excelize.File, result *orchestrator.BacktestResult, styles ExcelStyles) error {
	sheet := EquitySheet
	fx.SetColWidth(sheet, "A", "A", 18)
	fx.SetColWidth(sheet, "B", "C", 14)
	writeHeader(fx, sheet, []string{"Time", "Equity", "Drawdown"}, styles.HeaderStyle)

	for i, p := range result.EquityCurve {
		row := i + 2
		setCell(fx, sheet, 1, row, p.Date.Format(reportDateLayout), styles.BaseStyle)
		setCell(fx, sheet, 2, row, round(p.Equity, moneyPlaces), styles.CurrencyStyle)
		setCell(fx, sheet, 3, row, round(p.Drawdown/100, 6), styles.RedPercentStyle)
	}
	return nil
}
