package data

import (
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	bterrors "github.com/ducminhle1904/strategy-backtester/internal/errors"
	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// excelSerialLimit separates spreadsheet date serials from unix times
const excelSerialLimit = 1e6

// ExcelProvider implements DataProvider for .xlsx workbooks. Bars are read
// from the first sheet, whose first row is the header.
type ExcelProvider struct {
	log logger.Scoped
}

// NewExcelProvider creates a new Excel data provider
func NewExcelProvider(sink logger.Sink) *ExcelProvider {
	return &ExcelProvider{log: logger.For(sink, logger.StageData)}
}

// GetName returns the name of the data provider
func (p *ExcelProvider) GetName() string {
	return "Excel Provider"
}

// LoadData loads historical data from an Excel workbook
func (p *ExcelProvider) LoadData(source string) ([]types.OHLCV, error) {
	fx, err := excelize.OpenFile(source)
	if err != nil {
		return nil, bterrors.WrapError(err, bterrors.ErrorCategoryData, string(logger.StageData), "open xlsx")
	}
	defer fx.Close()

	sheet := fx.GetSheetName(0)
	rows, err := fx.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, bterrors.WrapError(err, bterrors.ErrorCategoryData, string(logger.StageData), "read xlsx rows").
			WithContext("sheet", sheet)
	}
	if len(rows) == 0 {
		return nil, bterrors.NewDataError(string(logger.StageData), "read xlsx", "sheet "+sheet+" is empty")
	}

	mapping, err := MapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	data := make([]types.OHLCV, 0, len(rows)-1)
	for i, record := range rows[1:] {
		bar, ok := decodeRecord(p.log, mapping, record, i+2, parseExcelTimestamp)
		if !ok {
			continue
		}
		data = append(data, bar)
	}

	data = NormalizeSeries(data)
	p.log.Info("loaded %d bars from sheet %s", len(data), sheet)
	return data, nil
}

// parseExcelTimestamp accepts spreadsheet date serials besides everything
// parseTimestamp understands
func parseExcelTimestamp(raw string) (time.Time, error) {
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 && serial < excelSerialLimit {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}
	return parseTimestamp(raw)
}

// WriteExcelBars writes bars to the first sheet of a new workbook in the
// layout ExcelProvider reads
func WriteExcelBars(path string, bars []types.OHLCV) error {
	fx := excelize.NewFile()
	defer fx.Close()

	sheet := fx.GetSheetName(0)
	header := []interface{}{"timestamp", "open", "high", "low", "close", "volume"}
	if err := fx.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, bar := range bars {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{bar.Timestamp.UTC().Format(time.RFC3339), bar.Open, bar.High, bar.Low, bar.Close, bar.Volume}
		if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return fx.SaveAs(path)
}
