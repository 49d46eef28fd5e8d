package data

import (
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	bterrors "github.com/ducminhle1904/strategy-backtester/internal/errors"
	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

var _ DataProvider = (*ParquetProvider)(nil)

// BarRecord is the Parquet schema for bar data
type BarRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
}

// ParquetProvider implements DataProvider for Parquet bar files
type ParquetProvider struct {
	log logger.Scoped
}

// NewParquetProvider creates a new Parquet data provider
func NewParquetProvider(sink logger.Sink) *ParquetProvider {
	return &ParquetProvider{log: logger.For(sink, logger.StageData)}
}

// GetName returns the name of the data provider
func (p *ParquetProvider) GetName() string {
	return "Parquet Provider"
}

// LoadData reads every bar record of a Parquet file
func (p *ParquetProvider) LoadData(source string) ([]types.OHLCV, error) {
	records, err := readParquetFile[BarRecord](source)
	if err != nil {
		return nil, bterrors.WrapError(err, bterrors.ErrorCategoryData, string(logger.StageData), "read parquet")
	}

	data := make([]types.OHLCV, len(records))
	for i, r := range records {
		data[i] = types.OHLCV{
			Timestamp: time.UnixMilli(r.Timestamp).UTC(),
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		}
	}

	data = NormalizeSeries(data)
	p.log.Info("loaded %d bars from parquet", len(data))
	return data, nil
}

// WriteBars writes bars of one symbol to a Parquet file, creating parent
// directories as needed
func WriteBars(path, symbol string, bars []types.OHLCV) error {
	records := make([]BarRecord, len(bars))
	for i, b := range bars {
		records[i] = BarRecord{
			Symbol:    symbol,
			Timestamp: b.Timestamp.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		}
	}
	if err := writeParquetFile(path, records); err != nil {
		return bterrors.WrapError(err, bterrors.ErrorCategoryData, string(logger.StageData), "write parquet")
	}
	return nil
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	return parquet.ReadFile[T](path)
}
