package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	bterrors "github.com/ducminhle1904/strategy-backtester/internal/errors"
	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// CSVColumnMapping holds the column positions resolved from a CSV header
type CSVColumnMapping struct {
	TimestampCol int
	OpenCol      int
	HighCol      int
	LowCol       int
	CloseCol     int
	VolumeCol    int // -1 when the file has no volume column
}

// CSVProvider implements DataProvider for CSV files with a header row
type CSVProvider struct {
	log logger.Scoped
}

// NewCSVProvider creates a new CSV data provider
func NewCSVProvider(sink logger.Sink) *CSVProvider {
	return &CSVProvider{log: logger.For(sink, logger.StageData)}
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadData loads historical data from a CSV file
func (p *CSVProvider) LoadData(source string) ([]types.OHLCV, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, bterrors.WrapError(err, bterrors.ErrorCategoryData, string(logger.StageData), "open csv")
	}
	defer file.Close()
	return p.Read(file)
}

// Read parses CSV bars from r. Rows with an unreadable timestamp are
// dropped; unreadable prices are kept as NaN so the simulator can skip the bar.
func (p *CSVProvider) Read(r io.Reader) ([]types.OHLCV, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, bterrors.NewDataError(string(logger.StageData), "read csv", "file is empty")
		}
		return nil, bterrors.WrapError(err, bterrors.ErrorCategoryData, string(logger.StageData), "read csv header")
	}
	mapping, err := MapHeader(header)
	if err != nil {
		return nil, err
	}

	var data []types.OHLCV
	lineNum := 1 // header
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, bterrors.WrapError(err, bterrors.ErrorCategoryData, string(logger.StageData),
				fmt.Sprintf("read csv line %d", lineNum+1))
		}
		lineNum++

		bar, ok := decodeRecord(p.log, mapping, record, lineNum, parseTimestamp)
		if !ok {
			continue
		}
		data = append(data, bar)
	}

	data = NormalizeSeries(data)
	p.log.Info("loaded %d bars from csv", len(data))
	return data, nil
}

// decodeRecord converts one header-mapped row into a bar. A row with an
// unreadable timestamp is dropped; unreadable prices become NaN.
func decodeRecord(log logger.Scoped, mapping CSVColumnMapping, record []string, lineNum int,
	parseTS func(string) (time.Time, error)) (types.OHLCV, bool) {
	timestamp, err := parseTS(field(record, mapping.TimestampCol))
	if err != nil {
		log.Warning("invalid timestamp %q at line %d, row skipped", field(record, mapping.TimestampCol), lineNum)
		return types.OHLCV{}, false
	}

	price := func(col int, name string) float64 {
		raw := field(record, col)
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Warning("invalid %s price %q at line %d", name, raw, lineNum)
			return math.NaN()
		}
		return v
	}

	bar := types.OHLCV{
		Timestamp: timestamp,
		Open:      price(mapping.OpenCol, "open"),
		High:      price(mapping.HighCol, "high"),
		Low:       price(mapping.LowCol, "low"),
		Close:     price(mapping.CloseCol, "close"),
	}
	if mapping.VolumeCol >= 0 {
		if v, err := strconv.ParseFloat(field(record, mapping.VolumeCol), 64); err == nil {
			bar.Volume = v
		}
	}
	return bar, true
}

// MapHeader resolves the column positions of a header row. Timestamp and the
// four prices are required; volume is optional.
func MapHeader(header []string) (CSVColumnMapping, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}
	find := func(aliases []string) int {
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				return i
			}
		}
		return -1
	}

	mapping := CSVColumnMapping{
		TimestampCol: find(timestampHeaders),
		OpenCol:      find(openHeaders),
		HighCol:      find(highHeaders),
		LowCol:       find(lowHeaders),
		CloseCol:     find(closeHeaders),
		VolumeCol:    find(volumeHeaders),
	}

	var missing []string
	for name, col := range map[string]int{
		"timestamp": mapping.TimestampCol,
		"open":      mapping.OpenCol,
		"high":      mapping.HighCol,
		"low":       mapping.LowCol,
		"close":     mapping.CloseCol,
	} {
		if col < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return mapping, bterrors.NewDataError(string(logger.StageData), "map header",
			fmt.Sprintf("missing required column(s): %s", strings.Join(missing, ", "))).
			WithContext("header", header)
	}
	return mapping, nil
}

func field(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}

// parseTimestamp accepts timestampLayouts or a unix time in seconds
// or milliseconds. Textual times without a zone are taken as UTC.
func parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}
