package data

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	bterrors "github.com/ducminhle1904/strategy-backtester/internal/errors"
	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// DataManager combines all data operations in a convenient interface
type DataManager struct {
	providers map[string]DataProvider // by lower-case file extension
	filter    *DefaultDataFilter
	locator   FileLocator
	log       logger.Scoped
}

// NewDataManager creates a data manager with cached CSV, Parquet and Excel
// providers
func NewDataManager(sink logger.Sink) *DataManager {
	return NewDataManagerWithProviders(sink, map[string]DataProvider{
		".csv":     NewCachedProvider(NewCSVProvider(sink), sink),
		".parquet": NewCachedProvider(NewParquetProvider(sink), sink),
		".xlsx":    NewCachedProvider(NewExcelProvider(sink), sink),
	})
}

// NewDataManagerWithProviders creates a data manager with custom providers
// keyed by file extension
func NewDataManagerWithProviders(sink logger.Sink, providers map[string]DataProvider) *DataManager {
	normalized := make(map[string]DataProvider, len(providers))
	for ext, provider := range providers {
		normalized[strings.ToLower(ext)] = provider
	}
	return &DataManager{
		providers: normalized,
		filter:    NewDefaultDataFilter(),
		locator:   NewDefaultFileLocator(),
		log:       logger.For(sink, logger.StageData),
	}
}

// LoadSeries loads a bar file with the provider matching its extension and
// keeps only the trailing period when period > 0
func (dm *DataManager) LoadSeries(path string, period time.Duration) ([]types.OHLCV, error) {
	ext := strings.ToLower(filepath.Ext(path))
	provider, ok := dm.providers[ext]
	if !ok {
		return nil, bterrors.NewDataError(string(logger.StageData), "load series",
			fmt.Sprintf("unsupported data file extension %q", ext))
	}

	data, err := provider.LoadData(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, bterrors.NewDataError(string(logger.StageData), "load series",
			fmt.Sprintf("%s contains no bars", filepath.Base(path)))
	}

	if period > 0 {
		filtered := dm.filter.FilterByPeriod(data, period)
		dm.log.Info("filtered %s to last %v: %d of %d bars (%s → %s)",
			filepath.Base(path), period, len(filtered), len(data),
			filtered[0].Timestamp.Format("2006-01-02"), filtered[len(filtered)-1].Timestamp.Format("2006-01-02"))
		data = filtered
	}
	return data, nil
}

// FindDataFiles lists bar files under root
func (dm *DataManager) FindDataFiles(root string) ([]string, error) {
	return dm.locator.FindDataFiles(root)
}

// SymbolFromPath derives the symbol label of a bar file
func (dm *DataManager) SymbolFromPath(path string) string {
	return dm.locator.SymbolFromPath(path)
}

// GetFilter returns the data filter
func (dm *DataManager) GetFilter() DataFilter {
	return dm.filter
}

// ParseTrailingPeriod parses period strings like "7d", "30d", "180days" or
// Go durations such as "168h"
func ParseTrailingPeriod(s string) (time.Duration, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasSuffix(s, "days") {
		s = strings.TrimSuffix(s, "days") + "d"
	}
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || n <= 0 {
			return 0, false
		}
		return time.Duration(n) * 24 * time.Hour, true
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, true
	}
	return 0, false
}
