package data

import (
	"time"

	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// DataProvider interface for loading historical data from various sources
type DataProvider interface {
	// LoadData loads a price series from the specified source. The result is
	// sorted by timestamp without duplicate timestamps.
	LoadData(source string) ([]types.OHLCV, error)

	// GetName returns the name of the data provider
	GetName() string
}

// DataCache interface for caching loaded data
type DataCache interface {
	// Get retrieves data from cache if available
	Get(key string) ([]types.OHLCV, bool)

	// Set stores data in cache
	Set(key string, data []types.OHLCV)

	// Clear removes all cached data
	Clear()

	// Size returns the number of cached entries
	Size() int
}

// DataFilter interface for filtering and transforming data
type DataFilter interface {
	// FilterByPeriod filters data to the last N period
	FilterByPeriod(data []types.OHLCV, period time.Duration) []types.OHLCV

	// FilterByDateRange filters data to a specific date range
	FilterByDateRange(data []types.OHLCV, start, end time.Time) []types.OHLCV

	// ValidateTimeSequence ensures data is in chronological order
	ValidateTimeSequence(data []types.OHLCV) error
}

// FileLocator interface for finding data files
type FileLocator interface {
	// FindDataFiles lists the bar files under root, sorted by path
	FindDataFiles(root string) ([]string, error)

	// SymbolFromPath derives the symbol label of a bar file
	SymbolFromPath(path string) string
}

// Header aliases understood by the CSV provider, matched case-insensitively
var (
	timestampHeaders = []string{"timestamp", "time", "date", "datetime", "open_time", "opentime"}
	openHeaders      = []string{"open", "o"}
	highHeaders      = []string{"high", "h"}
	lowHeaders       = []string{"low", "l"}
	closeHeaders     = []string{"close", "c", "adj_close", "adj close"}
	volumeHeaders    = []string{"volume", "vol", "v"}
)

// timestampLayouts are tried in order for textual timestamps
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
}
