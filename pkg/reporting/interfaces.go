package reporting

import (
	"github.com/ducminhle1904/strategy-backtester/pkg/orchestrator"
)

// Package reporting provides output generation for backtest results

// ConsoleReporter defines interface for console output
type ConsoleReporter interface {
	OutputResult(result *orchestrator.BacktestResult, strategyName string)
	OutputBatch(results []*orchestrator.BacktestResult, labels []string)
}

// FileReporter defines interface for file output
type FileReporter interface {
	WriteResultJSON(result *orchestrator.BacktestResult, path string) error
	WriteTradesCSV(result *orchestrator.BacktestResult, path string) error
	WriteEquityCSV(result *orchestrator.BacktestResult, path string) error
	WriteResultXLSX(result *orchestrator.BacktestResult, path string) error
}

// PathManager defines interface for output path management
type PathManager interface {
	GetDefaultOutputDir(root, symbol, strategyName string) string
	EnsureDirectoryExists(path string) error
}

// Reporter combines all reporting interfaces
type Reporter interface {
	ConsoleReporter
	FileReporter
	PathManager
}

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	HeaderStyle       int
	CurrencyStyle     int
	PercentStyle      int
	PriceStyle        int
	BaseStyle         int
	RedPercentStyle   int
	GreenPercentStyle int
	LabelStyle        int
}

// ReportingConfig holds configuration for reporting
type ReportingConfig struct {
	EnableConsole   bool
	EnableFiles     bool
	OutputDirectory string
	ExcelEnabled    bool
	CSVEnabled      bool
	JSONEnabled     bool
}

// Output file names inside a result directory
const (
	ResultFile = "result.json"
	TradesFile = "trades.csv"
	EquityFile = "equity.csv"
	ExcelFile  = "backtest.xlsx"
)
