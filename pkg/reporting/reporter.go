package reporting

import (
	"io"
	"os"
	"path/filepath"

	"github.com/ducminhle1904/strategy-backtester/pkg/config"
	"github.com/ducminhle1904/strategy-backtester/pkg/orchestrator"
)

// DefaultReporter implements the complete Reporter interface
type DefaultReporter struct {
	console *DefaultConsoleReporter
	csv     *DefaultCSVReporter
	excel   *DefaultExcelReporter
	json    *DefaultJSONReporter
	paths   *DefaultPathManager
}

var _ Reporter = (*DefaultReporter)(nil)

// NewDefaultReporter creates a reporter printing to stdout
func NewDefaultReporter() *DefaultReporter {
	return NewReporterTo(os.Stdout)
}

// NewReporterTo creates a reporter printing console output to w
func NewReporterTo(w io.Writer) *DefaultReporter {
	return &DefaultReporter{
		console: NewConsoleReporterTo(w),
		csv:     NewDefaultCSVReporter(),
		excel:   NewDefaultExcelReporter(),
		json:    NewDefaultJSONReporter(),
		paths:   NewDefaultPathManager(),
	}
}

// Console output methods
func (r *DefaultReporter) OutputResult(result *orchestrator.BacktestResult, strategyName string) {
	r.console.OutputResult(result, strategyName)
}

func (r *DefaultReporter) OutputBatch(results []*orchestrator.BacktestResult, labels []string) {
	r.console.OutputBatch(results, labels)
}

// File output methods
func (r *DefaultReporter) WriteResultJSON(result *orchestrator.BacktestResult, path string) error {
	return r.json.WriteResultJSON(result, path)
}

func (r *DefaultReporter) WriteTradesCSV(result *orchestrator.BacktestResult, path string) error {
	return r.csv.WriteTradesCSV(result, path)
}

func (r *DefaultReporter) WriteEquityCSV(result *orchestrator.BacktestResult, path string) error {
	return r.csv.WriteEquityCSV(result, path)
}

func (r *DefaultReporter) WriteResultXLSX(result *orchestrator.BacktestResult, path string) error {
	return r.excel.WriteResultXLSX(result, path)
}

// Path management methods
func (r *DefaultReporter) GetDefaultOutputDir(root, symbol, strategyName string) string {
	return r.paths.GetDefaultOutputDir(root, symbol, strategyName)
}

func (r *DefaultReporter) EnsureDirectoryExists(path string) error {
	return r.paths.EnsureDirectoryExists(path)
}

// ConfigForFormat maps an output format name to a reporting configuration
func ConfigForFormat(format, outputDir string) ReportingConfig {
	cfg := ReportingConfig{OutputDirectory: outputDir}
	switch format {
	case config.OutputJSON:
		cfg.JSONEnabled = true
	case config.OutputCSV:
		cfg.CSVEnabled = true
	case config.OutputExcel:
		cfg.ExcelEnabled = true
	case config.OutputAll:
		cfg.EnableConsole = true
		cfg.JSONEnabled = true
		cfg.CSVEnabled = true
		cfg.ExcelEnabled = true
	default:
		cfg.EnableConsole = true
	}
	cfg.EnableFiles = cfg.JSONEnabled || cfg.CSVEnabled || cfg.ExcelEnabled
	return cfg
}

// ReportingManager provides a high-level interface for all reporting needs
type ReportingManager struct {
	reporter Reporter
	config   ReportingConfig
}

// NewReportingManager creates a new reporting manager with configuration
func NewReportingManager(cfg ReportingConfig) *ReportingManager {
	return NewReportingManagerWithReporter(cfg, NewDefaultReporter())
}

// NewReportingManagerWithReporter creates a manager around a custom reporter
func NewReportingManagerWithReporter(cfg ReportingConfig, reporter Reporter) *ReportingManager {
	return &ReportingManager{reporter: reporter, config: cfg}
}

// ReportResult outputs one result according to configuration and returns the
// files it wrote
func (m *ReportingManager) ReportResult(result *orchestrator.BacktestResult, strategyName string) ([]string, error) {
	if m.config.EnableConsole {
		m.reporter.OutputResult(result, strategyName)
	}
	if !m.config.EnableFiles {
		return nil, nil
	}

	outputDir := m.reporter.GetDefaultOutputDir(m.config.OutputDirectory, result.Symbol, strategyName)
	var written []string

	if m.config.JSONEnabled {
		path := filepath.Join(outputDir, ResultFile)
		if err := m.reporter.WriteResultJSON(result, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if m.config.CSVEnabled {
		tradesPath := filepath.Join(outputDir, TradesFile)
		if err := m.reporter.WriteTradesCSV(result, tradesPath); err != nil {
			return written, err
		}
		equityPath := filepath.Join(outputDir, EquityFile)
		if err := m.reporter.WriteEquityCSV(result, equityPath); err != nil {
			return written, err
		}
		written = append(written, tradesPath, equityPath)
	}

	if m.config.ExcelEnabled {
		path := filepath.Join(outputDir, ExcelFile)
		if err := m.reporter.WriteResultXLSX(result, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}

// ReportBatch prints the batch table and writes every result's files
func (m *ReportingManager) ReportBatch(results []*orchestrator.BacktestResult, labels []string) ([]string, error) {
	if m.config.EnableConsole {
		m.reporter.OutputBatch(results, labels)
	}
	if !m.config.EnableFiles {
		return nil, nil
	}

	files := NewReportingManagerWithReporter(ReportingConfig{
		EnableFiles:     true,
		OutputDirectory: m.config.OutputDirectory,
		JSONEnabled:     m.config.JSONEnabled,
		CSVEnabled:      m.config.CSVEnabled,
		ExcelEnabled:    m.config.ExcelEnabled,
	}, m.reporter)

	var written []string
	for i, result := range results {
		if result == nil {
			continue
		}
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		paths, err := files.ReportResult(result, label)
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
