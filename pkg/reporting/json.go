package reporting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ducminhle1904/strategy-backtester/pkg/orchestrator"
)

// DefaultJSONReporter writes results in their wire form
type DefaultJSONReporter struct{}

// NewDefaultJSONReporter creates a new JSON reporter
func NewDefaultJSONReporter() *DefaultJSONReporter {
	return &DefaultJSONReporter{}
}

// WriteResultJSON writes the result document to path
func (r *DefaultJSONReporter) WriteResultJSON(result *orchestrator.BacktestResult, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	data, err := result.JSON()
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// PrintResultJSON writes the result document to w
func (r *DefaultJSONReporter) PrintResultJSON(result *orchestrator.BacktestResult, w io.Writer) error {
	data, err := result.JSON()
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
