package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPathManager implements path management functionality
type DefaultPathManager struct{}

// NewDefaultPathManager creates a new path manager
func NewDefaultPathManager() *DefaultPathManager {
	return &DefaultPathManager{}
}

// GetDefaultOutputDir returns root/SYMBOL_strategy
func (p *DefaultPathManager) GetDefaultOutputDir(root, symbol, strategyName string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	n := strings.ToLower(strings.TrimSpace(strategyName))
	if s == "" {
		s = "UNKNOWN"
	}
	if n == "" {
		n = "default"
	}
	if root == "" {
		root = "results"
	}

	return filepath.Join(root, fmt.Sprintf("%s_%s", s, sanitize(n)))
}

// EnsureDirectoryExists creates the parent directory of a file path
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// DefaultOutputDir is the package-level convenience form of GetDefaultOutputDir
func DefaultOutputDir(root, symbol, strategyName string) string {
	return NewDefaultPathManager().GetDefaultOutputDir(root, symbol, strategyName)
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, name)
}
