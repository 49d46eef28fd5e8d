package data

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// defaultBarFileName is the file name used by the data/{exchange}/{category}/{symbol}/{interval}/
// directory layout, where the symbol is taken from the directory
const defaultBarFileName = "candles"

// DefaultFileLocator implements FileLocator for standard file system operations
type DefaultFileLocator struct{}

// NewDefaultFileLocator creates a new default file locator
func NewDefaultFileLocator() *DefaultFileLocator {
	return &DefaultFileLocator{}
}

// FindDataFiles walks root and returns every CSV or Parquet file. A root that
// is itself a file is returned as is.
func (f *DefaultFileLocator) FindDataFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsSupportedFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// SymbolFromPath returns the upper-cased file name without extension. For
// .../{symbol}/{interval}/candles.csv the symbol directory is used instead.
func (f *DefaultFileLocator) SymbolFromPath(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.EqualFold(name, defaultBarFileName) {
		intervalDir := filepath.Dir(path)
		symbolDir := filepath.Base(filepath.Dir(intervalDir))
		if symbolDir != "." && symbolDir != string(filepath.Separator) {
			return strings.ToUpper(symbolDir)
		}
	}
	return strings.ToUpper(name)
}

// IsSupportedFile reports whether a provider exists for the file extension
func IsSupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".parquet", ".xlsx":
		return true
	}
	return false
}
