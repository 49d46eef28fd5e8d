package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	bterrors "github.com/ducminhle1904/strategy-backtester/internal/errors"
	"github.com/ducminhle1904/strategy-backtester/internal/strategy"
)

// NamedStrategy is a strategy loaded from a file, labeled by the file name
type NamedStrategy struct {
	Name string
	Path string
	Spec strategy.Spec
}

// LoadStrategy parses a strategy file and normalizes it. .json files are
// decoded strictly as JSON, anything else as YAML.
func LoadStrategy(path string) (strategy.Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return strategy.Spec{}, bterrors.WrapError(err, bterrors.ErrorCategoryConfiguration, "config", "read strategy")
	}
	spec, err := ParseStrategy(raw, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		return strategy.Spec{}, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// ParseStrategy decodes a strategy document. Unknown fields are rejected so
// a typo such as "entry_condition" does not silently become an empty rule.
func ParseStrategy(raw []byte, isJSON bool) (strategy.Spec, error) {
	var spec strategy.Spec
	if isJSON {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&spec); err != nil {
			return strategy.Spec{}, bterrors.WrapError(err, bterrors.ErrorCategoryConfiguration, "config", "parse strategy json")
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&spec); err != nil && !errors.Is(err, io.EOF) {
			return strategy.Spec{}, bterrors.WrapError(err, bterrors.ErrorCategoryConfiguration, "config", "parse strategy yaml")
		}
	}
	return spec.Normalize(), nil
}

// LoadStrategies loads one strategy file, or every .yaml/.yml/.json file of
// a directory sorted by name
func LoadStrategies(path string) ([]NamedStrategy, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, bterrors.WrapError(err, bterrors.ErrorCategoryConfiguration, "config", "stat strategies")
	}

	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, bterrors.WrapError(err, bterrors.ErrorCategoryConfiguration, "config", "list strategies")
		}
		files = nil
		for _, e := range entries {
			if !e.IsDir() && isStrategyFile(e.Name()) {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
		sort.Strings(files)
		if len(files) == 0 {
			return nil, bterrors.NewConfigurationError("config", "list strategies",
				fmt.Sprintf("no strategy files in %s", path))
		}
	}

	out := make([]NamedStrategy, 0, len(files))
	for _, file := range files {
		spec, err := LoadStrategy(file)
		if err != nil {
			return nil, err
		}
		base := filepath.Base(file)
		out = append(out, NamedStrategy{
			Name: strings.TrimSuffix(base, filepath.Ext(base)),
			Path: file,
			Spec: spec,
		})
	}
	return out, nil
}

// SaveStrategy writes spec as a strategy file LoadStrategy can read back.
// .json paths get JSON, anything else YAML.
func SaveStrategy(path string, spec strategy.Spec) error {
	var (
		raw []byte
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		raw, err = json.MarshalIndent(spec, "", "  ")
	} else {
		raw, err = yaml.Marshal(spec)
	}
	if err != nil {
		return bterrors.WrapError(err, bterrors.ErrorCategoryConfiguration, "config", "encode strategy")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return bterrors.WrapError(err, bterrors.ErrorCategoryConfiguration, "config", "create strategy dir")
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return bterrors.WrapError(err, bterrors.ErrorCategoryConfiguration, "config", "write strategy")
	}
	return nil
}

func isStrategyFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
