package indicators

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// Panel is a price series enriched with indicator columns. It is immutable
// once built; use PanelBuilder to derive one.
type Panel struct {
	bars    []types.OHLCV
	columns map[string][]float64
	names   []string
}

// Len returns the number of bars
func (p *Panel) Len() int {
	return len(p.bars)
}

// Bar returns the price point at index i
func (p *Panel) Bar(i int) types.OHLCV {
	return p.bars[i]
}

// Bars returns a copy of the underlying price series
func (p *Panel) Bars() []types.OHLCV {
	out := make([]types.OHLCV, len(p.bars))
	copy(out, p.bars)
	return out
}

// Timestamps returns the time index of the panel
func (p *Panel) Timestamps() []time.Time {
	return types.Timestamps(p.bars)
}

// IndicatorNames returns the indicator columns in sorted order
func (p *Panel) IndicatorNames() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// HasColumn reports whether name is a price or indicator column with at
// least one defined value
func (p *Panel) HasColumn(name string) bool {
	values, ok := p.Column(name)
	if !ok {
		return false
	}
	for _, v := range values {
		if isDefined(v) {
			return true
		}
	}
	return false
}

// Column returns a copy of a price or indicator column
func (p *Panel) Column(name string) ([]float64, bool) {
	if values, ok := p.columns[name]; ok {
		out := make([]float64, len(values))
		copy(out, values)
		return out, true
	}

	var pick func(types.OHLCV) float64
	switch name {
	case ColOpen:
		pick = func(c types.OHLCV) float64 { return c.Open }
	case ColHigh:
		pick = func(c types.OHLCV) float64 { return c.High }
	case ColLow:
		pick = func(c types.OHLCV) float64 { return c.Low }
	case ColClose:
		pick = func(c types.OHLCV) float64 { return c.Close }
	case ColVolume:
		pick = func(c types.OHLCV) float64 { return c.Volume }
	default:
		return nil, false
	}
	out := make([]float64, len(p.bars))
	for i, bar := range p.bars {
		out[i] = pick(bar)
	}
	return out, true
}

// Value returns the value of a column at index i; ok is false when the value
// is undefined or the column does not exist
func (p *Panel) Value(name string, i int) (float64, bool) {
	if i < 0 || i >= len(p.bars) {
		return math.NaN(), false
	}
	if values, ok := p.columns[name]; ok {
		v := values[i]
		return v, isDefined(v)
	}
	var v float64
	bar := p.bars[i]
	switch name {
	case ColOpen:
		v = bar.Open
	case ColHigh:
		v = bar.High
	case ColLow:
		v = bar.Low
	case ColClose:
		v = bar.Close
	case ColVolume:
		v = bar.Volume
	default:
		return math.NaN(), false
	}
	return v, isDefined(v)
}

// PanelBuilder merges indicator outputs into a new Panel exactly once each
type PanelBuilder struct {
	bars    []types.OHLCV
	columns map[string][]float64
}

// NewPanelBuilder starts a panel over a copy of the price series
func NewPanelBuilder(bars []types.OHLCV) *PanelBuilder {
	own := make([]types.OHLCV, len(bars))
	copy(own, bars)
	return &PanelBuilder{
		bars:    own,
		columns: make(map[string][]float64),
	}
}

// Set adds an indicator column. Columns must match the series length and may
// only be set once.
func (b *PanelBuilder) Set(name string, values []float64) error {
	switch name {
	case ColOpen, ColHigh, ColLow, ColClose, ColVolume:
		return fmt.Errorf("column %q is a price column", name)
	}
	if len(values) != len(b.bars) {
		return fmt.Errorf("column %q has %d values, series has %d bars", name, len(values), len(b.bars))
	}
	if _, exists := b.columns[name]; exists {
		return fmt.Errorf("column %q already set", name)
	}
	own := make([]float64, len(values))
	copy(own, values)
	b.columns[name] = own
	return nil
}

// Build returns the immutable panel
func (b *PanelBuilder) Build() *Panel {
	names := make([]string, 0, len(b.columns))
	columns := make(map[string][]float64, len(b.columns))
	for name, values := range b.columns {
		names = append(names, name)
		columns[name] = values
	}
	sort.Strings(names)
	return &Panel{bars: b.bars, columns: columns, names: names}
}
