package indicators

import (
	"fmt"

	bterrors "github.com/ducminhle1904/strategy-backtester/internal/errors"
	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// Engine computes the fixed indicator catalog for a price series
type Engine struct {
	indicators []TechnicalIndicator
	log        logger.Scoped
}

// DefaultIndicators returns the catalog with its conventional parameters
func DefaultIndicators() []TechnicalIndicator {
	return []TechnicalIndicator{
		NewRSI(14),
		NewMACD(12, 26, 9),
		NewSMA(20),
		NewSMA(50),
		NewEMA(12),
		NewEMA(26),
		NewBollingerBands(20, 2.0),
		NewStochastic(14, 3),
		NewWilliamsR(14),
		NewATR(14),
		NewADX(14),
		NewCCI(20),
	}
}

// NewEngine creates an engine over the default catalog
func NewEngine(sink logger.Sink) *Engine {
	return NewEngineWith(sink, DefaultIndicators()...)
}

// NewEngineWith creates an engine over a custom catalog
func NewEngineWith(sink logger.Sink, indicators ...TechnicalIndicator) *Engine {
	return &Engine{
		indicators: indicators,
		log:        logger.For(sink, logger.StageIndicators),
	}
}

// Compute validates the series and returns the enriched panel. A failing
// indicator degrades to undefined columns; only structural data problems
// abort the call.
func (e *Engine) Compute(data []types.OHLCV) (*Panel, error) {
	if err := ValidateSeries(data); err != nil {
		return nil, err
	}

	builder := NewPanelBuilder(data)
	computed := 0
	for _, indicator := range e.indicators {
		columns, err := e.computeOne(indicator, data)
		if err != nil {
			e.log.Warning("%v; substituting undefined values", bterrors.NewIndicatorError(indicator.GetName(), err))
			columns = make(map[string][]float64, len(indicator.Columns()))
			for _, name := range indicator.Columns() {
				columns[name] = nanSeries(len(data))
			}
		} else {
			computed++
		}

		for _, name := range indicator.Columns() {
			values, ok := columns[name]
			if !ok || len(values) != len(data) {
				e.log.Warning("%s returned no usable %q column; substituting undefined values", indicator.GetName(), name)
				values = nanSeries(len(data))
			}
			if err := builder.Set(name, values); err != nil {
				e.log.Warning("skipping column %q of %s: %v", name, indicator.GetName(), err)
			}
		}

		if len(data) < indicator.GetRequiredPeriods() {
			e.log.Debug("%s needs %d bars, series has %d; values stay undefined",
				indicator.GetName(), indicator.GetRequiredPeriods(), len(data))
		}
	}

	e.log.Info("computed %d/%d indicators over %d bars", computed, len(e.indicators), len(data))
	return builder.Build(), nil
}

// computeOne isolates a single indicator so a panic cannot abort the others
func (e *Engine) computeOne(indicator TechnicalIndicator, data []types.OHLCV) (columns map[string][]float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			columns = nil
			err = bterrors.FromPanic(r)
		}
	}()
	return indicator.Compute(data)
}

// ValidateSeries checks the structural requirements of a PriceSeries
func ValidateSeries(data []types.OHLCV) error {
	if len(data) == 0 {
		return bterrors.NewDataError(string(logger.StageIndicators), "validate series", "price series is empty")
	}
	if !types.IsStrictlyAscending(data) {
		return bterrors.NewDataError(string(logger.StageIndicators), "validate series",
			"timestamps must be ascending and unique")
	}
	valid := 0
	for _, bar := range data {
		if bar.IsValid() {
			valid++
		}
	}
	if valid == 0 {
		return bterrors.NewDataError(string(logger.StageIndicators), "validate series",
			fmt.Sprintf("none of the %d bars carries usable open/high/low/close prices", len(data)))
	}
	return nil
}
