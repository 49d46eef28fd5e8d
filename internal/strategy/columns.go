package strategy

import (
	"fmt"
	"strings"

	"github.com/ducminhle1904/strategy-backtester/internal/indicators"
)

type columnRule struct {
	column      string
	words       []string
	low, high   float64
	needsNumber bool
	direction   Direction // used when the clause names none
	negate      bool      // positive thresholds are read as negative
}

// Ordered so that more specific names win over their prefixes
var columnRules = []columnRule{
	{column: indicators.ColStochD, words: []string{"%d", "stoch d", "stochastic d", "stoch_d"}, low: 20, high: 80},
	{column: indicators.ColStochK, words: []string{"stochastic", "stoch", "%k", "stoch_k", "استوکاستیک"}, low: 20, high: 80},
	{column: indicators.ColWilliamsR, words: []string{"williams", "%r", "w%r", "williams_r", "ویلیامز"}, low: -80, high: -20, negate: true},
	{column: indicators.ColCCI, words: []string{"cci", "commodity channel"}, low: -100, high: 100},
	{column: indicators.ColADX, words: []string{"adx", "average directional", "directional index"}, low: 25, high: 25, direction: DirectionAbove},
	{column: indicators.ColATR, words: []string{"atr", "average true range"}, needsNumber: true},
	{column: indicators.ColMACDHist, words: []string{"macd_hist", "histogram"}},
}

var (
	bollingerWords = []string{"bollinger", "bb", "band", "bands", "بولینگر", "باند"}
	lowerBandWords = []string{"lower band", "lower", "bottom", "bb_lower", "باند پایین"}
	upperBandWords = []string{"upper band", "upper", "top", "bb_upper", "باند بالا"}
	midBandWords   = []string{"middle band", "middle", "mid", "basis", "bb_middle", "باند میانی"}
)

// ColumnInterpreter fuzzy-matches clause words against panel columns and
// applies the column's conventional threshold
type ColumnInterpreter struct{}

// NewColumnInterpreter creates the generic column interpreter
func NewColumnInterpreter() *ColumnInterpreter {
	return &ColumnInterpreter{}
}

func (c *ColumnInterpreter) Name() string {
	return "column-match"
}

func (c *ColumnInterpreter) TryMatch(clause Clause, panel *indicators.Panel) (*Contribution, bool) {
	if containsAny(clause.Norm, bollingerWords...) {
		if contribution, ok := c.bollinger(clause, panel); ok {
			return contribution, true
		}
	}
	for _, rule := range columnRules {
		if containsAny(clause.Norm, rule.words...) {
			return c.apply(clause, panel, rule)
		}
	}

	// Any other column the panel carries, by name with or without underscores
	for _, name := range panel.IndicatorNames() {
		if containsAny(clause.Norm, name, strings.ReplaceAll(name, "_", " ")) {
			return c.apply(clause, panel, columnRule{column: name, needsNumber: true})
		}
	}
	return nil, false
}

func (c *ColumnInterpreter) apply(clause Clause, panel *indicators.Panel, rule columnRule) (*Contribution, bool) {
	values, ok := panel.Column(rule.column)
	if !ok {
		return nil, false
	}
	dir, threshold, hasNumber := thresholdOf(clause.Norm)
	if dir == DirectionNone {
		dir = rule.direction
		if dir == DirectionNone {
			dir = roleDirection(clause.Role)
		}
	}
	if !hasNumber {
		if rule.needsNumber {
			return nil, false
		}
		threshold = rule.high
		if dir == DirectionBelow {
			threshold = rule.low
		}
	}
	if rule.negate && threshold > 0 {
		threshold = -threshold
	}
	return &Contribution{
		Fires:  crossThreshold(values, dir, threshold),
		Reason: fmt.Sprintf("%s crossed %s %g", rule.column, dir, threshold),
	}, true
}

// bollinger crosses the close through a band. Without a named band the
// direction picks it: below means the lower band, above the upper.
func (c *ColumnInterpreter) bollinger(clause Clause, panel *indicators.Panel) (*Contribution, bool) {
	dir, _ := directionOf(clause.Norm)
	band := ""
	_, lowerAt, _ := firstOf(clause.Norm, lowerBandWords)
	_, upperAt, _ := firstOf(clause.Norm, upperBandWords)
	switch {
	case containsAny(clause.Norm, midBandWords...):
		band = indicators.ColBBMiddle
	case lowerAt >= 0 && (upperAt < 0 || lowerAt < upperAt):
		band = indicators.ColBBLower
	case upperAt >= 0:
		band = indicators.ColBBUpper
	}

	if dir == DirectionNone {
		switch band {
		case indicators.ColBBLower:
			dir = DirectionBelow
		case indicators.ColBBUpper:
			dir = DirectionAbove
		default:
			dir = roleDirection(clause.Role)
		}
	}
	if band == "" {
		band = indicators.ColBBUpper
		if dir == DirectionBelow {
			band = indicators.ColBBLower
		}
	}

	values, ok := panel.Column(band)
	if !ok {
		return nil, false
	}
	return &Contribution{
		Fires:  crossSeries(column(panel, indicators.ColClose), values, dir),
		Reason: fmt.Sprintf("close crossed %s %s", dir, band),
	}, true
}
