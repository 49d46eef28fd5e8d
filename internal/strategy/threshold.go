package strategy

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ducminhle1904/strategy-backtester/internal/indicators"
)

var (
	maRefPattern = regexp.MustCompile(
		`\b(?:(\d{1,3})\s*-?\s*(?:day|period|bar)?\s*)?(exponential moving average|simple moving average|moving average|sma|ema|ma)(?:\s*\(?\s*(\d{1,3})\)?)?`)

	signalLineWords = []string{"signal", "signal line", "سیگنال"}
	histogramWords  = []string{"histogram", "hist", "هیستوگرام"}
	bullishWords    = []string{"bullish", "golden cross", "تقاطع طلایی", "صعودی"}
	bearishWords    = []string{"bearish", "death cross", "تقاطع مرگ", "نزولی"}
	namedCrossWords = []string{"golden cross", "death cross", "تقاطع طلایی", "تقاطع مرگ"}
)

type maRef struct {
	kind   string // sma or ema
	period int
}

func (r maRef) column() string {
	return fmt.Sprintf("%s_%d", r.kind, r.period)
}

func (r maRef) label() string {
	return fmt.Sprintf("%s%d", strings.ToUpper(r.kind), r.period)
}

// ThresholdInterpreter handles RSI, MACD and moving-average clauses. Every
// rule is a crossover, never a level test.
type ThresholdInterpreter struct {
	rsiLow, rsiHigh float64
	defaultPeriod   int
}

// NewThresholdInterpreter creates the indicator threshold interpreter
func NewThresholdInterpreter() *ThresholdInterpreter {
	return &ThresholdInterpreter{rsiLow: 30, rsiHigh: 70, defaultPeriod: 20}
}

func (t *ThresholdInterpreter) Name() string {
	return "indicator-threshold"
}

func (t *ThresholdInterpreter) TryMatch(clause Clause, panel *indicators.Panel) (*Contribution, bool) {
	switch {
	case containsAny(clause.Norm, "rsi", "آر اس آی"):
		return t.rsi(clause, panel), true
	case containsAny(clause.Norm, "macd", "مکدی"):
		return t.macd(clause, panel), true
	}
	if refs := t.maRefs(clause.Norm); len(refs) > 0 {
		return t.movingAverage(clause, panel, refs), true
	}
	if containsAny(clause.Norm, namedCrossWords...) {
		return t.movingAverage(clause, panel, namedCrossPair(panel)), true
	}
	return nil, false
}

// namedCrossPair is the SMA pair behind a golden or death cross: 50 over 200
// when the series is long enough to define the slow average, else 20 over 50
func namedCrossPair(panel *indicators.Panel) []maRef {
	if panel.HasColumn("sma_200") || panel.Len() >= 200 {
		return []maRef{{kind: "sma", period: 50}, {kind: "sma", period: 200}}
	}
	return []maRef{{kind: "sma", period: 20}, {kind: "sma", period: 50}}
}

func (t *ThresholdInterpreter) rsi(clause Clause, panel *indicators.Panel) *Contribution {
	dir, threshold, ok := thresholdOf(clause.Norm)
	if dir == DirectionNone {
		dir = roleDirection(clause.Role)
	}
	if !ok || threshold < 0 || threshold > 100 {
		threshold = t.rsiHigh
		if dir == DirectionBelow {
			threshold = t.rsiLow
		}
	}
	return &Contribution{
		Fires:  crossThreshold(column(panel, indicators.ColRSI), dir, threshold),
		Reason: fmt.Sprintf("RSI crossed %s %g", dir, threshold),
	}
}

func (t *ThresholdInterpreter) macd(clause Clause, panel *indicators.Panel) *Contribution {
	dir := crossDirection(clause)
	macd := column(panel, indicators.ColMACD)

	if containsAny(clause.Norm, signalLineWords...) {
		return &Contribution{
			Fires:  crossSeries(macd, column(panel, indicators.ColMACDSignal), dir),
			Reason: fmt.Sprintf("MACD crossed %s signal line", dir),
		}
	}

	_, end := directionOf(clause.Norm)
	threshold, ok := numberAfter(clause.Norm, end)
	if !ok {
		threshold = 0
	}
	if containsAny(clause.Norm, histogramWords...) {
		return &Contribution{
			Fires:  crossThreshold(column(panel, indicators.ColMACDHist), dir, threshold),
			Reason: fmt.Sprintf("MACD histogram crossed %s %g", dir, threshold),
		}
	}
	return &Contribution{
		Fires:  crossThreshold(macd, dir, threshold),
		Reason: fmt.Sprintf("MACD crossed %s %g", dir, threshold),
	}
}

func (t *ThresholdInterpreter) movingAverage(clause Clause, panel *indicators.Panel, refs []maRef) *Contribution {
	dir := crossDirection(clause)
	first := t.maValues(panel, refs[0])

	if len(refs) >= 2 {
		return &Contribution{
			Fires:  crossSeries(first, t.maValues(panel, refs[1]), dir),
			Reason: fmt.Sprintf("%s crossed %s %s", refs[0].label(), dir, refs[1].label()),
		}
	}
	return &Contribution{
		Fires:  crossSeries(column(panel, indicators.ColClose), first, dir),
		Reason: fmt.Sprintf("close crossed %s %s", dir, refs[0].label()),
	}
}

// maRefs extracts moving-average references in the order they appear
func (t *ThresholdInterpreter) maRefs(text string) []maRef {
	var refs []maRef
	text = strings.ReplaceAll(text, "_", " ")
	for _, loc := range maRefPattern.FindAllStringSubmatchIndex(text, -1) {
		if letterAfter(text, loc[5]) {
			continue
		}
		kind := text[loc[4]:loc[5]]
		ref := maRef{kind: "sma", period: t.defaultPeriod}
		if kind == "ema" || strings.HasPrefix(kind, "exponential") {
			ref.kind = "ema"
		}
		for _, group := range []int{3, 1} {
			if loc[2*group] < 0 {
				continue
			}
			if p, err := strconv.Atoi(text[loc[2*group]:loc[2*group+1]]); err == nil && p > 0 {
				ref.period = p
				break
			}
		}
		refs = append(refs, ref)
	}
	if len(refs) == 0 && containsWord(text, "میانگین متحرک") {
		ref := maRef{kind: "sma", period: t.defaultPeriod}
		if containsWord(text, "نمایی") {
			ref.kind = "ema"
		}
		if i, ok := indexWord(text, "میانگین متحرک"); ok {
			if p, ok := numberAfter(text, i); ok && p >= 1 && p == math.Trunc(p) {
				ref.period = int(p)
			}
		}
		refs = append(refs, ref)
	}
	return refs
}

// maValues reads the moving average from the panel or derives it from closes
func (t *ThresholdInterpreter) maValues(panel *indicators.Panel, ref maRef) []float64 {
	if values, ok := panel.Column(ref.column()); ok {
		return values
	}
	closes := column(panel, indicators.ColClose)
	if ref.kind == "ema" {
		return indicators.EMASeries(closes, ref.period)
	}
	return indicators.SMASeries(closes, ref.period)
}

// crossDirection resolves the direction of a trend crossover: explicit words
// first, then bullish or bearish language, then the clause role
func crossDirection(clause Clause) Direction {
	if dir, _ := directionOf(clause.Norm); dir != DirectionNone {
		return dir
	}
	_, bullAt, _ := firstOf(clause.Norm, bullishWords)
	_, bearAt, _ := firstOf(clause.Norm, bearishWords)
	switch {
	case bullAt >= 0 && (bearAt < 0 || bullAt < bearAt):
		return DirectionAbove
	case bearAt >= 0:
		return DirectionBelow
	case clause.Role == RoleExit:
		return DirectionBelow
	default:
		return DirectionAbove
	}
}

// column returns a panel column or an all-undefined series
func column(panel *indicators.Panel, name string) []float64 {
	if values, ok := panel.Column(name); ok {
		return values
	}
	out := make([]float64, panel.Len())
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
