package strategy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ducminhle1904/strategy-backtester/internal/indicators"
	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

type candlePattern struct {
	name        string
	words       []string
	needsCandle bool
	test        func(prev, curr types.OHLCV) bool
}

var candlePatterns = []candlePattern{
	{
		name:  "higher lows",
		words: []string{"higher low", "higher lows", "کف بالاتر", "کف های بالاتر"},
		test:  func(prev, curr types.OHLCV) bool { return curr.Low > prev.Low },
	},
	{
		name:  "lower highs",
		words: []string{"lower high", "lower highs", "سقف پایین تر", "سقف های پایین تر"},
		test:  func(prev, curr types.OHLCV) bool { return curr.High < prev.High },
	},
	{
		name:  "higher highs",
		words: []string{"higher high", "higher highs", "سقف بالاتر", "سقف های بالاتر"},
		test:  func(prev, curr types.OHLCV) bool { return curr.High > prev.High },
	},
	{
		name:  "lower lows",
		words: []string{"lower low", "lower lows", "کف پایین تر", "کف های پایین تر"},
		test:  func(prev, curr types.OHLCV) bool { return curr.Low < prev.Low },
	},
	{
		name:        "bullish candles",
		words:       []string{"bullish", "green", "up candle", "up candles", "صعودی", "سبز"},
		needsCandle: true,
		test:        func(_, curr types.OHLCV) bool { return curr.Close > curr.Open },
	},
	{
		name:        "bearish candles",
		words:       []string{"bearish", "red", "down candle", "down candles", "نزولی", "قرمز"},
		needsCandle: true,
		test:        func(_, curr types.OHLCV) bool { return curr.Close < curr.Open },
	},
}

var (
	candleWords = []string{
		"candle", "candles", "candlestick", "candlesticks", "bar", "bars",
		"consecutive", "in a row", "کندل", "شمع", "متوالی", "پشت سر هم",
	}
	countWords = map[string]int{
		"two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7,
		"دو": 2, "سه": 3, "چهار": 4, "پنج": 5, "شش": 6, "هفت": 7,
	}
)

// CandlePatternInterpreter detects runs of N consecutive candles with the
// same shape
type CandlePatternInterpreter struct {
	defaultCount int
}

// NewCandlePatternInterpreter creates a candle interpreter with N defaulting to 3
func NewCandlePatternInterpreter() *CandlePatternInterpreter {
	return &CandlePatternInterpreter{defaultCount: 3}
}

func (c *CandlePatternInterpreter) Name() string {
	return "candle-pattern"
}

func (c *CandlePatternInterpreter) TryMatch(clause Clause, panel *indicators.Panel) (*Contribution, bool) {
	hasCandle := containsAny(clause.Norm, candleWords...)
	for _, pattern := range candlePatterns {
		if pattern.needsCandle && !hasCandle {
			continue
		}
		if !containsAny(clause.Norm, pattern.words...) {
			continue
		}
		n := c.countOf(clause.Norm)
		return &Contribution{
			Fires:  runReaches(panel.Bars(), n, pattern.test),
			Reason: fmt.Sprintf("%d consecutive %s", n, pattern.name),
		}, true
	}
	return nil, false
}

// countOf extracts N from digits or number words
func (c *CandlePatternInterpreter) countOf(text string) int {
	if m := numberPattern.FindString(text); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n >= 1 && n <= 50 {
			return n
		}
	}
	for _, token := range strings.Fields(text) {
		if n, ok := countWords[token]; ok {
			return n
		}
	}
	return c.defaultCount
}

// runReaches fires on the bar where a run of consecutive matches first
// reaches n
func runReaches(bars []types.OHLCV, n int, test func(prev, curr types.OHLCV) bool) []bool {
	fires := make([]bool, len(bars))
	run := 0
	for i := range bars {
		prev := bars[i]
		if i > 0 {
			prev = bars[i-1]
		}
		if test(prev, bars[i]) {
			run++
		} else {
			run = 0
		}
		fires[i] = run == n
	}
	return fires
}
