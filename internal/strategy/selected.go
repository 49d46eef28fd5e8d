package strategy

import (
	"fmt"
	"strings"

	"github.com/ducminhle1904/strategy-backtester/internal/indicators"
)

// indicatorRule produces per-bar buy and sell triggers for one selected indicator
type indicatorRule struct {
	key        IndicatorKey
	buyReason  string
	sellReason string
	buy, sell  func(panel *indicators.Panel) []bool
}

func thresholdRule(key IndicatorKey, col string, low, high float64) indicatorRule {
	return indicatorRule{
		key:        key,
		buyReason:  fmt.Sprintf("%s crossed below %g", col, low),
		sellReason: fmt.Sprintf("%s crossed above %g", col, high),
		buy:        func(p *indicators.Panel) []bool { return crossesBelow(column(p, col), low) },
		sell:       func(p *indicators.Panel) []bool { return crossesAbove(column(p, col), high) },
	}
}

func pairRule(key IndicatorKey, fast, slow string) indicatorRule {
	return indicatorRule{
		key:        key,
		buyReason:  fmt.Sprintf("%s crossed above %s", fast, slow),
		sellReason: fmt.Sprintf("%s crossed below %s", fast, slow),
		buy:        func(p *indicators.Panel) []bool { return crossesOver(column(p, fast), column(p, slow)) },
		sell:       func(p *indicators.Panel) []bool { return crossesUnder(column(p, fast), column(p, slow)) },
	}
}

var selectedRules = map[IndicatorKey]indicatorRule{
	KeyRSI:        thresholdRule(KeyRSI, indicators.ColRSI, 30, 70),
	KeyMACD:       pairRule(KeyMACD, indicators.ColMACD, indicators.ColMACDSignal),
	KeySMA:        pairRule(KeySMA, indicators.ColSMA20, indicators.ColSMA50),
	KeyEMA:        pairRule(KeyEMA, indicators.ColEMA12, indicators.ColEMA26),
	KeyStochastic: thresholdRule(KeyStochastic, indicators.ColStochK, 20, 80),
	KeyWilliamsR:  thresholdRule(KeyWilliamsR, indicators.ColWilliamsR, -80, -20),
	KeyCCI:        thresholdRule(KeyCCI, indicators.ColCCI, -100, 100),
	KeyBollinger: {
		key:        KeyBollinger,
		buyReason:  "close crossed below bb_lower",
		sellReason: "close crossed above bb_upper",
		buy: func(p *indicators.Panel) []bool {
			return crossesUnder(column(p, indicators.ColClose), column(p, indicators.ColBBLower))
		},
		sell: func(p *indicators.Panel) []bool {
			return crossesOver(column(p, indicators.ColClose), column(p, indicators.ColBBUpper))
		},
	},
	KeyADX: {
		key:        KeyADX,
		buyReason:  "adx crossed above 25 with close above sma_20",
		sellReason: "adx crossed above 25 with close below sma_20",
		buy:        func(p *indicators.Panel) []bool { return adxTrend(p, true) },
		sell:       func(p *indicators.Panel) []bool { return adxTrend(p, false) },
	},
	KeyATR: {
		key:        KeyATR,
		buyReason:  "close broke above previous close + atr",
		sellReason: "close broke below previous close - atr",
		buy:        func(p *indicators.Panel) []bool { return atrBreakout(p, true) },
		sell:       func(p *indicators.Panel) []bool { return atrBreakout(p, false) },
	},
}

// adxTrend fires when trend strength crosses 25; the close against sma_20
// decides the side
func adxTrend(panel *indicators.Panel, up bool) []bool {
	fires := crossesAbove(column(panel, indicators.ColADX), 25)
	closes := column(panel, indicators.ColClose)
	sma := column(panel, indicators.ColSMA20)
	for i := range fires {
		if !fires[i] {
			continue
		}
		if up {
			fires[i] = closes[i] > sma[i]
		} else {
			fires[i] = closes[i] < sma[i]
		}
	}
	return fires
}

func atrBreakout(panel *indicators.Panel, up bool) []bool {
	closes := column(panel, indicators.ColClose)
	atr := column(panel, indicators.ColATR)
	fires := make([]bool, len(closes))
	for i := 1; i < len(closes); i++ {
		if up {
			fires[i] = closes[i] > closes[i-1]+atr[i-1]
		} else {
			fires[i] = closes[i] < closes[i-1]-atr[i-1]
		}
	}
	return fires
}

// indicatorSignals combines the selected indicators with OR. A bar where one
// indicator says Buy and another Sell stays Hold.
func indicatorSignals(panel *indicators.Panel, keys []IndicatorKey) *SignalSeries {
	out := NewSignalSeries(panel.Timestamps())
	n := panel.Len()
	buyReasons := make([][]string, n)
	sellReasons := make([][]string, n)

	for _, key := range keys {
		rule, ok := selectedRules[key]
		if !ok {
			continue
		}
		buys, sells := rule.buy(panel), rule.sell(panel)
		for i := 0; i < n; i++ {
			if buys[i] {
				buyReasons[i] = append(buyReasons[i], rule.buyReason)
			}
			if sells[i] {
				sellReasons[i] = append(sellReasons[i], rule.sellReason)
			}
		}
	}

	for i := 0; i < n; i++ {
		switch {
		case len(buyReasons[i]) > 0 && len(sellReasons[i]) == 0:
			out.Set(i, SignalBuy, strings.Join(buyReasons[i], " OR "))
		case len(sellReasons[i]) > 0 && len(buyReasons[i]) == 0:
			out.Set(i, SignalSell, strings.Join(sellReasons[i], " OR "))
		}
	}
	return out
}
