package strategy

import (
	"sort"
	"strings"
)

// IndicatorKey names an indicator that can be selected as a trigger
type IndicatorKey string

const (
	KeyRSI        IndicatorKey = "rsi"
	KeyMACD       IndicatorKey = "macd"
	KeySMA        IndicatorKey = "sma"
	KeyEMA        IndicatorKey = "ema"
	KeyBollinger  IndicatorKey = "bollinger"
	KeyStochastic IndicatorKey = "stochastic"
	KeyWilliamsR  IndicatorKey = "williams_r"
	KeyATR        IndicatorKey = "atr"
	KeyADX        IndicatorKey = "adx"
	KeyCCI        IndicatorKey = "cci"
)

var indicatorKeyAliases = map[string]IndicatorKey{
	"rsi":             KeyRSI,
	"macd":            KeyMACD,
	"sma":             KeySMA,
	"ma":              KeySMA,
	"moving_average":  KeySMA,
	"ema":             KeyEMA,
	"bollinger":       KeyBollinger,
	"bollinger_bands": KeyBollinger,
	"bb":              KeyBollinger,
	"stochastic":      KeyStochastic,
	"stoch":           KeyStochastic,
	"williams_r":      KeyWilliamsR,
	"williams":        KeyWilliamsR,
	"williams_%r":     KeyWilliamsR,
	"%r":              KeyWilliamsR,
	"atr":             KeyATR,
	"adx":             KeyADX,
	"cci":             KeyCCI,
}

// ParseIndicatorKey maps a user-supplied indicator name onto a catalog key
func ParseIndicatorKey(name string) (IndicatorKey, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer(" ", "_", "-", "_").Replace(n)
	key, ok := indicatorKeyAliases[n]
	return key, ok
}

// SupportedIndicatorKeys lists the catalog keys in sorted order
func SupportedIndicatorKeys() []string {
	seen := make(map[IndicatorKey]bool)
	var out []string
	for _, key := range indicatorKeyAliases {
		if !seen[key] {
			seen[key] = true
			out = append(out, string(key))
		}
	}
	sort.Strings(out)
	return out
}
