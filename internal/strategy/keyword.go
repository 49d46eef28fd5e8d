package strategy

import (
	"fmt"

	"github.com/ducminhle1904/strategy-backtester/internal/indicators"
)

var specificWords = []string{
	"rsi", "macd", "sma", "ema", "ma", "moving average", "bollinger", "bb", "band", "bands",
	"stochastic", "stoch", "williams", "%r", "atr", "adx", "cci", "volume", "vol",
	"candle", "candles", "price", "close", "closing", "high", "low", "open",
	"support", "resistance", "trend", "breakout", "momentum",
	"golden cross", "death cross", "cross", "crosses", "crossed", "crossover", "crossunder",
	"آر اس آی", "مکدی", "میانگین", "بولینگر", "حجم", "قیمت", "کندل", "شمع", "روند", "تقاطع",
}

// KeywordInterpreter handles clauses that only say buy or sell. It is the
// one place a default rule is chosen: an RSI crossover when the panel has
// RSI, otherwise high volume.
type KeywordInterpreter struct {
	volume *VolumeInterpreter
}

// NewKeywordInterpreter creates the bare buy/sell interpreter
func NewKeywordInterpreter() *KeywordInterpreter {
	return &KeywordInterpreter{volume: NewVolumeInterpreter()}
}

func (k *KeywordInterpreter) Name() string {
	return "keyword"
}

func (k *KeywordInterpreter) TryMatch(clause Clause, panel *indicators.Panel) (*Contribution, bool) {
	action, ok := actionOf(clause.Norm)
	if !ok || containsAny(clause.Norm, specificWords...) {
		return nil, false
	}

	if panel.HasColumn(indicators.ColRSI) {
		rsi, _ := panel.Column(indicators.ColRSI)
		dir, threshold := DirectionBelow, 30.0
		if action == SignalSell {
			dir, threshold = DirectionAbove, 70.0
		}
		return &Contribution{
			Fires:  crossThreshold(rsi, dir, threshold),
			Reason: fmt.Sprintf("RSI crossed %s %g (default %s rule)", dir, threshold, action),
		}, true
	}

	contribution, ok := k.volume.contribution(panel, k.volume.highFactor, false)
	if !ok {
		return nil, false
	}
	contribution.Reason += fmt.Sprintf(" (default %s rule)", action)
	return contribution, true
}
