package strategy

import (
	"fmt"
	"strings"

	"github.com/ducminhle1904/strategy-backtester/internal/indicators"
)

var (
	priceWords = []string{
		"price", "prices", "close", "closes", "closing", "candle", "candles",
		"momentum", "rally", "breakout", "قیمت", "کندل", "شمع",
	}
	upWords = []string{
		"rise", "rises", "rising", "up", "increase", "increases", "rally", "rallies",
		"breakout", "gain", "gains", "higher", "bullish", "صعود", "افزایش", "رشد",
	}
	downWords = []string{
		"fall", "falls", "falling", "drop", "drops", "down", "decline", "declines",
		"lower", "bearish", "نزول", "کاهش", "ریزش",
	}
)

// PriceActionInterpreter is the last resort for clauses about price: a
// price level crossover when a number follows the direction, otherwise
// close-over-close momentum
type PriceActionInterpreter struct {
	minActivation float64
}

// NewPriceActionInterpreter creates the price-action interpreter. Momentum
// rules firing on less than 10% of bars are rejected as noise. Level
// crossovers are exempt: a named level is crossed on few bars by nature.
func NewPriceActionInterpreter() *PriceActionInterpreter {
	return &PriceActionInterpreter{minActivation: 0.10}
}

func (p *PriceActionInterpreter) Name() string {
	return "price-action"
}

func (p *PriceActionInterpreter) TryMatch(clause Clause, panel *indicators.Panel) (*Contribution, bool) {
	if !containsAny(clause.Norm, priceWords...) {
		return nil, false
	}
	closes := column(panel, indicators.ColClose)

	dir, end := directionOf(clause.Norm)
	// no activation gate for an explicit level
	if level, ok := numberAfter(clause.Norm, end); ok && dir != DirectionNone && !percentFollows(clause.Norm, end) {
		return &Contribution{
			Fires:  crossThreshold(closes, dir, level),
			Reason: fmt.Sprintf("close crossed %s %g", dir, level),
		}, true
	}

	up := p.momentumUp(clause, dir)
	minMove := 0.0
	if pct, ok := firstFloat(percentPattern, clause.Norm); ok {
		minMove = pct / 100
	}
	fires := make([]bool, len(closes))
	for i := 1; i < len(closes); i++ {
		if !(closes[i-1] > 0) {
			continue
		}
		change := closes[i]/closes[i-1] - 1
		if up {
			fires[i] = change > minMove
		} else {
			fires[i] = change < -minMove
		}
	}

	if len(fires) == 0 || float64(countTrue(fires)) < p.minActivation*float64(len(fires)) {
		return nil, false
	}
	side := "down"
	if up {
		side = "up"
	}
	return &Contribution{
		Fires:  fires,
		Reason: fmt.Sprintf("close-over-close momentum %s %.2f%%", side, minMove*100),
	}, true
}

func (p *PriceActionInterpreter) momentumUp(clause Clause, dir Direction) bool {
	_, upAt, _ := firstOf(clause.Norm, upWords)
	_, downAt, _ := firstOf(clause.Norm, downWords)
	switch {
	case upAt >= 0 && (downAt < 0 || upAt < downAt):
		return true
	case downAt >= 0:
		return false
	case dir != DirectionNone:
		return dir == DirectionAbove
	default:
		return clause.Role == RoleEntry
	}
}

// percentFollows reports whether the number after offset is a percentage
func percentFollows(text string, from int) bool {
	if from < 0 {
		return false
	}
	loc := numberPattern.FindStringIndex(text[from:])
	if loc == nil {
		return false
	}
	rest := strings.TrimSpace(text[from+loc[1]:])
	return strings.HasPrefix(rest, "%")
}
