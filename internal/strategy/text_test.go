package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitClauses_LinesSemicolonsAndSentences(t *testing.T) {
	clauses := splitClauses("RSI below 30; volume is high.\nPrice rises 2.5% today! MACD crosses above signal")

	assert.Equal(t, []string{
		"RSI below 30",
		"volume is high",
		"Price rises 2.5% today",
		"MACD crosses above signal",
	}, clauses)
}

func TestSplitClauses_StripsListMarkers(t *testing.T) {
	clauses := splitClauses("1. RSI below 30\n- volume spike\n* 3 green candles\n2) close above 105")

	assert.Equal(t, []string{"RSI below 30", "volume spike", "3 green candles", "close above 105"}, clauses)
}

func TestSplitClauses_PersianSeparators(t *testing.T) {
	clauses := splitClauses("آر اس آی زیر ۳۰؛ حجم بالا")

	assert.Equal(t, []string{"آر اس آی زیر 30", "حجم بالا"}, clauses)
}

func TestNormalizeText_PersianDigits(t *testing.T) {
	assert.Equal(t, "rsi زیر 30.5", normalizeText("RSI   زیر ۳۰٫۵"))
}

func TestContainsWord_RespectsBoundaries(t *testing.T) {
	assert.True(t, containsWord("sma 20 crosses over sma 50", "over"))
	assert.False(t, containsWord("macd crossover", "over"))
	assert.False(t, containsWord("oversold rsi", "over"))
	assert.True(t, containsWord("rsi<30", "<"))
	assert.True(t, containsWord("قیمت بالای 100", "بالای"))
}

func TestDirectionOf_EarliestKeywordWins(t *testing.T) {
	dir, _ := directionOf("rsi below 30 after being above 50")
	assert.Equal(t, DirectionBelow, dir)

	dir, _ = directionOf("rsi crosses above 70")
	assert.Equal(t, DirectionAbove, dir)

	dir, _ = directionOf("rsi oversold")
	assert.Equal(t, DirectionBelow, dir)

	dir, end := directionOf("buy on dips")
	assert.Equal(t, DirectionNone, dir)
	assert.Equal(t, -1, end)
}

func TestThresholdOf_NumberAfterDirection(t *testing.T) {
	dir, v, ok := thresholdOf("rsi(14) crosses below 25")
	assert.Equal(t, DirectionBelow, dir)
	assert.True(t, ok)
	assert.Equal(t, 25.0, v)

	dir, v, ok = thresholdOf("williams %r above -20")
	assert.Equal(t, DirectionAbove, dir)
	assert.True(t, ok)
	assert.Equal(t, -20.0, v)

	_, _, ok = thresholdOf("rsi 14 below")
	assert.False(t, ok)
}

func TestActionOf(t *testing.T) {
	action, ok := actionOf("buy the dip")
	assert.True(t, ok)
	assert.Equal(t, SignalBuy, action)

	action, ok = actionOf("take profit and exit")
	assert.True(t, ok)
	assert.Equal(t, SignalSell, action)

	action, ok = actionOf("فروش در مقاومت")
	assert.True(t, ok)
	assert.Equal(t, SignalSell, action)

	_, ok = actionOf("the market is quiet")
	assert.False(t, ok)
}
