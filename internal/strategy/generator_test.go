package strategy

import (
	"testing"

	"github.com/ducminhle1904/strategy-backtester/internal/indicators"
	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type explodingInterpreter struct{}

func (explodingInterpreter) Name() string { return "exploding" }
func (explodingInterpreter) TryMatch(Clause, *indicators.Panel) (*Contribution, bool) {
	panic("interpreter bug")
}

func TestGenerator_RSIEntryAndExit(t *testing.T) {
	panel := rsiCrossingPanel(t, 60)
	spec := Spec{
		EntryConditions: []string{"RSI below 30"},
		ExitConditions:  []string{"RSI above 70"},
	}

	result := NewGenerator(nil).Generate(panel, spec)

	assert.Equal(t, SourceText, result.Source)
	assert.Equal(t, []int{10}, signalsAt(result.Signals, SignalBuy))
	assert.Equal(t, []int{50}, signalsAt(result.Signals, SignalSell))
	assert.Equal(t, "RSI below 30: RSI crossed below 30", result.Signals.EntryReasons[10])
	assert.Equal(t, "RSI above 70: RSI crossed above 70", result.Signals.ExitReasons[50])
	assert.Empty(t, result.Unmatched)
}

func TestGenerator_EmptySpecIsAllHold(t *testing.T) {
	panel := rsiCrossingPanel(t, 60)
	result := NewGenerator(nil).Generate(panel, Spec{})

	assert.Equal(t, SourceNone, result.Source)
	assert.Equal(t, 0, result.Signals.Count())
	assert.Equal(t, 60, result.Signals.Len())
}

func TestGenerator_InformationalIndicatorsAloneGiveNoSignals(t *testing.T) {
	panel := rsiCrossingPanel(t, 60)
	result := NewGenerator(nil).Generate(panel, Spec{Indicators: []string{"RSI"}})

	assert.Equal(t, 0, result.Signals.Count())
}

func TestGenerator_SelectedIndicatorsOnly(t *testing.T) {
	panel := rsiCrossingPanel(t, 60)
	result := NewGenerator(nil).Generate(panel, Spec{SelectedIndicators: []string{"RSI"}})

	assert.Equal(t, SourceIndicators, result.Source)
	assert.Equal(t, []int{10}, signalsAt(result.Signals, SignalBuy))
	assert.Equal(t, []int{50}, signalsAt(result.Signals, SignalSell))
	assert.Equal(t, "rsi crossed below 30", result.Signals.Reason(10))
}

func TestGenerator_AndCombinationKeepsAgreement(t *testing.T) {
	rsi := constant(60, 50, map[int]float64{10: 25, 11: 45})
	macd := constant(60, -1, map[int]float64{10: 1, 11: 1})
	panel := buildPanel(t, generateBars(flatCloses(60, 100)), map[string][]float64{
		indicators.ColRSI:        rsi,
		indicators.ColMACD:       macd,
		indicators.ColMACDSignal: constant(60, 0, nil),
	})
	spec := Spec{
		EntryConditions:    []string{"RSI below 30"},
		SelectedIndicators: []string{"macd"},
	}

	result := NewGenerator(nil).Generate(panel, spec)

	assert.Equal(t, SourceCombined, result.Source)
	assert.Equal(t, []int{10}, signalsAt(result.Signals, SignalBuy))
	// macd crossing back under its signal at bar 12 has no text counterpart
	assert.Empty(t, signalsAt(result.Signals, SignalSell))
	assert.Contains(t, result.Signals.Reason(10), " AND macd crossed above macd_signal")
}

func TestGenerator_AndWithoutAgreementFallsBackToIndicators(t *testing.T) {
	rsi := constant(60, 50, map[int]float64{10: 25, 11: 45})
	macd := constant(60, -1, map[int]float64{20: 1, 21: 1})
	panel := buildPanel(t, generateBars(flatCloses(60, 100)), map[string][]float64{
		indicators.ColRSI:        rsi,
		indicators.ColMACD:       macd,
		indicators.ColMACDSignal: constant(60, 0, nil),
	})
	spec := Spec{
		EntryConditions:    []string{"RSI below 30"},
		SelectedIndicators: []string{"macd"},
	}
	sink := logger.NewCollector()

	result := NewGenerator(sink).Generate(panel, spec)
	indicatorOnly := NewGenerator(nil).Generate(panel, Spec{SelectedIndicators: []string{"macd"}})

	assert.Equal(t, SourceIndicatorsFallback, result.Source)
	assert.Equal(t, indicatorOnly.Signals.Values, result.Signals.Values)
	assert.Equal(t, []int{20}, signalsAt(result.Signals, SignalBuy))
	assert.Equal(t, []int{22}, signalsAt(result.Signals, SignalSell))
	assert.NotEmpty(t, sink.Filter(logger.StageSignals, logger.SeverityWarn))
}

func TestGenerator_SelectedWithoutSignalsUsesText(t *testing.T) {
	panel := rsiCrossingPanel(t, 60)
	spec := Spec{
		EntryConditions:    []string{"RSI below 30"},
		SelectedIndicators: []string{"cci"},
	}

	result := NewGenerator(nil).Generate(panel, spec)

	assert.Equal(t, SourceText, result.Source)
	assert.Equal(t, []int{10}, signalsAt(result.Signals, SignalBuy))
}

func TestGenerator_ConflictingSelectedIndicatorsHold(t *testing.T) {
	rsi := constant(30, 50, map[int]float64{10: 25})
	macd := constant(30, 1, map[int]float64{10: -1})
	panel := buildPanel(t, generateBars(flatCloses(30, 100)), map[string][]float64{
		indicators.ColRSI:        rsi,
		indicators.ColMACD:       macd,
		indicators.ColMACDSignal: constant(30, 0, nil),
	})

	result := NewGenerator(nil).Generate(panel, Spec{SelectedIndicators: []string{"rsi", "macd"}})

	assert.Equal(t, SignalHold, result.Signals.Values[10])
	// macd recovering at bar 11 is the only unopposed trigger
	assert.Equal(t, []int{11}, signalsAt(result.Signals, SignalBuy))
}

func TestGenerator_ExitOverwritesEntryOnSameBar(t *testing.T) {
	rsi := constant(30, 50, map[int]float64{25: 25})
	bars := generateBars(flatCloses(30, 100))
	bars[25].Volume = 5000
	panel := buildPanel(t, bars, map[string][]float64{indicators.ColRSI: rsi})
	spec := Spec{
		EntryConditions: []string{"RSI below 30"},
		ExitConditions:  []string{"volume spike"},
	}

	result := NewGenerator(nil).Generate(panel, spec)

	assert.Equal(t, SignalSell, result.Signals.Values[25])
	assert.Empty(t, result.Signals.EntryReasons[25])
	assert.Contains(t, result.Signals.ExitReasons[25], "volume spike")
}

func TestGenerator_GoldenCrossIsNotTheDefaultBuyRule(t *testing.T) {
	rsi := constant(60, 50, map[int]float64{9: 35, 10: 25, 11: 45})
	fast := constant(60, 99, map[int]float64{15: 101, 16: 102})
	panel := buildPanel(t, generateBars(flatCloses(60, 100)), map[string][]float64{
		indicators.ColRSI:   rsi,
		indicators.ColSMA20: fast,
		indicators.ColSMA50: constant(60, 100, nil),
	})

	result := NewGenerator(nil).Generate(panel, Spec{EntryConditions: []string{"buy on golden cross"}})

	assert.Equal(t, []int{15}, signalsAt(result.Signals, SignalBuy))
	assert.Equal(t, "buy on golden cross: SMA20 crossed above SMA50", result.Signals.EntryReasons[15])
	assert.Empty(t, result.Unmatched)
}

func TestGenerator_UnmatchedClauseIsLoggedAndSkipped(t *testing.T) {
	panel := rsiCrossingPanel(t, 60)
	sink := logger.NewCollector()
	spec := Spec{EntryConditions: []string{"RSI below 30. The moon is full"}}

	result := NewGenerator(sink).Generate(panel, spec)

	assert.Equal(t, []string{"The moon is full"}, result.Unmatched)
	assert.Equal(t, []int{10}, signalsAt(result.Signals, SignalBuy))

	warnings := sink.Filter(logger.StageSignals, logger.SeverityWarn)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0].Message, "CONDITION_PARSE")
	assert.Contains(t, warnings[0].Message, "The moon is full")
}

func TestGenerator_RawExcerptClassifiedByKeywords(t *testing.T) {
	panel := rsiCrossingPanel(t, 60)
	spec := Spec{RawExcerpt: "Buy when RSI drops below 30. Sell when RSI rises above 70. Stay patient"}

	result := NewGenerator(nil).Generate(panel, spec)

	assert.Equal(t, []int{10}, signalsAt(result.Signals, SignalBuy))
	assert.Equal(t, []int{50}, signalsAt(result.Signals, SignalSell))
	assert.Equal(t, []string{"Stay patient"}, result.Unmatched)
}

func TestGenerator_RawExcerptIgnoredWhenConditionsPresent(t *testing.T) {
	panel := rsiCrossingPanel(t, 60)
	spec := Spec{
		EntryConditions: []string{"RSI below 30"},
		RawExcerpt:      "Sell when RSI rises above 70",
	}

	result := NewGenerator(nil).Generate(panel, spec)

	assert.Empty(t, signalsAt(result.Signals, SignalSell))
}

func TestGenerator_PanickingInterpreterDoesNotAbort(t *testing.T) {
	panel := rsiCrossingPanel(t, 60)
	sink := logger.NewCollector()
	generator := NewGeneratorWith(sink, explodingInterpreter{}, NewThresholdInterpreter())

	result := generator.Generate(panel, Spec{EntryConditions: []string{"RSI below 30"}})

	assert.Equal(t, []int{10}, signalsAt(result.Signals, SignalBuy))
	assert.NotEmpty(t, sink.Filter(logger.StageSignals, logger.SeverityError))
}

func TestGenerator_Deterministic(t *testing.T) {
	panel := rsiCrossingPanel(t, 60)
	spec := Spec{
		EntryConditions:    []string{"RSI below 30", "volume spike"},
		ExitConditions:     []string{"RSI above 70"},
		SelectedIndicators: []string{"rsi", "sma"},
	}

	first := NewGenerator(nil).Generate(panel, spec)
	second := NewGenerator(nil).Generate(panel, spec)

	assert.Equal(t, first, second)
}

func TestSignalSeries_ReindexDefaultsToHold(t *testing.T) {
	panel := rsiCrossingPanel(t, 60)
	result := NewGenerator(nil).Generate(panel, Spec{EntryConditions: []string{"RSI below 30"}})

	shifted := panel.Timestamps()[5:]
	reindexed := result.Signals.Reindex(append(shifted, shifted[len(shifted)-1].AddDate(0, 0, 1)))

	assert.Equal(t, 56, reindexed.Len())
	assert.Equal(t, SignalBuy, reindexed.Values[5])
	assert.Equal(t, SignalHold, reindexed.Values[55])
	assert.Equal(t, 1, reindexed.Count())
}

func TestSpec_NormalizeAndValidate(t *testing.T) {
	spec := Spec{
		EntryConditions:    []string{"  RSI below 30 ", ""},
		SelectedIndicators: []string{"RSI", "rsi", "Bollinger Bands", "stoch"},
	}.Normalize()

	assert.Equal(t, []string{"RSI below 30"}, spec.EntryConditions)
	assert.Equal(t, []string{"bollinger", "rsi", "stochastic"}, spec.SelectedIndicators)
	assert.NoError(t, spec.Validate())

	assert.Error(t, Spec{SelectedIndicators: []string{"ichimoku"}}.Validate())
}

func TestSpec_HasCustomStrategy(t *testing.T) {
	assert.False(t, Spec{}.HasCustomStrategy())
	assert.False(t, Spec{SelectedIndicators: []string{"rsi"}}.HasCustomStrategy())
	assert.True(t, Spec{RawExcerpt: "buy low"}.HasCustomStrategy())
	assert.True(t, Spec{ExitConditions: []string{"RSI above 70"}}.HasCustomStrategy())
}
