package orchestrator

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/ducminhle1904/strategy-backtester/internal/backtest"
	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/internal/strategy"
	"github.com/ducminhle1904/strategy-backtester/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rsiSpec() strategy.Spec {
	return strategy.Spec{
		EntryConditions: []string{"RSI below 30"},
		ExitConditions:  []string{"RSI above 70"},
	}
}

func TestRunner_RSICrossingProducesOneTrade(t *testing.T) {
	bars := generateTestData(risingCloses(80))
	rsi := constantWith(80, 50, map[int]float64{9: 35, 10: 25, 11: 45, 49: 65, 50: 75, 51: 60})
	runner := NewRunnerWithComponents(nil, nil, rsiPanelFactory(t, bars, rsi), nil)

	result := runner.Run(context.Background(), Request{Symbol: "BTCUSDT", Bars: bars, Strategy: rsiSpec()})

	require.Empty(t, result.Error)
	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, bars[10].Timestamp, trade.EntryDate)
	assert.Equal(t, bars[50].Timestamp, trade.ExitDate)
	assert.Equal(t, bars[10].Close, trade.EntryPrice)
	assert.Equal(t, bars[50].Close, trade.ExitPrice)
	assert.InDelta(t, 40.0, trade.DurationDays, 1e-9)
	assert.True(t, strings.HasPrefix(trade.EntryReason, "RSI below 30"))
	assert.True(t, strings.HasPrefix(trade.ExitReason, "RSI above 70"))

	assert.Equal(t, 1, result.TotalTrades)
	assert.Equal(t, 1, result.WinningTrades)
	assert.True(t, result.ProfitFactor.IsInf())
	assert.Equal(t, strategy.SourceText, result.SignalSource)
	assert.Len(t, result.EquityCurve, len(bars))
	assert.Contains(t, result.Description, "Trade 1: bought at 110.0000")
}

func TestRunner_EmptyStrategyHasNoTrades(t *testing.T) {
	bars := generateTestData(wavyCloses(120))
	result := NewRunner(nil, nil).Run(context.Background(), Request{Symbol: "ETHUSDT", Bars: bars})

	require.Empty(t, result.Error)
	assert.Equal(t, 0, result.TotalTrades)
	assert.Equal(t, 0.0, result.TotalReturn)
	assert.Equal(t, ProfitFactor(0), result.ProfitFactor)
	assert.Len(t, result.EquityCurve, len(bars))
	assert.Equal(t, strategy.SourceNone, result.SignalSource)
	assert.Contains(t, result.Description, "No trades were executed")
	assert.Equal(t, DefaultInitialCapital, result.InitialCapital)
}

func TestRunner_OpenPositionIsAutoClosed(t *testing.T) {
	bars := generateTestData(risingCloses(40))
	rsi := constantWith(40, 50, map[int]float64{10: 25})
	runner := NewRunnerWithComponents(nil, nil, rsiPanelFactory(t, bars, rsi), nil)

	result := runner.Run(context.Background(), Request{Bars: bars, Strategy: rsiSpec(), InitialCapital: 1000})

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, backtest.AutoCloseReason, trade.ExitReason)
	assert.Equal(t, bars[len(bars)-1].Timestamp, trade.ExitDate)
	assert.InDelta(t, result.FinalCapital, result.EquityCurve[len(bars)-1].Equity, 1e-9)
	assert.InDelta(t, (result.FinalCapital-1000)/1000*100, result.TotalReturn, 1e-9)
}

func TestRunner_IdenticalInputsGiveIdenticalJSON(t *testing.T) {
	bars := generateTestData(wavyCloses(200))
	req := Request{
		Symbol: "SOLUSDT",
		Bars:   bars,
		Strategy: strategy.Spec{
			EntryConditions:    []string{"RSI below 40"},
			ExitConditions:     []string{"RSI above 60"},
			SelectedIndicators: []string{"macd", "RSI", "bollinger bands"},
		},
		Commission: 0.001,
	}
	runner := NewRunner(nil, nil)

	first, err := runner.Run(context.Background(), req).JSON()
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), req).JSON()
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestRunner_EmptySeriesReturnsErrorResult(t *testing.T) {
	recorder := newFakeRecorder()
	result := NewRunner(nil, recorder).Run(context.Background(), Request{Symbol: "BTCUSDT", Strategy: rsiSpec()})

	require.True(t, result.Failed())
	assert.Contains(t, result.Error, "DATA")
	assert.Equal(t, 0, result.TotalTrades)
	assert.Equal(t, 0.0, result.TotalReturn)
	assert.NotNil(t, result.Trades)
	assert.NotNil(t, result.EquityCurve)
	assert.Equal(t, "BTCUSDT", result.Symbol)
	assert.Equal(t, []string{"RSI below 30"}, result.StrategyUsed.EntryConditions)
	assert.Contains(t, result.Description, "failed")

	assert.Equal(t, 1, recorder.runs[StatusError])
	assert.Equal(t, []string{"data/DATA"}, recorder.stageFailures)

	raw, err := result.JSON()
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, result.Error, decoded["error"])
	assert.Equal(t, []interface{}{}, decoded["trades"])
}

func TestRunner_InvalidCommissionIsConfigError(t *testing.T) {
	bars := generateTestData(risingCloses(30))
	result := NewRunner(nil, nil).Run(context.Background(), Request{Bars: bars, Commission: 1.5})

	require.True(t, result.Failed())
	assert.Contains(t, result.Error, "CONFIG")
}

func TestRunner_StagePanicIsContained(t *testing.T) {
	recorder := newFakeRecorder()
	collector := logger.NewCollector()
	panics := func(logger.Sink) PanelComputer { return panickingPanel{} }
	runner := NewRunnerWithComponents(collector, recorder, panics, nil)

	var result *BacktestResult
	require.NotPanics(t, func() {
		result = runner.Run(context.Background(), Request{Bars: generateTestData(risingCloses(30)), Strategy: rsiSpec()})
	})

	require.True(t, result.Failed())
	assert.Contains(t, result.Error, "SIMULATION")
	assert.Contains(t, result.Error, "indicator table corrupted")
	assert.Equal(t, []string{"indicators/SIMULATION"}, recorder.stageFailures)
	assert.NotEmpty(t, collector.Filter(logger.StageOrchestrator, logger.SeverityError))
}

func TestRunner_CanceledContext(t *testing.T) {
	recorder := newFakeRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewRunner(nil, recorder).Run(ctx, Request{Bars: generateTestData(risingCloses(30))})

	require.True(t, result.Failed())
	assert.Contains(t, result.Error, context.Canceled.Error())
	assert.Equal(t, 1, recorder.runs[StatusCanceled])
}

func TestRunner_RecordsRunMeasurements(t *testing.T) {
	bars := generateTestData(risingCloses(80))
	rsi := constantWith(80, 50, map[int]float64{10: 25, 50: 75})
	recorder := newFakeRecorder()
	spec := rsiSpec()
	spec.EntryConditions = append(spec.EntryConditions, "the moon is full")
	runner := NewRunnerWithComponents(nil, recorder, rsiPanelFactory(t, bars, rsi), nil)

	result := runner.Run(context.Background(), Request{Bars: bars, Strategy: spec})

	require.Empty(t, result.Error)
	assert.Equal(t, 1, recorder.runs[StatusSuccess])
	assert.Equal(t, 1, recorder.trades)
	assert.Equal(t, 2, recorder.signals[string(strategy.SourceText)])
	assert.Equal(t, 1, recorder.unmatched)
	assert.Equal(t, []string{"the moon is full"}, result.Unmatched)
	assert.Contains(t, result.Description, "the moon is full")
}

func TestRunner_RequestSinkReceivesEvents(t *testing.T) {
	runnerSink := logger.NewCollector()
	requestSink := logger.NewCollector()
	runner := NewRunner(runnerSink, nil)

	runner.Run(context.Background(), Request{Bars: generateTestData(risingCloses(30)), Sink: requestSink})

	assert.NotEmpty(t, requestSink.Filter(logger.StageOrchestrator, logger.SeverityInfo))
	assert.NotEmpty(t, requestSink.Filter(logger.StageSimulation, logger.SeverityInfo))
	assert.Equal(t, len(runnerSink.Events()), len(requestSink.Events()))
}

func TestRunner_RunBatchKeepsRequestOrder(t *testing.T) {
	reqs := []Request{
		{Symbol: "A", Bars: generateTestData(risingCloses(60))},
		{Symbol: "B"},
		{Symbol: "C", Bars: generateTestData(wavyCloses(90)), Strategy: strategy.Spec{SelectedIndicators: []string{"rsi"}}},
	}

	results := NewRunner(nil, nil).RunBatch(context.Background(), reqs, 2)

	require.Len(t, results, 3)
	for i, result := range results {
		assert.Equal(t, reqs[i].Symbol, result.Symbol)
	}
	assert.False(t, results[0].Failed())
	assert.True(t, results[1].Failed())
	assert.False(t, results[2].Failed())
	assert.Len(t, results[2].EquityCurve, 90)
}

func TestRunner_ObserverSeesEveryBatchResult(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	runner := NewRunner(nil, nil).WithObserver(func(result *BacktestResult) {
		mu.Lock()
		defer mu.Unlock()
		seen[result.Symbol] = result.Failed()
	})

	runner.RunBatch(context.Background(), []Request{
		{Symbol: "A", Bars: generateTestData(risingCloses(30))},
		{Symbol: "B"},
	}, 2)

	assert.Equal(t, map[string]bool{"A": false, "B": true}, seen)
}

func TestProfitFactor_JSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		PF ProfitFactor `json:"pf"`
	}{PF: ProfitFactor(math.Inf(1))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pf":"Infinity"}`, string(raw))

	var decoded ProfitFactor
	require.NoError(t, json.Unmarshal([]byte(`"Infinity"`), &decoded))
	assert.True(t, decoded.IsInf())
	require.NoError(t, json.Unmarshal([]byte(`1.5`), &decoded))
	assert.Equal(t, ProfitFactor(1.5), decoded)
	assert.Error(t, json.Unmarshal([]byte(`"NaN"`), &decoded))
}

func TestResult_JSONShape(t *testing.T) {
	bars := generateTestData(risingCloses(80))
	rsi := constantWith(80, 50, map[int]float64{10: 25, 50: 75})
	runner := NewRunnerWithComponents(nil, nil, rsiPanelFactory(t, bars, rsi), nil)

	raw, err := runner.Run(context.Background(), Request{Symbol: "BTCUSDT", Bars: bars, Strategy: rsiSpec()}).JSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{
		"total_return", "total_trades", "winning_trades", "losing_trades", "win_rate",
		"max_drawdown", "sharpe_ratio", "profit_factor", "equity_curve", "trades",
		"strategy_used", "symbol", "description",
	} {
		assert.Contains(t, decoded, key)
	}
	assert.NotContains(t, decoded, "error")
	assert.Equal(t, "Infinity", decoded["profit_factor"])

	trades := decoded["trades"].([]interface{})
	require.Len(t, trades, 1)
	assert.Contains(t, trades[0], "pnl_percent")
	curve := decoded["equity_curve"].([]interface{})
	assert.Contains(t, curve[0], "drawdown")
}

func TestBatchWorkflow_PicksBestReturn(t *testing.T) {
	rising := generateTestData(risingCloses(80))
	rsi := constantWith(80, 50, map[int]float64{10: 25, 50: 75})
	runner := NewRunnerWithComponents(nil, nil, rsiPanelFactory(t, rising, rsi), nil)
	reqs := []Request{
		{Symbol: "FLAT", Bars: rising},
		{Symbol: "RSI", Bars: rising, Strategy: rsiSpec()},
		{Symbol: "BROKEN", Bars: []types.OHLCV{}},
	}

	workflow := NewBatchWorkflow(runner, reqs, 3)
	out, err := workflow.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, WorkflowTypeBatch, workflow.GetWorkflowType())
	summary := out.(*BatchResult)
	assert.Equal(t, 1, summary.Failed)
	require.NotNil(t, summary.Best)
	assert.Equal(t, "RSI", summary.Best.Symbol)
}

func TestSingleWorkflow_ReturnsResultWithError(t *testing.T) {
	workflow := NewSingleBacktestWorkflow(NewRunner(nil, nil), Request{Symbol: "X"})
	out, err := workflow.Execute(context.Background())

	require.Error(t, err)
	result := out.(*BacktestResult)
	assert.Equal(t, result.Error, err.Error())
	assert.Equal(t, WorkflowTypeSingle, workflow.GetWorkflowType())
}
