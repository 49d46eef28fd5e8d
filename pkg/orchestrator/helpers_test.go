package orchestrator

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/ducminhle1904/strategy-backtester/internal/indicators"
	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/pkg/types"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// generateTestData creates daily bars around the given closes
func generateTestData(closes []float64) []types.OHLCV {
	data := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		data[i] = types.OHLCV{
			Timestamp: testStart.AddDate(0, 0, i),
			Open:      open,
			High:      math.Max(open, c) + 1,
			Low:       math.Min(open, c) - 1,
			Close:     c,
			Volume:    1000 + float64(i%7)*100,
		}
	}
	return data
}

func risingCloses(count int) []float64 {
	out := make([]float64, count)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func wavyCloses(count int) []float64 {
	out := make([]float64, count)
	for i := range out {
		out[i] = 100 + 15*math.Sin(float64(i)/6) + float64(i)*0.1
	}
	return out
}

// rsiPanelFactory serves a hand-built panel whose RSI column is given
func rsiPanelFactory(t *testing.T, bars []types.OHLCV, rsi []float64) PanelFactory {
	t.Helper()
	builder := indicators.NewPanelBuilder(bars)
	require.NoError(t, builder.Set(indicators.ColRSI, rsi))
	panel := builder.Build()
	return func(logger.Sink) PanelComputer { return fixedPanel{panel: panel} }
}

type fixedPanel struct {
	panel *indicators.Panel
}

func (f fixedPanel) Compute([]types.OHLCV) (*indicators.Panel, error) {
	return f.panel, nil
}

type panickingPanel struct{}

func (panickingPanel) Compute([]types.OHLCV) (*indicators.Panel, error) {
	panic("indicator table corrupted")
}

// constantWith returns count copies of v with overrides at given bars
func constantWith(count int, v float64, overrides map[int]float64) []float64 {
	out := make([]float64, count)
	for i := range out {
		out[i] = v
	}
	for i, o := range overrides {
		out[i] = o
	}
	return out
}

// fakeRecorder captures everything the runner reports
type fakeRecorder struct {
	mu            sync.Mutex
	runs          map[string]int
	stageFailures []string
	trades        int
	signals       map[string]int
	unmatched     int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{runs: map[string]int{}, signals: map[string]int{}}
}

func (f *fakeRecorder) RecordRun(_ string, status string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[status]++
}

func (f *fakeRecorder) RecordStageFailure(stage, category string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stageFailures = append(f.stageFailures, stage+"/"+category)
}

func (f *fakeRecorder) RecordTrade(string, float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trades++
}

func (f *fakeRecorder) RecordSignals(source string, count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signals[source] += count
}

func (f *fakeRecorder) RecordUnmatchedClauses(count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unmatched += count
}
