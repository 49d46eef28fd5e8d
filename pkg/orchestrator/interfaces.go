package orchestrator

import (
	"context"

	"github.com/ducminhle1904/strategy-backtester/internal/indicators"
	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/internal/strategy"
	"github.com/ducminhle1904/strategy-backtester/pkg/types"
)

// DefaultInitialCapital is used when a request leaves the capital unset
const DefaultInitialCapital = 10000.0

// Orchestrator coordinates the backtest stages
type Orchestrator interface {
	// Run executes one backtest. It always returns a complete result; failures
	// are reported through the result's Error field.
	Run(ctx context.Context, req Request) *BacktestResult

	// RunBatch executes independent backtests concurrently and returns their
	// results in request order
	RunBatch(ctx context.Context, reqs []Request, workers int) []*BacktestResult
}

// Workflow represents different execution workflows
type Workflow interface {
	// Execute runs the workflow and returns results
	Execute(ctx context.Context) (interface{}, error)

	// GetWorkflowType returns the type of workflow
	GetWorkflowType() WorkflowType
}

// WorkflowType represents different types of workflows
type WorkflowType string

const (
	WorkflowTypeSingle WorkflowType = "single"
	WorkflowTypeBatch  WorkflowType = "batch"
)

// Request is the input of one backtest
type Request struct {
	Symbol         string
	Bars           []types.OHLCV
	Strategy       strategy.Spec
	InitialCapital float64
	Commission     float64

	// Sink receives this run's events in addition to the runner's sink
	Sink logger.Sink
}

// PanelComputer builds the enriched indicator panel of a run
type PanelComputer interface {
	Compute(data []types.OHLCV) (*indicators.Panel, error)
}

// SignalGenerator turns a panel and a strategy into trading signals
type SignalGenerator interface {
	Generate(panel *indicators.Panel, spec strategy.Spec) *strategy.Result
}

// PanelFactory creates the panel stage of a single run
type PanelFactory func(sink logger.Sink) PanelComputer

// GeneratorFactory creates the signal stage of a single run
type GeneratorFactory func(sink logger.Sink) SignalGenerator

// DefaultPanelFactory computes the full indicator catalog
func DefaultPanelFactory(sink logger.Sink) PanelComputer {
	return indicators.NewEngine(sink)
}

// DefaultGeneratorFactory uses the default interpreter chain
func DefaultGeneratorFactory(sink logger.Sink) SignalGenerator {
	return strategy.NewGenerator(sink)
}
