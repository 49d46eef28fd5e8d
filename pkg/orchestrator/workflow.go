package orchestrator

import (
	"context"
	"errors"
)

// SingleBacktestWorkflow represents a single backtest workflow
type SingleBacktestWorkflow struct {
	orchestrator Orchestrator
	request      Request
}

// NewSingleBacktestWorkflow creates a new single backtest workflow
func NewSingleBacktestWorkflow(orchestrator Orchestrator, request Request) Workflow {
	return &SingleBacktestWorkflow{
		orchestrator: orchestrator,
		request:      request,
	}
}

// Execute runs the single backtest workflow. The result is returned even
// when the run failed.
func (w *SingleBacktestWorkflow) Execute(ctx context.Context) (interface{}, error) {
	result := w.orchestrator.Run(ctx, w.request)
	if result.Failed() {
		return result, errors.New(result.Error)
	}
	return result, nil
}

// GetWorkflowType returns the workflow type
func (w *SingleBacktestWorkflow) GetWorkflowType() WorkflowType {
	return WorkflowTypeSingle
}

// BatchWorkflow runs many independent backtests concurrently
type BatchWorkflow struct {
	orchestrator Orchestrator
	requests     []Request
	workers      int
}

// NewBatchWorkflow creates a new batch workflow
func NewBatchWorkflow(orchestrator Orchestrator, requests []Request, workers int) Workflow {
	return &BatchWorkflow{
		orchestrator: orchestrator,
		requests:     requests,
		workers:      workers,
	}
}

// Execute runs the batch workflow
func (w *BatchWorkflow) Execute(ctx context.Context) (interface{}, error) {
	results := w.orchestrator.RunBatch(ctx, w.requests, w.workers)
	summary := &BatchResult{Results: results}
	for _, result := range results {
		if result.Failed() {
			summary.Failed++
			continue
		}
		// Track best result by total return
		if summary.Best == nil || result.TotalReturn > summary.Best.TotalReturn {
			summary.Best = result
		}
	}
	if len(results) > 0 && summary.Failed == len(results) {
		return summary, errors.New("every backtest in the batch failed")
	}
	return summary, nil
}

// GetWorkflowType returns the workflow type
func (w *BatchWorkflow) GetWorkflowType() WorkflowType {
	return WorkflowTypeBatch
}

// BatchResult represents results from a batch of backtests
type BatchResult struct {
	Results []*BacktestResult
	Best    *BacktestResult
	Failed  int
}
