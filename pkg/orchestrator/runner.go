package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/ducminhle1904/strategy-backtester/internal/backtest"
	bterrors "github.com/ducminhle1904/strategy-backtester/internal/errors"
	"github.com/ducminhle1904/strategy-backtester/internal/indicators"
	"github.com/ducminhle1904/strategy-backtester/internal/logger"
	"github.com/ducminhle1904/strategy-backtester/internal/monitoring"
	"github.com/ducminhle1904/strategy-backtester/internal/strategy"
)

// Run statuses reported to the recorder
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusCanceled = "canceled"
)

// Runner implements the Orchestrator interface. It holds no per-run state,
// so one Runner can serve concurrent runs.
type Runner struct {
	sink       logger.Sink
	recorder   monitoring.Recorder
	panels     PanelFactory
	generators GeneratorFactory
	observer   func(*BacktestResult)
}

var _ Orchestrator = (*Runner)(nil)

// NewRunner creates a runner with the default pipeline components
func NewRunner(sink logger.Sink, recorder monitoring.Recorder) *Runner {
	return NewRunnerWithComponents(sink, recorder, DefaultPanelFactory, DefaultGeneratorFactory)
}

// NewRunnerWithComponents creates a runner with custom pipeline components
func NewRunnerWithComponents(sink logger.Sink, recorder monitoring.Recorder, panels PanelFactory, generators GeneratorFactory) *Runner {
	if recorder == nil {
		recorder = monitoring.NopRecorder{}
	}
	if panels == nil {
		panels = DefaultPanelFactory
	}
	if generators == nil {
		generators = DefaultGeneratorFactory
	}
	return &Runner{
		sink:       sink,
		recorder:   recorder,
		panels:     panels,
		generators: generators,
	}
}

// WithObserver registers fn to be called with every batch result as soon as
// its run finishes. fn is called from worker goroutines.
func (r *Runner) WithObserver(fn func(*BacktestResult)) *Runner {
	r.observer = fn
	return r
}

// stage is one isolated step of the pipeline
type stage struct {
	name logger.Stage
	run  func() error
}

// Run executes data validation, indicators, signals, simulation and metrics
// in order. A failing or panicking stage turns into an error result.
func (r *Runner) Run(ctx context.Context, req Request) *BacktestResult {
	start := time.Now()
	sink := r.sinkFor(req)
	log := logger.For(sink, logger.StageOrchestrator)
	spec := req.Strategy.Normalize()
	if req.InitialCapital == 0 {
		req.InitialCapital = DefaultInitialCapital
	}

	var (
		panel   *indicators.Panel
		signals *strategy.Result
		sim     *backtest.SimulationResult
		metrics backtest.Metrics
	)

	stages := []stage{
		{logger.StageData, func() error {
			return validateRequest(req)
		}},
		{logger.StageIndicators, func() (err error) {
			panel, err = r.panels(sink).Compute(req.Bars)
			return err
		}},
		{logger.StageSignals, func() error {
			signals = r.generators(sink).Generate(panel, spec)
			if signals == nil || signals.Signals == nil {
				return fmt.Errorf("signal generator returned no signals")
			}
			return nil
		}},
		{logger.StageSimulation, func() error {
			sim = backtest.NewSimulator(req.InitialCapital, req.Commission, sink).Run(req.Bars, signals.Signals)
			return nil
		}},
		{logger.StageMetrics, func() error {
			metrics = backtest.CalculateMetrics(sim.Trades, sim.InitialCapital, sim.FinalCapital, sim.MaxDrawdown)
			return nil
		}},
	}

	log.Info("starting backtest of %s: %d bars, capital %.2f, commission %.4f",
		symbolLabel(req.Symbol), len(req.Bars), req.InitialCapital, req.Commission)

	for _, st := range stages {
		if err := context.Cause(ctx); err != nil {
			log.Warning("run canceled before %s stage: %v", st.name, err)
			r.recorder.RecordRun(req.Symbol, StatusCanceled, time.Since(start))
			return errorResult(req.Symbol, spec, bterrors.NewSimulationFailure(string(st.name), err))
		}
		if err := runStage(st); err != nil {
			log.Error("%s stage failed: %v", st.name, err)
			r.recorder.RecordStageFailure(string(st.name), string(bterrors.CategoryOf(err)))
			r.recorder.RecordRun(req.Symbol, StatusError, time.Since(start))
			return errorResult(req.Symbol, spec, err)
		}
	}

	result := newResult(req.Symbol, spec, sim, metrics)
	result.SignalSource = signals.Source
	result.Unmatched = signals.Unmatched
	result.Description = describe(req.Symbol, signals, sim, metrics)

	r.recorder.RecordSignals(string(signals.Source), signals.Signals.Count())
	r.recorder.RecordUnmatchedClauses(len(signals.Unmatched))
	for _, trade := range sim.Trades {
		r.recorder.RecordTrade(req.Symbol, trade.PnLPercent)
	}
	r.recorder.RecordRun(req.Symbol, StatusSuccess, time.Since(start))

	log.Info("backtest of %s finished: %d trades, return %.2f%%, profit factor %s",
		symbolLabel(req.Symbol), result.TotalTrades, result.TotalReturn, result.ProfitFactor)
	return result
}

// RunBatch runs independent requests on a worker pool. Each run builds its
// own pipeline; results come back in request order.
func (r *Runner) RunBatch(ctx context.Context, reqs []Request, workers int) []*BacktestResult {
	jobs := make([]backtest.Job[*BacktestResult], len(reqs))
	for i, req := range reqs {
		jobs[i] = backtest.Job[*BacktestResult]{
			ID: fmt.Sprintf("%s#%d", symbolLabel(req.Symbol), i),
			Run: func(ctx context.Context) (*BacktestResult, error) {
				result := r.Run(ctx, req)
				if r.observer != nil {
					r.observer(result)
				}
				return result, nil
			},
		}
	}

	progress := backtest.NewProgressTracker(len(jobs))
	jobResults := backtest.RunBatch(ctx, workers, jobs, progress)

	log := logger.For(r.sink, logger.StageOrchestrator)
	results := make([]*BacktestResult, len(jobResults))
	for i, jr := range jobResults {
		switch {
		case jr.Error != nil:
			log.Error("batch job %s failed: %v", jr.ID, jr.Error)
			results[i] = errorResult(reqs[i].Symbol, reqs[i].Strategy.Normalize(), jr.Error)
		case jr.Value == nil:
			results[i] = errorResult(reqs[i].Symbol, reqs[i].Strategy.Normalize(),
				bterrors.NewSimulationFailure(string(logger.StageOrchestrator), fmt.Errorf("job %s returned no result", jr.ID)))
		default:
			results[i] = jr.Value
		}
	}

	completed, total, pct, elapsed := progress.GetProgress()
	log.Info("batch finished: %d/%d runs (%.0f%%) in %v", completed, total, pct, elapsed.Round(time.Millisecond))
	return results
}

func (r *Runner) sinkFor(req Request) logger.Sink {
	switch {
	case req.Sink == nil:
		return r.sink
	case r.sink == nil:
		return req.Sink
	}
	return logger.Multi{r.sink, req.Sink}
}

// runStage isolates one stage: panics and untyped errors become simulation
// failures attributed to the stage
func runStage(st stage) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = bterrors.NewSimulationFailure(string(st.name), bterrors.FromPanic(rec))
		}
	}()
	if err = st.run(); err != nil && bterrors.CategoryOf(err) == "" {
		err = bterrors.NewSimulationFailure(string(st.name), err)
	}
	return err
}

func validateRequest(req Request) error {
	stageName := string(logger.StageData)
	if len(req.Bars) == 0 {
		return bterrors.NewDataError(stageName, "validate request", "price series is empty")
	}
	if req.InitialCapital < 0 {
		return bterrors.NewConfigurationError(stageName, "validate request",
			fmt.Sprintf("initial capital must not be negative, got %.2f", req.InitialCapital))
	}
	if req.Commission < 0 || req.Commission >= 1 {
		return bterrors.NewConfigurationError(stageName, "validate request",
			fmt.Sprintf("commission must be a fraction in [0, 1), got %.4f", req.Commission))
	}
	return nil
}
