package backtest

import (
	"context"
	"runtime"
	"sync"
	"time"

	bterrors "github.com/ducminhle1904/strategy-backtester/internal/errors"
)

// WorkerPool runs independent backtests in parallel. Jobs share no mutable
// state; each one builds its own pipeline.
type WorkerPool[R any] struct {
	workerCount int
	jobQueue    chan Job[R]
	resultQueue chan JobResult[R]
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// Job is a single backtest task
type Job[R any] struct {
	ID    string
	Index int
	Run   func(ctx context.Context) (R, error)
}

// JobResult is the outcome of a job
type JobResult[R any] struct {
	ID       string
	Index    int
	Value    R
	Duration time.Duration
	Error    error
}

// NewWorkerPool creates a new worker pool bound to ctx
func NewWorkerPool[R any](ctx context.Context, workerCount int, jobBufferSize int) *WorkerPool[R] {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool[R]{
		workerCount: workerCount,
		jobQueue:    make(chan Job[R], jobBufferSize),
		resultQueue: make(chan JobResult[R], jobBufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the worker pool
func (wp *WorkerPool[R]) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Stop stops the worker pool gracefully
func (wp *WorkerPool[R]) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// SubmitJob submits a job to the pool
func (wp *WorkerPool[R]) SubmitJob(job Job[R]) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// GetResults returns the result channel for collecting completed jobs
func (wp *WorkerPool[R]) GetResults() <-chan JobResult[R] {
	return wp.resultQueue
}

func (wp *WorkerPool[R]) worker() {
	defer wp.wg.Done()

	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}

			result := wp.processJob(job)

			select {
			case wp.resultQueue <- result:
			case <-wp.ctx.Done():
				return
			}

		case <-wp.ctx.Done():
			return
		}
	}
}

// processJob runs one job; a panic becomes the job's error
func (wp *WorkerPool[R]) processJob(job Job[R]) (result JobResult[R]) {
	startTime := time.Now()
	result = JobResult[R]{ID: job.ID, Index: job.Index}
	defer func() {
		if r := recover(); r != nil {
			result.Error = bterrors.NewSimulationFailure("batch", bterrors.FromPanic(r)).WithContext("job", job.ID)
		}
		result.Duration = time.Since(startTime)
	}()

	if err := wp.ctx.Err(); err != nil {
		result.Error = err
		return result
	}
	result.Value, result.Error = job.Run(wp.ctx)
	return result
}

// RunBatch runs all jobs on a fresh pool and returns their results in
// submission order. Jobs not finished when ctx ends report ctx's error.
func RunBatch[R any](ctx context.Context, workerCount int, jobs []Job[R], progress *ProgressTracker) []JobResult[R] {
	pool := NewWorkerPool[R](ctx, workerCount, len(jobs))
	pool.Start()

	for i := range jobs {
		jobs[i].Index = i
		if err := pool.SubmitJob(jobs[i]); err != nil {
			break
		}
	}

	results := make([]JobResult[R], len(jobs))
	done := make([]bool, len(jobs))
collect:
	for collected := 0; collected < len(jobs); collected++ {
		select {
		case result := <-pool.GetResults():
			results[result.Index] = result
			done[result.Index] = true
			if progress != nil {
				progress.Increment()
			}
		case <-pool.ctx.Done():
			break collect
		}
	}
	pool.Stop()

	for i := range results {
		if !done[i] {
			results[i] = JobResult[R]{ID: jobs[i].ID, Index: i, Error: context.Cause(pool.ctx)}
		}
	}
	return results
}

// ProgressTracker tracks the progress of batch processing
type ProgressTracker struct {
	total     int
	completed int
	startTime time.Time
	mutex     sync.RWMutex
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{
		total:     total,
		completed: 0,
		startTime: time.Now(),
	}
}

// Increment increments the completion count
func (pt *ProgressTracker) Increment() {
	pt.mutex.Lock()
	defer pt.mutex.Unlock()
	pt.completed++
}

// GetProgress returns the current progress
func (pt *ProgressTracker) GetProgress() (int, int, float64, time.Duration) {
	pt.mutex.RLock()
	defer pt.mutex.RUnlock()

	elapsed := time.Since(pt.startTime)
	progress := 0.0
	if pt.total > 0 {
		progress = float64(pt.completed) / float64(pt.total) * 100
	}

	return pt.completed, pt.total, progress, elapsed
}

// EstimateTimeRemaining estimates the remaining time based on current progress
func (pt *ProgressTracker) EstimateTimeRemaining() time.Duration {
	pt.mutex.RLock()
	defer pt.mutex.RUnlock()

	if pt.completed == 0 {
		return 0
	}

	elapsed := time.Since(pt.startTime)
	avgTimePerItem := elapsed / time.Duration(pt.completed)
	remaining := pt.total - pt.completed

	return avgTimePerItem * time.Duration(remaining)
}
