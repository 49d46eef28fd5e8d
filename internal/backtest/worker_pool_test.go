package backtest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	bterrors "github.com/ducminhle1904/strategy-backtester/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBatch_ResultsInSubmissionOrder(t *testing.T) {
	jobs := make([]Job[int], 10)
	for i := range jobs {
		n := i
		jobs[i] = Job[int]{
			ID: fmt.Sprintf("job-%d", n),
			Run: func(context.Context) (int, error) {
				time.Sleep(time.Duration(10-n) * time.Millisecond)
				return n * n, nil
			},
		}
	}
	progress := NewProgressTracker(len(jobs))

	results := RunBatch(context.Background(), 4, jobs, progress)

	require.Len(t, results, 10)
	for i, result := range results {
		assert.Equal(t, i, result.Index)
		assert.Equal(t, fmt.Sprintf("job-%d", i), result.ID)
		assert.Equal(t, i*i, result.Value)
		assert.NoError(t, result.Error)
	}
	completed, total, pct, _ := progress.GetProgress()
	assert.Equal(t, 10, completed)
	assert.Equal(t, 10, total)
	assert.Equal(t, 100.0, pct)
}

func TestRunBatch_JobErrorsAreIsolated(t *testing.T) {
	jobs := []Job[string]{
		{ID: "ok", Run: func(context.Context) (string, error) { return "done", nil }},
		{ID: "failing", Run: func(context.Context) (string, error) { return "", errors.New("bad strategy file") }},
		{ID: "panicking", Run: func(context.Context) (string, error) { panic("boom") }},
	}

	results := RunBatch(context.Background(), 2, jobs, nil)

	assert.Equal(t, "done", results[0].Value)
	assert.NoError(t, results[0].Error)
	assert.EqualError(t, results[1].Error, "bad strategy file")
	assert.True(t, bterrors.Is(results[2].Error, bterrors.ErrorCategorySimulation))
}

func TestRunBatch_ContextBoundsTheBatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	jobs := []Job[int]{
		{ID: "fast", Run: func(context.Context) (int, error) { return 1, nil }},
		{ID: "slow", Run: func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		}},
	}

	results := RunBatch(ctx, 2, jobs, nil)

	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Value)
	assert.ErrorIs(t, results[1].Error, context.DeadlineExceeded)
}

func TestWorkerPool_SubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkerPool[int](ctx, 1, 0)
	cancel()

	err := pool.SubmitJob(Job[int]{ID: "late", Run: func(context.Context) (int, error) { return 0, nil }})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProgressTracker_EstimateTimeRemaining(t *testing.T) {
	tracker := NewProgressTracker(4)
	assert.Equal(t, time.Duration(0), tracker.EstimateTimeRemaining())

	tracker.Increment()
	tracker.Increment()
	completed, total, pct, _ := tracker.GetProgress()
	assert.Equal(t, 2, completed)
	assert.Equal(t, 4, total)
	assert.Equal(t, 50.0, pct)
	assert.GreaterOrEqual(t, tracker.EstimateTimeRemaining(), time.Duration(0))
}
