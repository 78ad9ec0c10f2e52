package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsJobs(t *testing.T) {
	p := NewWorkerPool(3, 10, 0)
	p.Start()

	var ran int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(Job{
			ID:     "job",
			Task:   func() error { atomic.AddInt32(&ran, 1); return nil },
			OnDone: func(error) { wg.Done() },
		}))
	}
	wg.Wait()
	require.NoError(t, p.Shutdown(time.Second))

	assert.EqualValues(t, 10, atomic.LoadInt32(&ran))
	stats := p.GetStats()
	assert.EqualValues(t, 10, stats.SubmittedJobs)
	assert.EqualValues(t, 10, stats.CompletedJobs)
	assert.Zero(t, stats.FailedJobs)
}

func TestPoolRetriesUntilSuccess(t *testing.T) {
	p := NewWorkerPool(1, 1, 3)
	p.retryDelay = time.Millisecond
	p.Start()
	defer p.Shutdown(time.Second)

	var attempts int32
	done := make(chan error, 1)
	require.NoError(t, p.Submit(Job{
		ID: "flaky",
		Task: func() error {
			if atomic.AddInt32(&attempts, 1) < 3 {
				return errors.New("transient")
			}
			return nil
		},
		OnDone: func(err error) { done <- err },
	}))

	assert.NoError(t, <-done)
	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestPoolStopsRetryingWhenRetryOnDeclines(t *testing.T) {
	p := NewWorkerPool(1, 1, 5)
	p.retryDelay = time.Millisecond
	p.Start()
	defer p.Shutdown(time.Second)

	permanent := errors.New("permanent")
	var attempts int32
	done := make(chan error, 1)
	require.NoError(t, p.Submit(Job{
		ID:      "fails",
		Task:    func() error { atomic.AddInt32(&attempts, 1); return permanent },
		RetryOn: func(err error) bool { return !errors.Is(err, permanent) },
		OnDone:  func(err error) { done <- err },
	}))

	assert.ErrorIs(t, <-done, permanent)
	assert.EqualValues(t, 1, atomic.LoadInt32(&attempts))
	assert.EqualValues(t, 1, p.GetStats().FailedJobs)
}

func TestSubmitQueueFull(t *testing.T) {
	p := NewWorkerPool(1, 1, 0)

	require.NoError(t, p.Submit(Job{ID: "a", Task: func() error { return nil }}))
	assert.ErrorIs(t, p.Submit(Job{ID: "b", Task: func() error { return nil }}), ErrQueueFull)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.SubmitBlocking(ctx, Job{ID: "c", Task: func() error { return nil }}), context.DeadlineExceeded)

	p.Start()
	require.NoError(t, p.Shutdown(time.Second))
}

func TestSubmitAfterShutdown(t *testing.T) {
	p := NewWorkerPool(1, 1, 0)
	p.Start()
	require.NoError(t, p.Shutdown(time.Second))

	assert.ErrorIs(t, p.Submit(Job{ID: "late", Task: func() error { return nil }}), ErrPoolClosed)
	assert.NoError(t, p.Shutdown(time.Second))
}

func TestShutdownTimeout(t *testing.T) {
	p := NewWorkerPool(1, 1, 0)
	p.Start()

	release := make(chan struct{})
	defer close(release)
	require.NoError(t, p.Submit(Job{ID: "slow", Task: func() error { <-release; return nil }}))

	assert.ErrorIs(t, p.Shutdown(10*time.Millisecond), ErrShutdownTimeout)
}

func TestShutdownTimeoutFailsQueuedJobs(t *testing.T) {
	p := NewWorkerPool(1, 8, 0)
	p.Start()

	release := make(chan struct{})
	require.NoError(t, p.Submit(Job{ID: "slow", Task: func() error { <-release; return nil }}))

	var ran int32
	results := make(chan error, 5)
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit(Job{
			ID:     "queued",
			Task:   func() error { atomic.AddInt32(&ran, 1); return nil },
			OnDone: func(err error) { results <- err },
		}))
	}

	assert.ErrorIs(t, p.Shutdown(10*time.Millisecond), ErrShutdownTimeout)
	close(release)

	for i := 0; i < 5; i++ {
		select {
		case err := <-results:
			assert.ErrorIs(t, err, ErrPoolClosed)
		case <-time.After(2 * time.Second):
			t.Fatalf("queued job %d never completed", i)
		}
	}
	assert.Zero(t, atomic.LoadInt32(&ran))
	assert.EqualValues(t, 5, p.GetStats().FailedJobs)
}
