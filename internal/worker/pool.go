package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bank-ledger/internal/utils"
)

var (
	ErrQueueFull       = errors.New("worker pool queue is full")
	ErrShutdownTimeout = errors.New("worker pool shutdown timed out")
	ErrPoolClosed      = errors.New("worker pool is closed")
)

// Job is a unit of work run by the pool.
type Job struct {
	ID      string
	Task    func() error
	RetryOn func(error) bool // nil retries every error
	OnDone  func(error)      // called once with the final result
}

type PoolStats struct {
	SubmittedJobs int64
	CompletedJobs int64
	FailedJobs    int64
	Workers       int
	QueuedJobs    int
}

// WorkerPool runs jobs on a fixed number of goroutines.
type WorkerPool struct {
	workers    int
	maxRetries int
	retryDelay time.Duration
	jobQueue   chan Job
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	mu     sync.Mutex
	closed bool
	stats  PoolStats
}

func NewWorkerPool(workers, queueSize, maxRetries int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &WorkerPool{
		workers:    workers,
		maxRetries: maxRetries,
		retryDelay: 100 * time.Millisecond,
		jobQueue:   make(chan Job, queueSize),
		ctx:        ctx,
		cancel:     cancel,
		stats:      PoolStats{Workers: workers},
	}
	utils.LogInfo("WorkerPool", "created: workers=%d queue=%d retries=%d", workers, queueSize, maxRetries)
	return p
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	utils.LogSuccess("WorkerPool", "all %d workers started", p.workers)
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for {
		if p.ctx.Err() != nil {
			p.drain(id)
			return
		}
		select {
		case <-p.ctx.Done():
			p.drain(id)
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				utils.LogDebug("WorkerPool", "worker #%d: queue closed", id)
				return
			}
			p.executeJob(id, job)
		}
	}
}

// drain fails every job still queued after cancellation so that no OnDone
// callback is left waiting.
func (p *WorkerPool) drain(id int) {
	dropped := 0
	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				utils.LogDebug("WorkerPool", "worker #%d cancelled, %d queued jobs dropped", id, dropped)
				return
			}
			dropped++
			p.mu.Lock()
			p.stats.FailedJobs++
			p.mu.Unlock()
			if job.OnDone != nil {
				job.OnDone(ErrPoolClosed)
			}
		default:
			utils.LogDebug("WorkerPool", "worker #%d cancelled, %d queued jobs dropped", id, dropped)
			return
		}
	}
}

// executeJob runs the task, retrying with a linear delay up to maxRetries.
func (p *WorkerPool) executeJob(workerID int, job Job) {
	start := time.Now()
	var err error

retry:
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			utils.LogWarning("WorkerPool", "worker #%d: retry #%d for job %s", workerID, attempt, job.ID)
			select {
			case <-p.ctx.Done():
				err = p.ctx.Err()
				break retry
			case <-time.After(p.retryDelay * time.Duration(attempt)):
			}
		}

		err = job.Task()
		if err == nil {
			break
		}
		if job.RetryOn != nil && !job.RetryOn(err) {
			break
		}
	}

	p.mu.Lock()
	if err == nil {
		p.stats.CompletedJobs++
	} else {
		p.stats.FailedJobs++
	}
	p.mu.Unlock()

	if err == nil {
		utils.LogDebug("WorkerPool", "worker #%d: job %s done in %v", workerID, job.ID, time.Since(start))
	} else {
		utils.LogError("WorkerPool", fmt.Sprintf("worker #%d: job %s failed after %v", workerID, job.ID, time.Since(start)), err)
	}

	if job.OnDone != nil {
		job.OnDone(err)
	}
}

// Submit enqueues without blocking and returns ErrQueueFull when there is no room.
func (p *WorkerPool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobQueue <- job:
		p.stats.SubmittedJobs++
		return nil
	default:
		utils.LogWarning("WorkerPool", "queue full, job %s rejected", job.ID)
		return ErrQueueFull
	}
}

// SubmitBlocking waits for room in the queue or for ctx to end.
func (p *WorkerPool) SubmitBlocking(ctx context.Context, job Job) error {
	for {
		err := p.Submit(job)
		if !errors.Is(err, ErrQueueFull) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.ctx.Done():
			return ErrPoolClosed
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish. Workers
// are cancelled if that takes longer than timeout.
func (p *WorkerPool) Shutdown(timeout time.Duration) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobQueue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		utils.LogSuccess("WorkerPool", "all workers stopped")
		return nil
	case <-time.After(timeout):
		p.cancel()
		utils.LogWarning("WorkerPool", "shutdown timeout exceeded, cancelling workers")
		return ErrShutdownTimeout
	}
}

func (p *WorkerPool) GetStats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	stats := p.stats
	stats.QueuedJobs = len(p.jobQueue)
	return stats
}
