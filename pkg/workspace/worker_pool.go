package workspace

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gnana997/displayname/pkg/util"
)

// ErrPoolStopped is returned by Submit after Stop or FinishSubmitting.
var ErrPoolStopped = errors.New("worker pool is stopped")

// WorkerPool processes file jobs on a fixed set of goroutines.
//
// Results and errors are delivered on separate channels, which are closed by
// Stop once every worker has exited. Consumers must drain both channels while
// jobs are being submitted, or Submit blocks.
//
//	pool := NewWorkerPool(ctx, 0, processor, logger)
//	pool.Start()
//	go collect(pool.Results(), pool.Errors())
//	for _, f := range files {
//	    pool.Submit(FileJob{FilePath: f})
//	}
//	pool.Stop()
type WorkerPool struct {
	numWorkers int
	jobs       chan FileJob
	results    chan FileResult
	errors     chan FileError
	wg         sync.WaitGroup
	processor  *Processor
	logger     *slog.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	started    atomic.Bool
	stopped    atomic.Bool
	jobsClosed atomic.Bool
	submitMu   sync.RWMutex

	jobsSubmitted atomic.Int64
	jobsProcessed atomic.Int64
	jobsFailed    atomic.Int64
}

// NewWorkerPool creates a pool. numWorkers 0 uses util.GetOptimalPoolSize,
// which matches the parser pool size so workers never wait on a parser.
func NewWorkerPool(ctx context.Context, numWorkers int, processor *Processor, logger *slog.Logger) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = util.GetOptimalPoolSize()
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		numWorkers: numWorkers,
		jobs:       make(chan FileJob, numWorkers*2),
		results:    make(chan FileResult, numWorkers),
		errors:     make(chan FileError, numWorkers),
		processor:  processor,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start spawns the workers. Calling it twice is a no-op.
func (wp *WorkerPool) Start() {
	if !wp.started.CompareAndSwap(false, true) {
		return
	}

	wp.logger.Debug("starting worker pool", "workers", wp.numWorkers)
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.processJob(id, job)
		}
	}
}

func (wp *WorkerPool) processJob(workerID int, job FileJob) {
	res, err := wp.processor.ProcessFile(wp.ctx, job.FilePath)
	if err != nil {
		wp.logger.Debug("job failed", "worker_id", workerID, "file", job.FilePath, "error", err)
		wp.jobsFailed.Add(1)
		wp.errors <- FileError{FilePath: job.FilePath, Error: err}
		return
	}

	res.JobID = job.JobID
	wp.jobsProcessed.Add(1)
	wp.results <- res
}

// Submit enqueues a job, blocking while the queue is full.
func (wp *WorkerPool) Submit(job FileJob) error {
	wp.submitMu.RLock()
	defer wp.submitMu.RUnlock()

	if wp.jobsClosed.Load() {
		return ErrPoolStopped
	}

	select {
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	case wp.jobs <- job:
		wp.jobsSubmitted.Add(1)
		return nil
	}
}

// Results returns the results channel.
func (wp *WorkerPool) Results() <-chan FileResult {
	return wp.results
}

// Errors returns the errors channel.
func (wp *WorkerPool) Errors() <-chan FileError {
	return wp.errors
}

// FinishSubmitting closes the job queue. Workers exit once it is drained.
// Safe to call more than once.
func (wp *WorkerPool) FinishSubmitting() {
	wp.submitMu.Lock()
	defer wp.submitMu.Unlock()

	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
	}
}

// Stop closes the queue, waits for in-flight jobs and closes the result and
// error channels. Safe to call more than once.
func (wp *WorkerPool) Stop() {
	if !wp.stopped.CompareAndSwap(false, true) {
		return
	}

	wp.FinishSubmitting()
	wp.wg.Wait()
	close(wp.results)
	close(wp.errors)
	wp.cancel()

	wp.logger.Debug("worker pool stopped",
		"jobs_submitted", wp.jobsSubmitted.Load(),
		"jobs_processed", wp.jobsProcessed.Load(),
		"jobs_failed", wp.jobsFailed.Load())
}

// Stats returns current worker pool statistics.
func (wp *WorkerPool) Stats() WorkerPoolStats {
	return WorkerPoolStats{
		NumWorkers:    wp.numWorkers,
		JobsSubmitted: wp.jobsSubmitted.Load(),
		JobsProcessed: wp.jobsProcessed.Load(),
		JobsFailed:    wp.jobsFailed.Load(),
		QueueLength:   len(wp.jobs),
	}
}

// WorkerPoolStats contains statistics about the worker pool.
type WorkerPoolStats struct {
	NumWorkers    int
	JobsSubmitted int64
	JobsProcessed int64
	JobsFailed    int64
	QueueLength   int
}
