package ocr

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/webboty/llm-aided-ocr/errors"
	"github.com/webboty/llm-aided-ocr/job"
)

// Dispatcher runs job invocations in the background.
//
// Submit returns immediately; the invocation runs on its own goroutine.
// Errors and panics from the invocation are recorded into the job registry
// as a terminal failure and never reach the submitting caller. With
// maxConcurrent 0 there is no limit on simultaneously running invocations;
// a positive value bounds them with a weighted semaphore.
type Dispatcher struct {
	registry *job.Registry
	sem      *semaphore.Weighted // nil when unbounded
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	logger   *zap.SugaredLogger
}

// NewDispatcher creates a dispatcher recording failures into registry
func NewDispatcher(registry *job.Registry, maxConcurrent int, logger *zap.SugaredLogger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	var sem *semaphore.Weighted
	if maxConcurrent > 0 {
		sem = semaphore.NewWeighted(int64(maxConcurrent))
	}

	return &Dispatcher{
		registry: registry,
		sem:      sem,
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
	}
}

// Submit schedules run to execute without blocking the caller.
// run receives the dispatcher's context, which is cancelled on Close.
func (d *Dispatcher) Submit(jobID string, run func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		if d.sem != nil {
			if err := d.sem.Acquire(d.ctx, 1); err != nil {
				d.recordFailure(jobID, errors.Wrap(err, "scheduler shutting down"))
				return
			}
			defer d.sem.Release(1)
		}

		defer func() {
			if r := recover(); r != nil {
				d.logger.Errorw("Panic in background job", "job_id", jobID, "panic", r)
				d.recordFailure(jobID, errors.Newf("internal error: %v", r))
			}
		}()

		if err := run(d.ctx); err != nil {
			d.recordFailure(jobID, err)
		}
	}()
}

// recordFailure marks the job failed. Already-terminal and already-deleted
// records are left alone: the invocation recorded its own outcome, or the
// caller removed the job while it ran.
func (d *Dispatcher) recordFailure(jobID string, cause error) {
	d.logger.Errorw("Job failed", "job_id", jobID, "error", cause)

	_, err := d.registry.Update(jobID, func(j *job.Job) {
		j.Fail(cause, "Processing failed: "+cause.Error())
	})
	if err != nil && !errors.Is(err, errors.ErrJobTerminal) && !errors.IsNotFoundError(err) {
		d.logger.Errorw("Failed to record job failure", "job_id", jobID, "error", err)
	}
}

// Close cancels the dispatcher context and waits for in-flight jobs to exit
func (d *Dispatcher) Close() {
	d.cancel()
	d.wg.Wait()
}
