package queue

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/store"
)

// pollJitterFraction matches tarsy's Worker.pollInterval jitter: the
// configured interval is perturbed by up to this fraction in either
// direction so many workers polling together don't thunder the DB.
const pollJitterFraction = 0.5

// Worker is one sequential claim -> execute -> mark loop, grounded on
// codeready-toolchain-tarsy/pkg/queue/worker.go's run/pollAndProcess
// shape.
type Worker struct {
	id           int
	jobs         store.JobStore
	types        []domain.JobType
	handlers     map[domain.JobType]Handler
	pollInterval time.Duration
	leaseHorizon time.Duration
	logger       *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newWorker(id int, jobs store.JobStore, types []domain.JobType, handlers map[domain.JobType]Handler, pollInterval, leaseHorizon time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		id:           id,
		jobs:         jobs,
		types:        types,
		handlers:     handlers,
		pollInterval: pollInterval,
		leaseHorizon: leaseHorizon,
		logger:       logger,
		stopCh:       make(chan struct{}),
	}
}

// Start launches the worker's poll loop in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop signals the worker to exit its loop and waits for it to finish.
// Safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		claimed, err := w.pollAndProcess(ctx)
		if err != nil {
			if errors.Is(err, ErrNoJobsAvailable) {
				w.sleep(w.jitteredPollInterval())
				continue
			}
			w.logger.Error("queue worker poll error", "worker", w.id, "error", err)
			w.sleep(time.Second)
			continue
		}
		if !claimed {
			w.sleep(w.jitteredPollInterval())
		}
	}
}

func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.stopCh:
	case <-time.After(d):
	}
}

// jitteredPollInterval spreads concurrent workers' poll timing, mirroring
// tarsy's Worker.pollInterval jitter formula.
func (w *Worker) jitteredPollInterval() time.Duration {
	jitter := time.Duration(float64(w.pollInterval) * pollJitterFraction)
	if jitter <= 0 {
		return w.pollInterval
	}
	offset := time.Duration(rand.Int64N(2*int64(jitter))) - jitter
	d := w.pollInterval + offset
	if d < 0 {
		return w.pollInterval
	}
	return d
}

// pollAndProcess claims at most one job and executes it. It returns
// (false, ErrNoJobsAvailable) when nothing was eligible.
func (w *Worker) pollAndProcess(ctx context.Context) (bool, error) {
	job, err := w.jobs.Claim(ctx, w.types)
	if errors.Is(err, store.ErrNotFound) {
		return false, ErrNoJobsAvailable
	}
	if err != nil {
		return false, err
	}

	w.execute(ctx, job)
	return true, nil
}

// execute dispatches job to its registered handler and records the
// terminal outcome.
func (w *Worker) execute(ctx context.Context, job domain.Job) {
	handler, ok := w.handlers[job.JobType]
	if !ok {
		// Out-of-role or unregistered type: leave in pending, skipped by
		// this worker instance. Claim already advanced it to running, so
		// put it back.
		if err := w.jobs.Retry(ctx, job.ID, time.Now(), "no handler registered for "+string(job.JobType)); err != nil {
			w.logger.Error("queue worker requeue unroutable job failed", "worker", w.id, "job_id", job.ID, "error", err)
		}
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, w.leaseHorizon)
	defer cancel()

	err := handler(runCtx, job)
	if err == nil {
		if err := w.jobs.Complete(ctx, job.ID); err != nil {
			w.logger.Error("queue worker mark complete failed", "worker", w.id, "job_id", job.ID, "error", err)
		}
		return
	}

	w.logger.Warn("queue job handler failed", "worker", w.id, "job_id", job.ID, "job_type", job.JobType, "attempts", job.Attempts, "error", err)

	if job.Attempts < job.MaxAttempts {
		nextAt := time.Now().Add(Backoff(job.Attempts))
		if retryErr := w.jobs.Retry(ctx, job.ID, nextAt, err.Error()); retryErr != nil {
			w.logger.Error("queue worker retry failed", "worker", w.id, "job_id", job.ID, "error", retryErr)
		}
		return
	}
	if failErr := w.jobs.Fail(ctx, job.ID, err.Error()); failErr != nil {
		w.logger.Error("queue worker fail failed", "worker", w.id, "job_id", job.ID, "error", failErr)
	}
}
