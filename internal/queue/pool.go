package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/store"
)

// Config configures a WorkerPool: which job types this process claims,
// how many concurrent workers run the claim loop, and the sweep
// intervals for lease recovery and media cleanup.
type Config struct {
	Role              domain.WorkerRole
	Concurrency       int
	PollInterval      time.Duration
	LeaseHorizon      time.Duration
	OrphanSweepEvery  time.Duration
	MediaCleanupEvery time.Duration
}

// WorkerPool owns a set of Workers plus the two periodic background
// sweeps (lease recovery, media cleanup), grounded on
// codeready-toolchain-tarsy/pkg/queue/pool.go's Start/Stop lifecycle.
type WorkerPool struct {
	cfg      Config
	jobs     store.JobStore
	handlers map[domain.JobType]Handler
	logger   *slog.Logger

	workers []*Worker

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	started  bool
	mu       sync.Mutex
}

// NewWorkerPool builds a pool for the given role over jobs, dispatching
// to handlers. Only job types in domain.JobTypesForRole(cfg.Role) that
// also have a registered handler are ever claimed.
func NewWorkerPool(cfg Config, jobs store.JobStore, handlers map[domain.JobType]Handler, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{cfg: cfg, jobs: jobs, handlers: handlers, logger: logger, stopCh: make(chan struct{})}
}

// roleTypes returns the job types this pool's role is eligible to
// claim and that have a registered handler.
func (p *WorkerPool) roleTypes() []domain.JobType {
	allowed := domain.JobTypesForRole(p.cfg.Role)
	types := make([]domain.JobType, 0, len(allowed))
	for t := range allowed {
		if _, ok := p.handlers[t]; !ok {
			continue
		}
		types = append(types, t)
	}
	return types
}

// Start spawns cfg.Concurrency workers plus the lease-recovery and
// media-cleanup sweep goroutines. Idempotent: a second call is a no-op.
func (p *WorkerPool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	types := p.roleTypes()
	n := p.cfg.Concurrency
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		w := newWorker(i, p.jobs, types, p.handlers, p.cfg.PollInterval, p.cfg.LeaseHorizon, p.logger)
		p.workers = append(p.workers, w)
		w.Start(ctx)
	}

	p.wg.Add(1)
	go p.runLeaseRecovery(ctx)

	if p.cfg.Role == domain.RoleCore || p.cfg.Role == domain.RoleAll {
		p.wg.Add(1)
		go p.runMediaCleanup(ctx)
	}

	p.logger.Info("queue worker pool started", "role", p.cfg.Role, "workers", n)
}

// Stop gracefully stops every worker and the sweep goroutines.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	workers := p.workers
	p.mu.Unlock()

	p.stopOnce.Do(func() { close(p.stopCh) })
	for _, w := range workers {
		w.Stop()
	}
	p.wg.Wait()
	p.logger.Info("queue worker pool stopped")
}

// Health reports the pool's current status for a health endpoint.
func (p *WorkerPool) Health() PoolHealth {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolHealth{Healthy: p.started, WorkerCount: len(p.workers)}
}

func (p *WorkerPool) runLeaseRecovery(ctx context.Context) {
	defer p.wg.Done()
	interval := p.cfg.OrphanSweepEvery
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.jobs.RecoverExpiredLeases(ctx, p.cfg.LeaseHorizon)
			if err != nil {
				p.logger.Error("lease recovery sweep failed", "error", err)
				continue
			}
			if n > 0 {
				p.logger.Info("lease recovery sweep recovered jobs", "count", n)
			}
		}
	}
}

// runMediaCleanup implements the media_cleanup sweep directly — scan
// media_assets with expires_at < now(), delete the object, then the
// row — rather than routing it through the claim path, since it has no
// per-tenant payload and no retry semantics distinct from "try again
// next tick".
func (p *WorkerPool) runMediaCleanup(ctx context.Context) {
	defer p.wg.Done()
	interval := p.cfg.MediaCleanupEvery
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	handler, ok := p.handlers[domain.JobMediaCleanup]

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !ok {
				continue
			}
			if err := handler(ctx, domain.Job{JobType: domain.JobMediaCleanup}); err != nil {
				p.logger.Error("media cleanup sweep failed", "error", err)
			}
		}
	}
}
