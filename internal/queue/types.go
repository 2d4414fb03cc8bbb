// Package queue implements the durable job queue's worker side:
// claim (FOR UPDATE SKIP LOCKED, via internal/store), role-filtered
// dispatch, retry/backoff, and the lease-recovery sweep. It is adapted
// from codeready-toolchain-tarsy/pkg/queue's WorkerPool/Worker/
// orphan-detection shape, reimplemented over the plain database/sql-
// backed internal/store.JobStore since this project does not carry
// tarsy's entgo.io/ent dependency (see DESIGN.md).
package queue

import (
	"context"
	"errors"

	"github.com/caravanleads/caravan/internal/domain"
)

// Handler executes one job's side effect. A Handler observing a
// duplicate idempotency key with a visible side effect must no-op.
type Handler func(ctx context.Context, job domain.Job) error

// ErrNoJobsAvailable signals the claim step found no eligible row,
// mirroring tarsy's queue.ErrNoSessionsAvailable — the pool sleeps and
// retries rather than treating this as a failure.
var ErrNoJobsAvailable = errors.New("queue: no jobs available")

// PoolHealth summarizes worker-pool status for a health endpoint,
// mirroring tarsy's queue.PoolHealth.
type PoolHealth struct {
	Healthy       bool `json:"healthy"`
	WorkerCount   int  `json:"worker_count"`
	QueueDepth    int  `json:"queue_depth,omitempty"`
}
