// Package store defines the storage interfaces the core depends on:
// Session, Lead (with the global lead_seq sequence), inbound-message
// dedup, Job, MediaAsset, and Tenant/ChannelBinding. Nothing in this
// package knows about Postgres — concrete backends live under
// internal/store/pg.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/caravanleads/caravan/internal/domain"
)

// ErrNotFound is returned by single-row lookups that find nothing.
var ErrNotFound = errors.New("store: not found")

// ErrConflict is returned by an optimistic-concurrency write whose
// observed version no longer matches the stored row: the upsert uses a
// WHERE updated_at = <observed> guard.
var ErrConflict = errors.New("store: conflict")

// ErrDuplicate is returned by InboundDedupStore.Reserve when the
// (tenant_id, provider, message_id) tuple was already recorded.
var ErrDuplicate = errors.New("store: duplicate")

// Stores is the top-level container for every storage backend the core
// uses. There is no standalone/managed split — every field is always
// Postgres-backed once StoreConfig names a DSN.
type Stores struct {
	Sessions     SessionStore
	Leads        LeadStore
	InboundDedup InboundDedupStore
	Jobs         JobStore
	Media        MediaStore
	Tenants      TenantStore
}

// StoreConfig is the subset of internal/config.Config the store factory
// needs, kept separate so internal/store/pg has no import on
// internal/config.
type StoreConfig struct {
	PostgresDSN string
	MaxOpenConn int
	MaxIdleConn int
}

// SessionStore persists SessionState, one row per (tenant_id, chat_id).
type SessionStore interface {
	// Get returns the session for (tenantID, chatID), or ErrNotFound.
	Get(ctx context.Context, tenantID, chatID string) (domain.SessionState, error)

	// Upsert inserts or updates the session. When the row already
	// exists, the write is guarded by observedUpdatedAt: if the
	// stored updated_at no longer matches, ErrConflict is returned
	// and the caller must re-fetch and retry. observedUpdatedAt is the
	// zero time for a first-ever write.
	Upsert(ctx context.Context, session domain.SessionState, observedUpdatedAt time.Time) error

	// Delete removes the session row, called on finalization.
	Delete(ctx context.Context, tenantID, chatID string) error
}

// LeadStore persists finalized Lead rows and owns the global lead_seq
// sequence: a monotonically increasing integer, global across tenants.
type LeadStore interface {
	// NextSeq allocates the next global lead_seq value. Exactly one
	// caller ever observes a given value (backed by a DB sequence).
	NextSeq(ctx context.Context) (int64, error)

	// Insert writes a new Lead row. lead.LeadSeq must already be
	// allocated via NextSeq.
	Insert(ctx context.Context, lead domain.Lead) error

	// Get returns the lead for (tenantID, leadID), or ErrNotFound.
	Get(ctx context.Context, tenantID, leadID string) (domain.Lead, error)

	// UpdateStatus transitions a lead's status (e.g. new -> done).
	UpdateStatus(ctx context.Context, tenantID, leadID string, status domain.LeadStatus) error
}

// InboundDedupStore enforces the InboundMessage idempotency primary
// key: duplicates return a reserved sentinel without reprocessing.
type InboundDedupStore interface {
	// Reserve records (tenantID, provider, messageID) as received. It
	// returns ErrDuplicate if the tuple was already reserved; callers
	// must treat that as "duplicate ignored" and skip engine invocation
	// entirely.
	Reserve(ctx context.Context, rec domain.InboundMessageRecord) error
}

// JobStore is the durable work queue.
type JobStore interface {
	// Enqueue inserts a new pending job.
	Enqueue(ctx context.Context, job domain.Job) error

	// Claim atomically selects and locks one eligible pending job for
	// one of the given job types (a worker's role set), advancing it
	// to running. Returns ErrNotFound if no row is eligible.
	Claim(ctx context.Context, types []domain.JobType) (domain.Job, error)

	// Complete marks a job completed.
	Complete(ctx context.Context, jobID string) error

	// Retry reschedules a failed attempt: status back to pending,
	// scheduled_at pushed out by backoff, truncated error recorded.
	Retry(ctx context.Context, jobID string, nextAttemptAt time.Time, errMsg string) error

	// Fail marks a job permanently failed (attempts exhausted).
	Fail(ctx context.Context, jobID string, errMsg string) error

	// RecoverExpiredLeases resets jobs stuck in running past the lease
	// horizon back to pending. Returns the number of rows recovered.
	RecoverExpiredLeases(ctx context.Context, leaseHorizon time.Duration) (int, error)

	// ExpiredMedia returns media assets whose expires_at has passed,
	// feeding the media_cleanup handler.
	ExpiredMedia(ctx context.Context, limit int) ([]domain.MediaAsset, error)

	// DeleteMediaAsset removes a media_asset row after its object has
	// been deleted from storage.
	DeleteMediaAsset(ctx context.Context, assetID string) error

	// ReserveSideEffect records key as "done" and reports whether this
	// call was the first to do so. Handlers with an external,
	// non-idempotent side effect (sending a message) use this so a job
	// re-executed after a lease timeout produces no duplicated external
	// side effect.
	ReserveSideEffect(ctx context.Context, key string) (firstTime bool, err error)
}

// MediaStore persists MediaAsset records.
type MediaStore interface {
	Insert(ctx context.Context, asset domain.MediaAsset) error
	Get(ctx context.Context, assetID string) (domain.MediaAsset, error)
}

// TenantStore persists Tenant and ChannelBinding rows.
type TenantStore interface {
	// LookupBinding resolves (provider, providerAccountID) to its
	// active ChannelBinding, or ErrNotFound.
	LookupBinding(ctx context.Context, provider domain.Provider, providerAccountID string) (domain.ChannelBinding, error)

	// GetTenant returns the tenant row, or ErrNotFound.
	GetTenant(ctx context.Context, tenantID string) (domain.Tenant, error)
}
