package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/store"
)

// JobStore implements store.JobStore, grounded on
// codeready-toolchain-tarsy/pkg/queue/worker.go's claimNextSession: a
// single transaction selecting one eligible row FOR UPDATE SKIP LOCKED,
// then advancing it to running, reimplemented over plain database/sql
// since this repo carries no ORM (see DESIGN.md "dropped deps").
type JobStore struct {
	db *sql.DB
}

// NewJobStore builds a Postgres-backed JobStore.
func NewJobStore(db *sql.DB) *JobStore {
	return &JobStore{db: db}
}

func (s *JobStore) Enqueue(ctx context.Context, job domain.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.MaxAttempts == 0 {
		job.MaxAttempts = domain.DefaultMaxAttempts
	}
	payloadJSON, err := json.Marshal(job.Payload)
	if err != nil {
		return fmt.Errorf("marshal job payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, tenant_id, job_type, payload, status, priority, attempts, max_attempts, scheduled_at, created_at)
		VALUES ($1, $2, $3, $4, 'pending', $5, 0, $6, $7, now())`,
		job.ID, job.TenantID, job.JobType, payloadJSON, job.Priority, job.MaxAttempts, job.ScheduledAt)
	if err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	return nil
}

// Claim selects one eligible pending row ordered by priority DESC,
// created_at ASC and advances it to status='running' using row-level
// locking with skip-locked semantics.
func (s *JobStore) Claim(ctx context.Context, types []domain.JobType) (domain.Job, error) {
	if len(types) == 0 {
		return domain.Job{}, store.ErrNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Job{}, fmt.Errorf("begin claim tx: %w", err)
	}
	defer tx.Rollback()

	jobTypeStrs := make([]string, len(types))
	for i, t := range types {
		jobTypeStrs[i] = string(t)
	}

	row := tx.QueryRowContext(ctx, `
		SELECT id, tenant_id, job_type, payload, priority, attempts, max_attempts, scheduled_at, created_at
		FROM jobs
		WHERE status = 'pending' AND scheduled_at <= now() AND job_type = ANY($1)
		ORDER BY priority DESC, created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED`, jobTypeStrs)

	var job domain.Job
	var payloadJSON []byte
	err = row.Scan(&job.ID, &job.TenantID, &job.JobType, &payloadJSON, &job.Priority,
		&job.Attempts, &job.MaxAttempts, &job.ScheduledAt, &job.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Job{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("claim select: %w", err)
	}
	if len(payloadJSON) > 0 {
		if err := json.Unmarshal(payloadJSON, &job.Payload); err != nil {
			return domain.Job{}, fmt.Errorf("unmarshal job payload: %w", err)
		}
	}

	now := time.Now()
	job.Attempts++
	job.StartedAt = &now
	job.Status = domain.JobRunning

	if _, err := tx.ExecContext(ctx, `
		UPDATE jobs SET status = 'running', started_at = $1, attempts = $2, lease_expires_at = $3
		WHERE id = $4`, now, job.Attempts, now.Add(defaultClaimLease), job.ID); err != nil {
		return domain.Job{}, fmt.Errorf("claim update: %w", err)
	}
	leaseExp := now.Add(defaultClaimLease)
	job.LeaseExpiresAt = &leaseExp

	if err := tx.Commit(); err != nil {
		return domain.Job{}, fmt.Errorf("commit claim tx: %w", err)
	}
	return job, nil
}

// defaultClaimLease is the lease granted at claim time. Nothing renews
// it while the handler runs; RecoverExpiredLeases resets rows whose
// lease has passed.
const defaultClaimLease = 5 * time.Minute

func (s *JobStore) Complete(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status = 'completed', completed_at = now(), lease_expires_at = NULL WHERE id = $1`, jobID)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return nil
}

func (s *JobStore) Retry(ctx context.Context, jobID string, nextAttemptAt time.Time, errMsg string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status = 'pending', scheduled_at = $1, error_message = $2, lease_expires_at = NULL
		WHERE id = $3`, nextAttemptAt, truncateErrMsg(errMsg), jobID)
	if err != nil {
		return fmt.Errorf("retry job: %w", err)
	}
	return nil
}

func (s *JobStore) Fail(ctx context.Context, jobID string, errMsg string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status = 'failed', error_message = $1, lease_expires_at = NULL WHERE id = $2`,
		truncateErrMsg(errMsg), jobID)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	return nil
}

// maxErrMsgLen bounds the persisted error text.
const maxErrMsgLen = 2000

func truncateErrMsg(s string) string {
	if len(s) <= maxErrMsgLen {
		return s
	}
	return s[:maxErrMsgLen]
}

func (s *JobStore) RecoverExpiredLeases(ctx context.Context, leaseHorizon time.Duration) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status = 'pending', lease_expires_at = NULL
		WHERE status = 'running' AND lease_expires_at IS NOT NULL AND lease_expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("recover expired leases: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("recover expired leases rows affected: %w", err)
	}
	return int(n), nil
}

func (s *JobStore) ExpiredMedia(ctx context.Context, limit int) ([]domain.MediaAsset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, lead_id, chat_id, provider, kind, content_type, size_bytes, s3_key, expires_at, created_at
		FROM media_assets WHERE expires_at IS NOT NULL AND expires_at < now() LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query expired media: %w", err)
	}
	defer rows.Close()

	var out []domain.MediaAsset
	for rows.Next() {
		var a domain.MediaAsset
		var leadID sql.NullString
		if err := rows.Scan(&a.ID, &a.TenantID, &leadID, &a.ChatID, &a.Provider, &a.Kind,
			&a.ContentType, &a.SizeBytes, &a.S3Key, &a.ExpiresAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expired media: %w", err)
		}
		a.LeadID = leadID.String
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *JobStore) DeleteMediaAsset(ctx context.Context, assetID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM media_assets WHERE id = $1`, assetID)
	if err != nil {
		return fmt.Errorf("delete media asset: %w", err)
	}
	return nil
}

// ReserveSideEffect inserts key into job_side_effects, the same
// INSERT-and-detect-conflict idiom used by InboundDedupStore.Reserve.
func (s *JobStore) ReserveSideEffect(ctx context.Context, key string) (bool, error) {
	_, err := s.db.ExecContext(ctx, `INSERT INTO job_side_effects (key, done_at) VALUES ($1, now())`, key)
	if err == nil {
		return true, nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return false, nil
	}
	return false, fmt.Errorf("reserve side effect: %w", err)
}
