package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/store"
)

// LeadStore implements store.LeadStore, owning the global lead_seq
// sequence: a monotonically increasing integer, global across tenants,
// assigned exactly once at insert and never reused.
type LeadStore struct {
	db *sql.DB
}

// NewLeadStore builds a Postgres-backed LeadStore.
func NewLeadStore(db *sql.DB) *LeadStore {
	return &LeadStore{db: db}
}

func (s *LeadStore) NextSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT nextval('lead_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("allocate lead_seq: %w", err)
	}
	return seq, nil
}

func (s *LeadStore) Insert(ctx context.Context, lead domain.Lead) error {
	payloadJSON, err := json.Marshal(lead.Payload)
	if err != nil {
		return fmt.Errorf("marshal lead payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO leads (tenant_id, lead_id, chat_id, lead_seq, status, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		lead.TenantID, lead.LeadID, lead.ChatID, lead.LeadSeq, lead.Status, payloadJSON, lead.CreatedAt, lead.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (s *LeadStore) Get(ctx context.Context, tenantID, leadID string) (domain.Lead, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT tenant_id, lead_id, chat_id, lead_seq, status, payload, created_at, updated_at, deleted_at
		FROM leads WHERE tenant_id = $1 AND lead_id = $2 AND deleted_at IS NULL`, tenantID, leadID)

	var lead domain.Lead
	var payloadJSON []byte
	err := row.Scan(&lead.TenantID, &lead.LeadID, &lead.ChatID, &lead.LeadSeq, &lead.Status,
		&payloadJSON, &lead.CreatedAt, &lead.UpdatedAt, &lead.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lead{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("query lead: %w", err)
	}
	if len(payloadJSON) > 0 {
		if err := json.Unmarshal(payloadJSON, &lead.Payload); err != nil {
			return domain.Lead{}, fmt.Errorf("unmarshal lead payload: %w", err)
		}
	}
	return lead, nil
}

func (s *LeadStore) UpdateStatus(ctx context.Context, tenantID, leadID string, status domain.LeadStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE leads SET status = $1, updated_at = now() WHERE tenant_id = $2 AND lead_id = $3`,
		status, tenantID, leadID)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lead status rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
