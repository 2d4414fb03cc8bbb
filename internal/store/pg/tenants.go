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

// TenantStore implements store.TenantStore over tenants +
// channel_bindings, with the unique partial index on (provider,
// provider_account_id) WHERE is_active enforcing the
// cross-tenant-aliasing guard at the schema level.
type TenantStore struct {
	db *sql.DB
}

// NewTenantStore builds a Postgres-backed TenantStore.
func NewTenantStore(db *sql.DB) *TenantStore {
	return &TenantStore{db: db}
}

func (s *TenantStore) LookupBinding(ctx context.Context, provider domain.Provider, providerAccountID string) (domain.ChannelBinding, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT tenant_id, provider, provider_account_id, credential_blob, context_tag, is_active
		FROM channel_bindings
		WHERE provider = $1 AND provider_account_id = $2 AND is_active`, provider, providerAccountID)

	var b domain.ChannelBinding
	err := row.Scan(&b.TenantID, &b.Provider, &b.ProviderAccountID, &b.CredentialBlob, &b.ContextTag, &b.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ChannelBinding{}, store.ErrNotFound
	}
	if err != nil {
		return domain.ChannelBinding{}, fmt.Errorf("query channel binding: %w", err)
	}
	return b, nil
}

func (s *TenantStore) GetTenant(ctx context.Context, tenantID string) (domain.Tenant, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, is_active, config FROM tenants WHERE id = $1`, tenantID)

	var t domain.Tenant
	var configJSON []byte
	err := row.Scan(&t.ID, &t.IsActive, &configJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Tenant{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("query tenant: %w", err)
	}
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &t.Config); err != nil {
			return domain.Tenant{}, fmt.Errorf("unmarshal tenant config: %w", err)
		}
	}
	return t, nil
}
