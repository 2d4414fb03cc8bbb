package pg

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/store"
)

func TestTenantStore_LookupBinding_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()
	s := NewTenantStore(db)

	mock.ExpectQuery("SELECT tenant_id, provider, provider_account_id").WillReturnError(sql.ErrNoRows)

	_, err = s.LookupBinding(context.Background(), domain.ProviderMeta, "acct-1")
	if err != store.ErrNotFound {
		t.Fatalf("LookupBinding() error = %v, want store.ErrNotFound", err)
	}
}

func TestTenantStore_LookupBinding_ReturnsActiveBinding(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()
	s := NewTenantStore(db)

	rows := sqlmock.NewRows([]string{"tenant_id", "provider", "provider_account_id", "credential_blob", "context_tag", "is_active"}).
		AddRow("t1", string(domain.ProviderMeta), "acct-1", []byte("ciphertext"), "t1:meta", true)
	mock.ExpectQuery("SELECT tenant_id, provider, provider_account_id").WillReturnRows(rows)

	got, err := s.LookupBinding(context.Background(), domain.ProviderMeta, "acct-1")
	if err != nil {
		t.Fatalf("LookupBinding() error = %v", err)
	}
	if got.TenantID != "t1" || got.ContextTag != "t1:meta" {
		t.Fatalf("unexpected binding: %+v", got)
	}
}

func TestTenantStore_GetTenant_DecodesConfig(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()
	s := NewTenantStore(db)

	rows := sqlmock.NewRows([]string{"id", "is_active", "config"}).AddRow("t1", true, []byte(`{"crew_fallback_enabled":true}`))
	mock.ExpectQuery("SELECT id, is_active, config").WillReturnRows(rows)

	got, err := s.GetTenant(context.Background(), "t1")
	if err != nil {
		t.Fatalf("GetTenant() error = %v", err)
	}
	if !got.IsActive || got.Config["crew_fallback_enabled"] != true {
		t.Fatalf("unexpected tenant: %+v", got)
	}
}

func TestTenantStore_GetTenant_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()
	s := NewTenantStore(db)

	mock.ExpectQuery("SELECT id, is_active, config").WillReturnError(sql.ErrNoRows)

	_, err = s.GetTenant(context.Background(), "missing")
	if err != store.ErrNotFound {
		t.Fatalf("GetTenant() error = %v, want store.ErrNotFound", err)
	}
}
