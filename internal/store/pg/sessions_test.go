package pg

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/store"
)

func newMockSessionStore(t *testing.T) (*SessionStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db), mock
}

func TestSessionStore_Get_NotFound(t *testing.T) {
	s, mock := newMockSessionStore(t)
	mock.ExpectQuery("SELECT tenant_id, chat_id").
		WithArgs("t1", "c1").
		WillReturnError(sql.ErrNoRows)

	_, err := s.Get(context.Background(), "t1", "c1")
	if err != store.ErrNotFound {
		t.Fatalf("Get() error = %v, want store.ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionStore_Get_ReturnsDecodedSession(t *testing.T) {
	s, mock := newMockSessionStore(t)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"tenant_id", "chat_id", "lead_id", "bot_type", "step", "language", "data", "created_at", "updated_at"}).
		AddRow("t1", "c1", "", domain.DefaultBotType, string(domain.StepCargo), string(domain.LangEnglish), []byte(`{"cargo_raw":"fridge"}`), now, now)
	mock.ExpectQuery("SELECT tenant_id, chat_id").WithArgs("t1", "c1").WillReturnRows(rows)

	got, err := s.Get(context.Background(), "t1", "c1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Step != domain.StepCargo || got.Data.CargoRaw != "fridge" {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestSessionStore_Upsert_FirstWriteInserts(t *testing.T) {
	s, mock := newMockSessionStore(t)
	mock.ExpectExec("INSERT INTO sessions").WillReturnResult(sqlmock.NewResult(1, 1))

	session := domain.SessionState{TenantID: "t1", ChatID: "c1", Step: domain.StepWelcome}
	if err := s.Upsert(context.Background(), session, time.Time{}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionStore_Upsert_ConflictWhenNoRowsAffected(t *testing.T) {
	s, mock := newMockSessionStore(t)
	mock.ExpectExec("UPDATE sessions SET").WillReturnResult(sqlmock.NewResult(0, 0))

	session := domain.SessionState{TenantID: "t1", ChatID: "c1", Step: domain.StepCargo}
	err := s.Upsert(context.Background(), session, time.Now())
	if err != store.ErrConflict {
		t.Fatalf("Upsert() error = %v, want store.ErrConflict", err)
	}
}

func TestSessionStore_Upsert_SucceedsWhenVersionMatches(t *testing.T) {
	s, mock := newMockSessionStore(t)
	mock.ExpectExec("UPDATE sessions SET").WillReturnResult(sqlmock.NewResult(0, 1))

	session := domain.SessionState{TenantID: "t1", ChatID: "c1", Step: domain.StepCargo}
	if err := s.Upsert(context.Background(), session, time.Now()); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
}

func TestSessionStore_Delete(t *testing.T) {
	s, mock := newMockSessionStore(t)
	mock.ExpectExec("DELETE FROM sessions").WithArgs("t1", "c1").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Delete(context.Background(), "t1", "c1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}
