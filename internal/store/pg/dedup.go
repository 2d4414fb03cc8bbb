package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/store"
)

// pgUniqueViolation is pgx's SQLSTATE code for a unique-constraint
// violation, used to detect a duplicate inbound message.
const pgUniqueViolation = "23505"

// InboundDedupStore implements store.InboundDedupStore over the
// inbound_messages table, whose primary key is the idempotency
// contract itself.
type InboundDedupStore struct {
	db *sql.DB
}

// NewInboundDedupStore builds a Postgres-backed InboundDedupStore.
func NewInboundDedupStore(db *sql.DB) *InboundDedupStore {
	return &InboundDedupStore{db: db}
}

func (s *InboundDedupStore) Reserve(ctx context.Context, rec domain.InboundMessageRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inbound_messages (tenant_id, provider, message_id, received_at)
		VALUES ($1, $2, $3, now())`, rec.TenantID, rec.Provider, rec.MessageID)
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return store.ErrDuplicate
	}
	return fmt.Errorf("reserve inbound message: %w", err)
}
