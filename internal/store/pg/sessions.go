package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/store"
)

// SessionStore implements store.SessionStore backed by Postgres over
// database/sql + pgx. Upsert guards concurrent writers with a WHERE
// updated_at = $observed clause rather than a plain overwrite.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore builds a Postgres-backed SessionStore.
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Get(ctx context.Context, tenantID, chatID string) (domain.SessionState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT tenant_id, chat_id, lead_id, bot_type, step, language, data, created_at, updated_at
		FROM sessions WHERE tenant_id = $1 AND chat_id = $2`, tenantID, chatID)

	var session domain.SessionState
	var dataJSON []byte
	err := row.Scan(&session.TenantID, &session.ChatID, &session.LeadID, &session.BotType,
		&session.Step, &session.Language, &dataJSON, &session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SessionState{}, store.ErrNotFound
	}
	if err != nil {
		return domain.SessionState{}, fmt.Errorf("query session: %w", err)
	}
	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &session.Data); err != nil {
			return domain.SessionState{}, fmt.Errorf("unmarshal session data: %w", err)
		}
	}
	return session, nil
}

func (s *SessionStore) Upsert(ctx context.Context, session domain.SessionState, observedUpdatedAt time.Time) error {
	dataJSON, err := json.Marshal(session.Data)
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err)
	}

	if observedUpdatedAt.IsZero() {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO sessions (tenant_id, chat_id, lead_id, bot_type, step, language, data, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (tenant_id, chat_id) DO NOTHING`,
			session.TenantID, session.ChatID, session.LeadID, session.BotType,
			session.Step, session.Language, dataJSON, session.CreatedAt, session.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET lead_id = $1, bot_type = $2, step = $3, language = $4, data = $5, updated_at = $6
		WHERE tenant_id = $7 AND chat_id = $8 AND updated_at = $9`,
		session.LeadID, session.BotType, session.Step, session.Language, dataJSON, session.UpdatedAt,
		session.TenantID, session.ChatID, observedUpdatedAt)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrConflict
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, tenantID, chatID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE tenant_id = $1 AND chat_id = $2`, tenantID, chatID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
