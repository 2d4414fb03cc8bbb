package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/store"
)

// MediaStore implements store.MediaStore. Object storage I/O itself is
// an external collaborator (see domain.MediaAsset's doc comment); this
// type only persists the record.
type MediaStore struct {
	db *sql.DB
}

// NewMediaStore builds a Postgres-backed MediaStore.
func NewMediaStore(db *sql.DB) *MediaStore {
	return &MediaStore{db: db}
}

func (s *MediaStore) Insert(ctx context.Context, asset domain.MediaAsset) error {
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	var leadID any
	if asset.LeadID != "" {
		leadID = asset.LeadID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media_assets (id, tenant_id, lead_id, chat_id, provider, kind, content_type, size_bytes, s3_key, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())`,
		asset.ID, asset.TenantID, leadID, asset.ChatID, asset.Provider, asset.Kind,
		asset.ContentType, asset.SizeBytes, asset.S3Key, asset.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert media asset: %w", err)
	}
	return nil
}

func (s *MediaStore) Get(ctx context.Context, assetID string) (domain.MediaAsset, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, lead_id, chat_id, provider, kind, content_type, size_bytes, s3_key, expires_at, created_at
		FROM media_assets WHERE id = $1`, assetID)

	var a domain.MediaAsset
	var leadID sql.NullString
	err := row.Scan(&a.ID, &a.TenantID, &leadID, &a.ChatID, &a.Provider, &a.Kind,
		&a.ContentType, &a.SizeBytes, &a.S3Key, &a.ExpiresAt, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MediaAsset{}, store.ErrNotFound
	}
	if err != nil {
		return domain.MediaAsset{}, fmt.Errorf("query media asset: %w", err)
	}
	a.LeadID = leadID.String
	return a, nil
}
