package domain

import "time"

// MediaKind classifies a stored media asset.
type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaVideo    MediaKind = "video"
	MediaAudio    MediaKind = "audio"
	MediaDocument MediaKind = "document"
)

// MediaAsset is a stored inbound/outbound media file. Object storage
// itself (presigned URL issuance) is an external collaborator — this
// type is only the persisted record.
type MediaAsset struct {
	ID          string     `json:"id"`
	TenantID    string     `json:"tenant_id"`
	LeadID      string     `json:"lead_id,omitempty"`
	ChatID      string     `json:"chat_id"`
	Provider    Provider   `json:"provider"`
	Kind        MediaKind  `json:"kind"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	S3Key       string     `json:"s3_key"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
