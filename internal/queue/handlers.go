package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/caravanleads/caravan/internal/config"
	"github.com/caravanleads/caravan/internal/dispatch"
	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/notify"
	"github.com/caravanleads/caravan/internal/store"
)

// OutboundSender delivers a rendered message to one chat via the
// channel adapter bound to tenantID. The adapter itself (Twilio/Meta/
// Telegram HTTP clients) is an external collaborator — this interface
// is the full extent of the boundary the queue package owns.
type OutboundSender interface {
	Send(ctx context.Context, msg domain.OutboundMessage) error
}

// OperatorSender and CrewSender deliver a plain-text message to the
// tenant's configured operator/crew destination (not a customer chat).
type OperatorSender interface {
	SendOperatorMessage(ctx context.Context, tenantID, text string) error
}

// CrewSender delivers a plain-text message to the tenant's crew group.
type CrewSender interface {
	SendCrewMessage(ctx context.Context, tenantID, text string) error
}

// MediaFetcher downloads one inbound media item from the provider that
// originally delivered it. External collaborator — see
// domain.MediaInput's SourceRef doc comment.
type MediaFetcher interface {
	Fetch(ctx context.Context, provider domain.Provider, sourceRef string) (data []byte, contentType string, err error)
}

// ObjectStore persists a media blob under key. External collaborator —
// see domain.MediaAsset's doc comment.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

// maxMediaBytes bounds a single inbound media item's size; the content
// type is not validated.
const maxMediaBytes = 50 << 20 // 50MiB

// Deps bundles every collaborator the five job handlers need.
// FeaturesFor resolves per-tenant feature overrides (mirrors
// config.Config.ResolveFeatures) without the queue package importing
// the full config.Config type.
type Deps struct {
	Jobs     store.JobStore
	Media    store.MediaStore
	Leads    store.LeadStore
	Outbound OutboundSender
	Operator OperatorSender
	Crew     CrewSender
	Fetcher  MediaFetcher
	Objects  ObjectStore
	Renderer *dispatch.Renderer

	FeaturesFor func(tenantID string) config.FeaturesConfig
}

// BuildHandlers wires the five job handlers over deps, keyed by
// JobType for registration with a WorkerPool.
func BuildHandlers(deps Deps) map[domain.JobType]Handler {
	return map[domain.JobType]Handler{
		domain.JobOutboundReply:      outboundReplyHandler(deps),
		domain.JobProcessMedia:       processMediaHandler(deps),
		domain.JobNotifyOperator:     notifyOperatorHandler(deps),
		domain.JobNotifyCrewFallback: notifyCrewFallbackHandler(deps),
		domain.JobMediaCleanup:       mediaCleanupHandler(deps),
	}
}

func outboundReplyHandler(deps Deps) Handler {
	return func(ctx context.Context, job domain.Job) error {
		chatID, _ := job.Payload["chat_id"].(string)
		text, _ := job.Payload["text"].(string)
		msg := domain.OutboundMessage{TenantID: job.TenantID, ChatID: chatID, Text: text}
		msg.Buttons = buttonsFromPayload(job.Payload["buttons"])
		return deps.Outbound.Send(ctx, msg)
	}
}

// buttonsFromPayload decodes the "buttons" payload field, which after a
// round trip through JSON storage arrives as []any of map[string]any
// rather than the []domain.Button it was enqueued with.
func buttonsFromPayload(raw any) []domain.Button {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]domain.Button, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		payload, _ := m["payload"].(string)
		label, _ := m["label"].(string)
		out = append(out, domain.Button{Payload: payload, Label: label})
	}
	return out
}

// processMediaHandler handles process_media jobs. Lead association
// always comes from the job payload, never a fresh session read, to
// avoid a race with finalization.
func processMediaHandler(deps Deps) Handler {
	return func(ctx context.Context, job domain.Job) error {
		tenantID := job.TenantID
		chatID, _ := job.Payload["chat_id"].(string)
		leadID, _ := job.Payload["lead_id"].(string)
		providerName, _ := job.Payload["provider"].(string)
		provider := domain.Provider(providerName)

		items, ok := job.Payload["items"].([]any)
		if !ok {
			return fmt.Errorf("process_media: payload.items missing or malformed")
		}

		features := deps.FeaturesFor(tenantID)
		ttl := time.Duration(features.MediaTTLDays) * 24 * time.Hour

		for _, raw := range items {
			item, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			sourceRef, _ := item["source_ref"].(string)

			data, contentType, err := deps.Fetcher.Fetch(ctx, provider, sourceRef)
			if err != nil {
				return fmt.Errorf("fetch media %s: %w", sourceRef, err)
			}
			if len(data) > maxMediaBytes {
				return fmt.Errorf("process_media: item %s exceeds max size", sourceRef)
			}

			kind := mediaKindFromContentType(contentType)
			assetID := uuid.NewString()
			key := fmt.Sprintf("media/%s/%s/%s%s", tenantID, leadID, assetID, extForContentType(contentType))

			if err := deps.Objects.Put(ctx, key, data, contentType); err != nil {
				return fmt.Errorf("store media %s: %w", sourceRef, err)
			}

			var expiresAt *time.Time
			if ttl > 0 {
				t := time.Now().Add(ttl)
				expiresAt = &t
			}
			asset := domain.MediaAsset{
				ID: assetID, TenantID: tenantID, LeadID: leadID, ChatID: chatID,
				Provider: provider, Kind: kind, ContentType: contentType,
				SizeBytes: int64(len(data)), S3Key: key, ExpiresAt: expiresAt,
			}
			if err := deps.Media.Insert(ctx, asset); err != nil {
				return fmt.Errorf("insert media asset: %w", err)
			}
		}
		return nil
	}
}

func mediaKindFromContentType(contentType string) domain.MediaKind {
	switch {
	case len(contentType) >= 6 && contentType[:6] == "image/":
		return domain.MediaImage
	case len(contentType) >= 6 && contentType[:6] == "video/":
		return domain.MediaVideo
	case len(contentType) >= 6 && contentType[:6] == "audio/":
		return domain.MediaAudio
	default:
		return domain.MediaDocument
	}
}

func extForContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "video/mp4":
		return ".mp4"
	default:
		return ""
	}
}

func notifyOperatorHandler(deps Deps) Handler {
	return func(ctx context.Context, job domain.Job) error {
		key := idempotencyKey(job)
		if key != "" {
			first, err := deps.Jobs.ReserveSideEffect(ctx, key)
			if err != nil {
				return fmt.Errorf("reserve notify_operator side effect: %w", err)
			}
			if !first {
				return nil
			}
		}

		leadID, _ := job.Payload["lead_id"].(string)
		lead, err := deps.Leads.Get(ctx, job.TenantID, leadID)
		if err != nil {
			return fmt.Errorf("load lead %s: %w", leadID, err)
		}
		features := deps.FeaturesFor(job.TenantID)
		text := notify.OperatorMessage(lead, features)
		return deps.Operator.SendOperatorMessage(ctx, job.TenantID, text)
	}
}

// notifyCrewFallbackHandler sends the crew fallback notification: it
// projects the lead through dispatch.BuildCrewLeadView before it ever
// reaches the renderer, so PII never enters the message.
func notifyCrewFallbackHandler(deps Deps) Handler {
	return func(ctx context.Context, job domain.Job) error {
		key := idempotencyKey(job)
		if key != "" {
			first, err := deps.Jobs.ReserveSideEffect(ctx, key)
			if err != nil {
				return fmt.Errorf("reserve notify_crew_fallback side effect: %w", err)
			}
			if !first {
				return nil
			}
		}

		leadID, _ := job.Payload["lead_id"].(string)
		lead, err := deps.Leads.Get(ctx, job.TenantID, leadID)
		if err != nil {
			return fmt.Errorf("load lead %s: %w", leadID, err)
		}
		view := dispatch.BuildCrewLeadView(lead)
		text := deps.Renderer.RenderCrewMessage(view, lead.Payload.Language)
		return deps.Crew.SendCrewMessage(ctx, job.TenantID, text)
	}
}

func idempotencyKey(job domain.Job) string {
	v, _ := job.Payload["idempotency_key"].(string)
	return v
}

// mediaCleanupHandler scans media_assets for rows past expires_at,
// deletes the object then the row. Idempotent.
func mediaCleanupHandler(deps Deps) Handler {
	return func(ctx context.Context, job domain.Job) error {
		const batchSize = 100
		assets, err := deps.Jobs.ExpiredMedia(ctx, batchSize)
		if err != nil {
			return fmt.Errorf("list expired media: %w", err)
		}
		for _, a := range assets {
			if err := deps.Objects.Delete(ctx, a.S3Key); err != nil {
				return fmt.Errorf("delete object %s: %w", a.S3Key, err)
			}
			if err := deps.Jobs.DeleteMediaAsset(ctx, a.ID); err != nil {
				return fmt.Errorf("delete media asset row %s: %w", a.ID, err)
			}
		}
		return nil
	}
}
