// Package ingress is the single entry point a provider webhook calls
// into: it ties together inbound dedup, session load, engine stepping,
// optimistic session persistence, and lead finalization, with
// idempotent-replay and transient-error policies applied along the
// way. Nothing downstream of this package talks to a provider webhook
// directly.
package ingress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/caravanleads/caravan/internal/apperror"
	"github.com/caravanleads/caravan/internal/config"
	"github.com/caravanleads/caravan/internal/domain"
	"github.com/caravanleads/caravan/internal/notify"
	"github.com/caravanleads/caravan/internal/store"
	"github.com/caravanleads/caravan/internal/tenant"
)

// Stepper is the subset of *engine.Engine the coordinator drives. Kept
// as an interface so tests can substitute a scripted FSM.
type Stepper interface {
	Step(session domain.SessionState, ev domain.InputEvent) (domain.SessionState, domain.OutboundMessage, bool, error)
}

// FeaturesFor resolves per-tenant feature overrides (config.Config's
// ResolveFeatures).
type FeaturesFor func(tenantID string) config.FeaturesConfig

// maxUpsertRetries bounds the optimistic-concurrency retry loop for a
// single inbound event, resolved in-process rather than via the job
// queue since the retry is cheap and bounded.
const maxUpsertRetries = 3

// duplicateReplyText is returned verbatim for a message already
// recorded as received, short-circuiting before the engine ever runs.
const duplicateReplyText = "(duplicate ignored)"

// Coordinator is the webhook-facing orchestrator.
type Coordinator struct {
	Dedup    store.InboundDedupStore
	Sessions store.SessionStore
	Leads    store.LeadStore
	Jobs     store.JobStore
	Tenants  *tenant.Registry
	Engine   Stepper

	Features FeaturesFor

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// New builds a Coordinator with Now defaulted to time.Now.
func New(dedup store.InboundDedupStore, sessions store.SessionStore, leads store.LeadStore,
	jobs store.JobStore, tenants *tenant.Registry, eng Stepper, features FeaturesFor) *Coordinator {
	return &Coordinator{
		Dedup: dedup, Sessions: sessions, Leads: leads, Jobs: jobs,
		Tenants: tenants, Engine: eng, Features: features, Now: time.Now,
	}
}

// HandleEvent runs the request path end to end: resolve tenant,
// reserve the dedup key, load or create the session, step the engine,
// persist under an optimistic-concurrency guard, and on a terminal
// step finalize the lead and enqueue its notification jobs.
func (c *Coordinator) HandleEvent(ctx context.Context, ev domain.ProviderEvent) (domain.OutboundMessage, error) {
	tc, err := c.Tenants.Resolve(ctx, ev.Provider, ev.ProviderAccountID)
	if err != nil {
		return domain.OutboundMessage{}, err
	}

	rec := domain.InboundMessageRecord{TenantID: tc.TenantID, Provider: ev.Provider, MessageID: ev.MessageID}
	if err := c.Dedup.Reserve(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return domain.OutboundMessage{TenantID: tc.TenantID, ChatID: ev.ChatID, Text: duplicateReplyText}, nil
		}
		return domain.OutboundMessage{}, fmt.Errorf("reserve inbound message: %w", err)
	}

	input := domain.FromProviderEvent(ev)

	for attempt := 0; attempt < maxUpsertRetries; attempt++ {
		session, observedUpdatedAt, err := c.loadSession(ctx, tc.TenantID, ev.ChatID)
		if err != nil {
			return domain.OutboundMessage{}, fmt.Errorf("load session: %w", err)
		}

		next, reply, terminal, err := c.Engine.Step(session, input)
		if err != nil {
			return domain.OutboundMessage{}, apperror.New(apperror.KindInvariantViolation, err)
		}

		if terminal {
			if err := c.finalize(ctx, tc.TenantID, next); err != nil {
				return domain.OutboundMessage{}, fmt.Errorf("finalize lead: %w", err)
			}
			reply.TenantID = tc.TenantID
			reply.ChatID = ev.ChatID
			return reply, nil
		}

		if err := c.Sessions.Upsert(ctx, next, observedUpdatedAt); err != nil {
			if errors.Is(err, store.ErrConflict) {
				continue // re-fetch and retry the step on the fresher session
			}
			return domain.OutboundMessage{}, fmt.Errorf("persist session: %w", err)
		}

		if len(ev.Media) > 0 {
			if err := c.enqueueProcessMedia(ctx, tc.TenantID, next, ev); err != nil {
				return domain.OutboundMessage{}, fmt.Errorf("enqueue process_media: %w", err)
			}
		}

		reply.TenantID = tc.TenantID
		reply.ChatID = ev.ChatID
		return reply, nil
	}

	return domain.OutboundMessage{}, apperror.New(apperror.KindTransient, fmt.Errorf("session update lost the race %d times", maxUpsertRetries))
}

// enqueueProcessMedia schedules one process_media handler job carrying
// every media item attached to this inbound event. HandleEvent calls it
// after persisting any non-terminal step, whether or not the step
// advanced; the terminal (finalize) path does not call it.
func (c *Coordinator) enqueueProcessMedia(ctx context.Context, tenantID string, session domain.SessionState, ev domain.ProviderEvent) error {
	items := make([]map[string]any, 0, len(ev.Media))
	for _, m := range ev.Media {
		items = append(items, map[string]any{
			"source_ref":   m.SourceRef,
			"content_type": m.ContentType,
			"size_bytes":   m.SizeBytes,
		})
	}
	now := c.Now()
	job := domain.Job{
		TenantID: tenantID,
		JobType:  domain.JobProcessMedia,
		Payload: map[string]any{
			"chat_id":  session.ChatID,
			"lead_id":  session.LeadID,
			"provider": string(ev.Provider),
			"items":    items,
		},
		Priority:    1,
		MaxAttempts: domain.DefaultMaxAttempts,
		ScheduledAt: now,
		CreatedAt:   now,
	}
	return c.Jobs.Enqueue(ctx, job)
}

// loadSession returns the existing session and its updated_at, or a
// fresh zero-value session with a zero observedUpdatedAt when none
// exists yet (the sentinel SessionStore.Upsert treats as a first
// insert).
func (c *Coordinator) loadSession(ctx context.Context, tenantID, chatID string) (domain.SessionState, time.Time, error) {
	session, err := c.Sessions.Get(ctx, tenantID, chatID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.SessionState{TenantID: tenantID, ChatID: chatID}, time.Time{}, nil
	}
	if err != nil {
		return domain.SessionState{}, time.Time{}, err
	}
	return session, session.UpdatedAt, nil
}

// finalize runs the terminal transition: allocate the next global
// lead_seq, snapshot the session into a Lead row, enqueue the
// finalization jobs (notify_operator and, when enabled,
// notify_crew_fallback after a 2s delay), then delete the session row.
func (c *Coordinator) finalize(ctx context.Context, tenantID string, session domain.SessionState) error {
	seq, err := c.Leads.NextSeq(ctx)
	if err != nil {
		return fmt.Errorf("allocate lead_seq: %w", err)
	}

	leadID := session.LeadID
	if leadID == "" {
		leadID = uuid.NewString()
	}

	lead := domain.Lead{
		TenantID: tenantID,
		LeadID:   leadID,
		ChatID:   session.ChatID,
		LeadSeq:  seq,
		Status:   domain.LeadStatusNew,
		Payload: domain.LeadPayload{
			Data:         session.Data,
			Translations: session.Data.Translations,
			Language:     session.Language,
			LeadNumber:   int(seq),
		},
	}
	if session.Data.Estimate != nil {
		lead.Payload.Estimate = *session.Data.Estimate
	}

	if err := c.Leads.Insert(ctx, lead); err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}

	features := c.Features(tenantID)
	jobs := notify.FinalizationJobs(lead, features, c.Now())
	for _, job := range jobs {
		if err := c.Jobs.Enqueue(ctx, job); err != nil {
			return fmt.Errorf("enqueue %s job: %w", job.JobType, err)
		}
	}

	if err := c.Sessions.Delete(ctx, tenantID, session.ChatID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
