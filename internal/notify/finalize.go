// Package notify builds the jobs and message formatting triggered by
// lead finalization: the operator notification, the crew fallback
// notification, and the inline-vs-link decision for attached media.
package notify

import (
	"time"

	"github.com/caravanleads/caravan/internal/config"
	"github.com/caravanleads/caravan/internal/domain"
)

// CrewFallbackDelay schedules the crew fallback job two seconds after
// finalization so the operator-notify job always sends first.
const CrewFallbackDelay = 2 * time.Second

// FinalizationJobs builds the notify_operator job and, if enabled for
// this tenant, the notify_crew_fallback job — both carrying fixed
// idempotency keys: "lead_id:notify_operator_v1" and
// "lead_id:crew_fallback_v1".
func FinalizationJobs(lead domain.Lead, features config.FeaturesConfig, now time.Time) []domain.Job {
	jobs := []domain.Job{
		{
			TenantID:    lead.TenantID,
			JobType:     domain.JobNotifyOperator,
			Payload:     map[string]any{"lead_id": lead.LeadID, "idempotency_key": lead.LeadID + ":notify_operator_v1"},
			Priority:    10,
			MaxAttempts: domain.DefaultMaxAttempts,
			ScheduledAt: now,
			CreatedAt:   now,
		},
	}

	if features.DispatchCrewFallbackEnabled {
		jobs = append(jobs, domain.Job{
			TenantID:    lead.TenantID,
			JobType:     domain.JobNotifyCrewFallback,
			Payload:     map[string]any{"lead_id": lead.LeadID, "idempotency_key": lead.LeadID + ":crew_fallback_v1"},
			Priority:    5,
			MaxAttempts: domain.DefaultMaxAttempts,
			ScheduledAt: now.Add(CrewFallbackDelay),
			CreatedAt:   now,
		})
	}

	return jobs
}

// MediaDeliveryMode selects between forwarding media inline or as a
// signed link, based on the tenant's max_inline_media_count threshold.
type MediaDeliveryMode int

const (
	MediaInline MediaDeliveryMode = iota
	MediaLink
)

// ChooseMediaDeliveryMode returns MediaInline when count does not
// exceed the configured threshold, MediaLink otherwise.
func ChooseMediaDeliveryMode(count, maxInlineMediaCount int) MediaDeliveryMode {
	if count <= maxInlineMediaCount {
		return MediaInline
	}
	return MediaLink
}
