package domain

import "time"

// JobStatus is the lifecycle state of a queued job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// JobType identifies which handler executes a job.
type JobType string

const (
	JobOutboundReply       JobType = "outbound_reply"
	JobProcessMedia        JobType = "process_media"
	JobNotifyOperator      JobType = "notify_operator"
	JobNotifyCrewFallback  JobType = "notify_crew_fallback"
	JobMediaCleanup        JobType = "media_cleanup"
)

// DefaultMaxAttempts is the default retry ceiling for a job.
const DefaultMaxAttempts = 5

// Job is one row of the durable work queue.
type Job struct {
	ID             string                 `json:"id"`
	TenantID       string                 `json:"tenant_id"`
	JobType        JobType                `json:"job_type"`
	Payload        map[string]any         `json:"payload"`
	Status         JobStatus              `json:"status"`
	Priority       int                    `json:"priority"`
	Attempts       int                    `json:"attempts"`
	MaxAttempts    int                    `json:"max_attempts"`
	ScheduledAt    time.Time              `json:"scheduled_at"`
	StartedAt      *time.Time             `json:"started_at,omitempty"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`

	// LeaseExpiresAt is set once at claim time to now()+5m and is not
	// extended while the handler runs (there is no heartbeat). A periodic
	// sweep resets any row still "running" past this deadline back to
	// pending.
	LeaseExpiresAt *time.Time `json:"lease_expires_at,omitempty"`
}

// IdempotencyKey returns the job's embedded idempotency key, if any.
func (j Job) IdempotencyKey() string {
	v, _ := j.Payload["idempotency_key"].(string)
	return v
}

// WorkerRole selects which job types a worker process will claim.
type WorkerRole string

const (
	RoleCore     WorkerRole = "core"
	RoleDispatch WorkerRole = "dispatch"
	RoleAll      WorkerRole = "all"
)

// RoleJobTypes is the static role→handler-set map.
var RoleJobTypes = map[WorkerRole][]JobType{
	RoleCore:     {JobOutboundReply, JobProcessMedia, JobNotifyOperator},
	RoleDispatch: {JobNotifyCrewFallback},
}

// JobTypesForRole returns the job types a worker with the given role may
// claim. RoleAll is the union of every other role.
func JobTypesForRole(role WorkerRole) map[JobType]bool {
	out := map[JobType]bool{}
	if role == RoleAll {
		for _, types := range RoleJobTypes {
			for _, t := range types {
				out[t] = true
			}
		}
		return out
	}
	for _, t := range RoleJobTypes[role] {
		out[t] = true
	}
	return out
}
