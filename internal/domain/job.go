package domain

import "time"

// JobStatus represents the status of an onboarding ingest job.
// Values include JobStatusPending, JobStatusProcessing, JobStatusCompleted, and JobStatusFailed.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IngestJob represents one asynchronous extraction+indexing run for a
// merchant domain. A job is created in pending state when onboarding is
// accepted; after that only the background task owning the job may
// transition its status. Jobs live in process memory and do not survive
// a restart.
type IngestJob struct {
	ID           string    `json:"job_id"`
	TenantID     string    `json:"tenant_id"`
	Domain       string    `json:"domain"`
	Status       JobStatus `json:"status"`
	ProductCount int       `json:"product_count"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
