package repository

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/teampop/popcommerce/internal/domain"
)

// ErrJobNotFound reports a lookup for an unknown job id.
var ErrJobNotFound = errors.New("ingest job not found")

// JobStore tracks onboarding ingest jobs by id. It is process-local and
// unbounded: job volume is low and the store is not a durable ledger.
// After creation each job has a single writer (the background task that
// owns it); concurrent readers only observe.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.IngestJob
}

// NewJobStore creates an empty job store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]*domain.IngestJob),
	}
}

// CreateJob inserts a fresh pending job and returns its id.
// Parameters:
//   - tenantID: merchant tenant owning the job.
//   - siteDomain: domain being onboarded.
// Returns:
//   - string: opaque unique job id.
func (s *JobStore) CreateJob(tenantID, siteDomain string) string {
	job := &domain.IngestJob{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Domain:    siteDomain,
		Status:    domain.JobStatusPending,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	return job.ID
}

// GetJob returns a copy of the job with the given id.
// Parameters:
//   - id: job id from CreateJob.
// Returns:
//   - *domain.IngestJob: snapshot of the job.
//   - error: ErrJobNotFound when the id is unknown.
func (s *JobStore) GetJob(id string) (*domain.IngestJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	snapshot := *job
	return &snapshot, nil
}

// UpdateJob transitions a job's status. Only the background task owning
// the job may call this; productCount below zero leaves the stored
// count untouched.
// Parameters:
//   - id: job id.
//   - status: new lifecycle status.
//   - productCount: number of products indexed, or -1 to keep current.
//   - errMsg: failure message, empty for success paths.
// Returns:
//   - error: ErrJobNotFound when the id is unknown.
func (s *JobStore) UpdateJob(id string, status domain.JobStatus, productCount int, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	job.Status = status
	if productCount >= 0 {
		job.ProductCount = productCount
	}
	if errMsg != "" {
		job.Error = errMsg
	}
	return nil
}
