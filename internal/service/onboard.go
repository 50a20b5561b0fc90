package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teampop/popcommerce/internal/domain"
	"github.com/teampop/popcommerce/internal/logger"
	"github.com/teampop/popcommerce/internal/repository"
)

// OnboardService runs the extract-then-index onboarding pipeline for a
// merchant domain as a fire-and-forget background job.
type OnboardService struct {
	extractor Extractor
	indexer   *Indexer
	jobs      *repository.JobStore
	tenants   *repository.TenantRepository
}

// NewOnboardService creates a new OnboardService.
// Parameters:
//   - extractor: configured extraction strategy.
//   - indexer: bulk product indexer.
//   - jobs: in-memory job store.
//   - tenants: durable tenant registry; nil disables registration.
// Returns:
//   - *OnboardService: initialized service.
func NewOnboardService(
	extractor Extractor,
	indexer *Indexer,
	jobs *repository.JobStore,
	tenants *repository.TenantRepository,
) *OnboardService {
	return &OnboardService{
		extractor: extractor,
		indexer:   indexer,
		jobs:      jobs,
		tenants:   tenants,
	}
}

// StartOnboard accepts an onboarding request and returns immediately
// with the pending job. The pipeline runs on a detached context so the
// caller's request ending cannot cancel it.
// Parameters:
//   - ctx: request context, used for log fields only.
//   - siteDomain: merchant domain or seed URL to onboard.
//   - tenantID: existing tenant to re-onboard under, empty for a new one.
// Returns:
//   - *domain.IngestJob: pending job snapshot including tenant id.
func (s *OnboardService) StartOnboard(ctx context.Context, siteDomain, tenantID string) *domain.IngestJob {
	siteDomain = strings.TrimSpace(siteDomain)
	if tenantID == "" {
		tenantID = uuid.New().String()
	}
	jobID := s.jobs.CreateJob(tenantID, siteDomain)

	logger.CtxInfo(ctx, "Onboarding accepted: domain=%s, tenant_id=%s, job_id=%s, strategy=%s",
		siteDomain, tenantID, jobID, s.extractor.Name())

	bgCtx := logger.SetJobID(context.Background(), jobID)
	bgCtx = logger.SetComponent(bgCtx, "onboard")
	go s.runPipeline(bgCtx, jobID, tenantID, siteDomain)

	job, _ := s.jobs.GetJob(jobID)
	return job
}

// GetJob returns the current snapshot of a job.
func (s *OnboardService) GetJob(id string) (*domain.IngestJob, error) {
	return s.jobs.GetJob(id)
}

func (s *OnboardService) runPipeline(ctx context.Context, jobID, tenantID, siteDomain string) {
	start := time.Now()
	_ = s.jobs.UpdateJob(jobID, domain.JobStatusProcessing, -1, "")

	products, err := s.extractor.Extract(ctx, siteDomain)
	if err != nil {
		logger.CtxError(ctx, "Onboarding failed during extraction: domain=%s, error=%v", siteDomain, err)
		_ = s.jobs.UpdateJob(jobID, domain.JobStatusFailed, 0, err.Error())
		return
	}

	index := repository.DeriveIndexName(siteDomain)
	count, err := s.indexer.IndexProducts(ctx, index, tenantID, products)
	if err != nil {
		logger.CtxError(ctx, "Onboarding failed during indexing: domain=%s, error=%v", siteDomain, err)
		_ = s.jobs.UpdateJob(jobID, domain.JobStatusFailed, 0, err.Error())
		return
	}

	if s.tenants != nil {
		tenant := &domain.Tenant{
			ID:           tenantID,
			Domain:       siteDomain,
			IndexName:    index,
			ProductCount: count,
		}
		if err := s.tenants.Upsert(ctx, tenant); err != nil {
			// Search data is live; losing the registry row is recoverable
			logger.CtxWarn(ctx, "Failed to register tenant: domain=%s, error=%v", siteDomain, err)
		}
	}

	_ = s.jobs.UpdateJob(jobID, domain.JobStatusCompleted, count, "")
	logger.CtxInfo(ctx, "Onboarding completed: domain=%s, products=%d, duration_ms=%d",
		siteDomain, count, time.Since(start).Milliseconds())
}
