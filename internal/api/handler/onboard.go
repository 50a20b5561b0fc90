package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/teampop/popcommerce/internal/repository"
	"github.com/teampop/popcommerce/internal/service"
)

// OnboardHandler handles merchant onboarding endpoints.
type OnboardHandler struct {
	onboardService *service.OnboardService
	tenantRepo     *repository.TenantRepository
}

// NewOnboardHandler creates a new onboard handler.
// Parameters:
//   - onboardService: onboarding pipeline service.
//   - tenantRepo: durable tenant registry, may be nil.
// Returns:
//   - *OnboardHandler: initialized handler.
func NewOnboardHandler(onboardService *service.OnboardService, tenantRepo *repository.TenantRepository) *OnboardHandler {
	return &OnboardHandler{
		onboardService: onboardService,
		tenantRepo:     tenantRepo,
	}
}

type onboardRequest struct {
	Domain   string `json:"domain" binding:"required"`
	TenantID string `json:"tenant_id"`
}

// StartOnboard handles POST /api/onboard.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *OnboardHandler) StartOnboard(c *gin.Context) {
	var req onboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}
	if strings.TrimSpace(req.Domain) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Field 'domain' must not be empty",
		})
		return
	}

	job := h.onboardService.StartOnboard(c.Request.Context(), req.Domain, req.TenantID)
	c.JSON(http.StatusAccepted, gin.H{
		"job_id":       job.ID,
		"tenant_id":    job.TenantID,
		"target_index": repository.DeriveIndexName(job.Domain),
		"status":       job.Status,
	})
}

// GetJob handles GET /api/job/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *OnboardHandler) GetJob(c *gin.Context) {
	job, err := h.onboardService.GetJob(c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Job not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get job: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListTenants handles GET /api/tenants.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *OnboardHandler) ListTenants(c *gin.Context) {
	if h.tenantRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Tenant registry is not configured",
		})
		return
	}

	tenants, err := h.tenantRepo.List(c.Request.Context(), 100, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list tenants: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tenants": tenants,
		"total":   len(tenants),
	})
}
