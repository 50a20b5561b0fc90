package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teampop/popcommerce/internal/repository"
	"github.com/teampop/popcommerce/internal/service"
)

// CrawlHandler handles container crawl endpoints.
type CrawlHandler struct {
	crawlerService *service.CrawlerService
}

// NewCrawlHandler creates a new crawl handler.
// Parameters:
//   - crawlerService: container crawl service.
// Returns:
//   - *CrawlHandler: initialized handler.
func NewCrawlHandler(crawlerService *service.CrawlerService) *CrawlHandler {
	return &CrawlHandler{
		crawlerService: crawlerService,
	}
}

type crawlRequest struct {
	URL string `json:"url" binding:"required"`
}

// StartCrawl handles POST /api/crawl.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *CrawlHandler) StartCrawl(c *gin.Context) {
	var req crawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	crawlID, index := h.crawlerService.StartCrawl(c.Request.Context(), req.URL)
	c.JSON(http.StatusAccepted, gin.H{
		"crawl_id":     crawlID,
		"target_index": index,
		"status":       "accepted",
	})
}

// GetStatus handles GET /api/crawl/status.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *CrawlHandler) GetStatus(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'url' is required",
		})
		return
	}

	status, err := h.crawlerService.Status(url)
	if err != nil {
		if errors.Is(err, repository.ErrCrawlNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "No crawl recorded for this URL",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get crawl status: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetCount handles GET /api/crawl/count.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *CrawlHandler) GetCount(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'url' is required",
		})
		return
	}

	index, count, err := h.crawlerService.DocumentCount(c.Request.Context(), url)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count documents: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"index": index,
		"count": count,
	})
}
