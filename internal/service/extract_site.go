package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/teampop/popcommerce/internal/config"
	"github.com/teampop/popcommerce/internal/domain"
	"github.com/teampop/popcommerce/internal/logger"
)

// SiteExtractor runs one whole-site prompt-driven extraction against a
// single seed URL and gets the structured product list back directly.
type SiteExtractor struct {
	client  *resty.Client
	baseURL string
}

// NewSiteExtractor creates the whole-site extraction strategy.
// Parameters:
//   - cfg: extraction configuration including API key and base URL.
// Returns:
//   - *SiteExtractor: initialized strategy.
func NewSiteExtractor(cfg *config.ExtractionConfig) *SiteExtractor {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(5 * time.Minute)

	return &SiteExtractor{
		client:  client,
		baseURL: cfg.BaseURL,
	}
}

// Name returns the strategy identifier.
func (e *SiteExtractor) Name() string { return "site" }

type siteExtractRequest struct {
	URLs   []string    `json:"urls"`
	Prompt string      `json:"prompt"`
	Schema interface{} `json:"schema,omitempty"`
}

type siteExtractResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Products []domain.ExtractedProduct `json:"products"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// productListSchema constrains the extraction output to the product
// shape the bulk indexer expects.
func productListSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"products": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"title":       map[string]interface{}{"type": "string"},
						"price":       map[string]interface{}{"type": "string"},
						"description": map[string]interface{}{"type": "string"},
						"image":       map[string]interface{}{"type": "string"},
						"url":         map[string]interface{}{"type": "string"},
					},
					"required": []string{"title", "url"},
				},
			},
		},
		"required": []string{"products"},
	}
}

// Extract runs the whole-site extraction.
func (e *SiteExtractor) Extract(ctx context.Context, siteDomain string) ([]domain.ExtractedProduct, error) {
	req := siteExtractRequest{
		URLs:   []string{siteDomain},
		Prompt: extractionPrompt,
		Schema: productListSchema(),
	}

	var result siteExtractResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post(e.baseURL + "/v1/extract")
	if err != nil {
		return nil, &ExtractionError{Domain: siteDomain, Err: err}
	}
	if resp.IsError() {
		return nil, &ExtractionError{
			Domain: siteDomain,
			Err:    fmt.Errorf("extraction API returned status %d: %s", resp.StatusCode(), resp.String()),
		}
	}
	if !result.Success && result.Error != "" {
		return nil, &ExtractionError{
			Domain: siteDomain,
			Err:    fmt.Errorf("extraction API error: %s", result.Error),
		}
	}

	products := normalizeProducts(result.Data.Products)
	if len(products) == 0 {
		return nil, &ExtractionError{Domain: siteDomain, Err: ErrNoProducts}
	}

	logger.CtxInfo(ctx, "Whole-site extraction finished: domain=%s, products=%d", siteDomain, len(products))
	return products, nil
}
