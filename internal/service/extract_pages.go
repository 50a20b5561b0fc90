package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/teampop/popcommerce/internal/config"
	"github.com/teampop/popcommerce/internal/domain"
	"github.com/teampop/popcommerce/internal/logger"
)

// PageCrawlExtractor crawls a bounded number of pages and extracts
// products per page. A page whose payload cannot be decoded is skipped;
// only a run with zero products overall fails.
type PageCrawlExtractor struct {
	client   *resty.Client
	baseURL  string
	maxPages int
}

// NewPageCrawlExtractor creates the bounded multi-page extraction
// strategy.
// Parameters:
//   - cfg: extraction configuration including API key and page limit.
// Returns:
//   - *PageCrawlExtractor: initialized strategy.
func NewPageCrawlExtractor(cfg *config.ExtractionConfig) *PageCrawlExtractor {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(10 * time.Minute)

	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 10
	}

	return &PageCrawlExtractor{
		client:   client,
		baseURL:  cfg.BaseURL,
		maxPages: maxPages,
	}
}

// Name returns the strategy identifier.
func (e *PageCrawlExtractor) Name() string { return "pages" }

type pageCrawlRequest struct {
	URL       string                 `json:"url"`
	Limit     int                    `json:"limit"`
	ScrapeOpt map[string]interface{} `json:"scrapeOptions"`
}

type pageCrawlResponse struct {
	Success bool        `json:"success"`
	Status  string      `json:"status"`
	Data    []crawlPage `json:"data"`
	Error   string      `json:"error,omitempty"`
}

type crawlPage struct {
	Metadata struct {
		SourceURL string `json:"sourceURL"`
	} `json:"metadata"`
	// Extract is either a structured object with a products array or a
	// JSON string holding that object; decodePage handles both.
	Extract json.RawMessage `json:"extract"`
}

type pageProducts struct {
	Products []domain.ExtractedProduct `json:"products"`
}

// decodePage resolves the per-page extraction payload. The backend
// returns either the structured object directly or the same object
// serialized as a JSON string.
func decodePage(raw json.RawMessage) (*pageProducts, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty extraction payload")
	}

	var structured pageProducts
	if err := json.Unmarshal(raw, &structured); err == nil {
		return &structured, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, fmt.Errorf("extraction payload is neither object nor string")
	}
	var nested pageProducts
	if err := json.Unmarshal([]byte(text), &nested); err != nil {
		return nil, fmt.Errorf("string extraction payload is not valid JSON: %w", err)
	}
	return &nested, nil
}

// Extract crawls up to maxPages pages of the site and aggregates the
// products found on each.
func (e *PageCrawlExtractor) Extract(ctx context.Context, siteDomain string) ([]domain.ExtractedProduct, error) {
	req := pageCrawlRequest{
		URL:   siteDomain,
		Limit: e.maxPages,
		ScrapeOpt: map[string]interface{}{
			"formats": []string{"extract"},
			"extract": map[string]interface{}{
				"prompt": extractionPrompt,
				"schema": productListSchema(),
			},
		},
	}

	var result pageCrawlResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post(e.baseURL + "/v1/crawl")
	if err != nil {
		return nil, &ExtractionError{Domain: siteDomain, Err: err}
	}
	if resp.IsError() {
		return nil, &ExtractionError{
			Domain: siteDomain,
			Err:    fmt.Errorf("crawl API returned status %d: %s", resp.StatusCode(), resp.String()),
		}
	}
	if !result.Success && result.Error != "" {
		return nil, &ExtractionError{
			Domain: siteDomain,
			Err:    fmt.Errorf("crawl API error: %s", result.Error),
		}
	}

	var all []domain.ExtractedProduct
	skipped := 0
	for _, page := range result.Data {
		decoded, err := decodePage(page.Extract)
		if err != nil {
			skipped++
			logger.CtxWarn(ctx, "Skipping page with undecodable extraction: url=%s, error=%v",
				page.Metadata.SourceURL, err)
			continue
		}
		all = append(all, decoded.Products...)
	}

	products := normalizeProducts(all)
	if len(products) == 0 {
		return nil, &ExtractionError{Domain: siteDomain, Err: ErrNoProducts}
	}

	logger.CtxInfo(ctx, "Page crawl extraction finished: domain=%s, pages=%d, skipped=%d, products=%d",
		siteDomain, len(result.Data), skipped, len(products))
	return products, nil
}
