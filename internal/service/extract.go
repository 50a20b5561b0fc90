package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/teampop/popcommerce/internal/config"
	"github.com/teampop/popcommerce/internal/domain"
)

// Extractor pulls a normalized product catalog out of a merchant site.
// Implementations are selected by configuration, never by conditional
// dispatch in callers.
type Extractor interface {
	// Name returns the strategy identifier used in config and logs.
	Name() string

	// Extract returns the site's products. A run that finds zero
	// products fails with ErrNoProducts wrapped in an ExtractionError.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - siteDomain: merchant domain or seed URL.
	// Returns:
	//   - []domain.ExtractedProduct: normalized products.
	//   - error: non-nil when extraction fails or finds nothing.
	Extract(ctx context.Context, siteDomain string) ([]domain.ExtractedProduct, error)
}

// NewExtractor builds the extraction strategy named by the config.
// Parameters:
//   - cfg: extraction configuration including strategy name and API access.
// Returns:
//   - Extractor: selected strategy.
//   - error: non-nil for an unknown strategy name.
func NewExtractor(cfg *config.ExtractionConfig) (Extractor, error) {
	switch cfg.Strategy {
	case "", "site":
		return NewSiteExtractor(cfg), nil
	case "pages":
		return NewPageCrawlExtractor(cfg), nil
	default:
		return nil, fmt.Errorf("unknown extraction strategy: %s", cfg.Strategy)
	}
}

// extractionPrompt instructs the extraction backend what to pull from
// each page. Price stays a display string so the source's currency
// formatting survives.
const extractionPrompt = `Extract every product on this site. For each product return ` +
	`title, price (keep the currency formatting exactly as shown), description, ` +
	`image (absolute URL, empty if missing) and url (the product page URL).`

// normalizeProducts drops entries without a product URL (the dedup key)
// and trims whitespace from the surviving fields.
func normalizeProducts(raw []domain.ExtractedProduct) []domain.ExtractedProduct {
	out := make([]domain.ExtractedProduct, 0, len(raw))
	for _, p := range raw {
		p.URL = strings.TrimSpace(p.URL)
		if p.URL == "" {
			continue
		}
		p.Title = strings.TrimSpace(p.Title)
		p.Price = strings.TrimSpace(p.Price)
		p.Description = strings.TrimSpace(p.Description)
		p.Image = strings.TrimSpace(p.Image)
		out = append(out, p)
	}
	return out
}
