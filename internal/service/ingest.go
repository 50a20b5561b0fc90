package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/teampop/popcommerce/internal/domain"
	"github.com/teampop/popcommerce/internal/logger"
	"github.com/teampop/popcommerce/internal/repository"
)

// Indexer turns extracted products into search documents and submits
// them to the backend in one bulk request.
type Indexer struct {
	elastic *repository.ElasticRepository
}

// NewIndexer creates a new Indexer.
func NewIndexer(elastic *repository.ElasticRepository) *Indexer {
	return &Indexer{elastic: elastic}
}

// generateDeterministicDocID derives a stable document id from the
// tenant and product URL so re-ingesting the same catalog overwrites
// instead of duplicating.
func generateDeterministicDocID(tenantID, productURL string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(tenantID+":"+productURL)).String()
}

// IndexProducts writes the products into the tenant's index.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - index: destination index name.
//   - tenantID: tenant stamped onto every document.
//   - products: normalized products from extraction.
// Returns:
//   - int: number of documents submitted after URL dedup.
//   - error: *IndexingError when the bulk write fails.
func (ix *Indexer) IndexProducts(ctx context.Context, index, tenantID string, products []domain.ExtractedProduct) (int, error) {
	ix.elastic.EnsureIndex(ctx, index)

	docs := make([]repository.BulkDocument, 0, len(products))
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if _, dup := seen[p.URL]; dup {
			continue
		}
		seen[p.URL] = struct{}{}

		docs = append(docs, repository.BulkDocument{
			ID: generateDeterministicDocID(tenantID, p.URL),
			Doc: domain.IndexDocument{
				Title:           p.Title,
				Price:           p.Price,
				Description:     p.Description,
				Image:           p.Image,
				URL:             p.URL,
				ContentSemantic: p.Title + " " + p.Description,
				TenantID:        tenantID,
			},
		})
	}

	if err := ix.elastic.Bulk(ctx, index, docs); err != nil {
		return 0, &IndexingError{Index: index, Err: err}
	}

	logger.CtxInfo(ctx, "Indexed products: index=%s, submitted=%d, deduped=%d",
		index, len(docs), len(products)-len(docs))
	return len(docs), nil
}
