package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teampop/popcommerce/internal/logger"
	"github.com/teampop/popcommerce/internal/repository"
)

// Retriever fetches grounding context for chat answers from a tenant's
// crawl index.
type Retriever struct {
	elastic *repository.ElasticRepository
	topK    int
}

// NewRetriever creates a new Retriever.
// Parameters:
//   - elastic: search backend repository.
//   - topK: number of fused hits per query; values below 1 fall back to 3.
// Returns:
//   - *Retriever: initialized retriever.
func NewRetriever(elastic *repository.ElasticRepository, topK int) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{elastic: elastic, topK: topK}
}

// Retrieve runs the hybrid query and formats the hits into a context
// block plus the rank-ordered source URLs. Backend failures degrade to
// empty context so the assistant can still answer from general
// knowledge; a missing index is the exception and is returned so the
// caller can tell the shopper to crawl first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - index: crawl index to query.
//   - query: the shopper's question.
// Returns:
//   - string: formatted context block, empty when nothing was found.
//   - []string: source URLs in fused-relevance order.
//   - error: repository.ErrIndexNotFound when the index does not exist.
func (r *Retriever) Retrieve(ctx context.Context, index, query string) (string, []string, error) {
	hits, err := r.elastic.SearchHybrid(ctx, index, query, r.topK)
	if err != nil {
		if errors.Is(err, repository.ErrIndexNotFound) {
			return "", nil, err
		}
		logger.CtxWarn(ctx, "Retrieval failed, answering without context: index=%s, error=%v", index, err)
		return "", nil, nil
	}
	if len(hits) == 0 {
		return "", nil, nil
	}

	var sb strings.Builder
	sources := make([]string, 0, len(hits))
	for i, hit := range hits {
		fmt.Fprintf(&sb, "--- SOURCE %d ---\nTitle: %s\nURL: %s\nContent: %s\n",
			i+1, hit.Title, hit.URL, hit.Body)
		sources = append(sources, hit.URL)
	}

	logger.CtxDebug(ctx, "Retrieved context: index=%s, hits=%d", index, len(hits))
	return sb.String(), sources, nil
}
