package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/teampop/popcommerce/internal/domain"
	"github.com/teampop/popcommerce/internal/logger"
)

// ErrIndexNotFound reports a query against an index that does not
// exist. Callers that only care about "no knowledge" may ignore it;
// the chat path uses it to tell the shopper to crawl the site first.
var ErrIndexNotFound = errors.New("search index not found")

// ElasticConnectionConfig holds configuration for the search backend connection.
type ElasticConnectionConfig struct {
	URL         string
	APIKey      string // API key auth; empty for unsecured local clusters
	InferenceID string // inference profile backing the semantic field
}

// ElasticRepository talks to the Elasticsearch REST API. Index
// management, bulk writes and hybrid retrieval all go through it.
type ElasticRepository struct {
	client      *resty.Client
	inferenceID string
}

// NewElasticRepository creates a new ElasticRepository.
func NewElasticRepository(cfg *ElasticConnectionConfig) *ElasticRepository {
	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(cfg.URL, "/"))
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(30 * time.Second)
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "ApiKey "+cfg.APIKey)
	}

	inferenceID := cfg.InferenceID
	if inferenceID == "" {
		inferenceID = ".elser-2-elastic"
	}

	return &ElasticRepository{
		client:      client,
		inferenceID: inferenceID,
	}
}

// IndexExists reports whether the named index exists.
func (r *ElasticRepository) IndexExists(ctx context.Context, index string) (bool, error) {
	resp, err := r.client.R().SetContext(ctx).Head("/" + index)
	if err != nil {
		return false, fmt.Errorf("failed to check index %s: %w", index, err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status %d checking index %s", resp.StatusCode(), index)
	}
}

// indexMappings is the field schema every crawl index shares: keyword
// url, lexical text fields copied into the semantic field, and the
// semantic field bound to the configured inference profile.
func (r *ElasticRepository) indexMappings() map[string]interface{} {
	return map[string]interface{}{
		"properties": map[string]interface{}{
			"title": map[string]interface{}{
				"type":    "text",
				"copy_to": "content_semantic",
			},
			"body": map[string]interface{}{
				"type":    "text",
				"copy_to": "content_semantic",
			},
			"headings": map[string]interface{}{
				"type": "text",
			},
			"description": map[string]interface{}{
				"type":    "text",
				"copy_to": "content_semantic",
			},
			"price": map[string]interface{}{
				"type": "keyword",
			},
			"url": map[string]interface{}{
				"type": "keyword",
			},
			"tenant_id": map[string]interface{}{
				"type": "keyword",
			},
			"content_semantic": map[string]interface{}{
				"type":         "semantic_text",
				"inference_id": r.inferenceID,
			},
		},
	}
}

// CreateIndex creates the named index with the shared schema.
func (r *ElasticRepository) CreateIndex(ctx context.Context, index string) error {
	body := map[string]interface{}{"mappings": r.indexMappings()}

	resp, err := r.client.R().SetContext(ctx).SetBody(body).Put("/" + index)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", index, err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to create index %s: status %d: %s", index, resp.StatusCode(), resp.String())
	}
	return nil
}

// EnsureIndex creates the index if it does not exist. Creation is
// best-effort: failures are logged as warnings and never propagated so
// a flaky cluster cannot abort the caller's crawl.
func (r *ElasticRepository) EnsureIndex(ctx context.Context, index string) {
	exists, err := r.IndexExists(ctx, index)
	if err != nil {
		logger.CtxWarn(ctx, "Failed to check index existence: index=%s, error=%v", index, err)
		return
	}
	if exists {
		logger.CtxDebug(ctx, "Index already exists: index=%s", index)
		return
	}
	if err := r.CreateIndex(ctx, index); err != nil {
		logger.CtxWarn(ctx, "Failed to create index: index=%s, error=%v", index, err)
		return
	}
	logger.CtxInfo(ctx, "Created index: index=%s", index)
}

type countResponse struct {
	Count int `json:"count"`
}

// CountDocuments returns the number of documents in the index, or 0
// when the index does not exist.
func (r *ElasticRepository) CountDocuments(ctx context.Context, index string) (int, error) {
	var result countResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/" + index + "/_count")
	if err != nil {
		return 0, fmt.Errorf("failed to count documents in %s: %w", index, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return 0, nil
	}
	if resp.IsError() {
		return 0, fmt.Errorf("failed to count documents in %s: status %d", index, resp.StatusCode())
	}
	return result.Count, nil
}

// BulkDocument pairs an index document with its stable id.
type BulkDocument struct {
	ID  string
	Doc domain.IndexDocument
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

// Bulk submits all documents as a single _bulk request. Stable ids make
// the operation idempotent: re-submitting the same batch overwrites
// rather than duplicates.
func (r *ElasticRepository) Bulk(ctx context.Context, index string, docs []BulkDocument) error {
	if len(docs) == 0 {
		return nil
	}

	var sb strings.Builder
	for _, d := range docs {
		action, err := json.Marshal(map[string]interface{}{
			"index": map[string]string{"_index": index, "_id": d.ID},
		})
		if err != nil {
			return fmt.Errorf("failed to marshal bulk action: %w", err)
		}
		source, err := json.Marshal(d.Doc)
		if err != nil {
			return fmt.Errorf("failed to marshal document %s: %w", d.ID, err)
		}
		sb.Write(action)
		sb.WriteByte('\n')
		sb.Write(source)
		sb.WriteByte('\n')
	}

	var result bulkResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-ndjson").
		SetBody(sb.String()).
		SetResult(&result).
		Post("/_bulk")
	if err != nil {
		return fmt.Errorf("bulk request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("bulk request failed: status %d: %s", resp.StatusCode(), resp.String())
	}
	if result.Errors {
		for _, item := range result.Items {
			for _, op := range item {
				if op.Error != nil {
					return fmt.Errorf("bulk indexing failed: %s: %s", op.Error.Type, op.Error.Reason)
				}
			}
		}
		return fmt.Errorf("bulk indexing reported errors")
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source struct {
				Title string `json:"title"`
				Body  string `json:"body"`
				URL   string `json:"url"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchHybrid runs a fused lexical+semantic query against the index
// and returns the top-k hits in fused-relevance order. A missing index
// maps to ErrIndexNotFound.
func (r *ElasticRepository) SearchHybrid(ctx context.Context, index, query string, k int) ([]domain.RetrievalHit, error) {
	if k <= 0 {
		k = 3
	}

	body := map[string]interface{}{
		"retriever": map[string]interface{}{
			"rrf": map[string]interface{}{
				"retrievers": []interface{}{
					map[string]interface{}{
						"standard": map[string]interface{}{
							"query": map[string]interface{}{
								"multi_match": map[string]interface{}{
									"query":  query,
									"fields": []string{"title", "body", "headings"},
								},
							},
						},
					},
					map[string]interface{}{
						"standard": map[string]interface{}{
							"query": map[string]interface{}{
								"semantic": map[string]interface{}{
									"field": "content_semantic",
									"query": query,
								},
							},
						},
					},
				},
			},
		},
		"_source": []string{"body", "url", "title"},
		"size":    k,
	}

	var result searchResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post("/" + index + "/_search")
	if err != nil {
		return nil, fmt.Errorf("search on %s failed: %w", index, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("search on %s failed: %w", index, ErrIndexNotFound)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("search on %s failed: status %d: %s", index, resp.StatusCode(), resp.String())
	}

	hits := make([]domain.RetrievalHit, len(result.Hits.Hits))
	for i, h := range result.Hits.Hits {
		hits[i] = domain.RetrievalHit{
			Title: h.Source.Title,
			URL:   h.Source.URL,
			Body:  h.Source.Body,
		}
	}
	return hits, nil
}
