package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/teampop/popcommerce/internal/domain"
)

func newTestRepo(t *testing.T, handler http.Handler) *ElasticRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewElasticRepository(&ElasticConnectionConfig{URL: srv.URL})
}

func testDoc(title, url string) domain.IndexDocument {
	return domain.IndexDocument{
		Title:           title,
		URL:             url,
		ContentSemantic: title,
		TenantID:        "tenant-1",
	}
}

func TestCountDocumentsMissingIndex(t *testing.T) {
	repo := newTestRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	count, err := repo.CountDocuments(context.Background(), "crawl-missing")
	if err != nil {
		t.Fatalf("CountDocuments on missing index returned error: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestCountDocuments(t *testing.T) {
	repo := newTestRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/crawl-example-com/_count" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"count": 17})
	}))

	count, err := repo.CountDocuments(context.Background(), "crawl-example-com")
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 17 {
		t.Errorf("count = %d, want 17", count)
	}
}

func TestSearchHybridMissingIndex(t *testing.T) {
	repo := newTestRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := repo.SearchHybrid(context.Background(), "crawl-missing", "red shoes", 3)
	if !errors.Is(err, ErrIndexNotFound) {
		t.Errorf("SearchHybrid on missing index error = %v, want ErrIndexNotFound", err)
	}
}

func TestSearchHybrid(t *testing.T) {
	var gotBody map[string]interface{}
	repo := newTestRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/crawl-example-com/_search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"hits": {"hits": [
				{"_source": {"title": "Red Shoes", "url": "https://example.com/red", "body": "Bright red."}},
				{"_source": {"title": "Blue Shoes", "url": "https://example.com/blue", "body": "Deep blue."}}
			]}
		}`))
	}))

	hits, err := repo.SearchHybrid(context.Background(), "crawl-example-com", "red shoes", 2)
	if err != nil {
		t.Fatalf("SearchHybrid failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].Title != "Red Shoes" || hits[0].URL != "https://example.com/red" {
		t.Errorf("first hit = %+v", hits[0])
	}

	// Request body carries the fused retriever and size
	if _, ok := gotBody["retriever"].(map[string]interface{})["rrf"]; !ok {
		t.Error("request body missing rrf retriever")
	}
	if size, _ := gotBody["size"].(float64); int(size) != 2 {
		t.Errorf("size = %v, want 2", gotBody["size"])
	}
}

func TestEnsureIndexIdempotent(t *testing.T) {
	var creates int
	repo := newTestRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusOK)
		case http.MethodPut:
			creates++
			w.WriteHeader(http.StatusOK)
		}
	}))

	ctx := context.Background()
	repo.EnsureIndex(ctx, "crawl-example-com")
	repo.EnsureIndex(ctx, "crawl-example-com")

	if creates != 0 {
		t.Errorf("EnsureIndex created existing index %d times", creates)
	}
}

func TestEnsureIndexCreatesMissing(t *testing.T) {
	var createBody map[string]interface{}
	repo := newTestRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			json.NewDecoder(r.Body).Decode(&createBody)
			w.WriteHeader(http.StatusOK)
		}
	}))

	repo.EnsureIndex(context.Background(), "crawl-example-com")

	if createBody == nil {
		t.Fatal("EnsureIndex did not create the missing index")
	}
	mappings, _ := createBody["mappings"].(map[string]interface{})
	props, _ := mappings["properties"].(map[string]interface{})
	semantic, ok := props["content_semantic"].(map[string]interface{})
	if !ok {
		t.Fatal("mappings missing content_semantic field")
	}
	if semantic["type"] != "semantic_text" {
		t.Errorf("content_semantic type = %v, want semantic_text", semantic["type"])
	}
	if semantic["inference_id"] != ".elser-2-elastic" {
		t.Errorf("inference_id = %v, want .elser-2-elastic", semantic["inference_id"])
	}
}

func TestBulkNDJSON(t *testing.T) {
	var body string
	repo := newTestRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("failed to read bulk body: %v", err)
		}
		body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errors": false, "items": []}`))
	}))

	docs := []BulkDocument{
		{ID: "id-1", Doc: testDoc("Red Shoes", "https://example.com/red")},
		{ID: "id-2", Doc: testDoc("Blue Shoes", "https://example.com/blue")},
	}
	if err := repo.Bulk(context.Background(), "crawl-example-com", docs); err != nil {
		t.Fatalf("Bulk failed: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(body, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("bulk body has %d lines, want 4 (action+source per doc)", len(lines))
	}
	if !strings.Contains(lines[0], `"_id":"id-1"`) {
		t.Errorf("first action line missing id: %s", lines[0])
	}
}

func TestBulkItemError(t *testing.T) {
	repo := newTestRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errors": true, "items": [
			{"index": {"status": 400, "error": {"type": "mapper_parsing_exception", "reason": "bad field"}}}
		]}`))
	}))

	docs := []BulkDocument{{ID: "id-1", Doc: testDoc("X", "https://example.com/x")}}
	err := repo.Bulk(context.Background(), "crawl-example-com", docs)
	if err == nil {
		t.Fatal("Bulk with item errors returned nil")
	}
	if !strings.Contains(err.Error(), "mapper_parsing_exception") {
		t.Errorf("error does not surface item failure: %v", err)
	}
}

func TestBulkEmpty(t *testing.T) {
	repo := newTestRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty bulk should not hit the backend")
	}))

	if err := repo.Bulk(context.Background(), "crawl-example-com", nil); err != nil {
		t.Errorf("Bulk(nil) returned error: %v", err)
	}
}
