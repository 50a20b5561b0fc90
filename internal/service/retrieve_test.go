package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/teampop/popcommerce/internal/repository"
)

func newRetrieverAgainst(t *testing.T, handler http.Handler, topK int) *Retriever {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	elastic := repository.NewElasticRepository(&repository.ElasticConnectionConfig{URL: srv.URL})
	return NewRetriever(elastic, topK)
}

func TestRetrieveFormatsContext(t *testing.T) {
	r := newRetrieverAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hits": {"hits": [
			{"_source": {"title": "Red Runner", "url": "https://example.com/red", "body": "Bright red shoe."}},
			{"_source": {"title": "Blue Runner", "url": "https://example.com/blue", "body": "Deep blue shoe."}}
		]}}`))
	}), 3)

	block, sources, err := r.Retrieve(context.Background(), "crawl-example-com", "red shoes")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	if !strings.Contains(block, "--- SOURCE 1 ---\nTitle: Red Runner\nURL: https://example.com/red\nContent: Bright red shoe.\n") {
		t.Errorf("context block malformed:\n%s", block)
	}
	if !strings.Contains(block, "--- SOURCE 2 ---") {
		t.Errorf("second source missing:\n%s", block)
	}

	want := []string{"https://example.com/red", "https://example.com/blue"}
	if len(sources) != len(want) {
		t.Fatalf("sources = %v, want %v", sources, want)
	}
	for i := range want {
		if sources[i] != want[i] {
			t.Errorf("sources[%d] = %q, want %q (rank order)", i, sources[i], want[i])
		}
	}
}

func TestRetrieveMissingIndex(t *testing.T) {
	r := newRetrieverAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), 3)

	_, _, err := r.Retrieve(context.Background(), "crawl-missing", "anything")
	if !errors.Is(err, repository.ErrIndexNotFound) {
		t.Errorf("error = %v, want ErrIndexNotFound", err)
	}
}

func TestRetrieveBackendFailureDegrades(t *testing.T) {
	r := newRetrieverAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), 3)

	block, sources, err := r.Retrieve(context.Background(), "crawl-example-com", "anything")
	if err != nil {
		t.Errorf("backend failure should be swallowed, got %v", err)
	}
	if block != "" {
		t.Errorf("block = %q, want empty", block)
	}
	if len(sources) != 0 {
		t.Errorf("sources = %v, want empty", sources)
	}
}

func TestRetrieveNoHits(t *testing.T) {
	r := newRetrieverAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hits": {"hits": []}}`))
	}), 3)

	block, sources, err := r.Retrieve(context.Background(), "crawl-example-com", "unstocked thing")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if block != "" || len(sources) != 0 {
		t.Errorf("block=%q sources=%v, want empty", block, sources)
	}
}
