package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teampop/popcommerce/internal/config"
	"github.com/teampop/popcommerce/internal/domain"
	"github.com/teampop/popcommerce/internal/repository"
)

func newCrawlerService(t *testing.T, binary string) (*CrawlerService, *repository.CrawlStore) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	elasticCfg := &config.ElasticConfig{URL: srv.URL, APIKey: "test-api-key"}
	elastic := repository.NewElasticRepository(&repository.ElasticConnectionConfig{URL: srv.URL})
	crawls := repository.NewCrawlStore()

	svc := NewCrawlerService(&config.CrawlerConfig{
		Binary:     binary,
		Image:      "crawler:test",
		MaxDepth:   2,
		ScratchDir: t.TempDir(),
	}, elasticCfg, elastic, crawls, nil)

	return svc, crawls
}

func TestRenderConfig(t *testing.T) {
	svc, _ := newCrawlerService(t, "true")

	out, err := svc.renderConfig("https://example.com", "crawl-example-com")
	if err != nil {
		t.Fatalf("renderConfig failed: %v", err)
	}

	var cfg crawlerConfig
	if err := yaml.Unmarshal(out, &cfg); err != nil {
		t.Fatalf("rendered config is not valid YAML: %v", err)
	}
	if len(cfg.Domains) != 1 || cfg.Domains[0].URL != "https://example.com" {
		t.Errorf("domains = %+v", cfg.Domains)
	}
	if cfg.OutputSink != "elasticsearch" {
		t.Errorf("output_sink = %q", cfg.OutputSink)
	}
	if cfg.OutputIndex != "crawl-example-com" {
		t.Errorf("output_index = %q", cfg.OutputIndex)
	}
	if cfg.MaxCrawlDepth != 2 {
		t.Errorf("max_crawl_depth = %d", cfg.MaxCrawlDepth)
	}
	if cfg.Elasticsearch.APIKey != "test-api-key" {
		t.Errorf("api_key = %q", cfg.Elasticsearch.APIKey)
	}
}

func waitForCrawl(t *testing.T, crawls *repository.CrawlStore, url string) *domain.CrawlStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, err := crawls.GetStatus(url)
		if err == nil &&
			(status.Status == domain.CrawlStateCompleted || status.Status == domain.CrawlStateFailed) {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("crawl did not settle in time")
	return nil
}

func TestStartCrawlRecordsPending(t *testing.T) {
	svc, crawls := newCrawlerService(t, "true")

	crawlID, index := svc.StartCrawl(context.Background(), "https://example.com")
	if crawlID == "" {
		t.Error("crawl id is empty")
	}
	if index != "crawl-example-com" {
		t.Errorf("index = %q, want crawl-example-com", index)
	}

	// Status exists immediately, before the background run settles
	if _, err := crawls.GetStatus("https://example.com"); err != nil {
		t.Errorf("no status recorded right after StartCrawl: %v", err)
	}

	status := waitForCrawl(t, crawls, "https://example.com")
	if status.Status != domain.CrawlStateCompleted {
		t.Errorf("status = %s (error=%q), want completed", status.Status, status.Error)
	}
	if status.Index != "crawl-example-com" {
		t.Errorf("status index = %q", status.Index)
	}
}

func TestStartCrawlFailureRecorded(t *testing.T) {
	svc, crawls := newCrawlerService(t, "false")

	svc.StartCrawl(context.Background(), "https://example.com")
	status := waitForCrawl(t, crawls, "https://example.com")

	if status.Status != domain.CrawlStateFailed {
		t.Errorf("status = %s, want failed", status.Status)
	}
	if status.Error == "" {
		t.Error("failed crawl has empty error message")
	}
}

func TestDocumentCountMissingIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	elastic := repository.NewElasticRepository(&repository.ElasticConnectionConfig{URL: srv.URL})
	svc := NewCrawlerService(&config.CrawlerConfig{ScratchDir: t.TempDir()},
		&config.ElasticConfig{URL: srv.URL}, elastic, repository.NewCrawlStore(), nil)

	index, count, err := svc.DocumentCount(context.Background(), "https://never-crawled.example")
	if err != nil {
		t.Fatalf("DocumentCount failed: %v", err)
	}
	if index != "crawl-never-crawled-example" {
		t.Errorf("index = %q", index)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 for missing index", count)
	}
}
