package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/teampop/popcommerce/internal/config"
	"github.com/teampop/popcommerce/internal/domain"
	"github.com/teampop/popcommerce/internal/logger"
	"github.com/teampop/popcommerce/internal/repository"
	"github.com/teampop/popcommerce/internal/storage"
)

// CrawlerService runs full-site content crawls in the Elastic Open
// Crawler container and tracks their progress per target URL.
type CrawlerService struct {
	cfg        *config.CrawlerConfig
	elasticCfg *config.ElasticConfig
	elastic    *repository.ElasticRepository
	crawls     *repository.CrawlStore
	archive    storage.ObjectStorage // nil disables log archival
}

// NewCrawlerService creates a new CrawlerService.
// Parameters:
//   - cfg: crawler configuration including container image and scratch dir.
//   - elasticCfg: search backend connection the crawler writes into.
//   - elastic: repository used to pre-create the destination index.
//   - crawls: in-memory crawl status store.
//   - archive: optional object storage for captured crawl logs; nil disables archival.
// Returns:
//   - *CrawlerService: initialized service.
func NewCrawlerService(
	cfg *config.CrawlerConfig,
	elasticCfg *config.ElasticConfig,
	elastic *repository.ElasticRepository,
	crawls *repository.CrawlStore,
	archive storage.ObjectStorage,
) *CrawlerService {
	return &CrawlerService{
		cfg:        cfg,
		elasticCfg: elasticCfg,
		elastic:    elastic,
		crawls:     crawls,
		archive:    archive,
	}
}

// StartCrawl records the crawl as pending and launches it in the
// background. The crawl id and destination index name are returned
// immediately so callers can poll document counts while the crawl runs.
// Parameters:
//   - ctx: request context, used for log fields only; the crawl itself
//     runs on a detached context.
//   - url: crawl seed URL.
// Returns:
//   - string: crawl id for log correlation.
//   - string: derived destination index name.
func (s *CrawlerService) StartCrawl(ctx context.Context, url string) (string, string) {
	index := repository.DeriveIndexName(url)
	crawlID := uuid.New().String()

	s.crawls.SetStatus(url, domain.CrawlStatePending, index, "")
	logger.CtxInfo(ctx, "Crawl accepted: url=%s, index=%s, crawl_id=%s", url, index, crawlID)

	// Outlives the HTTP request on purpose
	bgCtx := logger.SetCrawlID(context.Background(), crawlID)
	bgCtx = logger.SetComponent(bgCtx, "crawler")
	go s.runCrawl(bgCtx, crawlID, url, index)

	return crawlID, index
}

// Status returns the recorded crawl state for a URL.
func (s *CrawlerService) Status(url string) (*domain.CrawlStatus, error) {
	return s.crawls.GetStatus(url)
}

// DocumentCount reports how many documents the crawl has indexed so
// far for a URL's derived index. A missing index counts as zero.
func (s *CrawlerService) DocumentCount(ctx context.Context, url string) (string, int, error) {
	index := repository.DeriveIndexName(url)
	count, err := s.elastic.CountDocuments(ctx, index)
	if err != nil {
		return index, 0, err
	}
	return index, count, nil
}

func (s *CrawlerService) runCrawl(ctx context.Context, crawlID, url, index string) {
	s.crawls.SetStatus(url, domain.CrawlStateRunning, index, "")

	start := time.Now()
	logText, err := s.execute(ctx, crawlID, url, index)

	if s.archive != nil && logText != "" {
		s.archiveLog(ctx, crawlID, logText)
	}

	if err != nil {
		logger.CtxError(ctx, "Crawl failed: url=%s, error=%v", url, err)
		s.crawls.SetStatus(url, domain.CrawlStateFailed, index, err.Error())
		return
	}

	logger.CtxInfo(ctx, "Crawl completed: url=%s, index=%s, duration_ms=%d",
		url, index, time.Since(start).Milliseconds())
	s.crawls.SetStatus(url, domain.CrawlStateCompleted, index, "")
}

// execute prepares the scratch config, runs the crawler container and
// returns its combined output. The scratch directory is removed even
// when the run fails.
func (s *CrawlerService) execute(ctx context.Context, crawlID, url, index string) (string, error) {
	// Pre-create the index so the semantic field mapping exists before
	// the crawler's first write can auto-create a plain one.
	s.elastic.EnsureIndex(ctx, index)

	scratch := filepath.Join(s.cfg.ScratchDir, crawlID)
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return "", fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logger.CtxWarn(ctx, "Failed to remove scratch dir %s: %v", scratch, err)
		}
	}()

	cfgBytes, err := s.renderConfig(url, index)
	if err != nil {
		return "", err
	}
	cfgPath := filepath.Join(scratch, "crawler.yml")
	if err := os.WriteFile(cfgPath, cfgBytes, 0o644); err != nil {
		return "", fmt.Errorf("failed to write crawler config: %w", err)
	}

	absScratch, err := filepath.Abs(scratch)
	if err != nil {
		return "", fmt.Errorf("failed to resolve scratch dir: %w", err)
	}

	cmd := exec.CommandContext(ctx, s.cfg.Binary,
		"run", "--rm",
		"--network", "host",
		"-v", absScratch+":/crawl-config",
		s.cfg.Image,
		"ruby", "bin/crawler", "crawl", "/crawl-config/crawler.yml",
	)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	logger.CtxInfo(ctx, "Launching crawler container: image=%s, url=%s", s.cfg.Image, url)
	runErr := cmd.Run()
	logText := out.String()

	if runErr != nil {
		exitCode := -1
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return logText, &CrawlExecutionError{ExitCode: exitCode, Log: logText}
	}

	return logText, nil
}

// crawlerConfig mirrors the Elastic Open Crawler's YAML configuration.
type crawlerConfig struct {
	Domains       []crawlerDomain `yaml:"domains"`
	OutputSink    string          `yaml:"output_sink"`
	OutputIndex   string          `yaml:"output_index"`
	MaxCrawlDepth int             `yaml:"max_crawl_depth,omitempty"`
	Elasticsearch crawlerBackend  `yaml:"elasticsearch"`
}

type crawlerDomain struct {
	URL string `yaml:"url"`
}

type crawlerBackend struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key,omitempty"`
}

func (s *CrawlerService) renderConfig(url, index string) ([]byte, error) {
	cfg := crawlerConfig{
		Domains:       []crawlerDomain{{URL: url}},
		OutputSink:    "elasticsearch",
		OutputIndex:   index,
		MaxCrawlDepth: s.cfg.MaxDepth,
		Elasticsearch: crawlerBackend{
			Host:   s.elasticCfg.URL,
			APIKey: s.elasticCfg.APIKey,
		},
	}

	out, err := yaml.Marshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to render crawler config: %w", err)
	}
	return out, nil
}

// archiveLog uploads the captured crawl output for later inspection.
// Failures are logged and swallowed; archival never fails a crawl.
func (s *CrawlerService) archiveLog(ctx context.Context, crawlID, logText string) {
	key := fmt.Sprintf("crawl-logs/%s/%s.log", time.Now().UTC().Format("2006-01-02"), crawlID)
	reader := bytes.NewReader([]byte(logText))
	if err := s.archive.Upload(ctx, key, reader, int64(len(logText)), "text/plain"); err != nil {
		logger.CtxWarn(ctx, "Failed to archive crawl log: key=%s, error=%v", key, err)
		return
	}
	logger.CtxInfo(ctx, "Crawl log archived: url=%s", s.archive.GetURL(key))
}
