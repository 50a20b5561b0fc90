package repository

import (
	"errors"
	"strings"
	"sync"

	"github.com/teampop/popcommerce/internal/domain"
)

// ErrCrawlNotFound reports a status lookup for a URL never crawled.
var ErrCrawlNotFound = errors.New("no crawl recorded for url")

// CrawlStore tracks container crawls keyed by normalized target URL.
// One record per URL; later writes overwrite earlier ones.
type CrawlStore struct {
	mu      sync.RWMutex
	records map[string]domain.CrawlStatus
}

// NewCrawlStore creates an empty crawl status store.
func NewCrawlStore() *CrawlStore {
	return &CrawlStore{
		records: make(map[string]domain.CrawlStatus),
	}
}

// normalizeURL strips one trailing slash so "https://x.com/" and
// "https://x.com" address the same record.
func normalizeURL(url string) string {
	return strings.TrimSuffix(url, "/")
}

// SetStatus records the crawl state for a URL, overwriting any
// previous record.
// Parameters:
//   - url: crawl target URL (normalized before use).
//   - status: crawl state to record.
//   - index: destination index name, empty when not yet known.
//   - errMsg: failure message, empty on success paths.
func (s *CrawlStore) SetStatus(url string, status domain.CrawlState, index, errMsg string) {
	s.mu.Lock()
	s.records[normalizeURL(url)] = domain.CrawlStatus{
		Status: status,
		Index:  index,
		Error:  errMsg,
	}
	s.mu.Unlock()
}

// GetStatus returns the crawl record for a URL.
// Parameters:
//   - url: crawl target URL (normalized before lookup).
// Returns:
//   - *domain.CrawlStatus: snapshot of the record.
//   - error: ErrCrawlNotFound when the URL was never crawled.
func (s *CrawlStore) GetStatus(url string) (*domain.CrawlStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[normalizeURL(url)]
	if !ok {
		return nil, ErrCrawlNotFound
	}
	return &rec, nil
}
