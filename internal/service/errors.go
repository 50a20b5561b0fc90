package service

import (
	"errors"
	"fmt"
)

// ErrNoProducts reports an extraction run that produced zero products.
// Onboarding exists to pull a catalog, so an empty result is a failure,
// not a valid answer.
var ErrNoProducts = errors.New("extraction returned no products")

// ExtractionError wraps any failure of the extraction adapter for a
// given site.
type ExtractionError struct {
	Domain string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.Domain, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// IndexingError wraps a failed bulk submission. The backend may have
// indexed part of the batch before failing; re-ingestion with the same
// stable ids is the recovery path.
type IndexingError struct {
	Index string
	Err   error
}

func (e *IndexingError) Error() string {
	return fmt.Sprintf("bulk indexing into %s failed: %v", e.Index, e.Err)
}

func (e *IndexingError) Unwrap() error { return e.Err }

// CrawlExecutionError reports a container crawl that exited non-zero.
// It carries the captured process output for debugging.
type CrawlExecutionError struct {
	ExitCode int
	Log      string
}

func (e *CrawlExecutionError) Error() string {
	return fmt.Sprintf("crawler exited with code %d", e.ExitCode)
}
