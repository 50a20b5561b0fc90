package domain

// CrawlState represents the status of a container-based crawl.
// Values include CrawlStatePending, CrawlStateRunning, CrawlStateCompleted, and CrawlStateFailed.
type CrawlState string

const (
	CrawlStatePending   CrawlState = "pending"
	CrawlStateRunning   CrawlState = "running"
	CrawlStateCompleted CrawlState = "completed"
	CrawlStateFailed    CrawlState = "failed"
)

// CrawlStatus tracks a container crawl keyed by its normalized target
// URL. Later writes for the same URL overwrite earlier ones; no history
// is kept.
type CrawlStatus struct {
	Status CrawlState `json:"status"`
	Index  string     `json:"index,omitempty"`
	Error  string     `json:"error,omitempty"`
}
