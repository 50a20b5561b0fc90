package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Standard Tracing Fields (Context level)
// These fields are propagated through the call chain
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldJobID is the onboarding ingest job ID
	FieldJobID = "job_id"

	// FieldCrawlID is the container crawl ID
	FieldCrawlID = "crawl_id"

	// FieldTenantID is the merchant tenant ID
	FieldTenantID = "tenant_id"

	// FieldIndex is the target search index name
	FieldIndex = "index"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldDomain is the merchant site domain
	FieldDomain = "domain"
)

// ============================================
// Standard Metric Fields (Entry level)
// These fields are used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldSize is the data size in bytes
	FieldSize = "size"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
