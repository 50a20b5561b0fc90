package domain

// ExtractedProduct is a normalized product pulled from a merchant site.
// Price keeps the source's currency formatting verbatim; URL is the
// dedup key for indexing.
type ExtractedProduct struct {
	Title       string `json:"title"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	URL         string `json:"url"`
}

// IndexDocument is the shape handed to the search backend for bulk
// indexing. ContentSemantic carries the text that the backend's
// inference profile embeds for semantic matching.
type IndexDocument struct {
	Title           string `json:"title"`
	Price           string `json:"price"`
	Description     string `json:"description"`
	Image           string `json:"image,omitempty"`
	URL             string `json:"url"`
	ContentSemantic string `json:"content_semantic"`
	TenantID        string `json:"tenant_id"`
}

// RetrievalHit is one fused-ranking result returned per query. Hits are
// ephemeral and never persisted.
type RetrievalHit struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Body  string `json:"body"`
}
