package storage

import (
	"context"
	"io"
)

// ObjectStorage abstracts the bucket used for crawl-log archival.
// The crawler service only ever uploads; the remaining operations
// exist so archived logs can be fetched or pruned by tooling.
type ObjectStorage interface {
	// Upload stores an object under the given key
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download streams an archived object back
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the public URL for an archived object
	GetURL(key string) string

	// Delete removes an archived object
	Delete(ctx context.Context, key string) error

	// Exists reports whether a key is present in the bucket
	Exists(ctx context.Context, key string) (bool, error)
}
