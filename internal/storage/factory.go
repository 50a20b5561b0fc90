package storage

import "github.com/teampop/popcommerce/internal/config"

// NewStorage creates an ObjectStorage instance from the archive
// configuration. Returns nil when no bucket is configured, which
// disables log archival.
// Parameters:
//   - cfg: archive configuration including endpoint, credentials, and bucket.
// Returns:
//   - ObjectStorage: initialized storage client, nil when disabled.
//   - error: non-nil if the storage client cannot be created.
func NewStorage(cfg *config.ArchiveConfig) (ObjectStorage, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}

	return NewS3Storage(&S3Config{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		PublicURL: cfg.PublicURL,
	})
}
