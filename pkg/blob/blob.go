// Package blob abstracts the object storage service holding document files.
// Metadata rows keep only the storage key and public URL; the bytes live here.
package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/coursedocs/catalog-api/pkg/config"
)

// Store writes and removes blobs addressed by key.
type Store interface {
	// Put stores the bytes under key and returns the public URL.
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)

	// Delete removes the blob. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// PublicURL returns the URL under which a stored key is reachable.
	PublicURL(key string) string
}

// New selects a Store implementation based on the configured driver.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 storage requires STORAGE_BUCKET to be set")
		}
		return NewS3Store(ctx, cfg)
	case "local", "":
		return NewLocalStore(cfg.LocalDir, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
