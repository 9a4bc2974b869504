package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"hotspot-service/internal/config"
)

// ErrBlobNotFound is returned when a key is not present in the store.
var ErrBlobNotFound = errors.New("blob not found")

// ErrStoreFull is returned by backends with a fixed capacity when a blob
// does not fit.
var ErrStoreFull = errors.New("blob store is full")

// BlobStore holds the raw bytes of imported models.
type BlobStore interface {
	Name() string
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	Stats() BlobStats
}

// BlobStats reports usage of a BlobStore.
type BlobStats struct {
	Name      string  `json:"name"`
	Objects   int     `json:"objects"`
	SizeBytes int64   `json:"sizeBytes"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hitRate"`
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// OpenBlobStore builds the backend selected by cfg.BlobBackend.
func OpenBlobStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (BlobStore, error) {
	switch cfg.BlobBackend {
	case "memory":
		return NewMemoryBlobStore(cfg.MemoryBlobMaxBytes, logger), nil
	case "file":
		return NewFileBlobStore(cfg.FileBlobDir, logger)
	case "minio":
		client, err := NewMinioClient(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewMinioBlobStore(client, cfg.MinioBucket, logger), nil
	default:
		return nil, fmt.Errorf("unsupported blob backend %q", cfg.BlobBackend)
	}
}
