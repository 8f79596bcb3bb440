package storage

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when no blob exists for a key.
var ErrNotFound = errors.New("storage: blob not found")

// A Storage stores uploaded blobs by key.
type Storage interface {
	// Put stores the content of r under key.
	Put(ctx context.Context, key string, r io.Reader, size int64, mimeType string) error
	// Get returns the content stored under key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Remove deletes the content stored under key.
	Remove(ctx context.Context, key string) error
}

// A Config holds the storage parameters.
type Config struct {
	Driver string      `koanf:"driver"`
	Path   string      `koanf:"path"`
	Minio  MinioConfig `koanf:"minio"`
}

// Open returns the Storage for the given configuration.
func Open(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.Path)
	case "minio":
		return NewMinio(ctx, cfg.Minio)
	default:
		return nil, errors.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
