// Package storage provides read access to loan documents and application
// records held in object storage. Azure Blob Storage and S3-compatible
// providers are supported.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/JaimeStill/intake/pkg/lifecycle"
)

// Blob is an open object stream with its metadata. The caller must close Body.
type Blob struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// System manages object storage reads and lifecycle coordination.
type System interface {
	// Start registers a startup hook that verifies the container or bucket.
	Start(lc *lifecycle.Coordinator) error
	// Download returns a stream for the object at the given key.
	// Returns ErrNotFound if the object does not exist.
	Download(ctx context.Context, key string) (*Blob, error)
	// Exists reports whether an object exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

// New creates a storage system for the configured provider.
// Clients are created eagerly; no network call happens until Start or first use.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderAzure, "":
		return newAzure(cfg, logger)
	case ProviderS3:
		return newS3(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// ReadAll downloads the object at key and returns its bytes, refusing objects
// larger than limit when limit is positive.
func ReadAll(ctx context.Context, sys System, key string, limit int64) ([]byte, string, error) {
	blob, err := sys.Download(ctx, key)
	if err != nil {
		return nil, "", err
	}
	defer blob.Body.Close()

	reader := io.Reader(blob.Body)
	if limit > 0 {
		reader = io.LimitReader(blob.Body, limit+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("read object %s: %w", key, err)
	}

	if limit > 0 && int64(len(data)) > limit {
		return nil, "", fmt.Errorf("%w: object %s exceeds %d bytes", ErrTooLarge, key, limit)
	}

	return data, blob.ContentType, nil
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
