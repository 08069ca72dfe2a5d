package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/BerylCAtieno/processos-api/internal/config"
)

// ErrNotFound is returned by Download when nothing is stored at the location.
var ErrNotFound = errors.New("stored object not found")

// Storage persists uploaded file bytes. Upload returns the location that is
// recorded as the document path and later handed to Download.
type Storage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, location string) ([]byte, error)
	Delete(ctx context.Context, location string) error
}

func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageLocal:
		return NewLocalStorage(cfg.UploadDir)
	case config.StorageS3:
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
