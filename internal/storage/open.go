package storage

import (
	"context"
	"fmt"

	"github.com/merchke/storefront/config"
	"github.com/merchke/storefront/internal/db"
)

// Open builds the backend selected by cfg.Storage.Backend and wraps it,
// applying the configured key prefix.
func Open(ctx context.Context, cfg config.Config) (*Storage, error) {
	var backend Backend
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		backend = NewMemoryBackend()
	case config.StorageFile:
		fb, err := NewFileBackend(cfg.Storage.FilePath)
		if err != nil {
			return nil, err
		}
		backend = fb
	case config.StorageRedis:
		rb, err := NewRedisBackend(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		backend = rb
	case config.StoragePostgres:
		conn, err := db.Open(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		backend = NewPostgresBackend(conn)
	case config.StorageMongo:
		mb, err := NewMongoBackend(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		backend = mb
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return NewStorage(backend).WithPrefix(cfg.Storage.KeyPrefix), nil
}
