package kv

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-dashboard/internal/config"
)

// Open builds the Store selected by the configuration.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.KVBackend {
	case config.BackendFile:
		return NewFileStore(cfg.DataDir)
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.SQLitePath)
	case config.BackendGCS:
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSPrefix)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown kv backend: %q", cfg.KVBackend)
	}
}
