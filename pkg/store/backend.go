// Package store persists client state (theme, settings, recent transactions,
// alerts and watchlist) under fixed keys in a pluggable key/value backend.
package store

import (
	"context"
	"fmt"

	"dexswap/config"
)

// Backend is a flat key/value store of JSON documents
type Backend interface {
	// Get returns the value and whether the key exists
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open creates the backend selected by cfg
func Open(cfg config.StoreConfig) (Backend, error) {
	switch cfg.Backend {
	case config.StoreBackendFile, "":
		return NewFileBackend(cfg.Path)
	case config.StoreBackendRedis:
		return NewRedisBackend(cfg.RedisURL, cfg.KeyPrefix)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
