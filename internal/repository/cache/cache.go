// Package cache implements the fast tile cache layer. Backends share one
// interface and are selected by configuration; every entry carries a
// companion ETag under a derived key with the same TTL.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/richiexuetang/ritcher-map/pkg/config"
	"github.com/richiexuetang/ritcher-map/pkg/logger"
)

// Blob is a cached tile payload. Data round-trips through JSON as base64
// in backends that store entries as documents.
type Blob struct {
	Data        []byte    `json:"data"`
	ContentType string    `json:"content_type"`
	ETag        string    `json:"etag"`
	CachedAt    time.Time `json:"cached_at"`
}

type TileCache interface {
	// Get returns the blob for key and refreshes its TTL on a hit
	// (sliding expiration). A missing or expired key is (zero, false, nil).
	Get(ctx context.Context, key string) (Blob, bool, error)
	// Set stores the blob and its companion ETag entry, both with ttl.
	Set(ctx context.Context, key string, blob Blob, ttl time.Duration) error
	// GetETag returns the companion ETag, or a NotFound error if absent.
	GetETag(ctx context.Context, key string) (string, error)
	// InvalidatePattern removes every entry (data and ETag namespaces)
	// whose key starts with prefix, returning the number of removed keys.
	InvalidatePattern(ctx context.Context, prefix string) (int, error)
	Close() error
}

// New selects the cache backend from configuration.
func New(cfg config.Cache, l logger.Logger) (TileCache, error) {
	switch cfg.Backend {
	case "redis":
		return NewRedisCache(cfg.Redis, cfg.TTL, l)
	case "sqlite":
		return NewSQLiteCache(cfg.SQLitePath, cfg.TTL, l)
	case "memory":
		return NewMemoryCache(cfg.TTL), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}
