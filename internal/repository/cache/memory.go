package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
)

type memoryEntry struct {
	blob      Blob
	expiresAt time.Time
}

// MemoryCache is a process-local backend used in tests and local runs.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration

	// now is swappable so tests can force expiry.
	now func() time.Time
}

var _ TileCache = (*MemoryCache)(nil)

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (Blob, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Blob{}, false, nil
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return Blob{}, false, nil
	}

	e.expiresAt = c.now().Add(c.ttl)
	c.entries[key] = e

	return e.blob, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, blob Blob, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	blob.CachedAt = c.now().UTC()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{blob: blob, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryCache) GetETag(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		return "", apperror.Newf(apperror.KindNotFound, "etag not cached for %s", key)
	}
	return e.blob.ETag, nil
}

func (c *MemoryCache) InvalidatePattern(_ context.Context, prefix string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (c *MemoryCache) Close() error {
	return nil
}
