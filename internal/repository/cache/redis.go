package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
	"github.com/richiexuetang/ritcher-map/internal/tile"
	"github.com/richiexuetang/ritcher-map/pkg/config"
	"github.com/richiexuetang/ritcher-map/pkg/logger"
)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

var _ TileCache = (*RedisCache)(nil)

func NewRedisCache(cfg config.Redis, ttl time.Duration, l logger.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl == 0 {
		ttl = time.Hour
	}

	l.Info("redis tile cache initialized", "addr", cfg.Addr, "ttl", ttl)

	return &RedisCache{client: client, ttl: ttl, logger: l}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (Blob, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Blob{}, false, nil
		}
		return Blob{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var blob Blob
	if err := json.Unmarshal(data, &blob); err != nil {
		return Blob{}, false, fmt.Errorf("decode cached tile %s: %w", key, err)
	}

	// Sliding expiration: a read renews the lease on the blob and its
	// companion ETag together, so If-None-Match keeps matching for as
	// long as the blob lives.
	if err := c.client.Expire(ctx, key, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to refresh cache ttl", "key", key, "error", err)
	}
	if err := c.client.Expire(ctx, tile.ETagKey(key), c.ttl).Err(); err != nil {
		c.logger.Warn("failed to refresh etag ttl", "key", key, "error", err)
	}

	return blob, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, blob Blob, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	blob.CachedAt = time.Now().UTC()

	payload, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("encode tile for cache %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	if err := c.client.Set(ctx, tile.ETagKey(key), blob.ETag, ttl).Err(); err != nil {
		return fmt.Errorf("redis set etag for %s: %w", key, err)
	}

	return nil
}

func (c *RedisCache) GetETag(ctx context.Context, key string) (string, error) {
	etag, err := c.client.Get(ctx, tile.ETagKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", apperror.Newf(apperror.KindNotFound, "etag not cached for %s", key)
		}
		return "", fmt.Errorf("redis get etag for %s: %w", key, err)
	}
	return etag, nil
}

func (c *RedisCache) InvalidatePattern(ctx context.Context, prefix string) (int, error) {
	keys, err := c.client.Keys(ctx, prefix+"*").Result()
	if err != nil {
		return 0, fmt.Errorf("redis keys %s*: %w", prefix, err)
	}
	etagKeys, err := c.client.Keys(ctx, "etag:"+prefix+"*").Result()
	if err != nil {
		return 0, fmt.Errorf("redis keys etag:%s*: %w", prefix, err)
	}

	removed := 0
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return 0, fmt.Errorf("redis del tiles %s*: %w", prefix, err)
		}
		removed += len(keys)
	}
	if len(etagKeys) > 0 {
		if err := c.client.Del(ctx, etagKeys...).Err(); err != nil {
			return removed, fmt.Errorf("redis del etags %s*: %w", prefix, err)
		}
		removed += len(etagKeys)
	}

	c.logger.Info("invalidated cache entries", "prefix", prefix, "removed", removed)
	return removed, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
