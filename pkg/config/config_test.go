package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Server.Port)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.False(t, cfg.Telemetry.Enabled)

	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)

	assert.Equal(t, "s3", cfg.Store.Backend)
	assert.Equal(t, "map-tiles", cfg.Store.S3.Bucket)

	assert.Equal(t, 256, cfg.Tile.Size)
	assert.Equal(t, uint8(0), cfg.Tile.MinZoom)
	assert.Equal(t, uint8(18), cfg.Tile.MaxZoom)
	assert.True(t, cfg.Tile.AssumeWorldBounds)
	assert.Equal(t, 3600, cfg.Tile.CacheMaxAge)
}

func TestNewEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_SERVER_PORT", "9090")
	t.Setenv("CACHE_BACKEND", "sqlite")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("TILE_MAX_ZOOM", "12")
	t.Setenv("TILE_ASSUME_WORLD_BOUNDS", "false")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTP.Server.Port)
	assert.Equal(t, "sqlite", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, uint8(12), cfg.Tile.MaxZoom)
	assert.False(t, cfg.Tile.AssumeWorldBounds)
}
