// Package store implements the durable origin layer behind the tile
// cache: a blob store for tile bytes and a metadata store for games,
// markers and per-tile records.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/richiexuetang/ritcher-map/internal/tile"
	"github.com/richiexuetang/ritcher-map/internal/wkt"
	"github.com/richiexuetang/ritcher-map/pkg/config"
	"github.com/richiexuetang/ritcher-map/pkg/logger"
)

// BlobStore is durable key -> bytes storage for generated tiles and
// pyramid metadata documents.
type BlobStore interface {
	// Get returns the object's bytes, or a NotFound error.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// MetadataStore reads game and marker records and upserts per-tile
// metadata rows.
type MetadataStore interface {
	// GetGame returns the game record, or a NotFound error.
	GetGame(ctx context.Context, id string) (*Game, error)
	// MarkersInBounds returns visible markers intersecting the bounds.
	MarkersInBounds(ctx context.Context, gameID string, b tile.Bounds) ([]Marker, error)
	// UpsertTileMetadata inserts or overwrites the row keyed by
	// (game, zoom, x, y, format). Concurrent upserts converge to the
	// last writer's size/hash/timestamp.
	UpsertTileMetadata(ctx context.Context, rec *TileMetadataRecord) error
	// GetTileMetadata returns the row for one tile, or a NotFound error.
	GetTileMetadata(ctx context.Context, gameID string, c tile.Coordinate, f tile.Format) (*TileMetadataRecord, error)
	Close() error
}

type Game struct {
	ID         string
	Name       string
	Slug       string
	MapBounds  *string // WKT POLYGON, may be malformed or absent
	MinZoom    uint8
	MaxZoom    uint8
	TileSize   int
	BaseMapURL *string
}

// Bounds parses the game's registered WKT bounds. ok is false when the
// game has none or the WKT is malformed; callers treat both the same.
func (g *Game) Bounds() (tile.Bounds, bool) {
	if g.MapBounds == nil {
		return tile.Bounds{}, false
	}
	return wkt.ParseBounds(*g.MapBounds)
}

type Marker struct {
	ID         string
	Position   orb.Point // lng, lat
	MarkerType string
	Title      string
	Metadata   json.RawMessage
}

type TileMetadataRecord struct {
	ID           uuid.UUID  `json:"id"`
	GameID       string     `json:"game_id"`
	Zoom         uint8      `json:"zoom"`
	X            uint32     `json:"x"`
	Y            uint32     `json:"y"`
	Format       string     `json:"format"`
	ByteSize     int64      `json:"byte_size"`
	ContentHash  string     `json:"content_hash"`
	CreatedAt    time.Time  `json:"created_at"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`
}

type ZoomLevelInfo struct {
	Zoom      uint8  `json:"zoom"`
	TileCount uint32 `json:"tile_count"`
	Cols      uint32 `json:"cols"`
	Rows      uint32 `json:"rows"`
}

// PyramidMetadata summarizes a generated tile pyramid. Persisted as JSON
// at {gameID}/metadata.json in the blob store.
type PyramidMetadata struct {
	GameID     string          `json:"game_id"`
	TotalTiles uint64          `json:"total_tiles"`
	ZoomLevels []ZoomLevelInfo `json:"zoom_levels"`
	Bounds     tile.Bounds     `json:"bounds"`
	CreatedAt  time.Time       `json:"created_at"`
	Format     string          `json:"format"`
}

// NewBlobStore selects the blob backend from configuration.
func NewBlobStore(cfg config.Store, l logger.Logger) (BlobStore, error) {
	switch cfg.Backend {
	case "s3":
		return NewS3Store(cfg.S3, l)
	case "filesystem":
		return NewFilesystemStore(cfg.BaseDir), nil
	case "memory":
		return NewMemoryBlobStore(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
