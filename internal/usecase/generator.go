// Package usecase contains the tile generation orchestrator: cache
// resolution, live synthesis and bulk pyramid production.
package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
	"github.com/richiexuetang/ritcher-map/internal/imageproc"
	"github.com/richiexuetang/ritcher-map/internal/repository/cache"
	"github.com/richiexuetang/ritcher-map/internal/repository/store"
	"github.com/richiexuetang/ritcher-map/internal/tile"
	"github.com/richiexuetang/ritcher-map/pkg/config"
	"github.com/richiexuetang/ritcher-map/pkg/logger"
	"github.com/richiexuetang/ritcher-map/pkg/metrics"
)

// Generator resolves tile requests through the cache and origin store,
// synthesizing tiles from base maps and markers when neither has them.
// It owns no persistent state; the cache and stores it borrows are safe
// for concurrent use.
type Generator struct {
	cache      cache.TileCache
	blobs      store.BlobStore
	meta       store.MetadataStore
	proc       imageproc.Processor
	cfg        config.Tile
	httpClient *http.Client
	logger     logger.Logger
	metrics    metrics.Recorder
}

func NewGenerator(
	c cache.TileCache,
	blobs store.BlobStore,
	meta store.MetadataStore,
	proc imageproc.Processor,
	cfg config.Tile,
	l logger.Logger,
	m metrics.Recorder,
) *Generator {
	return &Generator{
		cache:      c,
		blobs:      blobs,
		meta:       meta,
		proc:       proc,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     l,
		metrics:    m,
	}
}

// GetTile resolves a single tile: cache, then origin store, then live
// synthesis. Freshly synthesized tiles are persisted to the origin store
// with a metadata row before the cache is populated.
func (g *Generator) GetTile(ctx context.Context, gameID string, c tile.Coordinate, f tile.Format) (cache.Blob, error) {
	g.metrics.TileRequest(f.String())

	if err := c.Validate(g.cfg.MinZoom, g.cfg.MaxZoom); err != nil {
		return cache.Blob{}, err
	}

	key := tile.CacheKey(gameID, c, f)

	// Cache read failures degrade to a miss so the origin store can
	// still serve the request.
	blob, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		g.logger.Warn("cache read failed, treating as miss", "key", key, "error", err)
	}
	if ok {
		g.metrics.CacheHit()
		return blob, nil
	}
	g.metrics.CacheMiss()

	data, err := g.blobs.Get(ctx, tile.ObjectKey(gameID, c, f))
	switch {
	case err == nil:
		blob = g.newBlob(data, f)
	case apperror.IsNotFound(err):
		blob, err = g.synthesizeAndPersist(ctx, gameID, c, f)
		if err != nil {
			return cache.Blob{}, err
		}
	default:
		return cache.Blob{}, err
	}

	g.cacheSet(ctx, key, blob)
	return blob, nil
}

// CachedETag returns the ETag currently cached for a tile, if any.
// Used by the HTTP layer for If-None-Match handling.
func (g *Generator) CachedETag(ctx context.Context, gameID string, c tile.Coordinate, f tile.Format) (string, error) {
	return g.cache.GetETag(ctx, tile.CacheKey(gameID, c, f))
}

// InvalidateGameTiles removes every cached tile and ETag for a game.
// Unlike cache reads and writes, invalidation errors propagate: the side
// effect is the entire point of the call.
func (g *Generator) InvalidateGameTiles(ctx context.Context, gameID string) (int, error) {
	removed, err := g.cache.InvalidatePattern(ctx, tile.CachePrefix(gameID))
	if err != nil {
		return 0, apperror.Wrap(apperror.KindUpstream, "invalidate cache", err)
	}
	g.metrics.TilesInvalidated(removed)
	return removed, nil
}

// PyramidMetadata loads the persisted pyramid summary for a game.
func (g *Generator) PyramidMetadata(ctx context.Context, gameID string) (*store.PyramidMetadata, error) {
	data, err := g.blobs.Get(ctx, tile.MetadataObjectKey(gameID))
	if err != nil {
		return nil, err
	}

	var meta store.PyramidMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, apperror.Wrap(apperror.KindProcessing, "decode pyramid metadata", err)
	}
	return &meta, nil
}

func (g *Generator) synthesizeAndPersist(ctx context.Context, gameID string, c tile.Coordinate, f tile.Format) (cache.Blob, error) {
	game, err := g.meta.GetGame(ctx, gameID)
	if err != nil {
		return cache.Blob{}, err
	}

	start := time.Now()
	data, err := g.synthesize(ctx, game, c, f)
	if err != nil {
		return cache.Blob{}, err
	}
	g.metrics.TileGenerated(time.Since(start))

	if _, err := g.persistTile(ctx, game.ID, c, f, data); err != nil {
		return cache.Blob{}, err
	}

	return g.newBlob(data, f), nil
}

// synthesize renders a tile from the game's base map (or a blank base)
// with every visible marker in the tile's bounds composited on top.
func (g *Generator) synthesize(ctx context.Context, game *store.Game, c tile.Coordinate, f tile.Format) ([]byte, error) {
	bounds := c.Bounds()

	base := g.baseImage(ctx, game, c)

	markers, err := g.meta.MarkersInBounds(ctx, game.ID, bounds)
	if err != nil {
		return nil, err
	}

	img := base
	for _, m := range markers {
		px, py := pixelPosition(m.Position[1], m.Position[0], bounds, float64(g.proc.TileSize))
		img = imageproc.CompositeOverlay(img, imageproc.MarkerIcon(m.MarkerType), int(px), int(py))
	}

	return g.proc.Encode(g.proc.ResizeToTile(img), f)
}

func (g *Generator) baseImage(ctx context.Context, game *store.Game, c tile.Coordinate) image.Image {
	if game.BaseMapURL == nil {
		return g.proc.BlankBase()
	}

	img, err := g.fetchBaseMapTile(ctx, *game.BaseMapURL, c)
	if err != nil {
		g.logger.Warn("base map fetch failed, using blank base",
			"game", game.ID, "z", c.Z, "x", c.X, "y", c.Y, "error", err)
		return g.proc.BlankBase()
	}
	return img
}

func (g *Generator) fetchBaseMapTile(ctx context.Context, baseURL string, c tile.Coordinate) (image.Image, error) {
	url := fmt.Sprintf("%s/%d/%d/%d.png", baseURL, c.Z, c.X, c.Y)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build base map request: %w", err)
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	g.metrics.UpstreamFetch(time.Since(start), err != nil)
	if err != nil {
		return nil, fmt.Errorf("fetch base map tile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("base map returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read base map tile: %w", err)
	}

	return g.proc.Decode(data)
}

func (g *Generator) persistTile(ctx context.Context, gameID string, c tile.Coordinate, f tile.Format, data []byte) (*store.TileMetadataRecord, error) {
	if err := g.blobs.Put(ctx, tile.ObjectKey(gameID, c, f), data); err != nil {
		return nil, err
	}

	rec := &store.TileMetadataRecord{
		ID:          uuid.New(),
		GameID:      gameID,
		Zoom:        c.Z,
		X:           c.X,
		Y:           c.Y,
		Format:      f.String(),
		ByteSize:    int64(len(data)),
		ContentHash: contentHash(data),
		CreatedAt:   time.Now().UTC(),
	}
	if err := g.meta.UpsertTileMetadata(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// cacheSet populates the cache best-effort: write failures are logged
// and swallowed.
func (g *Generator) cacheSet(ctx context.Context, key string, blob cache.Blob) {
	if err := g.cache.Set(ctx, key, blob, 0); err != nil {
		g.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

func (g *Generator) newBlob(data []byte, f tile.Format) cache.Blob {
	return cache.Blob{
		Data:        data,
		ContentType: f.MIME(),
		ETag:        etagFor(data),
	}
}

// pixelPosition projects a lat/lng into tile-local pixel space.
func pixelPosition(lat, lng float64, b tile.Bounds, tileSize float64) (float64, float64) {
	px := (lng - b.West) / (b.East - b.West) * tileSize
	py := (b.North - lat) / (b.North - b.South) * tileSize
	return px, py
}

// contentHash is the stable identity of a tile payload: identical bytes
// always produce identical hashes.
func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func etagFor(data []byte) string {
	return `"` + contentHash(data)[:32] + `"`
}
