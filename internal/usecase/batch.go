package usecase

import (
	"context"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
	"github.com/richiexuetang/ritcher-map/internal/repository/store"
	"github.com/richiexuetang/ritcher-map/internal/tile"
)

// BatchRequest asks for region/marker-driven tile generation for a game.
// When Bounds is nil the game's own registered bounds are used; zoom
// levels with no resolvable bounds are skipped.
type BatchRequest struct {
	GameID     string
	ZoomLevels []uint8
	Bounds     *tile.Bounds
	Format     tile.Format
}

// BatchResult reports a possibly partial outcome: failed tiles are
// logged and excluded from Generated rather than failing the batch.
type BatchResult struct {
	Generated []*store.TileMetadataRecord
	Failed    int
	Skipped   []uint8 // zoom levels skipped for lack of bounds
}

// GenerateBatch synthesizes and stores every tile covering the requested
// region at each zoom level. Unlike single-image pyramid slicing this
// path is best-effort: one bad tile does not abort its level.
func (g *Generator) GenerateBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	for _, z := range req.ZoomLevels {
		if z < g.cfg.MinZoom || z > g.cfg.MaxZoom {
			return nil, apperror.Newf(apperror.KindInvalidInput,
				"zoom %d outside allowed range [%d, %d]", z, g.cfg.MinZoom, g.cfg.MaxZoom)
		}
	}

	game, err := g.meta.GetGame(ctx, req.GameID)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}

	for _, z := range req.ZoomLevels {
		bounds, ok := g.batchBounds(req, game)
		if !ok {
			g.logger.Warn("skipping zoom level: no bounds available", "game", req.GameID, "zoom", z)
			result.Skipped = append(result.Skipped, z)
			continue
		}

		for _, coord := range tile.TilesInBounds(bounds, z) {
			rec, err := g.generateAndStore(ctx, game, coord, req.Format)
			if err != nil {
				g.logger.Warn("failed to generate tile",
					"game", req.GameID, "z", coord.Z, "x", coord.X, "y", coord.Y, "error", err)
				result.Failed++
				continue
			}
			result.Generated = append(result.Generated, rec)
		}
	}

	return result, nil
}

func (g *Generator) batchBounds(req BatchRequest, game *store.Game) (tile.Bounds, bool) {
	if req.Bounds != nil {
		return *req.Bounds, true
	}
	return game.Bounds()
}

func (g *Generator) generateAndStore(ctx context.Context, game *store.Game, c tile.Coordinate, f tile.Format) (*store.TileMetadataRecord, error) {
	data, err := g.synthesize(ctx, game, c, f)
	if err != nil {
		return nil, err
	}

	return g.persistTile(ctx, game.ID, c, f, data)
}
