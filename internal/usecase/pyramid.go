package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
	"github.com/richiexuetang/ritcher-map/internal/repository/store"
	"github.com/richiexuetang/ritcher-map/internal/tile"
)

// PyramidRequest asks for a full zoom pyramid sliced from one source
// image. Exactly one of SourceImageURL and SourceBytes must be set.
type PyramidRequest struct {
	GameID         string
	SourceImageURL string
	SourceBytes    []byte
	MinZoom        uint8
	// MaxZoom overrides the depth derived from the source image's
	// dimensions. Nil means "as deep as the source resolves".
	MaxZoom *uint8
	Format  tile.Format
	// Bounds overrides the recorded geographic extent. Required when
	// the service is configured not to assume world bounds.
	Bounds *tile.Bounds
}

// GeneratePyramid slices the source image into tiles for every zoom
// level in [MinZoom, MaxZoom], persists them to the origin store and
// records the pyramid summary. Tiles within a zoom level are produced in
// parallel with no ordering between them; any tile failure aborts the
// whole level. Re-running a generation is safe: tile keys are
// deterministic and the metadata write overwrites.
func (g *Generator) GeneratePyramid(ctx context.Context, req PyramidRequest) (*store.PyramidMetadata, error) {
	if req.MaxZoom != nil {
		if req.MinZoom > *req.MaxZoom {
			return nil, apperror.Newf(apperror.KindInvalidInput,
				"min zoom %d greater than max zoom %d", req.MinZoom, *req.MaxZoom)
		}
		if *req.MaxZoom > g.cfg.MaxZoom {
			return nil, apperror.Newf(apperror.KindInvalidInput,
				"max zoom %d outside allowed range [%d, %d]", *req.MaxZoom, g.cfg.MinZoom, g.cfg.MaxZoom)
		}
	}
	if req.MinZoom < g.cfg.MinZoom {
		return nil, apperror.Newf(apperror.KindInvalidInput,
			"min zoom %d outside allowed range [%d, %d]", req.MinZoom, g.cfg.MinZoom, g.cfg.MaxZoom)
	}

	bounds, err := g.pyramidBounds(req)
	if err != nil {
		return nil, err
	}

	src, err := g.sourceImage(ctx, req)
	if err != nil {
		return nil, err
	}

	maxZoom := g.maxZoomFor(req, src)

	g.logger.Info("starting pyramid generation",
		"game", req.GameID, "min_zoom", req.MinZoom, "max_zoom", maxZoom, "format", req.Format.String())

	meta := &store.PyramidMetadata{
		GameID:    req.GameID,
		Bounds:    bounds,
		CreatedAt: time.Now().UTC(),
		Format:    req.Format.String(),
	}

	for z := req.MinZoom; ; z++ {
		level, err := g.generateZoomLevel(ctx, req.GameID, src, z, req.Format)
		if err != nil {
			return nil, fmt.Errorf("generate zoom level %d: %w", z, err)
		}
		meta.TotalTiles += uint64(level.TileCount)
		meta.ZoomLevels = append(meta.ZoomLevels, level)
		if z == maxZoom {
			break
		}
	}

	if err := g.savePyramidMetadata(ctx, meta); err != nil {
		return nil, err
	}

	g.logger.Info("pyramid generation complete", "game", req.GameID, "total_tiles", meta.TotalTiles)

	return meta, nil
}

// maxZoomFor resolves the pyramid's deepest level: the request's
// explicit value, or the deepest zoom at which the source image still
// provides native resolution, clamped to the configured range.
func (g *Generator) maxZoomFor(req PyramidRequest, src image.Image) uint8 {
	if req.MaxZoom != nil {
		return *req.MaxZoom
	}

	b := src.Bounds()
	z := tile.MaxZoomForImage(uint32(b.Dx()), uint32(b.Dy()), uint32(g.proc.TileSize))
	if z > g.cfg.MaxZoom {
		z = g.cfg.MaxZoom
	}
	if z < req.MinZoom {
		z = req.MinZoom
	}
	return z
}

// pyramidBounds resolves the geographic extent recorded in pyramid
// metadata. Single-image maps have no inherent geography; with
// AssumeWorldBounds set (the default) the full globe is recorded unless
// the caller supplies an explicit extent.
func (g *Generator) pyramidBounds(req PyramidRequest) (tile.Bounds, error) {
	if req.Bounds != nil {
		return *req.Bounds, nil
	}
	if g.cfg.AssumeWorldBounds {
		return tile.WorldBounds, nil
	}
	return tile.Bounds{}, apperror.New(apperror.KindInvalidInput,
		"bounds required: service is configured not to assume world bounds")
}

func (g *Generator) sourceImage(ctx context.Context, req PyramidRequest) (image.Image, error) {
	data := req.SourceBytes
	if len(data) == 0 {
		if req.SourceImageURL == "" {
			return nil, apperror.New(apperror.KindInvalidInput, "source image url or bytes required")
		}
		var err error
		data, err = g.downloadImage(ctx, req.SourceImageURL)
		if err != nil {
			return nil, err
		}
	}
	return g.proc.Decode(data)
}

func (g *Generator) downloadImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidInput, "build source image request", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUpstream, "download source image", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Newf(apperror.KindUpstream, "source image returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUpstream, "read source image", err)
	}
	return data, nil
}

// generateZoomLevel resizes the source to cover the full 2^z grid, then
// crops, encodes and stores each tile concurrently. Workers own disjoint
// output keys, so no coordination beyond the errgroup is needed.
func (g *Generator) generateZoomLevel(ctx context.Context, gameID string, src image.Image, z uint8, f tile.Format) (store.ZoomLevelInfo, error) {
	tilesPerSide := uint32(1) << z
	totalSize := int(tilesPerSide) * g.proc.TileSize

	resized := g.proc.ResizeExact(src, totalSize, totalSize)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())

	for x := uint32(0); x < tilesPerSide; x++ {
		for y := uint32(0); y < tilesPerSide; y++ {
			coord := tile.Coordinate{X: x, Y: y, Z: z}
			eg.Go(func() error {
				cropped, err := g.proc.Crop(resized,
					int(coord.X)*g.proc.TileSize, int(coord.Y)*g.proc.TileSize,
					g.proc.TileSize, g.proc.TileSize)
				if err != nil {
					return err
				}

				data, err := g.proc.Encode(cropped, f)
				if err != nil {
					return err
				}

				return g.blobs.Put(egCtx, tile.ObjectKey(gameID, coord, f), data)
			})
		}
	}

	if err := eg.Wait(); err != nil {
		return store.ZoomLevelInfo{}, err
	}

	return store.ZoomLevelInfo{
		Zoom:      z,
		TileCount: tilesPerSide * tilesPerSide,
		Cols:      tilesPerSide,
		Rows:      tilesPerSide,
	}, nil
}

func (g *Generator) savePyramidMetadata(ctx context.Context, meta *store.PyramidMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return apperror.Wrap(apperror.KindProcessing, "encode pyramid metadata", err)
	}
	return g.blobs.Put(ctx, tile.MetadataObjectKey(meta.GameID), data)
}
