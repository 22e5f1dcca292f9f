package usecase

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
	"github.com/richiexuetang/ritcher-map/internal/imageproc"
	"github.com/richiexuetang/ritcher-map/internal/repository/store"
	"github.com/richiexuetang/ritcher-map/internal/tile"
	"github.com/richiexuetang/ritcher-map/pkg/logger"
	"github.com/richiexuetang/ritcher-map/pkg/metrics"
)

func zoomPtr(z uint8) *uint8 { return &z }

func sourcePNG(t *testing.T, size int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(i % 251)
		img.Pix[i+1] = 90
		img.Pix[i+2] = 160
		img.Pix[i+3] = 255
	}

	data, err := imageproc.NewProcessor(256, 85).Encode(img, tile.FormatPNG)
	require.NoError(t, err)
	return data
}

func TestGeneratePyramid(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	meta, err := env.generator.GeneratePyramid(ctx, PyramidRequest{
		GameID:      "g1",
		SourceBytes: sourcePNG(t, 512),
		MinZoom:     0,
		MaxZoom:     zoomPtr(2),
		Format:      tile.FormatPNG,
	})
	require.NoError(t, err)

	t.Run("summary counts every level", func(t *testing.T) {
		assert.Equal(t, uint64(21), meta.TotalTiles) // 1 + 4 + 16
		require.Len(t, meta.ZoomLevels, 3)

		z2 := meta.ZoomLevels[2]
		assert.Equal(t, uint8(2), z2.Zoom)
		assert.Equal(t, uint32(16), z2.TileCount)
		assert.Equal(t, uint32(4), z2.Cols)
		assert.Equal(t, uint32(4), z2.Rows)
	})

	t.Run("records world bounds by default", func(t *testing.T) {
		assert.Equal(t, tile.WorldBounds, meta.Bounds)
	})

	t.Run("every tile and the summary are stored", func(t *testing.T) {
		assert.Equal(t, 22, env.blobs.Len()) // 21 tiles + metadata.json

		proc := imageproc.NewProcessor(256, 85)
		for _, coord := range []tile.Coordinate{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 1},
			{X: 3, Y: 3, Z: 2},
		} {
			data, err := env.blobs.Get(ctx, tile.ObjectKey("g1", coord, tile.FormatPNG))
			require.NoError(t, err, "tile %v", coord)

			img, err := proc.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, 256, img.Bounds().Dx())
			assert.Equal(t, 256, img.Bounds().Dy())
		}
	})

	t.Run("summary round-trips through the metadata endpoint", func(t *testing.T) {
		loaded, err := env.generator.PyramidMetadata(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, meta.TotalTiles, loaded.TotalTiles)
		assert.Equal(t, meta.Bounds, loaded.Bounds)
		assert.Equal(t, "png", loaded.Format)
	})
}

func TestGeneratePyramidValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for name, req := range map[string]PyramidRequest{
		"min above max":    {GameID: "g1", SourceBytes: sourcePNG(t, 64), MinZoom: 3, MaxZoom: zoomPtr(1)},
		"zoom above limit": {GameID: "g1", SourceBytes: sourcePNG(t, 64), MinZoom: 0, MaxZoom: zoomPtr(19)},
		"no source":        {GameID: "g1", MinZoom: 0, MaxZoom: zoomPtr(1)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := env.generator.GeneratePyramid(ctx, req)
			require.Error(t, err)
			assert.True(t, apperror.IsInvalidInput(err))
		})
	}

	assert.Zero(t, env.blobs.Len(), "nothing stored on invalid input")
}

func TestGeneratePyramidExplicitBounds(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	bounds := tile.Bounds{North: 40, South: 30, East: 20, West: 10}

	meta, err := env.generator.GeneratePyramid(ctx, PyramidRequest{
		GameID:      "g1",
		SourceBytes: sourcePNG(t, 64),
		MinZoom:     0,
		MaxZoom:     zoomPtr(0), // explicit zero: a single-tile pyramid
		Format:      tile.FormatPNG,
		Bounds:      &bounds,
	})
	require.NoError(t, err)
	assert.Equal(t, bounds, meta.Bounds)
	assert.Equal(t, uint64(1), meta.TotalTiles)
}

func TestGeneratePyramidDerivesMaxZoom(t *testing.T) {
	ctx := context.Background()

	t.Run("depth follows the source resolution", func(t *testing.T) {
		env := newTestEnv(t)

		// 512px over 256px tiles resolves two tiles per side: z=1.
		meta, err := env.generator.GeneratePyramid(ctx, PyramidRequest{
			GameID:      "g1",
			SourceBytes: sourcePNG(t, 512),
			MinZoom:     0,
			Format:      tile.FormatPNG,
		})
		require.NoError(t, err)

		require.Len(t, meta.ZoomLevels, 2)
		assert.Equal(t, uint8(1), meta.ZoomLevels[1].Zoom)
		assert.Equal(t, uint64(5), meta.TotalTiles) // 1 + 4
	})

	t.Run("derived depth never falls below min zoom", func(t *testing.T) {
		env := newTestEnv(t)

		meta, err := env.generator.GeneratePyramid(ctx, PyramidRequest{
			GameID:      "g1",
			SourceBytes: sourcePNG(t, 64), // resolves z=1 on its own
			MinZoom:     2,
			Format:      tile.FormatPNG,
		})
		require.NoError(t, err)

		require.Len(t, meta.ZoomLevels, 1)
		assert.Equal(t, uint8(2), meta.ZoomLevels[0].Zoom)
	})
}

func TestGeneratePyramidRequiresBoundsWhenConfigured(t *testing.T) {
	ctx := context.Background()

	cfg := testTileConfig()
	cfg.AssumeWorldBounds = false

	g := NewGenerator(
		nil, // never reached
		store.NewMemoryBlobStore(),
		store.NewMemoryMetadataStore(),
		imageproc.NewProcessor(256, 85),
		cfg,
		logger.NewNop(),
		metrics.NewNop(),
	)

	_, err := g.GeneratePyramid(ctx, PyramidRequest{
		GameID:      "g1",
		SourceBytes: sourcePNG(t, 64),
		MinZoom:     0,
		MaxZoom:     zoomPtr(1),
		Format:      tile.FormatPNG,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidInput(err))
}
