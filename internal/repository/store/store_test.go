package store

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
	"github.com/richiexuetang/ritcher-map/internal/tile"
	"github.com/richiexuetang/ritcher-map/pkg/config"
	"github.com/richiexuetang/ritcher-map/pkg/logger"
)

// blobStoreTest exercises the contract every BlobStore backend shares.
func blobStoreTest(t *testing.T, s BlobStore) {
	ctx := context.Background()

	t.Run("get of a missing object is NotFound", func(t *testing.T) {
		_, err := s.Get(ctx, "absent/0/0/0.png")
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("put then get round-trips", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "game/1/0/0.png", []byte("tile bytes")))

		data, err := s.Get(ctx, "game/1/0/0.png")
		require.NoError(t, err)
		assert.Equal(t, []byte("tile bytes"), data)
	})

	t.Run("put overwrites", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "game/1/0/1.png", []byte("v1")))
		require.NoError(t, s.Put(ctx, "game/1/0/1.png", []byte("v2")))

		data, err := s.Get(ctx, "game/1/0/1.png")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), data)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "game/2/0/0.png", []byte("x")))
		require.NoError(t, s.Delete(ctx, "game/2/0/0.png"))
		require.NoError(t, s.Delete(ctx, "game/2/0/0.png"))

		_, err := s.Get(ctx, "game/2/0/0.png")
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestFilesystemStore(t *testing.T) {
	blobStoreTest(t, NewFilesystemStore(t.TempDir()))
}

func TestMemoryBlobStore(t *testing.T) {
	blobStoreTest(t, NewMemoryBlobStore())

	t.Run("reads are isolated from caller mutation", func(t *testing.T) {
		ctx := context.Background()
		s := NewMemoryBlobStore()

		require.NoError(t, s.Put(ctx, "k", []byte{1, 2, 3}))

		data, err := s.Get(ctx, "k")
		require.NoError(t, err)
		data[0] = 99

		again, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, again)
	})
}

func TestGameBounds(t *testing.T) {
	t.Run("nil bounds", func(t *testing.T) {
		g := &Game{ID: "g"}
		_, ok := g.Bounds()
		assert.False(t, ok)
	})

	t.Run("malformed wkt", func(t *testing.T) {
		bad := "POLYGON(broken"
		g := &Game{ID: "g", MapBounds: &bad}
		_, ok := g.Bounds()
		assert.False(t, ok)
	})

	t.Run("valid polygon", func(t *testing.T) {
		wktStr := "POLYGON((-10 -5, 20 -5, 20 15, -10 15, -10 -5))"
		g := &Game{ID: "g", MapBounds: &wktStr}

		b, ok := g.Bounds()
		require.True(t, ok)
		assert.Equal(t, tile.Bounds{North: 15, South: -5, East: 20, West: -10}, b)
	})
}

func TestMemoryMetadataStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryMetadataStore()

	t.Run("missing game is NotFound", func(t *testing.T) {
		_, err := s.GetGame(ctx, "absent")
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("markers filter by bounds", func(t *testing.T) {
		s.AddGame(&Game{ID: "g1"})
		s.AddMarker("g1", Marker{ID: "in", Position: orb.Point{5, 5}, MarkerType: "poi"})
		s.AddMarker("g1", Marker{ID: "out", Position: orb.Point{50, 50}, MarkerType: "poi"})

		markers, err := s.MarkersInBounds(ctx, "g1", tile.Bounds{North: 10, South: 0, East: 10, West: 0})
		require.NoError(t, err)
		require.Len(t, markers, 1)
		assert.Equal(t, "in", markers[0].ID)
	})

	t.Run("tile metadata upsert converges", func(t *testing.T) {
		rec := &TileMetadataRecord{GameID: "g1", Zoom: 2, X: 1, Y: 1, Format: "png", ContentHash: "aaa"}
		require.NoError(t, s.UpsertTileMetadata(ctx, rec))

		updated := &TileMetadataRecord{GameID: "g1", Zoom: 2, X: 1, Y: 1, Format: "png", ContentHash: "bbb"}
		require.NoError(t, s.UpsertTileMetadata(ctx, updated))

		got, err := s.GetTileMetadata(ctx, "g1", tile.Coordinate{X: 1, Y: 1, Z: 2}, tile.FormatPNG)
		require.NoError(t, err)
		assert.Equal(t, "bbb", got.ContentHash)
		assert.Equal(t, 1, s.TileRecordCount())
	})

	t.Run("format distinguishes records", func(t *testing.T) {
		_, err := s.GetTileMetadata(ctx, "g1", tile.Coordinate{X: 1, Y: 1, Z: 2}, tile.FormatWEBP)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestNewBlobStoreSelectsBackend(t *testing.T) {
	s, err := NewBlobStore(config.Store{Backend: "filesystem", BaseDir: t.TempDir()}, logger.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &FilesystemStore{}, s)

	_, err = NewBlobStore(config.Store{Backend: "tape"}, logger.NewNop())
	assert.Error(t, err)
}
