package imageproc

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
	"github.com/richiexuetang/ritcher-map/internal/tile"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(i)
		img.Pix[i+1] = uint8(i / 2)
		img.Pix[i+2] = 200
		img.Pix[i+3] = 255
	}
	return img
}

func TestEncodeDecode(t *testing.T) {
	p := NewProcessor(256, 85)

	for _, f := range []tile.Format{tile.FormatPNG, tile.FormatJPEG, tile.FormatWEBP} {
		t.Run(f.String(), func(t *testing.T) {
			data, err := p.Encode(testImage(64, 64), f)
			require.NoError(t, err)
			require.NotEmpty(t, data)

			img, err := p.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, 64, img.Bounds().Dx())
			assert.Equal(t, 64, img.Bounds().Dy())
		})
	}

	t.Run("garbage input fails decoding", func(t *testing.T) {
		_, err := p.Decode([]byte("not an image"))
		require.Error(t, err)
		assert.Equal(t, apperror.KindProcessing, apperror.KindOf(err))
	})
}

func TestPNGRoundTripIsLossless(t *testing.T) {
	p := NewProcessor(256, 85)
	src := testImage(32, 32)

	data, err := p.Encode(src, tile.FormatPNG)
	require.NoError(t, err)

	decoded, err := p.Decode(data)
	require.NoError(t, err)

	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			sr, sg, sb, sa := src.At(x, y).RGBA()
			dr, dg, db, da := decoded.At(x, y).RGBA()
			require.Equal(t, [4]uint32{sr, sg, sb, sa}, [4]uint32{dr, dg, db, da}, "pixel (%d,%d)", x, y)
		}
	}
}

func TestResize(t *testing.T) {
	p := NewProcessor(256, 85)

	t.Run("exact ignores aspect ratio", func(t *testing.T) {
		out := p.ResizeExact(testImage(100, 50), 64, 64)
		assert.Equal(t, 64, out.Bounds().Dx())
		assert.Equal(t, 64, out.Bounds().Dy())
	})

	t.Run("preserve aspect fits within the box", func(t *testing.T) {
		out := p.ResizePreserveAspect(testImage(200, 100), 64, 64)
		assert.Equal(t, 64, out.Bounds().Dx())
		assert.Equal(t, 32, out.Bounds().Dy())
	})

	t.Run("to tile uses configured size", func(t *testing.T) {
		out := p.ResizeToTile(testImage(1000, 1000))
		assert.Equal(t, 256, out.Bounds().Dx())
		assert.Equal(t, 256, out.Bounds().Dy())
	})
}

func TestCrop(t *testing.T) {
	p := NewProcessor(256, 85)
	src := testImage(100, 100)

	t.Run("cuts the requested region", func(t *testing.T) {
		out, err := p.Crop(src, 10, 20, 30, 40)
		require.NoError(t, err)
		assert.Equal(t, 30, out.Bounds().Dx())
		assert.Equal(t, 40, out.Bounds().Dy())
	})

	t.Run("rejects regions outside the image", func(t *testing.T) {
		_, err := p.Crop(src, 90, 0, 20, 20)
		require.Error(t, err)
		assert.Equal(t, apperror.KindProcessing, apperror.KindOf(err))
	})
}

func TestBlankTiles(t *testing.T) {
	p := NewProcessor(256, 85)

	t.Run("blank tile is transparent", func(t *testing.T) {
		data, err := p.BlankTile(tile.FormatPNG)
		require.NoError(t, err)

		img, err := p.Decode(data)
		require.NoError(t, err)

		_, _, _, a := img.At(128, 128).RGBA()
		assert.Zero(t, a)
	})

	t.Run("blank base is opaque light gray", func(t *testing.T) {
		img := p.BlankBase()
		assert.Equal(t, 256, img.Bounds().Dx())

		r, g, b, a := img.At(0, 0).RGBA()
		assert.Equal(t, uint32(240), r>>8)
		assert.Equal(t, uint32(240), g>>8)
		assert.Equal(t, uint32(240), b>>8)
		assert.Equal(t, uint32(255), a>>8)
	})
}
