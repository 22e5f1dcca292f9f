package imageproc

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestCompositeOverlay(t *testing.T) {
	base := solidNRGBA(8, 8, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	t.Run("opaque overlay replaces base pixels", func(t *testing.T) {
		overlay := solidNRGBA(4, 4, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		out := CompositeOverlay(base, overlay, 2, 2)

		assert.Equal(t, color.NRGBA{R: 200, G: 100, B: 50, A: 255}, out.NRGBAAt(3, 3))
		// Outside the overlay footprint the base is untouched.
		assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, out.NRGBAAt(0, 0))
		assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, out.NRGBAAt(7, 7))
	})

	t.Run("fully transparent overlay leaves base unchanged", func(t *testing.T) {
		overlay := solidNRGBA(4, 4, color.NRGBA{R: 200, G: 100, B: 50, A: 0})
		out := CompositeOverlay(base, overlay, 2, 2)

		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				require.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, out.NRGBAAt(x, y), "pixel (%d,%d)", x, y)
			}
		}
	})

	t.Run("half transparent overlay blends channels", func(t *testing.T) {
		overlay := solidNRGBA(2, 2, color.NRGBA{R: 255, G: 255, B: 255, A: 128})
		out := CompositeOverlay(base, overlay, 0, 0)

		got := out.NRGBAAt(0, 0)
		// outRGB = overlay*alpha + base*(1-alpha), alpha = 128/255.
		assert.InDelta(t, 133, int(got.R), 2)
		assert.InDelta(t, 138, int(got.G), 2)
		assert.InDelta(t, 143, int(got.B), 2)
		// outAlpha = max(blendedAlpha, overlayAlpha) = blendedAlpha here.
		assert.InDelta(t, 191, int(got.A), 2)
	})

	t.Run("output alpha is at least overlay alpha", func(t *testing.T) {
		transparentBase := solidNRGBA(4, 4, color.NRGBA{A: 0})
		overlay := solidNRGBA(2, 2, color.NRGBA{R: 255, A: 200})
		out := CompositeOverlay(transparentBase, overlay, 0, 0)

		assert.Equal(t, uint8(200), out.NRGBAAt(0, 0).A)
	})

	t.Run("overlay hanging past the edge is clipped", func(t *testing.T) {
		overlay := solidNRGBA(4, 4, color.NRGBA{R: 200, A: 255})

		out := CompositeOverlay(base, overlay, 6, 6)
		assert.Equal(t, uint8(200), out.NRGBAAt(7, 7).R)

		out = CompositeOverlay(base, overlay, -2, -2)
		assert.Equal(t, uint8(200), out.NRGBAAt(0, 0).R)
		assert.Equal(t, uint8(10), out.NRGBAAt(3, 3).R)
	})

	t.Run("does not mutate its inputs", func(t *testing.T) {
		overlay := solidNRGBA(4, 4, color.NRGBA{R: 200, A: 255})
		CompositeOverlay(base, overlay, 0, 0)

		assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, base.NRGBAAt(0, 0))
	})

	t.Run("is byte stable", func(t *testing.T) {
		overlay := solidNRGBA(4, 4, color.NRGBA{R: 77, G: 33, B: 99, A: 150})

		first := CompositeOverlay(base, overlay, 1, 1)
		second := CompositeOverlay(base, overlay, 1, 1)
		assert.Equal(t, first.Pix, second.Pix)
	})
}

func TestMarkerIcon(t *testing.T) {
	t.Run("known types use their color", func(t *testing.T) {
		icon := MarkerIcon("treasure").(*image.NRGBA)
		center := icon.NRGBAAt(8, 8)
		assert.Equal(t, color.NRGBA{R: 255, G: 215, B: 0, A: 255}, center)
	})

	t.Run("unknown types fall back to gray", func(t *testing.T) {
		icon := MarkerIcon("mystery").(*image.NRGBA)
		assert.Equal(t, color.NRGBA{R: 128, G: 128, B: 128, A: 255}, icon.NRGBAAt(8, 8))
	})

	t.Run("corners stay transparent", func(t *testing.T) {
		icon := MarkerIcon("enemy").(*image.NRGBA)
		assert.Equal(t, uint8(0), icon.NRGBAAt(0, 0).A)
		assert.Equal(t, uint8(0), icon.NRGBAAt(15, 15).A)
		assert.Equal(t, 16, icon.Bounds().Dx())
	})
}
