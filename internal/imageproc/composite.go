package imageproc

import (
	"image"

	"github.com/disintegration/imaging"
)

// CompositeOverlay blends overlay onto base at the given offset and
// returns the result. Overlay pixels falling outside the base are
// skipped, not clamped.
//
// RGB channels use straight alpha blending. The output alpha is the
// blended alpha raised to at least the overlay's alpha; tiles produced
// with this rule are persisted and compared by content hash, so the rule
// must stay byte-stable.
func CompositeOverlay(base, overlay image.Image, offsetX, offsetY int) *image.NRGBA {
	dst := imaging.Clone(base)
	src := imaging.Clone(overlay)

	sb := src.Bounds()
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()

	for oy := 0; oy < sb.Dy(); oy++ {
		ty := offsetY + oy
		if ty < 0 || ty >= h {
			continue
		}
		for ox := 0; ox < sb.Dx(); ox++ {
			tx := offsetX + ox
			if tx < 0 || tx >= w {
				continue
			}

			si := src.PixOffset(ox, oy)
			di := dst.PixOffset(tx, ty)

			oa := src.Pix[si+3]
			alpha := float64(oa) / 255
			inv := 1 - alpha

			dst.Pix[di] = uint8(float64(src.Pix[si])*alpha + float64(dst.Pix[di])*inv)
			dst.Pix[di+1] = uint8(float64(src.Pix[si+1])*alpha + float64(dst.Pix[di+1])*inv)
			dst.Pix[di+2] = uint8(float64(src.Pix[si+2])*alpha + float64(dst.Pix[di+2])*inv)

			blended := uint8(float64(oa)*alpha + float64(dst.Pix[di+3])*inv)
			if oa > blended {
				blended = oa
			}
			dst.Pix[di+3] = blended
		}
	}

	return dst
}

// flattenAlpha drops the alpha channel ahead of JPEG encoding by forcing
// every pixel opaque.
func flattenAlpha(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 255
	}
	return out
}
