// Package imageproc implements the tile image pipeline: decode, resize,
// crop, composite and per-format encode.
package imageproc

import (
	"bytes"
	"image"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
	"github.com/richiexuetang/ritcher-map/internal/tile"
)

// Processor carries the tile dimensions and lossy-format quality used for
// every image operation. Zero-cost to copy and safe for concurrent use.
type Processor struct {
	TileSize int
	Quality  int // 1..100, ignored by PNG
}

func NewProcessor(tileSize, quality int) Processor {
	return Processor{TileSize: tileSize, Quality: quality}
}

// Decode reads an image in any registered format (PNG, JPEG, WEBP, GIF...).
func (p Processor) Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindProcessing, "decode image", err)
	}
	return img, nil
}

// ResizeExact scales to exactly width x height with Lanczos resampling,
// ignoring the source aspect ratio.
func (p Processor) ResizeExact(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// ResizePreserveAspect scales by min(maxW/w, maxH/h) so the result fits
// within the given box without distortion.
func (p Processor) ResizePreserveAspect(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return img
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}

	return imaging.Resize(img, int(float64(w)*scale), int(float64(h)*scale), imaging.Lanczos)
}

// ResizeToTile scales to the configured tile size on both axes.
func (p Processor) ResizeToTile(img image.Image) image.Image {
	return p.ResizeExact(img, p.TileSize, p.TileSize)
}

// Crop cuts the width x height region at (x, y). The region must lie
// entirely inside the source image.
func (p Processor) Crop(img image.Image, x, y, width, height int) (image.Image, error) {
	b := img.Bounds()
	if x+width > b.Dx() || y+height > b.Dy() {
		return nil, apperror.Newf(apperror.KindProcessing,
			"crop bounds %dx%d at (%d,%d) exceed image dimensions %dx%d",
			width, height, x, y, b.Dx(), b.Dy())
	}
	return imaging.Crop(img, image.Rect(b.Min.X+x, b.Min.Y+y, b.Min.X+x+width, b.Min.Y+y+height)), nil
}

// Encode serializes the image in the requested tile format. JPEG flattens
// any alpha channel; JPEG and WEBP honor the configured quality.
func (p Processor) Encode(img image.Image, format tile.Format) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case tile.FormatPNG:
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, apperror.Wrap(apperror.KindProcessing, "encode png", err)
		}
	case tile.FormatJPEG:
		rgb := flattenAlpha(img)
		if err := imaging.Encode(&buf, rgb, imaging.JPEG, imaging.JPEGQuality(p.Quality)); err != nil {
			return nil, apperror.Wrap(apperror.KindProcessing, "encode jpeg", err)
		}
	case tile.FormatWEBP:
		opts := &webp.Options{Lossless: false, Quality: float32(p.Quality)}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return nil, apperror.Wrap(apperror.KindProcessing, "encode webp", err)
		}
	default:
		return nil, apperror.Newf(apperror.KindInvalidInput, "unsupported tile format %q", format)
	}

	return buf.Bytes(), nil
}

// BlankTile returns a fully transparent tile of size x size.
func (p Processor) BlankTile(format tile.Format) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, p.TileSize, p.TileSize))
	return p.Encode(img, format)
}

// BlankBase returns an opaque light-gray base image used when a game has
// no base map configured.
func (p Processor) BlankBase() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, p.TileSize, p.TileSize))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 240
		img.Pix[i+1] = 240
		img.Pix[i+2] = 240
		img.Pix[i+3] = 255
	}
	return img
}
