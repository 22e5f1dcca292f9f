// Package tile holds the slippy-map coordinate math and tile identity
// types shared by the cache, the origin store and the generator.
package tile

import (
	"math"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
)

// Coordinate addresses a single Web-Mercator tile.
// A coordinate is valid at zoom z when 0 <= x,y < 2^z.
type Coordinate struct {
	X uint32
	Y uint32
	Z uint8
}

// Bounds is a geographic rectangle in degrees. South <= North always;
// West/East follow tile edges and are not normalized beyond +-180.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// WorldBounds covers the full globe. Pyramid metadata for single-image
// maps records these bounds regardless of the image's real extent.
var WorldBounds = Bounds{North: 90, South: -90, East: 180, West: -180}

// Bounds returns the geographic extent of the tile using the inverse
// Web-Mercator projection. The formula is evaluated uncorrected; the
// hyperbolic sine identity keeps latitudes inside ~+-85.05 degrees.
func (c Coordinate) Bounds() Bounds {
	n := math.Pow(2, float64(c.Z))

	west := float64(c.X)/n*360 - 180
	east := float64(c.X+1)/n*360 - 180

	north := math.Atan(math.Sinh(math.Pi*(1-2*float64(c.Y)/n))) * 180 / math.Pi
	south := math.Atan(math.Sinh(math.Pi*(1-2*float64(c.Y+1)/n))) * 180 / math.Pi

	return Bounds{North: north, South: south, East: east, West: west}
}

// Center returns the tile's centroid.
func (b Bounds) Center() (lat, lng float64) {
	return (b.North + b.South) / 2, (b.West + b.East) / 2
}

// mercatorLatLimit is the largest latitude representable in Web
// Mercator. Latitudes beyond it are clamped before projection.
const mercatorLatLimit = 85.05112878

// FromLatLng returns the tile containing the given point at zoom z,
// using the forward Mercator ln(tan+sec) identity with floored indices.
// Out-of-range points map to the nearest edge tile.
func FromLatLng(lat, lng float64, z uint8) Coordinate {
	n := math.Pow(2, float64(z))

	x := math.Floor((lng + 180) / 360 * n)

	lat = math.Max(-mercatorLatLimit, math.Min(mercatorLatLimit, lat))
	latRad := lat * math.Pi / 180
	y := math.Floor((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n)

	return Coordinate{X: clampIndex(x, n), Y: clampIndex(y, n), Z: z}
}

func clampIndex(v, n float64) uint32 {
	if v < 0 {
		return 0
	}
	if v > n-1 {
		return uint32(n - 1)
	}
	return uint32(v)
}

// TilesInBounds enumerates every tile in the axis-aligned rectangle
// spanned by the bounds' NW and SE corners, inclusive. This is a
// bounding-box approximation, not a polygon intersection: tiles near the
// edge of a non-rectangular region may be included or missed.
func TilesInBounds(b Bounds, z uint8) []Coordinate {
	nw := FromLatLng(b.North, b.West, z)
	se := FromLatLng(b.South, b.East, z)

	minX, maxX := minMax(nw.X, se.X)
	minY, maxY := minMax(nw.Y, se.Y)

	tiles := make([]Coordinate, 0, (maxX-minX+1)*(maxY-minY+1))
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			tiles = append(tiles, Coordinate{X: x, Y: y, Z: z})
		}
	}
	return tiles
}

func minMax(a, b uint32) (uint32, uint32) {
	if a < b {
		return a, b
	}
	return b, a
}

// Validate checks the coordinate against the configured zoom range and
// the 2^z grid before any I/O happens.
func (c Coordinate) Validate(minZoom, maxZoom uint8) error {
	if c.Z < minZoom || c.Z > maxZoom {
		return apperror.Newf(apperror.KindInvalidInput,
			"zoom %d outside allowed range [%d, %d]", c.Z, minZoom, maxZoom)
	}
	max := uint32(1) << c.Z
	if c.X >= max || c.Y >= max {
		return apperror.Newf(apperror.KindInvalidInput,
			"tile %d/%d out of range at zoom %d (max %d)", c.X, c.Y, c.Z, max-1)
	}
	return nil
}

const earthRadiusMeters = 6371000

// Haversine returns the great-circle distance between two points in meters.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// MaxZoomForImage picks the deepest zoom level at which a source image of
// the given dimensions still provides native resolution, clamped to [1, 20].
func MaxZoomForImage(width, height, tileSize uint32) uint8 {
	maxDim := width
	if height > maxDim {
		maxDim = height
	}
	tilesAtMax := math.Ceil(float64(maxDim) / float64(tileSize))
	z := math.Ceil(math.Log2(tilesAtMax))
	if z < 1 {
		z = 1
	}
	if z > 20 {
		z = 20
	}
	return uint8(z)
}
