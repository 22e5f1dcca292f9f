// Package wkt parses the small WKT subset stored by the marker service:
// POINT(lng lat) and POLYGON((lng lat, ...)). SRIDs and polygon holes are
// deliberately unsupported. Malformed input yields ok=false, never an
// error: callers treat it as "geometry unavailable".
package wkt

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/richiexuetang/ritcher-map/internal/tile"
)

// ParsePoint parses "POINT(lng lat)".
func ParsePoint(s string) (orb.Point, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "POINT(") || !strings.HasSuffix(s, ")") {
		return orb.Point{}, false
	}

	fields := strings.Fields(s[len("POINT(") : len(s)-1])
	if len(fields) != 2 {
		return orb.Point{}, false
	}

	lng, err1 := strconv.ParseFloat(fields[0], 64)
	lat, err2 := strconv.ParseFloat(fields[1], 64)
	if err1 != nil || err2 != nil {
		return orb.Point{}, false
	}

	return orb.Point{lng, lat}, true
}

// ParseBounds parses "POLYGON((lng lat, lng lat, ...))" and returns the
// axis-aligned bounds of the listed points. Points that fail to parse are
// skipped; at least one valid point is required.
func ParseBounds(s string) (tile.Bounds, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "POLYGON((") || !strings.HasSuffix(s, "))") {
		return tile.Bounds{}, false
	}

	points := strings.Split(s[len("POLYGON((") : len(s)-2], ",")
	if len(points) < 4 {
		return tile.Bounds{}, false
	}

	b := tile.Bounds{North: -180, South: 180, East: -360, West: 360}
	valid := false
	for _, p := range points {
		fields := strings.Fields(strings.TrimSpace(p))
		if len(fields) != 2 {
			continue
		}
		lng, err1 := strconv.ParseFloat(fields[0], 64)
		lat, err2 := strconv.ParseFloat(fields[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		valid = true
		if lat > b.North {
			b.North = lat
		}
		if lat < b.South {
			b.South = lat
		}
		if lng > b.East {
			b.East = lng
		}
		if lng < b.West {
			b.West = lng
		}
	}
	if !valid {
		return tile.Bounds{}, false
	}
	return b, true
}
