package wkt

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richiexuetang/ritcher-map/internal/tile"
)

func TestParsePoint(t *testing.T) {
	t.Run("parses lng lat order", func(t *testing.T) {
		p, ok := ParsePoint("POINT(-122.41 37.77)")
		require.True(t, ok)
		assert.Equal(t, orb.Point{-122.41, 37.77}, p)
	})

	t.Run("tolerates surrounding whitespace", func(t *testing.T) {
		p, ok := ParsePoint("  POINT(1 2)  ")
		require.True(t, ok)
		assert.Equal(t, orb.Point{1, 2}, p)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, s := range []string{
			"",
			"POINT()",
			"POINT(1)",
			"POINT(1 2 3)",
			"POINT(a b)",
			"POINT(1 2",
			"LINESTRING(1 2, 3 4)",
			"SRID=4326;POINT(1 2)",
		} {
			_, ok := ParsePoint(s)
			assert.False(t, ok, "input %q", s)
		}
	})
}

func TestParseBounds(t *testing.T) {
	t.Run("returns axis-aligned bounds of the ring", func(t *testing.T) {
		b, ok := ParseBounds("POLYGON((-10 -5, 20 -5, 20 15, -10 15, -10 -5))")
		require.True(t, ok)
		assert.Equal(t, tile.Bounds{North: 15, South: -5, East: 20, West: -10}, b)
	})

	t.Run("skips unparseable points", func(t *testing.T) {
		b, ok := ParseBounds("POLYGON((0 0, bogus, 10 10, 0 0))")
		require.True(t, ok)
		assert.Equal(t, tile.Bounds{North: 10, South: 0, East: 10, West: 0}, b)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, s := range []string{
			"",
			"POLYGON()",
			"POLYGON((1 2, 3 4))",          // too few points for a ring
			"POLYGON((a b, c d, e f, g h))", // no valid point
			"POINT(1 2)",
		} {
			_, ok := ParseBounds(s)
			assert.False(t, ok, "input %q", s)
		}
	})
}
