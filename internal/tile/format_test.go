package tile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
)

func TestParseFormat(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Format
	}{
		{"png", FormatPNG},
		{"PNG", FormatPNG},
		{"jpeg", FormatJPEG},
		{"jpg", FormatJPEG},
		{"webp", FormatWEBP},
	} {
		got, err := ParseFormat(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseFormat("gif")
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidInput(err))
}

func TestFormatStringAndMIME(t *testing.T) {
	assert.Equal(t, "png", FormatPNG.String())
	assert.Equal(t, "jpeg", FormatJPEG.String())
	assert.Equal(t, "webp", FormatWEBP.String())

	assert.Equal(t, "image/png", FormatPNG.MIME())
	assert.Equal(t, "image/jpeg", FormatJPEG.MIME())
	assert.Equal(t, "image/webp", FormatWEBP.MIME())
}

func TestKeys(t *testing.T) {
	c := Coordinate{X: 5, Y: 7, Z: 3}

	key := CacheKey("elden-ring", c, FormatPNG)
	assert.Equal(t, "tile:elden-ring:3:5:7:png", key)
	assert.Equal(t, "etag:tile:elden-ring:3:5:7:png", ETagKey(key))

	assert.True(t, len(CachePrefix("elden-ring")) < len(key))
	assert.Equal(t, "tile:elden-ring:", CachePrefix("elden-ring"))

	assert.Equal(t, "elden-ring/3/5/7.png", ObjectKey("elden-ring", c, FormatPNG))
	assert.Equal(t, "elden-ring/metadata.json", MetadataObjectKey("elden-ring"))
}
