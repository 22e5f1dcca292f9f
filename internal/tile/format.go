package tile

import (
	"strings"

	"github.com/richiexuetang/ritcher-map/internal/apperror"
)

// Format is the closed set of encodings a tile can be served in.
type Format uint8

const (
	FormatPNG Format = iota
	FormatJPEG
	FormatWEBP
)

// ParseFormat maps a format string from a request path to a Format.
// "jpg" is accepted as an alias for "jpeg".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "webp":
		return FormatWEBP, nil
	}
	return 0, apperror.Newf(apperror.KindInvalidInput, "unsupported tile format %q", s)
}

func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatWEBP:
		return "webp"
	default:
		return "png"
	}
}

// MIME returns the Content-Type value for the format.
func (f Format) MIME() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatWEBP:
		return "image/webp"
	default:
		return "image/png"
	}
}
