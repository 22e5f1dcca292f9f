package imageproc

import (
	"image"
	"image/color"
)

const markerIconSize = 16

var markerColors = map[string]color.NRGBA{
	"treasure": {R: 255, G: 215, B: 0, A: 255},
	"enemy":    {R: 255, G: 0, B: 0, A: 255},
	"npc":      {R: 0, G: 255, B: 0, A: 255},
	"poi":      {R: 0, G: 0, B: 255, A: 255},
}

var defaultMarkerColor = color.NRGBA{R: 128, G: 128, B: 128, A: 255}

// MarkerIcon renders the built-in icon for a marker type: a 16px filled
// circle on a transparent background.
func MarkerIcon(markerType string) image.Image {
	c, ok := markerColors[markerType]
	if !ok {
		c = defaultMarkerColor
	}

	img := image.NewNRGBA(image.Rect(0, 0, markerIconSize, markerIconSize))

	center := markerIconSize / 2
	radius := markerIconSize/2 - 2

	for y := 0; y < markerIconSize; y++ {
		for x := 0; x < markerIconSize; x++ {
			dx, dy := x-center, y-center
			if dx*dx+dy*dy <= radius*radius {
				img.SetNRGBA(x, y, c)
			}
		}
	}

	return img
}
