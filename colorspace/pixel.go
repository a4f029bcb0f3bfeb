// Package colorspace converts RGB rasters into the opponent colour space and
// derives per-pixel hue, saturation and texture amplitude for skin detection.
package colorspace

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/nvr-ai/go-facedetect/images"
)

// Pixel is an 8-bit RGB sample.
type Pixel struct {
	R, G, B uint8
}

// FromImage copies img into a pixel grid anchored at the origin. Alpha is
// ignored after un-premultiplying.
func FromImage(img image.Image) images.Grid[Pixel] {
	nrgba := imaging.Clone(img)
	width, height := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	grid := images.NewGrid[Pixel](width, height)

	images.Parallel(height, func(start, end int) {
		for y := start; y < end; y++ {
			row := nrgba.Pix[y*nrgba.Stride:]
			for x := 0; x < width; x++ {
				grid.Values[y*width+x] = Pixel{R: row[4*x], G: row[4*x+1], B: row[4*x+2]}
			}
		}
	})

	return grid
}
