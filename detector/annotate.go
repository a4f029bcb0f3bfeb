package detector

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/nvr-ai/go-facedetect/common"
)

// OutlineColor is the default colour used to mark faces.
var OutlineColor = color.RGBA{R: 173, G: 255, B: 47, A: 255}

// Annotate returns a copy of img with every region outlined by a one-pixel
// rectangle. Region coordinates are relative to the top-left corner of img.
func Annotate(img image.Image, regions []common.Region, outline color.Color) image.Image {
	bounds := img.Bounds()
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.DrawImage(img, -bounds.Min.X, -bounds.Min.Y)

	dc.SetColor(outline)
	dc.SetLineWidth(1)
	for _, r := range regions {
		// Offset by half a pixel so the stroke covers whole pixels.
		dc.DrawRectangle(float64(r.Left)+0.5, float64(r.Top)+0.5, float64(r.Width-1), float64(r.Height-1))
		dc.Stroke()
	}
	return dc.Image()
}
