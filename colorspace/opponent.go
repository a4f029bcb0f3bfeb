package colorspace

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-facedetect/images"
)

// IRgBy is a pixel in the log-opponent colour space.
type IRgBy struct {
	// Rg is the red-green opponent channel.
	Rg float32 `json:"rg"`
	// By is the blue-yellow opponent channel.
	By float32 `json:"by"`
	// I is the log intensity.
	I float32 `json:"i"`
}

// logResponse holds L(x) = 105*log10(x+1) for every 8-bit level.
var logResponse = func() (table [256]float32) {
	for x := range table {
		table[x] = 105 * math32.Log10(float32(x)+1)
	}
	return table
}()

// OpponentFromPixel converts a single RGB sample.
func OpponentFromPixel(p Pixel) IRgBy {
	r, g, b := logResponse[p.R], logResponse[p.G], logResponse[p.B]
	return IRgBy{
		Rg: r - g,
		By: b - (g+r)/2,
		I:  (r + b + g) / 3,
	}
}

// ToIRgBy converts every pixel of the grid to the opponent colour space.
//
// Arguments:
// - pixels: The source grid.
//
// Returns:
// - A grid of the same dimensions.
// - ErrInvalidArgument when the grid is empty or malformed.
func ToIRgBy(pixels images.Grid[Pixel]) (images.Grid[IRgBy], error) {
	if err := pixels.Validate(); err != nil {
		return images.Grid[IRgBy]{}, errors.Wrap(err, "opponent colour conversion")
	}
	return images.Map(pixels, OpponentFromPixel), nil
}
