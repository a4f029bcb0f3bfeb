package colorspace

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-facedetect/common"
	"github.com/nvr-ai/go-facedetect/images"
)

// HueSaturation is the per-pixel input of the skin filters.
type HueSaturation struct {
	// Hue is atan2(rg, by) in degrees.
	Hue float32 `json:"hue"`
	// Saturation is the length of the (rg, by) vector.
	Saturation float32 `json:"saturation"`
	// TextureAmplitude is the smoothed deviation of intensity from its local median.
	TextureAmplitude float32 `json:"texture_amplitude"`
}

// Options controls the smoothing radii used by Convert. Each radius is
// round(multiplier * Scale(width, height)).
type Options struct {
	// RgBySmoothenMultiplier scales the median radius applied to rg and by
	// before hue and saturation are computed.
	RgBySmoothenMultiplier float64 `json:"rgby_smoothen_multiplier" yaml:"rgby_smoothen_multiplier"`
	// TextureFirstPassMultiplier scales the median radius applied to intensity.
	TextureFirstPassMultiplier float64 `json:"texture_first_pass_multiplier" yaml:"texture_first_pass_multiplier"`
	// TextureSecondPassMultiplier scales the median radius applied to the
	// absolute intensity deviation.
	TextureSecondPassMultiplier float64 `json:"texture_second_pass_multiplier" yaml:"texture_second_pass_multiplier"`
	// EdgeMode resolves window samples outside the image.
	EdgeMode images.EdgeMode `json:"edge_mode" yaml:"edge_mode"`
	// MaxRadius caps every smoothing radius; zero leaves them uncapped.
	MaxRadius int `json:"max_radius" yaml:"max_radius"`
}

// DefaultOptions returns the multipliers tuned for 320-pixel-perimeter scaling.
func DefaultOptions() Options {
	return Options{
		RgBySmoothenMultiplier:      2,
		TextureFirstPassMultiplier:  8,
		TextureSecondPassMultiplier: 12,
		EdgeMode:                    images.ClampEdgeMode,
	}
}

// Validate rejects negative multipliers and a negative radius cap.
func (o Options) Validate() error {
	if o.RgBySmoothenMultiplier < 0 || o.TextureFirstPassMultiplier < 0 || o.TextureSecondPassMultiplier < 0 {
		return errors.Wrapf(common.ErrInvalidArgument, "colour multipliers must not be negative: %+v", o)
	}
	if o.MaxRadius < 0 {
		return errors.Wrapf(common.ErrInvalidArgument, "max radius must not be negative, got %d", o.MaxRadius)
	}
	return nil
}

// Radii returns the rg/by, first texture and second texture median radii for
// an image of the given size, each capped at MaxRadius when it is set.
func (o Options) Radii(width, height int) (rgby, first, second int) {
	scale := Scale(width, height)
	capped := func(multiplier float64) int {
		r := Radius(multiplier, scale)
		if o.MaxRadius > 0 {
			r = min(r, o.MaxRadius)
		}
		return r
	}
	return capped(o.RgBySmoothenMultiplier), capped(o.TextureFirstPassMultiplier), capped(o.TextureSecondPassMultiplier)
}

// Scale is (width+height)/320, the factor applied to every smoothing multiplier.
func Scale(width, height int) float64 {
	return float64(width+height) / 320
}

// Radius rounds multiplier*scale to the nearest whole pixel.
func Radius(multiplier, scale float64) int {
	return int(math.Round(multiplier * scale))
}

// Convert computes hue, saturation and texture amplitude for every pixel.
//
// Texture amplitude is median(|I - median(I, r1)|, r2) where I is the opponent
// intensity and r1, r2 come from the texture multipliers. Hue and saturation
// are taken from the rg and by planes after a median pass with the rg/by
// radius. A zero radius disables the corresponding smoothing.
//
// Each median pass costs O(width*height*radius*log(levels)), and the radii grow
// with the image perimeter, so the texture passes dominate on large photos.
// Options.MaxRadius bounds that cost at the price of a smaller texture window.
//
// Arguments:
// - pixels: The source RGB grid.
// - opts: Smoothing multipliers.
//
// Returns:
// - A grid of the same dimensions as pixels.
// - ErrInvalidArgument when the grid is empty.
//
// @example
// hs, err := Convert(FromImage(img), DefaultOptions())
func Convert(pixels images.Grid[Pixel], opts Options) (images.Grid[HueSaturation], error) {
	opponent, err := ToIRgBy(pixels)
	if err != nil {
		return images.Grid[HueSaturation]{}, err
	}
	if err := opts.Validate(); err != nil {
		return images.Grid[HueSaturation]{}, err
	}

	rgbyRadius, firstRadius, secondRadius := opts.Radii(pixels.Width, pixels.Height)
	mode := opts.EdgeMode
	if mode == "" {
		mode = images.ClampEdgeMode
	}

	intensity := images.Map(opponent, func(c IRgBy) float32 { return c.I })
	smoothed := images.MedianFilter(intensity, firstRadius, mode)
	deviation := images.NewGrid[float32](pixels.Width, pixels.Height)
	for i, v := range intensity.Values {
		deviation.Values[i] = math32.Abs(v - smoothed.Values[i])
	}
	texture := images.MedianFilter(deviation, secondRadius, mode)

	rg := images.MedianFilter(images.Map(opponent, func(c IRgBy) float32 { return c.Rg }), rgbyRadius, mode)
	by := images.MedianFilter(images.Map(opponent, func(c IRgBy) float32 { return c.By }), rgbyRadius, mode)

	out := images.NewGrid[HueSaturation](pixels.Width, pixels.Height)
	images.Parallel(pixels.Height, func(start, end int) {
		for i := start * pixels.Width; i < end*pixels.Width; i++ {
			out.Values[i] = HueSaturation{
				Hue:              math32.Atan2(rg.Values[i], by.Values[i]) * (180 / math32.Pi),
				Saturation:       math32.Sqrt(rg.Values[i]*rg.Values[i] + by.Values[i]*by.Values[i]),
				TextureAmplitude: texture.Values[i],
			}
		}
	})

	return out, nil
}
