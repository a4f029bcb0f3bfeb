// Package skinmask classifies pixels as skin from their hue, saturation and
// texture and grows the strict classification into nearby shaded skin.
package skinmask

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-facedetect/colorspace"
	"github.com/nvr-ai/go-facedetect/common"
)

// Band is an inclusive hue x saturation rectangle.
type Band struct {
	MinHue        float32 `json:"min_hue" yaml:"min_hue"`
	MaxHue        float32 `json:"max_hue" yaml:"max_hue"`
	MinSaturation float32 `json:"min_saturation" yaml:"min_saturation"`
	MaxSaturation float32 `json:"max_saturation" yaml:"max_saturation"`
}

// Contains reports whether the colour falls inside the band, bounds included.
func (b Band) Contains(c colorspace.HueSaturation) bool {
	return c.Hue >= b.MinHue && c.Hue <= b.MaxHue &&
		c.Saturation >= b.MinSaturation && c.Saturation <= b.MaxSaturation
}

// Filter accepts a colour when any band contains it and, if LimitTexture is
// set, its texture amplitude does not exceed MaxTextureAmplitude.
type Filter struct {
	Bands               []Band  `json:"bands" yaml:"bands"`
	LimitTexture        bool    `json:"limit_texture" yaml:"limit_texture"`
	MaxTextureAmplitude float32 `json:"max_texture_amplitude" yaml:"max_texture_amplitude"`
}

// Clone returns a copy that shares no memory with f.
func (f Filter) Clone() Filter {
	f.Bands = slices.Clone(f.Bands)
	return f
}

// Accepts evaluates the filter for one pixel.
func (f Filter) Accepts(c colorspace.HueSaturation) bool {
	if f.LimitTexture && c.TextureAmplitude > f.MaxTextureAmplitude {
		return false
	}
	for _, band := range f.Bands {
		if band.Contains(c) {
			return true
		}
	}
	return false
}

// Validate rejects filters without bands and bands with inverted bounds.
func (f Filter) Validate() error {
	if len(f.Bands) == 0 {
		return errors.Wrap(common.ErrInvalidArgument, "skin filter has no bands")
	}
	for i, b := range f.Bands {
		if b.MinHue > b.MaxHue || b.MinSaturation > b.MaxSaturation {
			return errors.Wrapf(common.ErrInvalidArgument, "skin filter band %d is inverted: %+v", i, b)
		}
	}
	return nil
}

// StrictFilter returns the seed filter: three tuned hue bands and a texture
// ceiling of 9 so that smooth skin is preferred over textured backgrounds.
func StrictFilter() Filter {
	return Filter{
		Bands: []Band{
			{MinHue: 105, MaxHue: 120, MinSaturation: 10, MaxSaturation: 60},
			{MinHue: 120, MaxHue: 160, MinSaturation: 10, MaxSaturation: 60},
			{MinHue: 160, MaxHue: 180, MinSaturation: 30, MaxSaturation: 40},
		},
		LimitTexture:        true,
		MaxTextureAmplitude: 9,
	}
}

// RelaxedFilter returns the Fleck-Forsyth skin band without a texture bound.
func RelaxedFilter() Filter {
	return Filter{
		Bands: []Band{{MinHue: 110, MaxHue: 180, MinSaturation: 0, MaxSaturation: 180}},
	}
}
