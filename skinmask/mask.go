package skinmask

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-facedetect/colorspace"
	"github.com/nvr-ai/go-facedetect/common"
	"github.com/nvr-ai/go-facedetect/images"
)

// Mask marks skin pixels.
type Mask = images.Grid[bool]

// Options configures mask construction.
type Options struct {
	// Strict selects the seed pixels.
	Strict Filter `json:"strict" yaml:"strict"`
	// Relaxed admits neighbours of the current mask during growth.
	Relaxed Filter `json:"relaxed" yaml:"relaxed"`
	// Relaxations is the number of growth passes; each adds at most one ring.
	Relaxations int `json:"relaxations" yaml:"relaxations"`
}

// DefaultOptions returns the strict and relaxed filters with five growth passes.
func DefaultOptions() Options {
	return Options{Strict: StrictFilter(), Relaxed: RelaxedFilter(), Relaxations: 5}
}

// Clone returns a deep copy of the options.
func (o Options) Clone() Options {
	o.Strict = o.Strict.Clone()
	o.Relaxed = o.Relaxed.Clone()
	return o
}

// Validate checks both filters and the pass count.
func (o Options) Validate() error {
	if o.Relaxations < 0 {
		return errors.Wrapf(common.ErrInvalidArgument, "relaxations must not be negative, got %d", o.Relaxations)
	}
	if err := o.Strict.Validate(); err != nil {
		return errors.Wrap(err, "strict")
	}
	return errors.Wrap(o.Relaxed.Validate(), "relaxed")
}

var neighbours = [4][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}

// Build seeds the mask with every pixel accepted by the strict filter and then
// runs Relaxations growth passes. Each pass only examines the 4-neighbours of
// pixels added by the previous pass and admits those the relaxed filter
// accepts, so the mask grows by at most one pixel ring per pass and never
// loses pixels.
//
// Arguments:
// - colours: Per-pixel hue, saturation and texture.
// - opts: Filters and pass count.
//
// Returns:
// - A mask with the dimensions of colours.
// - ErrInvalidArgument for an empty grid or invalid options.
//
// @example
// mask, err := Build(hs, DefaultOptions())
func Build(colours images.Grid[colorspace.HueSaturation], opts Options) (Mask, error) {
	if err := colours.Validate(); err != nil {
		return Mask{}, errors.Wrap(err, "skin mask")
	}
	if err := opts.Validate(); err != nil {
		return Mask{}, err
	}

	mask := images.Map(colours, opts.Strict.Accepts)

	frontier := make([]int, 0, mask.Len()/8)
	for i, skin := range mask.Values {
		if skin {
			frontier = append(frontier, i)
		}
	}

	for pass := 0; pass < opts.Relaxations && len(frontier) > 0; pass++ {
		var next []int
		for _, i := range frontier {
			x, y := i%mask.Width, i/mask.Width
			for _, d := range neighbours {
				nx, ny := x+d[0], y+d[1]
				if !mask.Contains(nx, ny) {
					continue
				}
				n := mask.Index(nx, ny)
				if mask.Values[n] || !opts.Relaxed.Accepts(colours.Values[n]) {
					continue
				}
				mask.Values[n] = true
				next = append(next, n)
			}
		}
		frontier = next
	}

	return mask, nil
}

// Count returns the number of set pixels.
func Count(mask Mask) int {
	n := 0
	for _, v := range mask.Values {
		if v {
			n++
		}
	}
	return n
}
