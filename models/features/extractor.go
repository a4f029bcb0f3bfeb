package features

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-facedetect/common"
	"github.com/nvr-ai/go-facedetect/images"
)

// Extractor turns image regions into feature vectors. It is immutable and safe
// for concurrent use.
type Extractor struct {
	opts      Options
	dimension int
}

// NewExtractor creates a new extractor with the given options.
//
// Arguments:
//   - opts: Sample size and descriptor configuration.
//
// Returns:
//   - A configured Extractor.
//   - ErrInvalidArgument for inconsistent options.
//
// @example
// extractor, err := NewExtractor(DefaultOptions())
func NewExtractor(opts Options) (*Extractor, error) {
	dimension, err := opts.Dimension()
	if err != nil {
		return nil, errors.Wrap(err, "feature options")
	}
	return &Extractor{opts: opts, dimension: dimension}, nil
}

// Options returns the extractor configuration.
func (e *Extractor) Options() Options { return e.opts }

// Dimension returns the length of every vector the extractor produces.
func (e *Extractor) Dimension() int { return e.dimension }

// Sample crops region from img, converts it to grey and resizes it to the
// configured sample size with a Lanczos3 kernel. Region coordinates are
// relative to the top-left corner of img and are clipped to its bounds.
//
// Arguments:
//   - img: The source image.
//   - region: The area to sample.
//
// Returns:
//   - The greyscale sample.
//   - ErrInvalidArgument if the region does not overlap the image.
func (e *Extractor) Sample(img image.Image, region common.Region) (*image.Gray, error) {
	bounds := img.Bounds()
	rect := region.ToRect().Add(bounds.Min).Intersect(bounds)
	if rect.Empty() {
		return nil, errors.Wrapf(common.ErrInvalidArgument, "region %s lies outside the image", region)
	}

	gray := images.Grayscale(imaging.Crop(img, rect))
	resized := resize.Resize(uint(e.opts.SampleWidth), uint(e.opts.SampleHeight), gray, resize.Lanczos3)
	if g, ok := resized.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g, nil
	}
	return images.Grayscale(resized), nil
}

// Describe computes the configured descriptor for a prepared sample.
func (e *Extractor) Describe(sample *image.Gray) (Vector, error) {
	if e.opts.Mode == ModeHOG {
		return ExtractHOG(sample, e.opts.HOG)
	}
	return ExtractFeatures(sample, e.opts.Blocks)
}

// Extract samples region from img and describes it.
//
// @example
// v, err := extractor.Extract(img, candidate)
func (e *Extractor) Extract(img image.Image, region common.Region) (Vector, error) {
	sample, err := e.Sample(img, region)
	if err != nil {
		return nil, err
	}
	return e.Describe(sample)
}
