package postprocess

import (
	"math"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-facedetect/common"
)

// AdjustAspect grows a region towards the target width/height ratio so that
// candidate crops share the classifier's sample shape. A region narrower than
// ratio gets a width of round(height*ratio); otherwise it gets a height of
// round(width/ratio). The deficit is split floor on the left or top and the
// remainder on the right or bottom, and each edge is clamped to bounds
// without moving the shortfall to the opposite side, so a region against an
// image edge may end up short of the target ratio.
//
// Arguments:
//   - r: The region to shape.
//   - bounds: The image size used for clamping.
//   - ratio: The target width/height ratio.
//
// Returns:
//   - The shaped region, never smaller than r clipped to bounds.
//   - ErrInvalidArgument for a non-positive ratio, region or bounds, or a
//     region that does not overlap the image.
//
// @example
// AdjustAspect(Region{Left: 40, Top: 40, Width: 10, Height: 20}, Size{Width: 100, Height: 100}, 1)
// // {35 40 20 20}
func AdjustAspect(r common.Region, bounds common.Size, ratio float64) (common.Region, error) {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return common.Region{}, errors.Wrapf(common.ErrInvalidArgument, "aspect ratio %v must be positive", ratio)
	}
	if err := r.Validate(); err != nil {
		return common.Region{}, err
	}
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return common.Region{}, errors.Wrapf(common.ErrInvalidArgument, "image bounds %dx%d are empty", bounds.Width, bounds.Height)
	}

	r, err := clip(r, bounds)
	if err != nil {
		return common.Region{}, err
	}
	if r.AspectRatio() < ratio {
		deficit := max(0, int(math.Round(float64(r.Height)*ratio))-r.Width)
		return grow(r, bounds, deficit, 0), nil
	}
	deficit := max(0, int(math.Round(float64(r.Width)/ratio))-r.Height)
	return grow(r, bounds, 0, deficit), nil
}
