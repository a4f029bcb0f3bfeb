package postprocess

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-facedetect/common"
)

// Options defines parameters for region filtering.
type Options struct {
	// MaxAspectRatio rejects regions whose longer side exceeds the shorter by this factor.
	MaxAspectRatio float64 `json:"max_aspect_ratio" yaml:"max_aspect_ratio"`
	// DominatingAreaRatio is how much larger a region must be to suppress another.
	DominatingAreaRatio float64 `json:"dominating_area_ratio" yaml:"dominating_area_ratio"`
	// OverlapFraction is the share of the smaller region that must be covered.
	OverlapFraction float64 `json:"overlap_fraction" yaml:"overlap_fraction"`
	// ExpandFraction is the total growth applied to each dimension of survivors.
	ExpandFraction float64 `json:"expand_fraction" yaml:"expand_fraction"`
}

// DefaultOptions returns the filter thresholds used for face candidates.
//
// Returns:
//   - Options with a 2.4 aspect limit, 2x area domination at 75% overlap and
//     a 10% margin.
func DefaultOptions() Options {
	return Options{
		MaxAspectRatio:      2.4,
		DominatingAreaRatio: 2,
		OverlapFraction:     0.75,
		ExpandFraction:      0.1,
	}
}

// Validate rejects thresholds that would make filtering meaningless.
func (o Options) Validate() error {
	switch {
	case o.MaxAspectRatio < 1:
		return errors.Wrapf(common.ErrInvalidArgument, "max aspect ratio %v is below 1", o.MaxAspectRatio)
	case o.DominatingAreaRatio <= 0:
		return errors.Wrapf(common.ErrInvalidArgument, "dominating area ratio %v must be positive", o.DominatingAreaRatio)
	case o.OverlapFraction < 0 || o.OverlapFraction > 1:
		return errors.Wrapf(common.ErrInvalidArgument, "overlap fraction %v is outside [0,1]", o.OverlapFraction)
	case o.ExpandFraction < 0:
		return errors.Wrapf(common.ErrInvalidArgument, "expand fraction %v is negative", o.ExpandFraction)
	}
	return nil
}
