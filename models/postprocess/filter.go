package postprocess

import (
	"image"
	"math"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-facedetect/common"
)

// RejectByAspectRatio drops regions whose longer side is more than maxRatio
// times the shorter side.
//
// Arguments:
//   - regions: Candidate regions in any order.
//   - maxRatio: The largest accepted max(w,h)/min(w,h).
//
// Returns:
//   - The accepted regions in input order.
//   - ErrInvalidArgument if any region has a non-positive dimension.
func RejectByAspectRatio(regions []common.Region, maxRatio float64) ([]common.Region, error) {
	accepted := make([]common.Region, 0, len(regions))
	for _, r := range regions {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		longest := float64(max(r.Width, r.Height)) / float64(min(r.Width, r.Height))
		if longest > maxRatio {
			continue
		}
		accepted = append(accepted, r)
	}
	return accepted, nil
}

// SuppressDominated removes every region A for which some other region B has
// area(B) > areaRatio*area(A) and covers more than overlap*area(A). Every
// region is tested against the full input set, not just the survivors, so
// the result does not depend on input order.
//
// Arguments:
//   - regions: Candidate regions with positive dimensions.
//   - areaRatio: How much larger B must be than A.
//   - overlap: Fraction of A that B must cover.
//
// Returns:
//   - The surviving regions in input order.
func SuppressDominated(regions []common.Region, areaRatio, overlap float64) []common.Region {
	kept := make([]common.Region, 0, len(regions))
	for i, a := range regions {
		areaA := float64(a.Area())
		dominated := false
		for j, b := range regions {
			if i == j {
				continue
			}
			if float64(b.Area()) > areaRatio*areaA && float64(a.Intersection(b)) > overlap*areaA {
				dominated = true
				break
			}
		}
		if !dominated {
			kept = append(kept, a)
		}
	}
	return kept
}

// Expand grows a region by fraction of each dimension. r must lie within
// bounds; Filter clips its input before expanding. The total growth per
// axis is rounded to the nearest pixel; floor(total/2) goes to the left or top
// and the remainder to the right or bottom. Each edge is then clamped to the
// image bounds independently.
//
// Arguments:
//   - r: The region to grow.
//   - bounds: The image size used for clamping.
//   - fraction: Total growth relative to each dimension.
//
// Returns:
//   - The expanded region.
//
// @example
// Expand(Region{Left: 5, Top: 5, Width: 10, Height: 10}, Size{Width: 100, Height: 100}, 0.1)
// // {5 5 11 11}
func Expand(r common.Region, bounds common.Size, fraction float64) common.Region {
	growX := int(math.Round(float64(r.Width) * fraction))
	growY := int(math.Round(float64(r.Height) * fraction))
	return grow(r, bounds, growX, growY)
}

// clip restricts r to the image bounds.
//
// Returns:
//   - The part of r inside bounds.
//   - ErrInvalidArgument when r does not overlap the image.
func clip(r common.Region, bounds common.Size) (common.Region, error) {
	rect := r.ToRect().Intersect(image.Rect(0, 0, bounds.Width, bounds.Height))
	if rect.Empty() {
		return common.Region{}, errors.Wrapf(common.ErrInvalidArgument,
			"region %s lies outside the %dx%d image", r, bounds.Width, bounds.Height)
	}
	return common.RegionFromRect(rect), nil
}

// grow adds dx and dy pixels around r, floor half before and the rest after,
// clamping each edge to bounds.
func grow(r common.Region, bounds common.Size, dx, dy int) common.Region {
	left := max(0, r.Left-dx/2)
	top := max(0, r.Top-dy/2)
	right := min(bounds.Width, r.Right()+dx-dx/2)
	bottom := min(bounds.Height, r.Bottom()+dy-dy/2)
	return common.RegionFromLTRB(left, top, right, bottom)
}

// Filter clips every region to bounds and then runs aspect rejection,
// dominated-region suppression and margin expansion in that order.
//
// Arguments:
//   - regions: Raw connected-component rectangles.
//   - bounds: The source image size; expanded regions never leave it.
//   - opts: Filter thresholds.
//
// Returns:
//   - The final candidate regions in input order.
//   - ErrInvalidArgument for a region with a non-positive dimension or one
//     outside the image, empty bounds or invalid options.
func Filter(regions []common.Region, bounds common.Size, opts Options) ([]common.Region, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return nil, errors.Wrapf(common.ErrInvalidArgument, "image bounds %dx%d are empty", bounds.Width, bounds.Height)
	}

	clipped := make([]common.Region, 0, len(regions))
	for _, r := range regions {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		c, err := clip(r, bounds)
		if err != nil {
			return nil, err
		}
		clipped = append(clipped, c)
	}
	accepted, err := RejectByAspectRatio(clipped, opts.MaxAspectRatio)
	if err != nil {
		return nil, err
	}

	kept := SuppressDominated(accepted, opts.DominatingAreaRatio, opts.OverlapFraction)
	for i := range kept {
		kept[i] = Expand(kept[i], bounds, opts.ExpandFraction)
	}
	return kept, nil
}
