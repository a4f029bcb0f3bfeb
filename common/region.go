package common

import (
	"fmt"
	"image"

	"github.com/pkg/errors"
)

// Size holds the dimensions of a source image.
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// SizeOf returns the dimensions of img.
func SizeOf(img image.Image) Size {
	b := img.Bounds()
	return Size{Width: b.Dx(), Height: b.Dy()}
}

// Region is an axis-aligned rectangle in source image coordinates.
type Region struct {
	Left   int `json:"left" yaml:"left"`
	Top    int `json:"top" yaml:"top"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// RegionFromLTRB builds a Region from its edges. Right and Bottom are exclusive.
func RegionFromLTRB(left, top, right, bottom int) Region {
	return Region{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// RegionFromRect converts an image.Rectangle into a Region.
func RegionFromRect(r image.Rectangle) Region {
	r = r.Canon()
	return RegionFromLTRB(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

// Right returns the exclusive right edge.
func (r Region) Right() int { return r.Left + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Region) Bottom() int { return r.Top + r.Height }

// Area returns Width*Height in pixels.
func (r Region) Area() int { return r.Width * r.Height }

// AspectRatio returns Width/Height.
func (r Region) AspectRatio() float64 {
	return float64(r.Width) / float64(r.Height)
}

// ToRect converts the region to an image.Rectangle.
//
// Returns:
// - An image.Rectangle with Min at (Left, Top) and exclusive Max.
//
// @example
// r := Region{Left: 10, Top: 20, Width: 30, Height: 40}
// rect := r.ToRect() // (10,20)-(40,60)
func (r Region) ToRect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right(), r.Bottom())
}

// Intersection calculates the area shared by two regions.
//
// Arguments:
// - other: The region to intersect with.
//
// Returns:
// - The overlapping area in pixels, zero when the regions are disjoint.
//
// @example
// a := Region{Left: 0, Top: 0, Width: 100, Height: 100}
// b := Region{Left: 50, Top: 50, Width: 100, Height: 100}
// area := a.Intersection(b) // 2500
func (r Region) Intersection(other Region) int {
	size := r.ToRect().Intersect(other.ToRect()).Size()
	return size.X * size.Y
}

// Validate reports ErrInvalidArgument when either dimension is not positive.
func (r Region) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "region %s must have positive dimensions", r)
	}
	return nil
}

// Within reports whether the region lies entirely inside bounds.
func (r Region) Within(bounds Size) bool {
	return r.Left >= 0 && r.Top >= 0 && r.Right() <= bounds.Width && r.Bottom() <= bounds.Height
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.Left, r.Top, r.Width, r.Height)
}
