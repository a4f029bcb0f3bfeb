package images

import (
	"github.com/nvr-ai/go-facedetect/common"
	"github.com/pkg/errors"
)

// Grid is a dense row-major two-dimensional array.
type Grid[T any] struct {
	// Width is the number of columns.
	Width int `json:"width"`
	// Height is the number of rows.
	Height int `json:"height"`
	// Values holds Width*Height cells, row by row.
	Values []T `json:"values"`
}

// NewGrid allocates a zero-valued grid.
func NewGrid[T any](width, height int) Grid[T] {
	return Grid[T]{Width: width, Height: height, Values: make([]T, width*height)}
}

// Index returns the flat offset of (x, y).
func (g Grid[T]) Index(x, y int) int { return y*g.Width + x }

// At returns the cell at (x, y).
func (g Grid[T]) At(x, y int) T { return g.Values[y*g.Width+x] }

// Set stores v at (x, y).
func (g Grid[T]) Set(x, y int, v T) { g.Values[y*g.Width+x] = v }

// Len returns the number of cells.
func (g Grid[T]) Len() int { return len(g.Values) }

// Size returns the grid dimensions.
func (g Grid[T]) Size() common.Size { return common.Size{Width: g.Width, Height: g.Height} }

// Contains reports whether (x, y) lies inside the grid.
func (g Grid[T]) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// Clone returns a deep copy.
func (g Grid[T]) Clone() Grid[T] {
	values := make([]T, len(g.Values))
	copy(values, g.Values)
	return Grid[T]{Width: g.Width, Height: g.Height, Values: values}
}

// Validate reports ErrInvalidArgument for empty grids or a backing slice that
// does not match the declared dimensions.
func (g Grid[T]) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return errors.Wrapf(common.ErrInvalidArgument, "grid %dx%d is empty", g.Width, g.Height)
	}
	if len(g.Values) != g.Width*g.Height {
		return errors.Wrapf(common.ErrInvalidArgument,
			"grid %dx%d has %d values", g.Width, g.Height, len(g.Values))
	}
	return nil
}

// Map applies fn to every cell of src and returns the result as a new grid.
// Rows are processed in parallel; fn must not depend on evaluation order.
func Map[S, T any](src Grid[S], fn func(S) T) Grid[T] {
	dst := NewGrid[T](src.Width, src.Height)
	Parallel(src.Height, func(start, end int) {
		for i := start * src.Width; i < end*src.Width; i++ {
			dst.Values[i] = fn(src.Values[i])
		}
	})
	return dst
}
