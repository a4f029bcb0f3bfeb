package images

import (
	"math/bits"
	"slices"
)

// MedianFilter replaces every cell with the median of the (2r+1)x(2r+1) window
// centred on it. Out-of-range window samples are resolved with mode, so every
// window holds exactly (2r+1)^2 samples and the median is always a member of
// the input.
//
// The filter follows Huang's sliding histogram: values are replaced by their
// rank among the distinct input values, each row keeps a Fenwick tree over the
// ranks of its current window and advancing one column removes and adds a
// single window column. Rows are filtered in parallel and the result is
// identical to a serial run. Each output costs O(radius*log(levels)), so the
// total grows linearly with the radius.
//
// Arguments:
// - src: The grid to filter. It is not modified.
// - radius: Window radius. Zero or negative returns a copy of src.
// - mode: Edge handling for samples outside the grid.
//
// Returns:
// - A new grid with the same dimensions as src.
//
// @example
// smooth := MedianFilter(intensity, 8, ClampEdgeMode)
func MedianFilter(src Grid[float32], radius int, mode EdgeMode) Grid[float32] {
	if radius <= 0 || src.Len() == 0 {
		return src.Clone()
	}

	levels, ranks := rankValues(src.Values)
	dst := NewGrid[float32](src.Width, src.Height)

	side := 2*radius + 1
	// Window sizes are always odd, so the median is the unique middle rank.
	middle := side * side / 2

	// Window columns are precomputed once so the inner loop avoids MapCoord.
	columns := make([]int, src.Width+2*radius)
	for i := range columns {
		columns[i] = MapCoord(i-radius, src.Width, mode)
	}

	Parallel(src.Height, func(start, end int) {
		tree := newFenwick(len(levels))
		rows := make([]int, side)

		for y := start; y < end; y++ {
			for dy := range rows {
				rows[dy] = MapCoord(y+dy-radius, src.Height, mode) * src.Width
			}
			column := func(x int, delta int32) {
				for _, row := range rows {
					tree.add(ranks[row+x], delta)
				}
			}

			for i := 0; i < side; i++ {
				column(columns[i], 1)
			}
			for x := 0; x < src.Width; x++ {
				if x > 0 {
					column(columns[x-1], -1)
					column(columns[x+side-1], 1)
				}
				dst.Values[y*src.Width+x] = levels[tree.find(int32(middle))]
			}

			// Drain the last window so the tree is empty for the next row.
			for i := src.Width - 1; i < src.Width-1+side; i++ {
				column(columns[i], -1)
			}
		}
	})

	return dst
}

// rankValues returns the sorted distinct values and the rank of every input.
func rankValues(values []float32) ([]float32, []int32) {
	levels := slices.Clone(values)
	slices.Sort(levels)
	levels = slices.Compact(levels)

	ranks := make([]int32, len(values))
	for i, v := range values {
		r, _ := slices.BinarySearch(levels, v)
		ranks[i] = int32(r)
	}
	return levels, ranks
}

// fenwick is a binary indexed tree of counts over ranks [0, n).
type fenwick struct {
	counts []int32
	top    int
}

func newFenwick(n int) *fenwick {
	return &fenwick{counts: make([]int32, n+1), top: 1 << (bits.Len(uint(n)) - 1)}
}

func (f *fenwick) add(rank int32, delta int32) {
	for i := int(rank) + 1; i < len(f.counts); i += i & -i {
		f.counts[i] += delta
	}
}

// find returns the smallest rank whose cumulative count exceeds k.
func (f *fenwick) find(k int32) int {
	pos := 0
	for step := f.top; step > 0; step >>= 1 {
		next := pos + step
		if next < len(f.counts) && f.counts[next] <= k {
			pos = next
			k -= f.counts[next]
		}
	}
	return pos
}
