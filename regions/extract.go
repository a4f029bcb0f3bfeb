// Package regions labels 4-connected components of a skin mask and reports
// their bounding rectangles.
package regions

import (
	"github.com/nvr-ai/go-facedetect/common"
	"github.com/nvr-ai/go-facedetect/images"
)

// Extract returns the bounding rectangle of every 4-connected component of
// set pixels, ordered by each component's first pixel in row-major order.
//
// Labelling is the classic two-pass scheme over a flat parent array: the
// first pass links each set pixel to its left and upper neighbours, the second
// resolves every pixel to its root and grows that root's rectangle.
//
// Arguments:
// - mask: The binary mask. An empty mask yields no regions.
//
// Returns:
// - The component bounding rectangles, nil when no pixel is set.
//
// @example
// found := Extract(mask)
func Extract(mask images.Grid[bool]) []common.Region {
	if mask.Len() == 0 || mask.Len() != mask.Width*mask.Height {
		return nil
	}

	uf := newUnionFind(mask.Len())
	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			i := mask.Index(x, y)
			if !mask.Values[i] {
				continue
			}
			uf.parent[i] = int32(i)
			if x > 0 && mask.Values[i-1] {
				uf.union(i, i-1)
			}
			if y > 0 && mask.Values[i-mask.Width] {
				uf.union(i, i-mask.Width)
			}
		}
	}

	type bounds struct{ minX, minY, maxX, maxY int }
	slot := make(map[int32]int)
	var found []bounds

	for i, set := range mask.Values {
		if !set {
			continue
		}
		x, y := i%mask.Width, i/mask.Width
		root := uf.find(int32(i))
		k, ok := slot[root]
		if !ok {
			slot[root] = len(found)
			found = append(found, bounds{x, y, x, y})
			continue
		}
		b := &found[k]
		b.minX = min(b.minX, x)
		b.maxX = max(b.maxX, x)
		b.maxY = y
	}

	out := make([]common.Region, len(found))
	for k, b := range found {
		out[k] = common.RegionFromLTRB(b.minX, b.minY, b.maxX+1, b.maxY+1)
	}
	return out
}

// unionFind is a disjoint-set forest over flat pixel indices.
type unionFind struct {
	parent []int32
}

func newUnionFind(n int) *unionFind {
	return &unionFind{parent: make([]int32, n)}
}

// find returns the root of i, halving the path as it goes.
func (u *unionFind) find(i int32) int32 {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

// union links the larger root under the smaller so roots stay at the earliest pixel.
func (u *unionFind) union(a, b int) {
	ra, rb := u.find(int32(a)), u.find(int32(b))
	switch {
	case ra < rb:
		u.parent[rb] = ra
	case rb < ra:
		u.parent[ra] = rb
	}
}
