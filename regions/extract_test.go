package regions

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-facedetect/common"
	"github.com/nvr-ai/go-facedetect/images"
	"github.com/nvr-ai/go-facedetect/models/postprocess"
)

func maskFromRows(rows ...string) images.Grid[bool] {
	m := images.NewGrid[bool](len(rows[0]), len(rows))
	for y, row := range rows {
		for x, c := range row {
			m.Set(x, y, c == '#')
		}
	}
	return m
}

// floodFill is a reference labeller using an explicit stack.
func floodFill(mask images.Grid[bool]) []common.Region {
	seen := make([]bool, mask.Len())
	var out []common.Region
	for start, set := range mask.Values {
		if !set || seen[start] {
			continue
		}
		minX, minY := start%mask.Width, start/mask.Width
		maxX, maxY := minX, minY
		stack := []int{start}
		seen[start] = true
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%mask.Width, i/mask.Width
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
			for _, d := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, ny := x+d[0], y+d[1]
				if !mask.Contains(nx, ny) {
					continue
				}
				n := mask.Index(nx, ny)
				if mask.Values[n] && !seen[n] {
					seen[n] = true
					stack = append(stack, n)
				}
			}
		}
		out = append(out, common.RegionFromLTRB(minX, minY, maxX+1, maxY+1))
	}
	return out
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		mask     images.Grid[bool]
		expected []common.Region
	}{
		{
			name:     "empty mask",
			mask:     maskFromRows("....", "...."),
			expected: []common.Region{},
		},
		{
			name:     "single pixel",
			mask:     maskFromRows("...", ".#.", "..."),
			expected: []common.Region{{Left: 1, Top: 1, Width: 1, Height: 1}},
		},
		{
			name:     "full mask",
			mask:     maskFromRows("###", "###"),
			expected: []common.Region{{Left: 0, Top: 0, Width: 3, Height: 2}},
		},
		{
			name:     "diagonal pixels are separate",
			mask:     maskFromRows("#.", ".#"),
			expected: []common.Region{{Left: 0, Top: 0, Width: 1, Height: 1}, {Left: 1, Top: 1, Width: 1, Height: 1}},
		},
		{
			name: "u shape joins late",
			mask: maskFromRows(
				"#...#",
				"#...#",
				"#####",
			),
			expected: []common.Region{{Left: 0, Top: 0, Width: 5, Height: 3}},
		},
		{
			name: "ordered by first pixel",
			mask: maskFromRows(
				"...##",
				"#..##",
				"#....",
			),
			expected: []common.Region{{Left: 3, Top: 0, Width: 2, Height: 2}, {Left: 0, Top: 1, Width: 1, Height: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.mask)
			if len(tt.expected) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractMatchesFloodFill(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 25; trial++ {
		mask := images.NewGrid[bool](1+rng.Intn(40), 1+rng.Intn(40))
		density := rng.Float64()
		for i := range mask.Values {
			mask.Values[i] = rng.Float64() < density
		}
		expected := floodFill(mask)
		got := Extract(mask)
		if len(expected) == 0 {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, expected, got, "trial %d", trial)
	}
}

func TestExtractEmptyGrid(t *testing.T) {
	assert.Empty(t, Extract(images.Grid[bool]{}))
}

func TestSquareBlockBecomesExpandedCandidate(t *testing.T) {
	mask := images.NewGrid[bool](30, 30)
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			mask.Set(x, y, true)
		}
	}

	found := Extract(mask)
	require.Equal(t, []common.Region{{Left: 10, Top: 10, Width: 10, Height: 10}}, found)

	filtered, err := postprocess.Filter(found, mask.Size(), postprocess.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []common.Region{{Left: 10, Top: 10, Width: 11, Height: 11}}, filtered)
}
