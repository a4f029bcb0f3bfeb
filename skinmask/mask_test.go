package skinmask

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-facedetect/colorspace"
	"github.com/nvr-ai/go-facedetect/common"
	"github.com/nvr-ai/go-facedetect/images"
)

var (
	strictSkin  = colorspace.HueSaturation{Hue: 130, Saturation: 30, TextureAmplitude: 2}
	relaxedSkin = colorspace.HueSaturation{Hue: 170, Saturation: 100, TextureAmplitude: 20}
	background  = colorspace.HueSaturation{Hue: 40, Saturation: 80}
)

func fill(width, height int, c colorspace.HueSaturation) images.Grid[colorspace.HueSaturation] {
	g := images.NewGrid[colorspace.HueSaturation](width, height)
	for i := range g.Values {
		g.Values[i] = c
	}
	return g
}

func randomColours(seed int64, width, height int) images.Grid[colorspace.HueSaturation] {
	rng := rand.New(rand.NewSource(seed))
	palette := []colorspace.HueSaturation{strictSkin, relaxedSkin, background}
	g := images.NewGrid[colorspace.HueSaturation](width, height)
	for i := range g.Values {
		g.Values[i] = palette[rng.Intn(len(palette))]
	}
	return g
}

func TestFilterAccepts(t *testing.T) {
	strict := StrictFilter()
	relaxed := RelaxedFilter()

	tests := []struct {
		name            string
		colour          colorspace.HueSaturation
		strict, relaxed bool
	}{
		{"strict band", strictSkin, true, true},
		{"lower hue bound inclusive", colorspace.HueSaturation{Hue: 105, Saturation: 10}, true, false},
		{"narrow saturation band", colorspace.HueSaturation{Hue: 170, Saturation: 35}, true, true},
		{"outside narrow band", colorspace.HueSaturation{Hue: 170, Saturation: 45}, false, true},
		{"texture ceiling inclusive", colorspace.HueSaturation{Hue: 130, Saturation: 30, TextureAmplitude: 9}, true, true},
		{"too much texture", colorspace.HueSaturation{Hue: 130, Saturation: 30, TextureAmplitude: 9.5}, false, true},
		{"background", background, false, false},
		{"relaxed saturation ceiling", colorspace.HueSaturation{Hue: 150, Saturation: 181}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.strict, strict.Accepts(tt.colour))
			assert.Equal(t, tt.relaxed, relaxed.Accepts(tt.colour))
		})
	}
}

func TestFilterCloneSharesNothing(t *testing.T) {
	opts := DefaultOptions()
	copied := opts.Clone()
	copied.Strict.Bands[1].MaxHue = 200
	copied.Strict.MaxTextureAmplitude = 100
	copied.Relaxed.Bands[0].MinHue = 0

	assert.Equal(t, DefaultOptions(), opts)

	rough := colorspace.HueSaturation{Hue: 130, Saturation: 30, TextureAmplitude: 50}
	assert.False(t, opts.Strict.Accepts(rough))
	assert.True(t, copied.Strict.Accepts(rough))

	unlimited := StrictFilter()
	unlimited.LimitTexture = false
	assert.True(t, unlimited.Accepts(rough))
}

func TestBuildWithoutRelaxationIsStrictMask(t *testing.T) {
	colours := randomColours(1, 30, 20)
	opts := DefaultOptions()
	opts.Relaxations = 0

	mask, err := Build(colours, opts)
	require.NoError(t, err)

	for i, c := range colours.Values {
		assert.Equal(t, opts.Strict.Accepts(c), mask.Values[i])
	}
}

func TestBuildIsMonotonic(t *testing.T) {
	colours := randomColours(2, 40, 40)
	opts := DefaultOptions()

	var previous Mask
	for passes := 0; passes <= 6; passes++ {
		opts.Relaxations = passes
		mask, err := Build(colours, opts)
		require.NoError(t, err)
		if passes > 0 {
			for i, was := range previous.Values {
				if was {
					require.True(t, mask.Values[i], "pass %d dropped pixel %d", passes, i)
				}
			}
			assert.GreaterOrEqual(t, Count(mask), Count(previous))
		}
		previous = mask
	}
}

func TestBuildGrowsOneRingPerPass(t *testing.T) {
	colours := fill(21, 1, relaxedSkin)
	colours.Set(10, 0, strictSkin)

	for passes := 0; passes <= 12; passes++ {
		opts := DefaultOptions()
		opts.Relaxations = passes
		mask, err := Build(colours, opts)
		require.NoError(t, err)

		expected := 1 + 2*passes
		if expected > 21 {
			expected = 21
		}
		assert.Equal(t, expected, Count(mask), "passes=%d", passes)
	}
}

func TestBuildDoesNotGrowThroughRejectedPixels(t *testing.T) {
	colours := fill(5, 5, relaxedSkin)
	for y := 0; y < 5; y++ {
		colours.Set(2, y, background)
	}
	colours.Set(0, 0, strictSkin)

	mask, err := Build(colours, DefaultOptions())
	require.NoError(t, err)

	for y := 0; y < 5; y++ {
		assert.True(t, mask.At(1, y))
		assert.False(t, mask.At(2, y))
		assert.False(t, mask.At(4, y))
	}
}

func TestBuildIsFourConnected(t *testing.T) {
	colours := fill(3, 3, background)
	colours.Set(0, 0, strictSkin)
	colours.Set(1, 1, relaxedSkin)

	mask, err := Build(colours, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, mask.At(1, 1), "diagonal neighbours must not be admitted")
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(images.Grid[colorspace.HueSaturation]{}, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))

	opts := DefaultOptions()
	opts.Relaxations = -1
	_, err = Build(fill(2, 2, strictSkin), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))

	opts = DefaultOptions()
	opts.Relaxed = Filter{}
	_, err = Build(fill(2, 2, strictSkin), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidArgument))
}
