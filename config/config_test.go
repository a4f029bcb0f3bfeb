package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-facedetect/common"
	"github.com/nvr-ai/go-facedetect/images"
	"github.com/nvr-ai/go-facedetect/models/features"
	"github.com/nvr-ai/go-facedetect/skinmask"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2.0, cfg.Color.RgBySmoothenMultiplier)
	assert.Equal(t, 8.0, cfg.Color.TextureFirstPassMultiplier)
	assert.Equal(t, 12.0, cfg.Color.TextureSecondPassMultiplier)
	assert.Equal(t, 5, cfg.Skin.Relaxations)
	assert.Equal(t, 2.4, cfg.Regions.MaxAspectRatio)
	assert.Equal(t, 0.1, cfg.Regions.ExpandFraction)
	assert.Equal(t, features.ModeBlocks, cfg.Features.Mode)
	assert.Equal(t, 2000, cfg.Training.MinimumSamples)
}

func TestParseOverridesDefaults(t *testing.T) {
	doc := `
color:
  edge_mode: mirror
skin:
  relaxations: 2
  relaxed:
    bands:
      - {min_hue: 100, max_hue: 170, min_saturation: 0, max_saturation: 150}
regions:
  max_aspect_ratio: 2
features:
  mode: hog
  sample_width: 64
  sample_height: 64
training:
  minimum_samples: 50
workers: 8
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, images.MirrorEdgeMode, cfg.Color.EdgeMode)
	assert.Equal(t, 2.0, cfg.Color.RgBySmoothenMultiplier, "unset keys keep defaults")
	assert.Equal(t, 2, cfg.Skin.Relaxations)
	assert.Equal(t, []skinmask.Band{{MinHue: 100, MaxHue: 170, MinSaturation: 0, MaxSaturation: 150}}, cfg.Skin.Relaxed.Bands)
	assert.Len(t, cfg.Skin.Strict.Bands, 3)
	assert.Equal(t, 2.0, cfg.Regions.MaxAspectRatio)
	assert.Equal(t, 0.75, cfg.Regions.OverlapFraction)
	assert.Equal(t, features.ModeHOG, cfg.Features.Mode)
	assert.Equal(t, 64, cfg.Features.SampleWidth)
	assert.Equal(t, 50, cfg.Training.MinimumSamples)
	assert.Equal(t, 1.0, cfg.Training.C)
	assert.Equal(t, 8, cfg.Workers)
}

func TestParseJSON(t *testing.T) {
	cfg, err := Parse([]byte(`{"skin": {"relaxations": 0}, "workers": 1}`))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Skin.Relaxations)
	assert.Equal(t, 1, cfg.Workers)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	docs := map[string]string{
		"negative relaxations": "skin: {relaxations: -1}",
		"aspect below one":     "regions: {max_aspect_ratio: 0.5}",
		"untiled sample":       "features: {sample_width: 130}",
		"unknown mode":         "features: {mode: sift}",
		"zero penalty":         "training: {c: 0}",
		"no workers":           "workers: 0",
		"negative multiplier":  "color: {rgby_smoothen_multiplier: -2}",
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidArgument), "got %v", err)
		})
	}
}

func TestParseRejectsMalformedDocument(t *testing.T) {
	_, err := Parse([]byte("skin: [unterminated"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facefind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skin:\n  relaxations: 7\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Skin.Relaxations)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	original := Default()
	copied := original.Clone()

	copied.Skin.Strict.MaxTextureAmplitude = 50
	copied.Skin.Strict.Bands[0].MinHue = 0
	copied.Skin.Relaxed.Bands[0].MaxSaturation = 10

	assert.Equal(t, float32(9), original.Skin.Strict.MaxTextureAmplitude)
	assert.Equal(t, float32(105), original.Skin.Strict.Bands[0].MinHue)
	assert.Equal(t, float32(180), original.Skin.Relaxed.Bands[0].MaxSaturation)
	assert.Equal(t, Default(), original)
}

func TestParseTextureLimit(t *testing.T) {
	cfg, err := Parse([]byte("skin: {strict: {max_texture_amplitude: 12}, relaxed: {limit_texture: true, max_texture_amplitude: 30}}"))
	require.NoError(t, err)

	assert.True(t, cfg.Skin.Strict.LimitTexture, "unset keys keep defaults")
	assert.Equal(t, float32(12), cfg.Skin.Strict.MaxTextureAmplitude)
	assert.True(t, cfg.Skin.Relaxed.LimitTexture)
	assert.Equal(t, float32(30), cfg.Skin.Relaxed.MaxTextureAmplitude)
}
