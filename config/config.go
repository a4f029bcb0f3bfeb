// Package config - aggregates the options of every pipeline stage into one
// immutable configuration object that can be loaded from YAML or JSON.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-facedetect/colorspace"
	"github.com/nvr-ai/go-facedetect/common"
	"github.com/nvr-ai/go-facedetect/models/features"
	"github.com/nvr-ai/go-facedetect/models/postprocess"
	"github.com/nvr-ai/go-facedetect/models/svm"
	"github.com/nvr-ai/go-facedetect/skinmask"
)

// Config represents the configuration of the detection and verification pipeline.
type Config struct {
	// Color controls the smoothing radii of the colour conversion.
	Color colorspace.Options `json:"color" yaml:"color"`

	// Skin controls the strict seed filter, the relaxed growth filter and the
	// number of growth passes.
	Skin skinmask.Options `json:"skin" yaml:"skin"`

	// Regions controls aspect rejection, suppression and expansion.
	Regions postprocess.Options `json:"regions" yaml:"regions"`

	// Features controls the classifier sample size and descriptor.
	Features features.Options `json:"features" yaml:"features"`

	// Training controls the SVM solver.
	Training svm.TrainOptions `json:"training" yaml:"training"`

	// Workers bounds the number of images processed concurrently in a batch.
	Workers int `json:"workers" yaml:"workers"`
}

// Default returns the configuration tuned for photographs of faces.
//
// Returns:
//   - Config: Configuration with every stage at its default.
//
// @example
// cfg := config.Default()
// cfg.Skin.Relaxations = 3
func Default() Config {
	return Config{
		Color:    colorspace.DefaultOptions(),
		Skin:     skinmask.DefaultOptions(),
		Regions:  postprocess.DefaultOptions(),
		Features: features.DefaultOptions(),
		Training: svm.DefaultTrainOptions(),
		Workers:  4,
	}
}

// Parse decodes YAML (or JSON, which is valid YAML) over the defaults, so a
// document only needs the keys it changes. A bands list given in the document
// replaces the default list rather than extending it.
//
// Arguments:
//   - data: The document to decode.
//
// Returns:
//   - Config: The merged, validated configuration.
//   - error: Decoding or validation failure.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	cfg, err := Parse(data)
	return cfg, errors.Wrapf(err, "config %s", path)
}

// Clone returns a deep copy, so changes to the copy never reach c.
func (c Config) Clone() Config {
	c.Skin = c.Skin.Clone()
	return c
}

// Validate checks every stage.
func (c Config) Validate() error {
	if err := c.Color.Validate(); err != nil {
		return errors.Wrap(err, "color")
	}
	if err := c.Skin.Validate(); err != nil {
		return errors.Wrap(err, "skin")
	}
	if err := c.Regions.Validate(); err != nil {
		return errors.Wrap(err, "regions")
	}
	if err := c.Features.Validate(); err != nil {
		return errors.Wrap(err, "features")
	}
	if err := c.Training.Validate(); err != nil {
		return errors.Wrap(err, "training")
	}
	if c.Workers <= 0 {
		return errors.Wrapf(common.ErrInvalidArgument, "workers must be positive, got %d", c.Workers)
	}
	return nil
}
