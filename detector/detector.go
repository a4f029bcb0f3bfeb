// Package detector - runs the skin-colour face detector end to end: colour
// conversion, skin mask, region extraction, geometric filtering, aspect
// shaping and optional classifier verification.
package detector

import (
	"context"
	"image"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-facedetect/colorspace"
	"github.com/nvr-ai/go-facedetect/common"
	"github.com/nvr-ai/go-facedetect/config"
	"github.com/nvr-ai/go-facedetect/models/features"
	"github.com/nvr-ai/go-facedetect/models/postprocess"
	"github.com/nvr-ai/go-facedetect/models/svm"
	"github.com/nvr-ai/go-facedetect/profiler"
	"github.com/nvr-ai/go-facedetect/regions"
	"github.com/nvr-ai/go-facedetect/skinmask"
)

// Stage names used for timing.
const (
	StageColor      = "color"
	StageSkinMask   = "skin_mask"
	StageRegions    = "regions"
	StageFilter     = "filter"
	StageCandidates = "candidates"
	StageVerify     = "verify"
)

// Detection is the outcome of running the detector on one image.
type Detection struct {
	// Size is the source image size.
	Size common.Size `json:"size"`
	// Candidates are the filtered regions with their classifier crops.
	Candidates []Candidate `json:"candidates"`
	// Results holds one verdict per candidate when a model is configured.
	Results []postprocess.Result `json:"results,omitempty"`
}

// Faces returns the candidate regions the classifier accepted.
func (d *Detection) Faces() []common.Region {
	var out []common.Region
	for _, r := range d.Results {
		if r.Face {
			out = append(out, r.Region)
		}
	}
	return out
}

// Detector runs the pipeline with a fixed configuration. It holds no per-image
// state and is safe for concurrent use.
type Detector struct {
	cfg       config.Config
	log       logrus.FieldLogger
	recorder  *profiler.Recorder
	extractor *features.Extractor
	verifier  *Verifier
}

// Option customises a Detector.
type Option func(*Detector)

// WithLogger sets the logger used for per-stage debug output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(d *Detector) { d.log = log }
}

// WithRecorder records stage timings into r.
func WithRecorder(r *profiler.Recorder) Option {
	return func(d *Detector) { d.recorder = r }
}

// WithModel enables verification of every candidate with model.
func WithModel(model *svm.Model) Option {
	return func(d *Detector) {
		if model != nil {
			d.verifier = &Verifier{model: model}
		}
	}
}

// New creates a detector.
//
// Arguments:
//   - cfg: The pipeline configuration; it is validated here.
//   - opts: Optional logger, timing recorder and verification model.
//
// Returns:
//   - The detector.
//   - ErrInvalidArgument for an invalid configuration or a model whose
//     dimension does not match the feature options.
//
// @example
// d, err := detector.New(config.Default(), detector.WithLogger(log), detector.WithModel(model))
func New(cfg config.Config, opts ...Option) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "detector config")
	}
	extractor, err := features.NewExtractor(cfg.Features)
	if err != nil {
		return nil, err
	}

	d := &Detector{cfg: cfg.Clone(), log: logrus.StandardLogger(), extractor: extractor}
	for _, opt := range opts {
		opt(d)
	}

	if d.verifier != nil {
		if d.verifier.model.Dimension() != extractor.Dimension() {
			return nil, errors.Wrapf(common.ErrInvalidArgument,
				"model expects %d features, extractor produces %d",
				d.verifier.model.Dimension(), extractor.Dimension())
		}
		d.verifier.extractor = extractor
	}
	return d, nil
}

// Config returns the detector configuration.
func (d *Detector) Config() config.Config { return d.cfg.Clone() }

// Extractor returns the feature extractor shared by training and verification.
func (d *Detector) Extractor() *features.Extractor { return d.extractor }

// FindRegions runs colour conversion, skin masking, region extraction and
// filtering and returns the expanded face regions.
func (d *Detector) FindRegions(img image.Image) ([]common.Region, error) {
	pixels := colorspace.FromImage(img)
	log := d.log.WithFields(logrus.Fields{"width": pixels.Width, "height": pixels.Height})

	done := d.recorder.StartOperation(StageColor)
	colours, err := colorspace.Convert(pixels, d.cfg.Color)
	done()
	if err != nil {
		return nil, errors.Wrap(err, "convert colour space")
	}

	done = d.recorder.StartOperation(StageSkinMask)
	mask, err := skinmask.Build(colours, d.cfg.Skin)
	done()
	if err != nil {
		return nil, errors.Wrap(err, "build skin mask")
	}
	log.WithField("skin_pixels", skinmask.Count(mask)).Debug("skin mask built")

	done = d.recorder.StartOperation(StageRegions)
	found := regions.Extract(mask)
	done()
	log.WithField("regions", len(found)).Debug("regions extracted")

	done = d.recorder.StartOperation(StageFilter)
	filtered, err := postprocess.Filter(found, pixels.Size(), d.cfg.Regions)
	done()
	if err != nil {
		return nil, errors.Wrap(err, "filter regions")
	}
	log.WithField("regions", len(filtered)).Debug("regions filtered")

	return filtered, nil
}

// Detect finds candidate regions in img and, when a model is configured,
// classifies each of them.
func (d *Detector) Detect(ctx context.Context, img image.Image) (*Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates, err := d.Candidates(img)
	if err != nil {
		return nil, err
	}
	detection := &Detection{Size: common.SizeOf(img), Candidates: candidates}
	if d.verifier == nil {
		return detection, nil
	}

	done := d.recorder.StartOperation(StageVerify)
	defer done()
	detection.Results = make([]postprocess.Result, 0, len(candidates))
	for _, c := range candidates {
		result, err := d.verifier.Verify(img, c)
		if err != nil {
			return nil, errors.Wrapf(err, "verify candidate %s", c.Region)
		}
		detection.Results = append(detection.Results, result)
	}
	d.log.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"faces":      len(detection.Faces()),
	}).Debug("candidates verified")

	return detection, nil
}
