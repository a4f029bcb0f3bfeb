package svm

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/nvr-ai/go-facedetect/common"
	"github.com/nvr-ai/go-facedetect/models/features"
)

// Sample is a labelled training vector.
type Sample struct {
	Features features.Vector
	Face     bool
}

// TrainOptions configures Train.
type TrainOptions struct {
	// MinimumSamples is the smallest training set Train accepts.
	MinimumSamples int `json:"minimum_samples" yaml:"minimum_samples"`
	// C is the misclassification penalty.
	C float64 `json:"c" yaml:"c"`
	// MaxIterations bounds the number of passes over the data.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`
	// Tolerance stops training once the projected gradient spread falls below it.
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
	// Seed drives the per-pass sample permutation.
	Seed int64 `json:"seed" yaml:"seed"`
}

// DefaultTrainOptions returns the settings used for face verification models.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		MinimumSamples: 2000,
		C:              1,
		MaxIterations:  1000,
		Tolerance:      0.1,
		Seed:           1,
	}
}

// Validate rejects non-positive solver settings.
func (o TrainOptions) Validate() error {
	if o.C <= 0 || o.MaxIterations <= 0 || o.Tolerance <= 0 || o.MinimumSamples < 0 {
		return errors.Wrapf(common.ErrInvalidArgument, "invalid training options %+v", o)
	}
	return nil
}

// Train fits a linear SVM with hinge loss and L2 regularisation by dual
// coordinate descent. The bias is learned as an extra weight on a constant
// feature of 1. Each pass visits the samples in a permutation drawn from
// opts.Seed, so identical inputs always produce identical models.
//
// Arguments:
//   - samples: Labelled vectors, all of the same length.
//   - opts: Solver settings.
//
// Returns:
//   - The trained model.
//   - ErrInvalidOperation for fewer than MinimumSamples samples or a single
//     class; ErrInvalidArgument for ragged or empty vectors.
//
// @example
// model, err := Train(samples, DefaultTrainOptions())
func Train(samples []Sample, opts TrainOptions) (*Model, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(samples) < opts.MinimumSamples || len(samples) == 0 {
		return nil, errors.Wrapf(common.ErrInvalidOperation,
			"need at least %d training samples, got %d", opts.MinimumSamples, len(samples))
	}

	dim := len(samples[0].Features)
	if dim == 0 {
		return nil, errors.Wrap(common.ErrInvalidArgument, "training vectors are empty")
	}
	faces := 0
	for i, s := range samples {
		if len(s.Features) != dim {
			return nil, errors.Wrapf(common.ErrInvalidArgument,
				"sample %d has %d values, expected %d", i, len(s.Features), dim)
		}
		if s.Face {
			faces++
		}
	}
	if faces == 0 || faces == len(samples) {
		return nil, errors.Wrap(common.ErrInvalidOperation, "training set contains a single class")
	}

	n := len(samples)
	labels := make([]float64, n)
	diag := make([]float64, n)
	for i, s := range samples {
		labels[i] = -1
		if s.Face {
			labels[i] = 1
		}
		diag[i] = floats.Dot(s.Features, s.Features) + 1
	}

	weights := make([]float64, dim)
	bias := 0.0
	alpha := make([]float64, n)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	for iter := 0; iter < opts.MaxIterations; iter++ {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

		maxPG, minPG := math.Inf(-1), math.Inf(1)
		for _, i := range order {
			x := samples[i].Features
			g := labels[i]*(floats.Dot(weights, x)+bias) - 1

			pg := g
			switch {
			case alpha[i] == 0:
				pg = math.Min(g, 0)
			case alpha[i] == opts.C:
				pg = math.Max(g, 0)
			}
			maxPG = math.Max(maxPG, pg)
			minPG = math.Min(minPG, pg)

			if math.Abs(pg) <= 1e-12 {
				continue
			}
			old := alpha[i]
			alpha[i] = math.Min(math.Max(old-g/diag[i], 0), opts.C)
			step := (alpha[i] - old) * labels[i]
			floats.AddScaled(weights, step, x)
			bias += step
		}

		if maxPG-minPG <= opts.Tolerance {
			break
		}
	}

	return &Model{weights: weights, bias: bias}, nil
}
