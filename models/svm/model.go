// Package svm implements a linear support vector machine used to confirm face
// candidates.
package svm

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/nvr-ai/go-facedetect/common"
	"github.com/nvr-ai/go-facedetect/models/features"
)

// Model is a trained linear decision function w.x + b. It is immutable and
// safe for concurrent use.
type Model struct {
	weights []float64
	bias    float64
}

// modelFile is the persisted form of a Model.
type modelFile struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// NewModel builds a model from explicit parameters. The weights are copied.
func NewModel(weights []float64, bias float64) (*Model, error) {
	if len(weights) == 0 {
		return nil, errors.Wrap(common.ErrInvalidArgument, "model has no weights")
	}
	return &Model{weights: append([]float64(nil), weights...), bias: bias}, nil
}

// Dimension returns the feature vector length the model expects.
func (m *Model) Dimension() int {
	if m == nil {
		return 0
	}
	return len(m.weights)
}

// Margin returns the signed decision value for v.
//
// Returns:
//   - w.v + b; positive values mean face.
//   - ErrInvalidOperation for a nil model, ErrInvalidArgument when the vector
//     length does not match the model.
func (m *Model) Margin(v features.Vector) (float64, error) {
	if m == nil {
		return 0, errors.Wrap(common.ErrInvalidOperation, "classifier is not trained")
	}
	if len(v) != len(m.weights) {
		return 0, errors.Wrapf(common.ErrInvalidArgument,
			"feature vector has %d values, model expects %d", len(v), len(m.weights))
	}
	return floats.Dot(m.weights, v) + m.bias, nil
}

// Classify reports whether v is a face. A zero margin is not a face.
//
// @example
// face, err := model.Classify(vector)
func (m *Model) Classify(v features.Vector) (bool, error) {
	margin, err := m.Margin(v)
	if err != nil {
		return false, err
	}
	return margin > 0, nil
}

// Save writes the model as JSON.
func (m *Model) Save(w io.Writer) error {
	if m == nil {
		return errors.Wrap(common.ErrInvalidOperation, "classifier is not trained")
	}
	enc := json.NewEncoder(w)
	return errors.Wrap(enc.Encode(modelFile{Weights: m.weights, Bias: m.bias}), "encode model")
}

// SaveFile writes the model to path, replacing any existing file.
func (m *Model) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create model file")
	}
	if err := m.Save(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "close model file")
}

// Load reads a model written by Save.
func Load(r io.Reader) (*Model, error) {
	var file modelFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, errors.Wrap(err, "decode model")
	}
	return NewModel(file.Weights, file.Bias)
}

// LoadFile reads a model from path.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open model file")
	}
	defer f.Close()
	return Load(f)
}
