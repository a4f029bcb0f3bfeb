// Package common - Shared geometry and error taxonomy for the detection pipeline.
package common

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned for malformed geometric input: non-positive
	// dimensions, non-positive aspect ratios, empty grids and similar.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidOperation is returned when an operation cannot run in the current
	// state, e.g. classifying without a trained model or training on too few samples.
	ErrInvalidOperation = errors.New("invalid operation")
)
