package detector

import (
	"image"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-facedetect/common"
	"github.com/nvr-ai/go-facedetect/models/features"
	"github.com/nvr-ai/go-facedetect/models/postprocess"
	"github.com/nvr-ai/go-facedetect/models/svm"
)

// Verifier confirms candidates with a trained classifier.
type Verifier struct {
	extractor *features.Extractor
	model     *svm.Model
}

// NewVerifier pairs an extractor with a model trained on its vectors.
func NewVerifier(extractor *features.Extractor, model *svm.Model) *Verifier {
	return &Verifier{extractor: extractor, model: model}
}

// Verify extracts the candidate crop from img and classifies it.
//
// Returns:
//   - A result carrying the candidate region, the margin and the verdict.
//   - ErrInvalidOperation when no model is set.
func (v *Verifier) Verify(img image.Image, c Candidate) (postprocess.Result, error) {
	if v.model == nil || v.extractor == nil {
		return postprocess.Result{}, errors.Wrap(common.ErrInvalidOperation, "verifier has no model")
	}
	vector, err := v.extractor.Extract(img, c.Crop)
	if err != nil {
		return postprocess.Result{}, err
	}
	margin, err := v.model.Margin(vector)
	if err != nil {
		return postprocess.Result{}, err
	}
	return postprocess.Result{Region: c.Region, Score: margin, Face: margin > 0}, nil
}
