package detector

import (
	"image"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-facedetect/common"
	"github.com/nvr-ai/go-facedetect/models/postprocess"
)

// Candidate is a possible face: the detected region and the crop that is
// handed to the classifier.
type Candidate struct {
	// Region is the filtered skin region reported to callers.
	Region common.Region `json:"region"`
	// Crop is Region grown towards the classifier sample aspect ratio.
	Crop common.Region `json:"crop"`
}

// Candidates finds the face regions of img and shapes each to the sample
// aspect ratio of the feature extractor.
func (d *Detector) Candidates(img image.Image) ([]Candidate, error) {
	found, err := d.FindRegions(img)
	if err != nil {
		return nil, err
	}

	done := d.recorder.StartOperation(StageCandidates)
	defer done()

	bounds := common.SizeOf(img)
	ratio := d.cfg.Features.AspectRatio()
	out := make([]Candidate, 0, len(found))
	for _, r := range found {
		crop, err := postprocess.AdjustAspect(r, bounds, ratio)
		if err != nil {
			return nil, errors.Wrapf(err, "adjust aspect of %s", r)
		}
		out = append(out, Candidate{Region: r, Crop: crop})
	}
	return out, nil
}
