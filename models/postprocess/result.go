// Package postprocess - geometric post-processing of skin regions: aspect
// rejection, dominated-region suppression, margin expansion and aspect shaping.
package postprocess

import "github.com/nvr-ai/go-facedetect/common"

// Result represents a single verified candidate.
type Result struct {
	// The filtered candidate region; the aspect-adjusted crop is only classifier input.
	Region common.Region `json:"region"`
	// The signed classifier margin; positive means face.
	Score float64 `json:"score"`
	// Face is the classifier verdict.
	Face bool `json:"face"`
}
