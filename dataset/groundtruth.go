// Package dataset - reads the Caltech 10k WebFaces ground truth and turns the
// annotated photographs into labelled training samples.
package dataset

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-facedetect/common"
)

// Point is a landmark position in image coordinates.
type Point struct {
	X, Y float64
}

// Annotation is one annotated face: the image file and four landmarks.
type Annotation struct {
	File     string
	LeftEye  Point
	RightEye Point
	Nose     Point
	Mouth    Point
}

// FaceBox derives a square face region from the landmarks. The side is twice
// the eye distance and the square is centred horizontally on the eyes and
// vertically halfway between the eyes and the mouth.
//
// Returns:
//   - The face region; its side is at least one pixel.
//
// @example
// a := Annotation{LeftEye: Point{40, 50}, RightEye: Point{60, 50}, Mouth: Point{50, 70}}
// box := a.FaceBox() // {30 40 40 40}
func (a Annotation) FaceBox() common.Region {
	eyeDistance := math.Hypot(a.RightEye.X-a.LeftEye.X, a.RightEye.Y-a.LeftEye.Y)
	side := max(1, int(math.Round(2*eyeDistance)))

	centreX := (a.LeftEye.X + a.RightEye.X) / 2
	centreY := ((a.LeftEye.Y+a.RightEye.Y)/2 + a.Mouth.Y) / 2

	left := int(math.Round(centreX - float64(side)/2))
	top := int(math.Round(centreY - float64(side)/2))
	return common.Region{Left: left, Top: top, Width: side, Height: side}
}

// ParseGroundTruth reads lines of the form
//
//	file leftEyeX leftEyeY rightEyeX rightEyeY noseX noseY mouthX mouthY
//
// Blank lines are skipped.
//
// Returns:
//   - The annotations in file order.
//   - ErrInvalidArgument with the line number for a malformed line.
func ParseGroundTruth(r io.Reader) ([]Annotation, error) {
	var out []Annotation
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 9 {
			return nil, errors.Wrapf(common.ErrInvalidArgument,
				"ground truth line %d has %d fields, expected 9", line, len(fields))
		}

		var coords [8]float64
		for i := range coords {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, errors.Wrapf(common.ErrInvalidArgument,
					"ground truth line %d: coordinate %q", line, fields[i+1])
			}
			coords[i] = v
		}

		out = append(out, Annotation{
			File:     fields[0],
			LeftEye:  Point{coords[0], coords[1]},
			RightEye: Point{coords[2], coords[3]},
			Nose:     Point{coords[4], coords[5]},
			Mouth:    Point{coords[6], coords[7]},
		})
	}
	return out, errors.Wrap(scanner.Err(), "read ground truth")
}

// LoadGroundTruth parses the ground truth file at path.
func LoadGroundTruth(path string) ([]Annotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open ground truth")
	}
	defer f.Close()
	return ParseGroundTruth(f)
}

// GroupByFile collects annotations per image, preserving first-seen file order.
func GroupByFile(annotations []Annotation) ([]string, map[string][]Annotation) {
	var order []string
	groups := make(map[string][]Annotation)
	for _, a := range annotations {
		if _, ok := groups[a.File]; !ok {
			order = append(order, a.File)
		}
		groups[a.File] = append(groups[a.File], a)
	}
	return order, groups
}
