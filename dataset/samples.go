package dataset

import (
	"context"
	"image"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-facedetect/common"
	"github.com/nvr-ai/go-facedetect/models/features"
	"github.com/nvr-ai/go-facedetect/models/postprocess"
	"github.com/nvr-ai/go-facedetect/models/svm"
)

// Extractor turns an image region into a feature vector.
type Extractor interface {
	Extract(img image.Image, region common.Region) (features.Vector, error)
}

// SampleOptions controls how training samples are cut from annotated images.
type SampleOptions struct {
	// AspectRatio is the width/height ratio crops are shaped to before extraction.
	AspectRatio float64
	// NegativesPerImage caps the face-free windows taken from each image.
	NegativesPerImage int
	// MaxImages stops after this many distinct images; zero means all.
	MaxImages int
	// Workers bounds the number of images decoded concurrently.
	Workers int
}

// DefaultSampleOptions returns square crops with two negatives per image.
func DefaultSampleOptions() SampleOptions {
	return SampleOptions{AspectRatio: 1, NegativesPerImage: 2, Workers: 4}
}

// Samples loads every annotated image under dir and cuts one positive sample
// per annotated face and up to NegativesPerImage negative samples from windows
// that do not touch any face. Images that cannot be opened are logged and
// skipped. The result is ordered by image, in ground truth order, with each
// image's positives before its negatives.
//
// Arguments:
//   - ctx: Stops scheduling further images when cancelled.
//   - dir: The directory holding the image files.
//   - annotations: Parsed ground truth.
//   - extractor: Produces the vectors.
//   - opts: Sampling options.
//   - log: Receives progress and skipped images.
//
// Returns:
//   - The labelled samples.
//   - ctx.Err() on cancellation, or an extraction error.
func Samples(ctx context.Context, dir string, annotations []Annotation, extractor Extractor,
	opts SampleOptions, log logrus.FieldLogger,
) ([]svm.Sample, error) {
	files, groups := GroupByFile(annotations)
	if opts.MaxImages > 0 && len(files) > opts.MaxImages {
		files = files[:opts.MaxImages]
	}
	workers := max(1, opts.Workers)

	perImage := make([][]svm.Sample, len(files))
	errs := make([]error, len(files))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int, file string) {
			defer wg.Done()
			defer func() { <-sem }()

			img, err := imaging.Open(filepath.Join(dir, file), imaging.AutoOrientation(true))
			if err != nil {
				log.WithError(err).WithField("file", file).Warn("skipping unreadable image")
				return
			}
			perImage[idx], errs[idx] = imageSamples(img, groups[file], extractor, opts)
		}(i, file)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []svm.Sample
	faces := 0
	for i, samples := range perImage {
		if errs[i] != nil {
			return nil, errors.Wrapf(errs[i], "samples from %s", files[i])
		}
		for _, s := range samples {
			if s.Face {
				faces++
			}
		}
		out = append(out, samples...)
	}

	log.WithFields(logrus.Fields{
		"images":    len(files),
		"positives": faces,
		"negatives": len(out) - faces,
	}).Info("training samples extracted")
	return out, nil
}

// imageSamples cuts the positive and negative samples of one image.
func imageSamples(img image.Image, faces []Annotation, extractor Extractor, opts SampleOptions) ([]svm.Sample, error) {
	bounds := common.SizeOf(img)
	boxes := FaceBoxes(faces, bounds)
	if len(boxes) == 0 {
		return nil, nil
	}

	out := make([]svm.Sample, 0, len(boxes)+opts.NegativesPerImage)
	for _, box := range boxes {
		crop, err := postprocess.AdjustAspect(box, bounds, opts.AspectRatio)
		if err != nil {
			return nil, err
		}
		v, err := extractor.Extract(img, crop)
		if err != nil {
			return nil, err
		}
		out = append(out, svm.Sample{Features: v, Face: true})
	}

	for _, window := range NegativeWindows(boxes, bounds, opts.NegativesPerImage) {
		v, err := extractor.Extract(img, window)
		if err != nil {
			return nil, err
		}
		out = append(out, svm.Sample{Features: v, Face: false})
	}
	return out, nil
}

// FaceBoxes derives the face region of every annotation, clipped to bounds.
// Faces that fall entirely outside the image are dropped.
func FaceBoxes(faces []Annotation, bounds common.Size) []common.Region {
	frame := common.Region{Width: bounds.Width, Height: bounds.Height}.ToRect()
	var out []common.Region
	for _, f := range faces {
		clipped := f.FaceBox().ToRect().Intersect(frame)
		if clipped.Empty() {
			continue
		}
		out = append(out, common.RegionFromRect(clipped))
	}
	return out
}

// NegativeWindows tiles the image with squares the size of the first face box
// and returns, in row-major order, up to limit tiles that overlap no face.
func NegativeWindows(faces []common.Region, bounds common.Size, limit int) []common.Region {
	if len(faces) == 0 || limit <= 0 {
		return nil
	}
	side := max(faces[0].Width, faces[0].Height)

	var out []common.Region
	for top := 0; top+side <= bounds.Height; top += side {
		for left := 0; left+side <= bounds.Width; left += side {
			window := common.Region{Left: left, Top: top, Width: side, Height: side}
			free := true
			for _, f := range faces {
				if window.Intersection(f) > 0 {
					free = false
					break
				}
			}
			if !free {
				continue
			}
			out = append(out, window)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
