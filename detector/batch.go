package detector

import (
	"context"
	"image"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Source supplies one image to a batch.
type Source interface {
	// Name identifies the image in results and logs.
	Name() string
	// Load decodes the image.
	Load() (image.Image, error)
}

// FileSource loads an image file, applying any EXIF orientation.
type FileSource string

// Name returns the file's base name.
func (f FileSource) Name() string { return filepath.Base(string(f)) }

// Load opens and decodes the file.
func (f FileSource) Load() (image.Image, error) {
	img, err := imaging.Open(string(f), imaging.AutoOrientation(true))
	return img, errors.Wrapf(err, "open %s", string(f))
}

// ImageSource wraps an already decoded image.
type ImageSource struct {
	ID    string
	Image image.Image
}

// Name returns the ID.
func (s ImageSource) Name() string { return s.ID }

// Load returns the wrapped image.
func (s ImageSource) Load() (image.Image, error) { return s.Image, nil }

// Result is the per-image outcome of DetectBatch. Exactly one of Detection and
// Err is set.
type Result struct {
	Index     int
	Source    string
	Image     image.Image
	Detection *Detection
	Err       error
}

// DetectBatch runs Detect over sources with at most workers images in flight.
// A failure on one image is stored in that image's Result and does not stop
// the batch. Once ctx is cancelled no further images are started; images
// already running finish and the rest report ctx.Err().
//
// Arguments:
//   - ctx: Cancels the batch between images.
//   - sources: The images to process.
//   - workers: Maximum concurrency; values below one mean one.
//
// Returns:
//   - One Result per source, in input order.
//
// @example
// results := d.DetectBatch(ctx, []Source{FileSource("a.jpg"), FileSource("b.png")}, 4)
func (d *Detector) DetectBatch(ctx context.Context, sources []Source, workers int) []Result {
	if workers <= 0 {
		workers = 1
	}

	results := make([]Result, len(sources))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, src := range sources {
		results[i] = Result{Index: i, Source: src.Name()}

		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			continue
		}

		wg.Add(1)
		go func(idx int, src Source) {
			defer wg.Done()
			defer func() { <-sem }()

			log := d.log.WithFields(logrus.Fields{"index": idx, "source": src.Name()})
			img, err := src.Load()
			if err != nil {
				results[idx].Err = err
				log.WithError(err).Warn("failed to load image")
				return
			}
			results[idx].Image = img

			detection, err := d.Detect(ctx, img)
			if err != nil {
				results[idx].Err = errors.Wrapf(err, "detect %s", src.Name())
				log.WithError(err).Warn("detection failed")
				return
			}
			results[idx].Detection = detection
			log.WithField("candidates", len(detection.Candidates)).Debug("image processed")
		}(i, src)
	}

	wg.Wait()
	return results
}
