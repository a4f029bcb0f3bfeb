package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-facedetect/common"
	"github.com/nvr-ai/go-facedetect/dataset"
	"github.com/nvr-ai/go-facedetect/detector"
	"github.com/nvr-ai/go-facedetect/models/svm"
	"github.com/nvr-ai/go-facedetect/profiler"
)

// Crop file prefixes.
const (
	facePrefix      = "FACE"
	nonFacePrefix   = "NEG"
	candidatePrefix = "CAND"
)

// runDetect finds face candidates in every image of a directory, verifies them
// when a model is given and writes the crops plus an annotated copy of each
// image.
func runDetect(args []string, log *logrus.Logger) error {
	var (
		flags     commonFlags
		imageDir  string
		modelPath string
		outputDir string
		noCrops   bool
	)
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	flags.register(fs)
	fs.StringVar(&imageDir, "images", ".", "Directory of images to scan")
	fs.StringVar(&modelPath, "model", "", "Trained model; candidates are not verified when empty")
	fs.StringVar(&outputDir, "output", "faces", "Directory for crops and annotated images")
	fs.BoolVar(&noCrops, "no-crops", false, "Only write the annotated images")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := flags.load(log)
	if err != nil {
		return err
	}

	var model *svm.Model
	if modelPath != "" {
		if model, err = svm.LoadFile(modelPath); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"path": modelPath, "dimension": model.Dimension()}).Info("loaded model")
	}

	recorder := profiler.NewRecorder()
	d, err := detector.New(cfg,
		detector.WithLogger(log),
		detector.WithRecorder(recorder),
		detector.WithModel(model),
	)
	if err != nil {
		return err
	}

	paths, err := dataset.ListImages(imageDir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.Wrapf(common.ErrInvalidArgument, "no images in %s", imageDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	sources := make([]detector.Source, len(paths))
	for i, p := range paths {
		sources[i] = detector.FileSource(p)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	timer := profiler.NewIntervalTimer(log)
	results := d.DetectBatch(ctx, sources, cfg.Workers)
	timer.Lap("detect")

	var failed, candidates, faces int
	for _, res := range results {
		entry := log.WithField("image", res.Source)
		if res.Err != nil {
			failed++
			entry.WithError(res.Err).Warn("skipping image")
			continue
		}

		det := res.Detection
		candidates += len(det.Candidates)
		found := det.Faces()
		faces += len(found)
		entry.WithFields(logrus.Fields{
			"candidates": len(det.Candidates),
			"faces":      len(found),
		}).Info("processed")

		if !noCrops {
			if err := writeCrops(outputDir, res, model != nil); err != nil {
				return err
			}
		}

		marked := found
		if model == nil {
			marked = make([]common.Region, len(det.Candidates))
			for j, c := range det.Candidates {
				marked[j] = c.Region
			}
		}
		annotated := detector.Annotate(res.Image, marked, detector.OutlineColor)
		path := filepath.Join(outputDir, "annotated-"+baseName(res.Source)+".png")
		if err := imaging.Save(annotated, path); err != nil {
			return errors.Wrapf(err, "save %s", path)
		}
	}
	timer.Lap("write")

	log.WithFields(logrus.Fields{
		"images":     humanize.Comma(int64(len(results) - failed)),
		"failed":     failed,
		"candidates": humanize.Comma(int64(candidates)),
		"faces":      humanize.Comma(int64(faces)),
		"output":     outputDir,
	}).Info("detection complete")
	recorder.Report(log)

	return ctx.Err()
}

// writeCrops saves the classifier crop of every candidate of one image. Each
// prefix keeps its own counter, so faces and non-faces are numbered from zero.
func writeCrops(dir string, res detector.Result, verified bool) error {
	counters := make(map[string]int, 2)
	for j, c := range res.Detection.Candidates {
		prefix := candidatePrefix
		if verified {
			prefix = nonFacePrefix
			if res.Detection.Results[j].Face {
				prefix = facePrefix
			}
		}
		n := counters[prefix]
		counters[prefix]++
		path := filepath.Join(dir, cropName(prefix, res.Index, n, res.Source))
		if err := imaging.Save(cropRegion(res.Image, c.Crop), path); err != nil {
			return errors.Wrapf(err, "save %s", path)
		}
	}
	return nil
}

// cropRegion cuts r, given relative to the top-left corner of img.
func cropRegion(img image.Image, r common.Region) image.Image {
	return imaging.Crop(img, r.ToRect().Add(img.Bounds().Min))
}

// cropName builds PREFIX_image_candidate-name.png.
func cropName(prefix string, imageIndex, candidate int, source string) string {
	return fmt.Sprintf("%s_%d_%d-%s.png", prefix, imageIndex, candidate, baseName(source))
}

// baseName strips the directory and extension from a file name.
func baseName(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
