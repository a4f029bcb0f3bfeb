package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-facedetect/dataset"
	"github.com/nvr-ai/go-facedetect/models/features"
	"github.com/nvr-ai/go-facedetect/models/svm"
	"github.com/nvr-ai/go-facedetect/profiler"
)

// runTrain extracts labelled samples from an annotated image set, fits the
// classifier and writes it to disk.
func runTrain(args []string, log *logrus.Logger) error {
	var (
		flags     commonFlags
		truthPath string
		imageDir  string
		modelPath string
		negatives int
		maxImages int
	)
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	flags.register(fs)
	fs.StringVar(&truthPath, "truth", "ImageData.txt", "Ground truth file with eye, nose and mouth coordinates")
	fs.StringVar(&imageDir, "images", ".", "Directory holding the annotated images")
	fs.StringVar(&modelPath, "model", "model.json", "Where to write the trained model")
	fs.IntVar(&negatives, "negatives", dataset.DefaultSampleOptions().NegativesPerImage, "Negative windows cut per image")
	fs.IntVar(&maxImages, "max-images", 0, "Stop after this many images (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := flags.load(log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	timer := profiler.NewIntervalTimer(log)

	annotations, err := dataset.LoadGroundTruth(truthPath)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"path":  truthPath,
		"faces": humanize.Comma(int64(len(annotations))),
	}).Info("loaded ground truth")
	timer.Lap("ground_truth")

	extractor, err := features.NewExtractor(cfg.Features)
	if err != nil {
		return err
	}

	opts := dataset.SampleOptions{
		AspectRatio:       cfg.Features.AspectRatio(),
		NegativesPerImage: negatives,
		MaxImages:         maxImages,
		Workers:           cfg.Workers,
	}
	samples, err := dataset.Samples(ctx, imageDir, annotations, extractor, opts, log)
	if err != nil {
		return err
	}
	timer.Lap("samples")

	model, err := svm.Train(samples, cfg.Training)
	if err != nil {
		return errors.Wrap(err, "train")
	}
	timer.Lap("train")

	correct := 0
	for _, s := range samples {
		face, err := model.Classify(s.Features)
		if err != nil {
			return err
		}
		if face == s.Face {
			correct++
		}
	}

	if err := model.SaveFile(modelPath); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"path":      modelPath,
		"samples":   humanize.Comma(int64(len(samples))),
		"dimension": model.Dimension(),
		"accuracy":  humanize.FormatFloat("#.##", 100*float64(correct)/float64(len(samples))) + "%",
	}).Info("model saved")
	return nil
}
