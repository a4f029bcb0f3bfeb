package dataset

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-facedetect/common"
	"github.com/nvr-ai/go-facedetect/models/features"
)

const groundTruth = `pic00001.jpg 95.0 101.6 140.5 98.9 120.6 123.8 119.4 148.7

pic00002.jpg 40 50 60 50 50 60 50 70
pic00001.jpg 10 10 20 10 15 15 15 20
`

func TestParseGroundTruth(t *testing.T) {
	annotations, err := ParseGroundTruth(strings.NewReader(groundTruth))
	require.NoError(t, err)
	require.Len(t, annotations, 3)

	assert.Equal(t, Annotation{
		File:     "pic00001.jpg",
		LeftEye:  Point{95.0, 101.6},
		RightEye: Point{140.5, 98.9},
		Nose:     Point{120.6, 123.8},
		Mouth:    Point{119.4, 148.7},
	}, annotations[0])
	assert.Equal(t, "pic00002.jpg", annotations[1].File)

	order, groups := GroupByFile(annotations)
	assert.Equal(t, []string{"pic00001.jpg", "pic00002.jpg"}, order)
	assert.Len(t, groups["pic00001.jpg"], 2)
}

func TestParseGroundTruthErrors(t *testing.T) {
	tests := map[string]string{
		"missing fields": "pic.jpg 1 2 3 4\n",
		"bad coordinate": "pic.jpg 1 2 3 4 5 6 7 eight\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseGroundTruth(strings.NewReader(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidArgument))
			assert.Contains(t, err.Error(), "line 1")
		})
	}
}

func TestLoadGroundTruth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "WebFaces_GroundThruth.txt")
	require.NoError(t, os.WriteFile(path, []byte(groundTruth), 0o600))

	annotations, err := LoadGroundTruth(path)
	require.NoError(t, err)
	assert.Len(t, annotations, 3)

	_, err = LoadGroundTruth(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestFaceBox(t *testing.T) {
	a := Annotation{LeftEye: Point{40, 50}, RightEye: Point{60, 50}, Mouth: Point{50, 70}}
	assert.Equal(t, common.Region{Left: 30, Top: 40, Width: 40, Height: 40}, a.FaceBox())

	degenerate := Annotation{LeftEye: Point{5, 5}, RightEye: Point{5, 5}, Mouth: Point{5, 5}}
	assert.Equal(t, 1, degenerate.FaceBox().Width)
}

func TestFaceBoxesClipToBounds(t *testing.T) {
	bounds := common.Size{Width: 60, Height: 60}
	faces := []Annotation{
		{LeftEye: Point{40, 50}, RightEye: Point{60, 50}, Mouth: Point{50, 70}},
		{LeftEye: Point{500, 500}, RightEye: Point{520, 500}, Mouth: Point{510, 520}},
	}

	boxes := FaceBoxes(faces, bounds)
	require.Len(t, boxes, 1)
	assert.Equal(t, common.Region{Left: 30, Top: 40, Width: 30, Height: 20}, boxes[0])
}

func TestNegativeWindows(t *testing.T) {
	bounds := common.Size{Width: 100, Height: 60}
	faces := []common.Region{{Left: 25, Top: 5, Width: 20, Height: 20}}

	windows := NegativeWindows(faces, bounds, 3)
	assert.Equal(t, []common.Region{
		{Left: 0, Top: 0, Width: 20, Height: 20},
		{Left: 60, Top: 0, Width: 20, Height: 20},
		{Left: 80, Top: 0, Width: 20, Height: 20},
	}, windows)

	for _, w := range NegativeWindows(faces, bounds, 100) {
		assert.Zero(t, w.Intersection(faces[0]))
		assert.True(t, w.Within(bounds))
	}
	assert.Empty(t, NegativeWindows(nil, bounds, 3))
	assert.Empty(t, NegativeWindows(faces, bounds, 0))
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.JPG", "notes.txt", "c.webp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o700))

	paths, err := ListImages(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.JPG"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.webp"),
	}, paths)

	_, err = ListImages(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

// regionExtractor encodes the requested region so tests can see which crops
// were taken.
type regionExtractor struct {
	mu    sync.Mutex
	calls int
}

func (e *regionExtractor) Extract(_ image.Image, r common.Region) (features.Vector, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	return features.Vector{float64(r.Left), float64(r.Top), float64(r.Width), float64(r.Height)}, nil
}

func writeImage(t *testing.T, dir, name string, width, height int) {
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 150, B: 120, A: 255})
	require.NoError(t, imaging.Save(img, filepath.Join(dir, name)))
}

func TestSamples(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "one.png", 100, 60)
	writeImage(t, dir, "two.png", 120, 80)

	annotations := []Annotation{
		{File: "one.png", LeftEye: Point{30, 10}, RightEye: Point{40, 10}, Mouth: Point{35, 20}},
		{File: "missing.png", LeftEye: Point{30, 10}, RightEye: Point{40, 10}, Mouth: Point{35, 20}},
		{File: "two.png", LeftEye: Point{30, 30}, RightEye: Point{50, 30}, Mouth: Point{40, 50}},
	}

	logger, hook := test.NewNullLogger()
	extractor := &regionExtractor{}
	opts := DefaultSampleOptions()

	samples, err := Samples(context.Background(), dir, annotations, extractor, opts, logger)
	require.NoError(t, err)

	// Each image yields its face box followed by two face-free tiles.
	require.Len(t, samples, 6)
	assert.Equal(t, []bool{true, false, false, true, false, false}, []bool{
		samples[0].Face, samples[1].Face, samples[2].Face, samples[3].Face, samples[4].Face, samples[5].Face,
	})
	assert.Equal(t, features.Vector{25, 5, 20, 20}, samples[0].Features)
	assert.Equal(t, features.Vector{0, 0, 20, 20}, samples[1].Features)
	assert.Equal(t, features.Vector{60, 0, 20, 20}, samples[2].Features)
	assert.Equal(t, features.Vector{20, 20, 40, 40}, samples[3].Features)
	assert.Equal(t, features.Vector{80, 0, 40, 40}, samples[4].Features)
	assert.Equal(t, features.Vector{80, 40, 40, 40}, samples[5].Features)
	assert.Equal(t, 6, extractor.calls)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Data["file"] == "missing.png" {
			warned = true
		}
	}
	assert.True(t, warned, "unreadable image should be logged")
}

func TestSamplesHonoursCancellation(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "one.png", 40, 40)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger, _ := test.NewNullLogger()
	_, err := Samples(ctx, dir, []Annotation{{File: "one.png", RightEye: Point{10, 0}}}, &regionExtractor{}, DefaultSampleOptions(), logger)
	assert.True(t, errors.Is(err, context.Canceled))
}
