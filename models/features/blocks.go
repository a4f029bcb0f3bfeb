package features

import (
	"image"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/nvr-ai/go-facedetect/common"
)

// ExtractFeatures splits a greyscale sample into overlapping square blocks and
// normalises each block independently to zero mean and unit spread, using
// max(stddev, MinSpread) as the divisor. Blocks are visited row by row and
// their normalised pixels appended row by row, so a given sample size always
// yields the same layout.
//
// Arguments:
//   - sample: The greyscale sample; intensities are scaled to [0,1].
//   - cfg: Block geometry.
//
// Returns:
//   - The concatenated feature vector.
//   - ErrInvalidArgument if the blocks do not tile the sample exactly.
//
// @example
// v, err := ExtractFeatures(gray, BlockConfig{Size: 8, Overlap: 4, MinSpread: 1e-3})
func ExtractFeatures(sample *image.Gray, cfg BlockConfig) (Vector, error) {
	if sample == nil {
		return nil, errors.Wrap(common.ErrInvalidArgument, "sample is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bounds := sample.Bounds()
	nx, err := cfg.Blocks(bounds.Dx())
	if err != nil {
		return nil, errors.Wrap(err, "sample width")
	}
	ny, err := cfg.Blocks(bounds.Dy())
	if err != nil {
		return nil, errors.Wrap(err, "sample height")
	}

	blockLen := cfg.Size * cfg.Size
	out := make(Vector, 0, nx*ny*blockLen)
	block := make([]float64, blockLen)
	stride := cfg.Stride()

	for by := 0; by < ny; by++ {
		for bx := 0; bx < nx; bx++ {
			x0, y0 := bounds.Min.X+bx*stride, bounds.Min.Y+by*stride
			for y := 0; y < cfg.Size; y++ {
				row := sample.Pix[sample.PixOffset(x0, y0+y):]
				for x := 0; x < cfg.Size; x++ {
					block[y*cfg.Size+x] = float64(row[x]) / 255
				}
			}

			mean, std := stat.MeanStdDev(block, nil)
			spread := max(std, cfg.MinSpread)
			for _, v := range block {
				out = append(out, (v-mean)/spread)
			}
		}
	}

	return out, nil
}
