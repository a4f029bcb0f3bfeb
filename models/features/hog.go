package features

import (
	"image"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/nvr-ai/go-facedetect/common"
	"github.com/nvr-ai/go-facedetect/images"
)

// hogEpsilon keeps L2 normalisation finite for flat blocks.
const hogEpsilon = 1e-6

// ExtractHOG computes a histogram of oriented gradients over the sample.
// Gradients are central differences with clamped edges; each pixel votes its
// magnitude into the two nearest of cfg.Bins unsigned orientation bins. Cell
// histograms are grouped into BlockCells x BlockCells blocks stepping by one
// cell, and each block is L2-normalised. Pixels beyond the last whole cell are
// ignored.
//
// Arguments:
//   - sample: The greyscale sample.
//   - cfg: Cell, block and bin layout.
//
// Returns:
//   - The concatenated block histograms.
//   - ErrInvalidArgument if the sample is smaller than one block.
func ExtractHOG(sample *image.Gray, cfg HOGConfig) (Vector, error) {
	if sample == nil {
		return nil, errors.Wrap(common.ErrInvalidArgument, "sample is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bounds := sample.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	cellsX, cellsY := width/cfg.CellSize, height/cfg.CellSize
	if cellsX < cfg.BlockCells || cellsY < cfg.BlockCells {
		return nil, errors.Wrapf(common.ErrInvalidArgument,
			"sample %dx%d is smaller than one %dx%d-cell block", width, height, cfg.BlockCells, cfg.BlockCells)
	}

	at := func(x, y int) float64 {
		x = images.MapCoord(x, width, images.ClampEdgeMode)
		y = images.MapCoord(y, height, images.ClampEdgeMode)
		return float64(sample.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y) / 255
	}

	cells := make([]float64, cellsX*cellsY*cfg.Bins)
	binWidth := 180 / float64(cfg.Bins)

	for y := 0; y < cellsY*cfg.CellSize; y++ {
		for x := 0; x < cellsX*cfg.CellSize; x++ {
			gx := at(x+1, y) - at(x-1, y)
			gy := at(x, y+1) - at(x, y-1)
			magnitude := math.Hypot(gx, gy)
			if magnitude == 0 {
				continue
			}

			angle := math.Atan2(gy, gx) * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}
			if angle >= 180 {
				angle -= 180
			}

			// Split the vote between the two bins whose centres bracket angle.
			pos := angle/binWidth - 0.5
			lower := int(math.Floor(pos))
			frac := pos - float64(lower)
			lo := (lower + cfg.Bins) % cfg.Bins
			hi := (lower + 1) % cfg.Bins

			cell := ((y/cfg.CellSize)*cellsX + x/cfg.CellSize) * cfg.Bins
			cells[cell+lo] += magnitude * (1 - frac)
			cells[cell+hi] += magnitude * frac
		}
	}

	blocksX, blocksY := cellsX-cfg.BlockCells+1, cellsY-cfg.BlockCells+1
	blockLen := cfg.BlockCells * cfg.BlockCells * cfg.Bins
	out := make(Vector, 0, blocksX*blocksY*blockLen)

	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			start := len(out)
			for cy := by; cy < by+cfg.BlockCells; cy++ {
				for cx := bx; cx < bx+cfg.BlockCells; cx++ {
					offset := (cy*cellsX + cx) * cfg.Bins
					out = append(out, cells[offset:offset+cfg.Bins]...)
				}
			}
			block := out[start:]
			norm := math.Sqrt(floats.Dot(block, block) + hogEpsilon*hogEpsilon)
			floats.Scale(1/norm, block)
		}
	}

	return out, nil
}
