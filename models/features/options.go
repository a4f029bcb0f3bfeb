// Package features turns candidate crops into fixed-length vectors for the
// face classifier.
package features

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-facedetect/common"
)

// Vector is a flat feature vector.
type Vector = []float64

// Mode selects the descriptor computed for each sample.
type Mode string

const (
	// ModeBlocks concatenates overlapping blocks of locally normalised intensity.
	ModeBlocks Mode = "blocks"
	// ModeHOG computes a histogram of oriented gradients.
	ModeHOG Mode = "hog"
)

// BlockConfig defines the overlapping block grid used by ModeBlocks.
type BlockConfig struct {
	// Size is the block side length in pixels.
	Size int `json:"size" yaml:"size"`
	// Overlap is the number of pixels shared by neighbouring blocks.
	Overlap int `json:"overlap" yaml:"overlap"`
	// MinSpread is the smallest divisor used when normalising a block, on
	// intensities scaled to [0,1]. Flat blocks become all zeros instead of NaN.
	MinSpread float64 `json:"min_spread" yaml:"min_spread"`
}

// Stride is the distance between neighbouring block origins.
func (c BlockConfig) Stride() int { return c.Size - c.Overlap }

// Validate checks the block geometry.
func (c BlockConfig) Validate() error {
	switch {
	case c.Size < 2:
		return errors.Wrapf(common.ErrInvalidArgument, "block size %d must be at least 2", c.Size)
	case c.Overlap < 0 || c.Overlap >= c.Size:
		return errors.Wrapf(common.ErrInvalidArgument, "block overlap %d must be in [0,%d)", c.Overlap, c.Size)
	case c.MinSpread <= 0:
		return errors.Wrapf(common.ErrInvalidArgument, "min spread %v must be positive", c.MinSpread)
	}
	return nil
}

// Blocks returns the number of blocks along a dimension of length n.
//
// Returns:
//   - The block count.
//   - ErrInvalidArgument when the blocks do not tile n exactly.
func (c BlockConfig) Blocks(n int) (int, error) {
	if c.Size > n {
		return 0, errors.Wrapf(common.ErrInvalidArgument, "block size %d exceeds dimension %d", c.Size, n)
	}
	if (n-c.Size)%c.Stride() != 0 {
		return 0, errors.Wrapf(common.ErrInvalidArgument,
			"dimension %d is not tiled by blocks of %d with stride %d", n, c.Size, c.Stride())
	}
	return (n-c.Size)/c.Stride() + 1, nil
}

// HOGConfig defines the histogram of oriented gradients layout used by ModeHOG.
type HOGConfig struct {
	// CellSize is the cell side length in pixels.
	CellSize int `json:"cell_size" yaml:"cell_size"`
	// BlockCells is the block side length in cells; blocks step by one cell.
	BlockCells int `json:"block_cells" yaml:"block_cells"`
	// Bins is the number of unsigned orientation bins over [0,180).
	Bins int `json:"bins" yaml:"bins"`
}

// Validate checks the HOG layout.
func (c HOGConfig) Validate() error {
	if c.CellSize <= 0 || c.BlockCells <= 0 || c.Bins <= 0 {
		return errors.Wrapf(common.ErrInvalidArgument, "hog layout %+v must be positive", c)
	}
	return nil
}

// Options configures an Extractor.
type Options struct {
	// Mode selects the descriptor.
	Mode Mode `json:"mode" yaml:"mode"`
	// SampleWidth is the width every crop is resized to.
	SampleWidth int `json:"sample_width" yaml:"sample_width"`
	// SampleHeight is the height every crop is resized to.
	SampleHeight int `json:"sample_height" yaml:"sample_height"`
	// Blocks configures ModeBlocks.
	Blocks BlockConfig `json:"blocks" yaml:"blocks"`
	// HOG configures ModeHOG.
	HOG HOGConfig `json:"hog" yaml:"hog"`
}

// DefaultOptions returns 128x128 samples split into 8-pixel blocks overlapping by 4.
func DefaultOptions() Options {
	return Options{
		Mode:         ModeBlocks,
		SampleWidth:  128,
		SampleHeight: 128,
		Blocks:       BlockConfig{Size: 8, Overlap: 4, MinSpread: 1e-3},
		HOG:          HOGConfig{CellSize: 8, BlockCells: 2, Bins: 9},
	}
}

// AspectRatio is the sample width/height ratio that candidates are shaped to.
func (o Options) AspectRatio() float64 {
	return float64(o.SampleWidth) / float64(o.SampleHeight)
}

// Dimension returns the length of vectors produced for these options.
func (o Options) Dimension() (int, error) {
	if err := o.Validate(); err != nil {
		return 0, err
	}
	if o.Mode == ModeHOG {
		bx := o.SampleWidth/o.HOG.CellSize - o.HOG.BlockCells + 1
		by := o.SampleHeight/o.HOG.CellSize - o.HOG.BlockCells + 1
		return bx * by * o.HOG.BlockCells * o.HOG.BlockCells * o.HOG.Bins, nil
	}
	bx, _ := o.Blocks.Blocks(o.SampleWidth)
	by, _ := o.Blocks.Blocks(o.SampleHeight)
	return bx * by * o.Blocks.Size * o.Blocks.Size, nil
}

// Validate checks that the sample size suits the selected mode.
func (o Options) Validate() error {
	if o.SampleWidth <= 0 || o.SampleHeight <= 0 {
		return errors.Wrapf(common.ErrInvalidArgument, "sample size %dx%d must be positive", o.SampleWidth, o.SampleHeight)
	}

	switch o.Mode {
	case ModeBlocks:
		if err := o.Blocks.Validate(); err != nil {
			return err
		}
		if _, err := o.Blocks.Blocks(o.SampleWidth); err != nil {
			return errors.Wrap(err, "sample width")
		}
		if _, err := o.Blocks.Blocks(o.SampleHeight); err != nil {
			return errors.Wrap(err, "sample height")
		}
	case ModeHOG:
		if err := o.HOG.Validate(); err != nil {
			return err
		}
		if o.SampleWidth/o.HOG.CellSize < o.HOG.BlockCells || o.SampleHeight/o.HOG.CellSize < o.HOG.BlockCells {
			return errors.Wrapf(common.ErrInvalidArgument,
				"sample %dx%d is smaller than one hog block", o.SampleWidth, o.SampleHeight)
		}
	default:
		return errors.Wrapf(common.ErrInvalidArgument, "unknown feature mode %q", o.Mode)
	}
	return nil
}
