// Package images - provides grid containers and deterministic, row-parallel
// pixel operations used by the colour and skin stages of the pipeline.
package images

import (
	"cmp"
	"image"
	"runtime"
	"sync"
)

// Clamp restricts a value to the specified range [lo, hi].
//
// Arguments:
// - value: The value to clamp.
// - lo: Minimum allowed value.
// - hi: Maximum allowed value.
//
// Returns:
// - The clamped value within [lo, hi].
//
// @example
// clamped := Clamp(300.5, 0, 255) // Returns 255
// clamped := Clamp(-10, 0, 640)   // Returns 0
func Clamp[T cmp.Ordered](value, lo, hi T) T {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Parallel splits [0, dataSize) into contiguous partitions and runs fn on each
// partition in its own goroutine. Partitions never overlap so fn may write to
// disjoint rows of a shared buffer without locking.
//
// Arguments:
// - dataSize: The size of the data to process.
// - fn: Function to execute for each partition (receives start and end indices).
//
// @example
//
//	Parallel(height, func(start, end int) {
//	    for y := start; y < end; y++ {
//	        // Process row y
//	    }
//	})
func Parallel(dataSize int, fn func(partStart, partEnd int)) {
	numGoroutines := runtime.NumCPU()

	// Small inputs are not worth the goroutine overhead.
	if dataSize < numGoroutines*2 {
		fn(0, dataSize)
		return
	}

	partSize := dataSize / numGoroutines

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		partStart := i * partSize
		partEnd := partStart + partSize

		// Last partition gets any remaining data.
		if i == numGoroutines-1 {
			partEnd = dataSize
		}

		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(partStart, partEnd)
	}

	wg.Wait()
}

// EdgeMode defines how to handle coordinates that are out of bounds.
type EdgeMode string

const (
	// ClampEdgeMode repeats the nearest edge sample.
	ClampEdgeMode EdgeMode = "clamp"
	// MirrorEdgeMode reflects coordinates around the edge.
	MirrorEdgeMode EdgeMode = "mirror"
	// WrapEdgeMode wraps coordinates around to the opposite edge.
	WrapEdgeMode EdgeMode = "wrap"
)

// MapCoord maps a coordinate into [0, max) based on the edge mode.
// Unknown modes fall back to clamping.
//
// Arguments:
// - coord: The coordinate to map.
// - max: The number of valid coordinates, must be positive.
// - mode: The edge mode to use.
func MapCoord(coord, max int, mode EdgeMode) int {
	switch mode {
	case MirrorEdgeMode:
		for coord < 0 || coord >= max {
			if coord < 0 {
				coord = -coord - 1
			} else {
				coord = 2*max - coord - 1
			}
		}
		return coord
	case WrapEdgeMode:
		return (coord%max + max) % max
	default:
		if coord < 0 {
			return 0
		} else if coord >= max {
			return max - 1
		}
		return coord
	}
}

// Grayscale converts an image to 8-bit grey using ITU-R BT.709 luma coefficients.
// The result always starts at the origin regardless of the source bounds.
//
// Arguments:
// - img: The source image to convert.
//
// Returns:
// - A new *image.Gray with the same dimensions.
//
// @example
// gray := Grayscale(crop)
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, width, height))

	const (
		redWeight   = 0.2126
		greenWeight = 0.7152
		blueWeight  = 0.0722
	)

	Parallel(height, func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			row := dst.Pix[y*dst.Stride : y*dst.Stride+width]
			for x := range row {
				// RGBA() returns 16-bit channels.
				r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				luma := float64(r)*redWeight + float64(g)*greenWeight + float64(b)*blueWeight
				row[x] = uint8(Clamp(luma/257+0.5, 0, 255))
			}
		}
	})

	return dst
}
