package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// Sentinel errors for the filter stages. Callers should test with errors.Is;
// the wrapped message carries the offending values.
var (
	// ErrInvalidInput indicates a nil or zero-dimension image, or a
	// malformed rectangle.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidParameter indicates an out-of-range threshold or kernel size.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// PreprocessOptions holds the tunable parameters of the preprocessing
// pipeline. None of the values are hard-coded in the stages themselves;
// use DefaultPreprocessOptions as a starting point.
type PreprocessOptions struct {
	// BlurRadius is the Gaussian blur radius applied before edge detection.
	BlurRadius float64

	// CannyLow is the low hysteresis threshold (0-255).
	CannyLow float64

	// CannyHigh is the high hysteresis threshold (0-255).
	CannyHigh float64

	// CloseKernelSize is the morphological closing kernel size. Must be a
	// positive odd integer. Larger values merge nearby edge fragments more
	// aggressively at the cost of over-merging distinct regions.
	CloseKernelSize int
}

// DefaultPreprocessOptions returns preprocessing parameters tuned for
// typical comic page scans.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		BlurRadius:      1.0,
		CannyLow:        50,
		CannyHigh:       150,
		CloseKernelSize: 3,
	}
}

// Preprocess runs the balloon-detection preprocessing pipeline:
// grayscale conversion, Gaussian blur, Canny edge detection, and
// morphological closing, in that fixed order.
//
// The result is a binary edge map suitable for ExtractContours. The
// function is deterministic and has no side effects; the input image is
// never modified.
//
// Returns ErrInvalidInput for a nil or zero-dimension image and
// ErrInvalidParameter for out-of-range options.
func Preprocess(img image.Image, opts PreprocessOptions) (*image.Gray, error) {
	if err := validateImage(img); err != nil {
		return nil, err
	}
	if opts.BlurRadius < 0 {
		return nil, fmt.Errorf("%w: blur radius must be non-negative, got %v", ErrInvalidParameter, opts.BlurRadius)
	}

	gray := effect.Grayscale(img)

	smoothed := image.Image(gray)
	if opts.BlurRadius > 0 {
		smoothed = blur.Gaussian(gray, opts.BlurRadius)
	}

	edges, err := CannyEdge(smoothed, opts.CannyLow, opts.CannyHigh)
	if err != nil {
		return nil, err
	}

	return MorphClose(edges, opts.CloseKernelSize)
}

// MorphClose applies morphological closing (dilation followed by erosion)
// to merge nearby edge fragments.
//
// kernelSize must be a positive odd integer; even or non-positive values
// return ErrInvalidParameter. A kernel size of 1 is the identity closing.
// The output is re-thresholded to a binary single-channel image so that
// repeated closings compose cleanly.
func MorphClose(img image.Image, kernelSize int) (*image.Gray, error) {
	if err := validateImage(img); err != nil {
		return nil, err
	}
	if kernelSize <= 0 || kernelSize%2 == 0 {
		return nil, fmt.Errorf("%w: kernel size must be a positive odd integer, got %d", ErrInvalidParameter, kernelSize)
	}

	radius := float64(kernelSize / 2)
	if radius == 0 {
		return segment.Threshold(img, binaryLevel), nil
	}

	dilated := effect.Dilate(img, radius)
	eroded := effect.Erode(dilated, radius)
	return segment.Threshold(eroded, binaryLevel), nil
}

// binaryLevel is the cutoff used when re-binarizing filter output.
const binaryLevel = 128

// validateImage rejects nil and zero-dimension images so the filter stages
// never have to branch on degenerate geometry.
func validateImage(img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: image is nil", ErrInvalidInput)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return fmt.Errorf("%w: image has zero dimension (%dx%d)", ErrInvalidInput, bounds.Dx(), bounds.Dy())
	}
	return nil
}
