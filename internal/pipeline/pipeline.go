package pipeline

import (
	"fmt"
	"image"

	"github.com/comicvision/balloondetect/internal/annotate"
	"github.com/comicvision/balloondetect/internal/detection"
	"github.com/comicvision/balloondetect/internal/imaging"
	"github.com/comicvision/balloondetect/internal/segmentation"
)

// Config collects every tunable parameter of the detection pipeline in one
// place. Zero values are not useful; start from DefaultConfig and override
// fields as needed.
type Config struct {
	// Preprocess parameterizes the primitive filter stage.
	Preprocess imaging.PreprocessOptions

	// Band is the candidate filter's acceptance band.
	Band detection.AcceptanceBand

	// Expansion parameterizes text-seeded region expansion.
	Expansion segmentation.Options
}

// DefaultConfig returns the pipeline defaults for comic page scans.
func DefaultConfig() Config {
	return Config{
		Preprocess: imaging.DefaultPreprocessOptions(),
		Band:       detection.DefaultAcceptanceBand(),
		Expansion:  segmentation.DefaultOptions(),
	}
}

// DetectAndMarkBalloons runs the full marker-strategy pipeline over one
// image: preprocessing, contour extraction, candidate filtering, and
// result aggregation with a diagnostic overlay.
//
// The call is synchronous and pure: one image in, one immutable result
// out, no state retained between invocations. Concurrent calls on
// different images do not interfere.
func DetectAndMarkBalloons(img image.Image, cfg Config) (*annotate.DetectionResult, error) {
	edges, err := imaging.Preprocess(img, cfg.Preprocess)
	if err != nil {
		return nil, fmt.Errorf("preprocessing: %w", err)
	}

	contours, err := detection.ExtractContours(edges)
	if err != nil {
		return nil, fmt.Errorf("extracting contours: %w", err)
	}

	bounds := img.Bounds()
	candidates, err := detection.FilterCandidates(contours, bounds.Dx(), bounds.Dy(), cfg.Band)
	if err != nil {
		return nil, fmt.Errorf("filtering candidates: %w", err)
	}

	result, err := annotate.MarkCandidates(img, candidates)
	if err != nil {
		return nil, fmt.Errorf("marking candidates: %w", err)
	}
	return result, nil
}

// ExpandTextRegionToBalloon grows a pixel-space text rectangle into the
// enclosing balloon. A nil rectangle with a nil error means no enclosing
// balloon was found; see segmentation.ExpandTextToBalloon.
func ExpandTextRegionToBalloon(img image.Image, textRect image.Rectangle, cfg Config) (*image.Rectangle, error) {
	return segmentation.ExpandTextToBalloon(img, textRect, cfg.Expansion)
}

// RefinedBalloonContour returns the outer contour of the balloon enclosing
// a pixel-space text rectangle, or a nil contour when none is found.
func RefinedBalloonContour(img image.Image, textRect image.Rectangle, cfg Config) (detection.Contour, error) {
	return segmentation.RefineContour(img, textRect, cfg.Expansion)
}
