package detection

import (
	"fmt"
	"sort"

	"github.com/comicvision/balloondetect/internal/imaging"
)

// NormalizedRect is an axis-aligned rectangle in normalized coordinates:
// all four fields lie in [0,1], with X/Y measured from the image's top-left
// corner. Normalized rectangles are resolution-independent, so a balloon
// detected on a thumbnail maps directly onto the full-size page.
type NormalizedRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AcceptanceBand bounds the relative bounding-box area a contour may cover
// to qualify as a balloon candidate. Contours below MinAreaFraction are
// treated as noise; contours above MaxAreaFraction are near-full-page false
// positives such as panel borders.
type AcceptanceBand struct {
	MinAreaFraction float64 `json:"min_area_fraction"`
	MaxAreaFraction float64 `json:"max_area_fraction"`
}

// DefaultAcceptanceBand returns the band tuned for comic page scans:
// balloons between 0.2% and 60% of the page area.
func DefaultAcceptanceBand() AcceptanceBand {
	return AcceptanceBand{
		MinAreaFraction: 0.002,
		MaxAreaFraction: 0.6,
	}
}

// Candidate pairs an accepted balloon rectangle with the contour that
// produced it. Keeping the pair together preserves the positional
// correlation between rectangle and contour lists downstream.
type Candidate struct {
	// Rect is the contour's bounding box normalized to the unit square.
	Rect NormalizedRect `json:"rect"`

	// Contour is the source contour in pixel coordinates.
	Contour Contour `json:"contour"`
}

// FilterCandidates scores contours against the acceptance band and returns
// the survivors as normalized balloon candidates.
//
// width and height are the dimensions of the image the contours came from;
// rectangles are normalized by dividing by them. The returned slice is
// sorted by normalized area, largest first, with the row-major input order
// as a deterministic tiebreak.
//
// Returns ErrInvalidInput for non-positive dimensions and
// ErrInvalidParameter for a malformed band (negative minimum, maximum not
// above minimum, or maximum above 1).
func FilterCandidates(contours []Contour, width, height int, band AcceptanceBand) ([]Candidate, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image dimensions %dx%d", imaging.ErrInvalidInput, width, height)
	}
	if band.MinAreaFraction < 0 || band.MaxAreaFraction <= band.MinAreaFraction || band.MaxAreaFraction > 1 {
		return nil, fmt.Errorf("%w: acceptance band [%v, %v]", imaging.ErrInvalidParameter, band.MinAreaFraction, band.MaxAreaFraction)
	}

	imageArea := float64(width) * float64(height)
	candidates := make([]Candidate, 0, len(contours))

	for _, contour := range contours {
		if len(contour) == 0 {
			continue
		}
		box := contour.BoundingBox()
		areaFraction := float64(box.Dx()) * float64(box.Dy()) / imageArea
		if areaFraction < band.MinAreaFraction || areaFraction > band.MaxAreaFraction {
			continue
		}

		candidates = append(candidates, Candidate{
			Rect: NormalizedRect{
				X:      clampUnit(float64(box.Min.X) / float64(width)),
				Y:      clampUnit(float64(box.Min.Y) / float64(height)),
				Width:  clampUnit(float64(box.Dx()) / float64(width)),
				Height: clampUnit(float64(box.Dy()) / float64(height)),
			},
			Contour: contour,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Rect.Width*candidates[i].Rect.Height >
			candidates[j].Rect.Width*candidates[j].Rect.Height
	})

	return candidates, nil
}

// clampUnit constrains a normalized coordinate to [0,1].
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
