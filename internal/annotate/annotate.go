package annotate

import (
	"fmt"
	"image"
	"strconv"

	"github.com/fogleman/gg"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/basicfont"

	"github.com/comicvision/balloondetect/internal/detection"
	"github.com/comicvision/balloondetect/internal/imaging"
)

// DetectionResult aggregates one detection pass over a page: an annotated
// copy of the input image, the candidate balloon rectangles in normalized
// coordinates, and the raw contours that produced them.
//
// BalloonRects and Contours are positionally correlated: BalloonRects[i]
// is the bounding box of Contours[i], and both slices always have equal
// length when populated by the same pass. The result is immutable once
// assembled; no later call mutates it.
type DetectionResult struct {
	// Marked is a copy of the input image with contours and candidate
	// rectangles drawn over it for diagnostic display.
	Marked image.Image `json:"-"`

	// BalloonRects are the accepted candidate regions, normalized to [0,1].
	BalloonRects []detection.NormalizedRect `json:"balloon_rects"`

	// Contours are the source contours in pixel coordinates.
	Contours []detection.Contour `json:"contours"`

	// Count is the number of candidates.
	Count int `json:"count"`
}

// goldenAngle spaces candidate hues so neighboring indexes get visibly
// distinct colors regardless of how many candidates there are.
const goldenAngle = 137.5

// MarkCandidates assembles a DetectionResult from filtered candidates,
// drawing each candidate's contour and bounding rectangle over a copy of
// the source image.
//
// Each candidate gets a distinct hue and a small index label (1-based) at
// the rectangle's top-left corner. The input image is never modified.
// Purely structural: no new detection happens here.
func MarkCandidates(img image.Image, candidates []detection.Candidate) (*DetectionResult, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: image is nil", imaging.ErrInvalidInput)
	}
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image has zero dimension (%dx%d)", imaging.ErrInvalidInput, width, height)
	}

	dc := gg.NewContextForImage(img)
	dc.SetFontFace(basicfont.Face7x13)

	rects := make([]detection.NormalizedRect, 0, len(candidates))
	contours := make([]detection.Contour, 0, len(candidates))

	for i, cand := range candidates {
		hue := float64(i) * goldenAngle
		for hue >= 360 {
			hue -= 360
		}
		tint := colorful.Hsv(hue, 0.85, 0.95)
		dc.SetColor(tint)

		drawContour(dc, cand.Contour)

		// Denormalize the rectangle onto this image's pixel grid
		x := cand.Rect.X * float64(width)
		y := cand.Rect.Y * float64(height)
		w := cand.Rect.Width * float64(width)
		h := cand.Rect.Height * float64(height)
		dc.SetLineWidth(2)
		dc.DrawRectangle(x, y, w, h)
		dc.Stroke()

		dc.DrawString(strconv.Itoa(i+1), x+3, y+13)

		rects = append(rects, cand.Rect)
		contours = append(contours, cand.Contour)
	}

	return &DetectionResult{
		Marked:       dc.Image(),
		BalloonRects: rects,
		Contours:     contours,
		Count:        len(candidates),
	}, nil
}

// drawContour strokes a closed polyline through the contour's points.
func drawContour(dc *gg.Context, contour detection.Contour) {
	if len(contour) == 0 {
		return
	}
	dc.SetLineWidth(1)
	dc.MoveTo(float64(contour[0].X), float64(contour[0].Y))
	for _, p := range contour[1:] {
		dc.LineTo(float64(p.X), float64(p.Y))
	}
	dc.ClosePath()
	dc.Stroke()
}
