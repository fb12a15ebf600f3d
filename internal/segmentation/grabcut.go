package segmentation

import (
	"fmt"
	"image"
	"image/color"
	"math"

	dimaging "github.com/disintegration/imaging"

	"github.com/comicvision/balloondetect/internal/detection"
	"github.com/comicvision/balloondetect/internal/imaging"
)

// Options holds the tunable parameters of text-seeded region expansion.
type Options struct {
	// MarginScale sizes the fixed-background band just inside the search
	// window border, as a fraction of the text box's larger dimension.
	// Pixels in the band anchor the background class; pixels between the
	// text box and the band are reclassified each iteration.
	MarginScale float64

	// WindowScale sizes the search window as a multiple of the text box.
	// Segmentation never looks outside the window, so the expanded balloon
	// is bounded by it.
	WindowScale float64

	// MaxIterations caps the reclassification loop. The cap is the only
	// bounded-retry-like behavior in the pipeline; hitting it degrades to
	// whatever region the last iteration produced, never to blocking.
	MaxIterations int

	// ConvergenceFraction stops iteration early once fewer than this
	// fraction of window pixels change label in a pass.
	ConvergenceFraction float64
}

// DefaultOptions returns expansion parameters tuned for comic page scans.
func DefaultOptions() Options {
	return Options{
		MarginScale:         0.35,
		WindowScale:         3.0,
		MaxIterations:       10,
		ConvergenceFraction: 0.001,
	}
}

// ExpandTextToBalloon grows a known text bounding box into the surrounding
// balloon region using seeded foreground/background segmentation.
//
// textRect is in pixel space. A rectangle extending past the image is
// clamped to the image boundary, not rejected: expansion is a heuristic
// best-effort operation. The returned rectangle is likewise in pixel space.
//
// A nil rectangle with a nil error is the legitimate "no enclosing balloon
// found" outcome: segmentation converged to a region no larger than the
// seed. Callers must treat it as an absent value, not a failure.
//
// # Algorithm
//
//  1. Clamp the text box and crop a search window (WindowScale times the
//     box) around it
//  2. Seed a trimap: text box interior is fixed foreground, a margin band
//     just inside the window border is fixed background, everything
//     between is reclassified
//  3. Iterate two-mean classification: each undecided pixel joins the
//     class (foreground/background) whose mean luminance is nearer,
//     until convergence or MaxIterations
//  4. Keep the 8-connected foreground component touching the seed and
//     report its bounding box
func ExpandTextToBalloon(img image.Image, textRect image.Rectangle, opts Options) (*image.Rectangle, error) {
	mask, window, err := segmentWindow(img, textRect, opts)
	if err != nil || mask == nil {
		return nil, err
	}

	box, ok := maskBoundingBox(mask, window.Dx())
	if !ok {
		return nil, nil
	}
	region := box.Add(window.Min)

	seed := textRect.Intersect(img.Bounds())
	if region.Dx()*region.Dy() <= seed.Dx()*seed.Dy() {
		// Degenerate: segmentation never grew past the seed
		return nil, nil
	}
	return &region, nil
}

// RefineContour runs the same text-seeded segmentation as
// ExpandTextToBalloon but returns the outer contour of the foreground
// region instead of its bounding box.
//
// The contour is in pixel space. A nil contour with a nil error means no
// region could be traced, mirroring ExpandTextToBalloon's absent result.
func RefineContour(img image.Image, textRect image.Rectangle, opts Options) (detection.Contour, error) {
	mask, window, err := segmentWindow(img, textRect, opts)
	if err != nil || mask == nil {
		return nil, err
	}

	width := window.Dx()
	height := window.Dy()
	maskImg := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mask[y*width+x] {
				maskImg.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	contours, err := detection.ExtractContours(maskImg)
	if err != nil {
		return nil, fmt.Errorf("tracing segmented region: %w", err)
	}
	if len(contours) == 0 {
		return nil, nil
	}

	// The seed component dominates the mask; take the largest outline.
	best := contours[0]
	bestArea := area(best.BoundingBox())
	for _, c := range contours[1:] {
		if a := area(c.BoundingBox()); a > bestArea {
			best, bestArea = c, a
		}
	}

	refined := make(detection.Contour, len(best))
	for i, p := range best {
		refined[i] = detection.Point{X: p.X + window.Min.X, Y: p.Y + window.Min.Y}
	}
	return refined, nil
}

// pixel label states for the trimap
const (
	labelBackground = iota
	labelForeground
	labelFixedForeground
	labelFixedBackground
)

// segmentWindow performs the seeded segmentation and returns the
// foreground mask of the component touching the seed, along with the
// search window the mask's coordinates are relative to.
//
// A nil mask with a nil error means the clamped text box was empty.
func segmentWindow(img image.Image, textRect image.Rectangle, opts Options) ([]bool, image.Rectangle, error) {
	if img == nil {
		return nil, image.Rectangle{}, fmt.Errorf("%w: image is nil", imaging.ErrInvalidInput)
	}
	imgBounds := img.Bounds()
	if imgBounds.Dx() <= 0 || imgBounds.Dy() <= 0 {
		return nil, image.Rectangle{}, fmt.Errorf("%w: image has zero dimension (%dx%d)",
			imaging.ErrInvalidInput, imgBounds.Dx(), imgBounds.Dy())
	}
	if opts.MaxIterations <= 0 || opts.WindowScale < 1 || opts.MarginScale <= 0 ||
		opts.ConvergenceFraction < 0 || opts.ConvergenceFraction >= 1 {
		return nil, image.Rectangle{}, fmt.Errorf("%w: expansion options %+v", imaging.ErrInvalidParameter, opts)
	}

	// Clamp, never reject: expansion is best-effort
	seed := textRect.Intersect(imgBounds)
	if seed.Empty() {
		return nil, image.Rectangle{}, nil
	}

	window := inflateRect(seed, opts.WindowScale).Intersect(imgBounds)
	crop := dimaging.Crop(img, window)
	width := window.Dx()
	height := window.Dy()

	lum := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := crop.At(x, y).RGBA()
			lum[y*width+x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}

	// Seed and background band in window-relative coordinates
	seedRel := seed.Sub(window.Min)
	margin := int(opts.MarginScale * float64(maxInt(seed.Dx(), seed.Dy())))
	if margin < 1 {
		margin = 1
	}
	// Everything outside inner is the fixed-background anchor band
	inner := image.Rect(0, 0, width, height).Inset(margin)

	labels := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := image.Pt(x, y)
			switch {
			case p.In(seedRel):
				labels[y*width+x] = labelFixedForeground
			case !p.In(inner):
				labels[y*width+x] = labelFixedBackground
			default:
				labels[y*width+x] = labelBackground
			}
		}
	}

	// Two-mean iteration over the undecided band
	total := width * height
	for iter := 0; iter < opts.MaxIterations; iter++ {
		meanFG, okFG := classMean(lum, labels, labelForeground, labelFixedForeground)
		meanBG, okBG := classMean(lum, labels, labelBackground, labelFixedBackground)
		if !okFG || !okBG {
			break
		}

		changed := 0
		for i, l := range labels {
			if l == labelFixedForeground || l == labelFixedBackground {
				continue
			}
			next := uint8(labelBackground)
			if math.Abs(lum[i]-meanFG) <= math.Abs(lum[i]-meanBG) {
				next = labelForeground
			}
			if next != l {
				labels[i] = next
				changed++
			}
		}
		if float64(changed) < opts.ConvergenceFraction*float64(total) {
			break
		}
	}

	return seedComponent(labels, width, height, seedRel), window, nil
}

// classMean averages luminance over the two label values of one class.
func classMean(lum []float64, labels []uint8, a, b uint8) (float64, bool) {
	sum := 0.0
	count := 0
	for i, l := range labels {
		if l == a || l == b {
			sum += lum[i]
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// seedComponent extracts the 8-connected foreground component reachable
// from the seed rectangle as a boolean mask.
func seedComponent(labels []uint8, width, height int, seedRel image.Rectangle) []bool {
	mask := make([]bool, width*height)
	stack := make([]image.Point, 0, seedRel.Dx()*seedRel.Dy())
	for y := seedRel.Min.Y; y < seedRel.Max.Y; y++ {
		for x := seedRel.Min.X; x < seedRel.Max.X; x++ {
			stack = append(stack, image.Pt(x, y))
		}
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		idx := p.Y*width + p.X
		if mask[idx] {
			continue
		}
		if l := labels[idx]; l != labelForeground && l != labelFixedForeground {
			continue
		}

		mask[idx] = true
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, image.Pt(p.X+dx, p.Y+dy))
			}
		}
	}

	return mask
}

// maskBoundingBox returns the bounding rectangle of set mask pixels.
func maskBoundingBox(mask []bool, width int) (image.Rectangle, bool) {
	minX, minY := math.MaxInt32, math.MaxInt32
	maxX, maxY := -1, -1
	for i, set := range mask {
		if !set {
			continue
		}
		x, y := i%width, i/width
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// inflateRect grows a rectangle about its center by the given scale.
func inflateRect(r image.Rectangle, scale float64) image.Rectangle {
	growX := int(float64(r.Dx()) * (scale - 1) / 2)
	growY := int(float64(r.Dy()) * (scale - 1) / 2)
	return r.Inset(-maxInt(growX, growY))
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
