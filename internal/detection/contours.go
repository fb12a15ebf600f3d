package detection

import (
	"fmt"
	"image"

	"github.com/comicvision/balloondetect/internal/imaging"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Contour is an ordered sequence of points describing a closed polyline
// around a connected region. Traversal order around the shape is
// significant; the starting point is not guaranteed.
type Contour []Point

// BoundingBox returns the axis-aligned bounding rectangle of the contour
// in pixel coordinates. An empty contour yields the zero rectangle.
func (c Contour) BoundingBox() image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	minX, minY := c[0].X, c[0].Y
	maxX, maxY := c[0].X, c[0].Y
	for _, p := range c[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return image.Rect(minX, minY, maxX, maxY)
}

// noiseFloorPixels is the minimum connected-component size considered a
// contour. Smaller specks cannot outline a balloon at any page resolution.
const noiseFloorPixels = 10

// binaryThreshold separates foreground from background in the input edge map.
const binaryThreshold = 128

// ExtractContours finds the outer contours of connected components in a
// binary edge map.
//
// The input must be a single-channel thresholded image, such as the output
// of imaging.Preprocess: pixels >= 128 are foreground. Components are
// grouped with 8-connectivity, so regions touching only diagonally are
// still one contour, and regions not connected in the 8-connectivity sense
// are never merged.
//
// Each contour is produced by Moore boundary tracing from the component's
// topmost-leftmost pixel, yielding an ordered closed polyline. An empty
// scene (no foreground pixels) returns an empty slice and no error.
//
// Contour points are relative to the image's bounds origin. The slice order
// follows the row-major discovery scan: unspecified as a contract, but
// stable for identical input to support deterministic testing.
func ExtractContours(binary *image.Gray) ([]Contour, error) {
	if binary == nil {
		return nil, fmt.Errorf("%w: edge map is nil", imaging.ErrInvalidInput)
	}
	bounds := binary.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: edge map has zero dimension (%dx%d)", imaging.ErrInvalidInput, width, height)
	}

	fg := make([]bool, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			fg[y*width+x] = binary.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y >= binaryThreshold
		}
	}

	labels := make([]int, width*height)
	contours := make([]Contour, 0)
	nextLabel := 0

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			if !fg[idx] || labels[idx] != 0 {
				continue
			}
			nextLabel++
			size := labelComponent(fg, labels, width, height, x, y, nextLabel)
			if size < noiseFloorPixels {
				continue
			}
			inComponent := func(px, py int) bool {
				if px < 0 || px >= width || py < 0 || py >= height {
					return false
				}
				return labels[py*width+px] == nextLabel
			}
			contours = append(contours, traceBoundary(inComponent, Point{X: x, Y: y}, 4*size+8))
		}
	}

	return contours, nil
}

// labelComponent flood-fills the 8-connected component containing (startX,
// startY), writing label into the labels array, and returns the component's
// pixel count. Iterative stack-based fill avoids stack overflow on large
// components.
func labelComponent(fg []bool, labels []int, width, height, startX, startY, label int) int {
	stack := []Point{{X: startX, Y: startY}}
	size := 0

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		idx := p.Y*width + p.X
		if !fg[idx] || labels[idx] != 0 {
			continue
		}

		labels[idx] = label
		size++

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}

	return size
}

// neighborOffsets enumerates the 8-neighborhood in clockwise order
// starting east, matching image coordinates (y grows downward).
var neighborOffsets = [8]Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// traceBoundary walks the outer boundary of a component clockwise using
// Moore-neighbor tracing with Jacob's stopping criterion.
//
// seed must be the component's topmost-leftmost pixel so its west neighbor
// is guaranteed background; the trace therefore starts its clockwise sweep
// at the north-west neighbor. maxSteps bounds the walk against pathological
// shapes.
func traceBoundary(inComponent func(x, y int) bool, seed Point, maxSteps int) Contour {
	contour := Contour{seed}
	cur := seed
	firstDir := -1
	searchStart := 5 // NW, first clockwise position after the background W neighbor

	for steps := 0; steps < maxSteps; steps++ {
		moved := false
		for i := 0; i < 8; i++ {
			d := (searchStart + i) % 8
			n := Point{X: cur.X + neighborOffsets[d].X, Y: cur.Y + neighborOffsets[d].Y}
			if !inComponent(n.X, n.Y) {
				continue
			}
			if firstDir == -1 {
				firstDir = d
			} else if cur == seed && d == firstDir {
				return closeContour(contour)
			}
			cur = n
			searchStart = (d + 6) % 8
			moved = true
			break
		}
		if !moved {
			// Isolated pixel: a single-point contour
			return contour
		}
		contour = append(contour, cur)
	}

	return closeContour(contour)
}

// closeContour drops a duplicated terminal point so the polyline is closed
// implicitly rather than by repetition.
func closeContour(c Contour) Contour {
	if len(c) > 1 && c[0] == c[len(c)-1] {
		return c[:len(c)-1]
	}
	return c
}
