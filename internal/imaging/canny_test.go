package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// createUniformImage creates a solid color test image
func createUniformImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createSplitImage creates an image that is black left of splitX and white right of it
func createSplitImage(width, height, splitX int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < splitX {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

// createSquareImage creates a white image with a filled black square
func createSquareImage(width, height, x1, y1, x2, y2 int) *image.RGBA {
	img := createUniformImage(width, height, color.White)
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.Set(x, y, color.Black)
		}
	}
	return img
}

func TestCannyEdge_InvalidInput(t *testing.T) {
	if _, err := CannyEdge(nil, 50, 150); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil image: got %v, want ErrInvalidInput", err)
	}

	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if _, err := CannyEdge(empty, 50, 150); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero-dimension image: got %v, want ErrInvalidInput", err)
	}
}

func TestCannyEdge_InvalidThresholds(t *testing.T) {
	img := createUniformImage(10, 10, color.White)

	tests := []struct {
		name      string
		low, high float64
	}{
		{"negative low", -1, 150},
		{"negative high", 50, -1},
		{"low above high", 151, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CannyEdge(img, tt.low, tt.high); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("got %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestCannyEdge_EqualThresholds(t *testing.T) {
	// Degenerate low == high must not fail and must yield a valid binary map
	img := createSplitImage(100, 100, 50)

	result, err := CannyEdge(img, 50, 50)
	if err != nil {
		t.Fatalf("CannyEdge failed: %v", err)
	}

	if result.Bounds().Dx() != 100 || result.Bounds().Dy() != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100", result.Bounds().Dx(), result.Bounds().Dy())
	}

	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if v := result.GrayAt(x, y).Y; v != 0 && v != 255 {
				t.Fatalf("non-binary pixel %d at (%d,%d)", v, x, y)
			}
		}
	}
}

func TestCannyEdge_UniformImage(t *testing.T) {
	img := createUniformImage(50, 50, color.RGBA{128, 128, 128, 255})

	result, err := CannyEdge(img, 50, 150)
	if err != nil {
		t.Fatalf("CannyEdge failed: %v", err)
	}

	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			if result.GrayAt(x, y).Y != 0 {
				t.Fatalf("uniform image should have no edges, found one at (%d,%d)", x, y)
			}
		}
	}
}

func TestCannyEdge_StrongEdge(t *testing.T) {
	img := createSplitImage(100, 100, 50)

	result, err := CannyEdge(img, 50, 150)
	if err != nil {
		t.Fatalf("CannyEdge failed: %v", err)
	}

	// The edge should be detected around x=50
	edgeFound := false
	for x := 48; x <= 52 && !edgeFound; x++ {
		if result.GrayAt(x, 50).Y == 255 {
			edgeFound = true
		}
	}
	if !edgeFound {
		t.Error("no edge detected near x=50 on a strong contrast boundary")
	}

	// Far from the boundary there should be nothing
	if result.GrayAt(10, 50).Y != 0 || result.GrayAt(90, 50).Y != 0 {
		t.Error("edge detected far from the contrast boundary")
	}
}

func TestCannyEdge_ThinEdges(t *testing.T) {
	// A clean vertical step produces a flat gradient ridge two pixels wide;
	// suppression must thin it to a single pixel per row, not keep the
	// whole plateau
	img := createSplitImage(100, 100, 50)

	result, err := CannyEdge(img, 50, 150)
	if err != nil {
		t.Fatalf("CannyEdge failed: %v", err)
	}

	for y := 1; y < 99; y++ {
		count := 0
		for x := 0; x < 100; x++ {
			if result.GrayAt(x, y).Y == 255 {
				count++
			}
		}
		if count != 1 {
			t.Fatalf("row %d has %d edge pixels, want exactly 1", y, count)
		}
	}
}

func TestCannyEdge_Deterministic(t *testing.T) {
	img := createSquareImage(60, 60, 20, 20, 40, 40)

	first, err := CannyEdge(img, 50, 150)
	if err != nil {
		t.Fatalf("CannyEdge failed: %v", err)
	}
	second, err := CannyEdge(img, 50, 150)
	if err != nil {
		t.Fatalf("CannyEdge failed: %v", err)
	}

	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			if first.GrayAt(x, y) != second.GrayAt(x, y) {
				t.Fatalf("results differ at (%d,%d)", x, y)
			}
		}
	}
}
