package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// createBinaryImage creates a black single-channel image with white pixels
// set at the given points
func createBinaryImage(width, height int, white []image.Point) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for _, p := range white {
		img.SetGray(p.X, p.Y, color.Gray{Y: 255})
	}
	return img
}

// countRegions counts 8-connected white regions in a binary image
func countRegions(img *image.Gray) int {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	visited := make([]bool, w*h)
	count := 0

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if visited[y*w+x] || img.GrayAt(x, y).Y < 128 {
				continue
			}
			count++
			stack := []image.Point{{X: x, Y: y}}
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
					continue
				}
				if visited[p.Y*w+p.X] || img.GrayAt(p.X, p.Y).Y < 128 {
					continue
				}
				visited[p.Y*w+p.X] = true
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						stack = append(stack, image.Pt(p.X+dx, p.Y+dy))
					}
				}
			}
		}
	}
	return count
}

func TestMorphClose_InvalidKernel(t *testing.T) {
	img := createBinaryImage(20, 20, nil)

	tests := []struct {
		name   string
		kernel int
	}{
		{"zero", 0},
		{"negative", -3},
		{"even", 2},
		{"larger even", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := MorphClose(img, tt.kernel); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("kernel %d: got %v, want ErrInvalidParameter", tt.kernel, err)
			}
		})
	}
}

func TestMorphClose_InvalidImage(t *testing.T) {
	if _, err := MorphClose(nil, 3); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil image: got %v, want ErrInvalidInput", err)
	}
}

func TestMorphClose_MergesNearbyFragments(t *testing.T) {
	// Two short bars separated by a 2-pixel gap
	var white []image.Point
	for x := 10; x < 20; x++ {
		white = append(white, image.Pt(x, 25))
	}
	for x := 22; x < 32; x++ {
		white = append(white, image.Pt(x, 25))
	}
	img := createBinaryImage(50, 50, white)

	if got := countRegions(img); got != 2 {
		t.Fatalf("setup: got %d regions, want 2", got)
	}

	closed, err := MorphClose(img, 5)
	if err != nil {
		t.Fatalf("MorphClose failed: %v", err)
	}

	if got := countRegions(closed); got != 1 {
		t.Errorf("after closing: got %d regions, want 1 (gap should be bridged)", got)
	}
}

func TestMorphClose_RepeatedApplication(t *testing.T) {
	// A second closing must not split regions a single closing merged
	var white []image.Point
	for x := 5; x < 15; x++ {
		white = append(white, image.Pt(x, 20))
	}
	for x := 17; x < 27; x++ {
		white = append(white, image.Pt(x, 20))
	}
	for y := 30; y < 40; y++ {
		white = append(white, image.Pt(35, y))
	}
	img := createBinaryImage(60, 60, white)

	once, err := MorphClose(img, 5)
	if err != nil {
		t.Fatalf("MorphClose failed: %v", err)
	}
	twice, err := MorphClose(once, 5)
	if err != nil {
		t.Fatalf("second MorphClose failed: %v", err)
	}

	if countRegions(twice) > countRegions(once) {
		t.Errorf("repeated closing split regions: once=%d twice=%d",
			countRegions(once), countRegions(twice))
	}
}

func TestMorphClose_IdentityKernel(t *testing.T) {
	white := []image.Point{{X: 10, Y: 10}, {X: 30, Y: 30}}
	img := createBinaryImage(50, 50, white)

	closed, err := MorphClose(img, 1)
	if err != nil {
		t.Fatalf("MorphClose failed: %v", err)
	}
	if got := countRegions(closed); got != 2 {
		t.Errorf("kernel 1 should not merge regions: got %d, want 2", got)
	}
}

func TestPreprocess_InvalidInput(t *testing.T) {
	if _, err := Preprocess(nil, DefaultPreprocessOptions()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil image: got %v, want ErrInvalidInput", err)
	}

	opts := DefaultPreprocessOptions()
	opts.BlurRadius = -1
	img := createUniformImage(10, 10, color.White)
	if _, err := Preprocess(img, opts); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("negative blur radius: got %v, want ErrInvalidParameter", err)
	}

	opts = DefaultPreprocessOptions()
	opts.CloseKernelSize = 4
	if _, err := Preprocess(img, opts); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("even kernel: got %v, want ErrInvalidParameter", err)
	}
}

func TestPreprocess_SquareOutline(t *testing.T) {
	img := createSquareImage(100, 100, 40, 40, 60, 60)

	edges, err := Preprocess(img, DefaultPreprocessOptions())
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}

	if edges.Bounds().Dx() != 100 || edges.Bounds().Dy() != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100",
			edges.Bounds().Dx(), edges.Bounds().Dy())
	}

	// The square boundary must produce edge pixels; the interior and far
	// background must stay empty
	foundEdge := false
	for x := 38; x <= 42 && !foundEdge; x++ {
		if edges.GrayAt(x, 50).Y == 255 {
			foundEdge = true
		}
	}
	if !foundEdge {
		t.Error("no edge pixels near the square's left boundary")
	}
	if edges.GrayAt(50, 50).Y != 0 {
		t.Error("edge pixel inside the square's interior")
	}
	if edges.GrayAt(10, 10).Y != 0 {
		t.Error("edge pixel in empty background")
	}
}

func TestPreprocess_EmptyScene(t *testing.T) {
	img := createUniformImage(80, 80, color.White)

	edges, err := Preprocess(img, DefaultPreprocessOptions())
	if err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}

	for y := 0; y < 80; y++ {
		for x := 0; x < 80; x++ {
			if edges.GrayAt(x, y).Y != 0 {
				t.Fatalf("edge pixel at (%d,%d) in a uniform image", x, y)
			}
		}
	}
}
