// Command balloon-detect runs the speech balloon detection pipeline over
// one or more page images.
//
// For each input it writes an annotated copy next to the original (with a
// .balloons.png suffix) and prints the detected rectangles as JSON on
// stdout. With -text-rect it instead expands the given pixel-space text
// rectangle into its enclosing balloon.
//
// Image decoding and encoding live here, not in the pipeline packages: the
// detection core only ever sees decoded images.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"strings"

	dimaging "github.com/disintegration/imaging"

	"github.com/comicvision/balloondetect/internal/config"
	"github.com/comicvision/balloondetect/internal/detection"
	"github.com/comicvision/balloondetect/internal/imaging"
	"github.com/comicvision/balloondetect/internal/pipeline"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// fileReport is the per-image JSON record printed to stdout.
type fileReport struct {
	File         string                     `json:"file"`
	Count        int                        `json:"count"`
	BalloonRects []detection.NormalizedRect `json:"balloon_rects"`
	Marked       string                     `json:"marked,omitempty"`
	Expanded     *pixelRect                 `json:"expanded,omitempty"`
}

// pixelRect mirrors image.Rectangle with stable JSON field names.
type pixelRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func main() {
	var (
		showVersion = flag.Bool("version", false, "print version information and exit")
		maxWidth    = flag.Int("max-width", 0, "downscale inputs wider than this before detection (0 = no scaling)")
		textRect    = flag.String("text-rect", "", "expand a pixel-space text rectangle 'x,y,w,h' instead of full detection")
		enhance     = flag.Bool("enhance", false, "write an OCR-enhanced copy (.enhanced.png) instead of detecting")
	)
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("balloon-detect %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	// Logging goes to stderr; stdout carries the JSON reports
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime)

	config.Load()
	cfg := config.FromEnv()

	if os.Getenv("BALLOON_LOG_LEVEL") == "debug" {
		log.Printf("balloon-detect v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("config: %+v", cfg)
	}

	cache := imaging.NewImageCache()
	encoder := json.NewEncoder(os.Stdout)
	failures := 0

	for _, path := range flag.Args() {
		report, err := processFile(cache, path, cfg, *maxWidth, *textRect, *enhance)
		if err != nil {
			log.Printf("%s: %v", path, err)
			failures++
			continue
		}
		if err := encoder.Encode(report); err != nil {
			log.Printf("%s: encoding report: %v", path, err)
			failures++
		}
		cache.Evict(path)
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func processFile(cache *imaging.ImageCache, path string, cfg pipeline.Config, maxWidth int, textRectSpec string, enhance bool) (*fileReport, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		scale := float64(maxWidth) / float64(img.Bounds().Dx())
		img = dimaging.Resize(img, maxWidth, int(float64(img.Bounds().Dy())*scale), dimaging.Lanczos)
	}

	if enhance {
		enhanced, err := imaging.EnhanceForOCR(img)
		if err != nil {
			return nil, err
		}
		out := outputPath(path, ".enhanced.png")
		if err := writePNG(out, enhanced); err != nil {
			return nil, err
		}
		return &fileReport{File: path, Marked: out}, nil
	}

	if textRectSpec != "" {
		rect, err := parseRect(textRectSpec)
		if err != nil {
			return nil, err
		}
		expanded, err := pipeline.ExpandTextRegionToBalloon(img, rect, cfg)
		if err != nil {
			return nil, err
		}
		report := &fileReport{File: path}
		if expanded != nil {
			report.Count = 1
			report.Expanded = &pixelRect{
				X:      expanded.Min.X,
				Y:      expanded.Min.Y,
				Width:  expanded.Dx(),
				Height: expanded.Dy(),
			}
		}
		return report, nil
	}

	result, err := pipeline.DetectAndMarkBalloons(img, cfg)
	if err != nil {
		return nil, err
	}

	out := outputPath(path, ".balloons.png")
	if err := writePNG(out, result.Marked); err != nil {
		return nil, err
	}

	return &fileReport{
		File:         path,
		Count:        result.Count,
		BalloonRects: result.BalloonRects,
		Marked:       out,
	}, nil
}

// parseRect parses "x,y,w,h" into a pixel-space rectangle.
func parseRect(spec string) (image.Rectangle, error) {
	var x, y, w, h int
	if _, err := fmt.Sscanf(spec, "%d,%d,%d,%d", &x, &y, &w, &h); err != nil {
		return image.Rectangle{}, fmt.Errorf("invalid -text-rect %q (want x,y,w,h): %w", spec, err)
	}
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, fmt.Errorf("invalid -text-rect %q: width and height must be positive", spec)
	}
	return image.Rect(x, y, x+w, y+h), nil
}

// outputPath replaces the input's extension with the given suffix.
func outputPath(path, suffix string) string {
	if i := strings.LastIndex(path, "."); i > 0 {
		return path[:i] + suffix
	}
	return path + suffix
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "balloon-detect - speech balloon detection for comic pages")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage: balloon-detect [options] image.png [image2.png ...]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Options:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Environment variables:")
	fmt.Fprintln(os.Stderr, "  BALLOON_LOG_LEVEL=debug      Enable debug logging")
	fmt.Fprintln(os.Stderr, "  BALLOON_CANNY_LOW, BALLOON_CANNY_HIGH, BALLOON_CLOSE_KERNEL, ...")
	fmt.Fprintln(os.Stderr, "  (see internal/config for the full list; a .env file is honored)")
}
