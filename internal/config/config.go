package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/comicvision/balloondetect/internal/pipeline"
)

// Load loads environment variables from a .env file in the working
// directory, if one exists. Call once at startup, before FromEnv.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found")
	}
}

// FromEnv builds a pipeline configuration from BALLOON_* environment
// variables, falling back to the pipeline defaults for anything unset.
//
// Recognized variables:
//
//	BALLOON_BLUR_RADIUS         Gaussian blur radius (float)
//	BALLOON_CANNY_LOW           Canny low threshold, 0-255 (float)
//	BALLOON_CANNY_HIGH          Canny high threshold, 0-255 (float)
//	BALLOON_CLOSE_KERNEL        morphological closing kernel size, odd (int)
//	BALLOON_MIN_AREA_FRACTION   candidate acceptance band lower bound (float)
//	BALLOON_MAX_AREA_FRACTION   candidate acceptance band upper bound (float)
//	BALLOON_EXPAND_MARGIN       expansion background-band scale (float)
//	BALLOON_EXPAND_WINDOW       expansion search-window scale (float)
//	BALLOON_EXPAND_ITERATIONS   expansion iteration cap (int)
//	BALLOON_EXPAND_CONVERGENCE  expansion convergence fraction (float)
//
// Values are read as-is; range validation happens where the parameters are
// consumed, so an out-of-range setting surfaces as ErrInvalidParameter at
// detection time rather than silently clamping here.
func FromEnv() pipeline.Config {
	cfg := pipeline.DefaultConfig()

	cfg.Preprocess.BlurRadius = FloatVariable("BALLOON_BLUR_RADIUS", cfg.Preprocess.BlurRadius)
	cfg.Preprocess.CannyLow = FloatVariable("BALLOON_CANNY_LOW", cfg.Preprocess.CannyLow)
	cfg.Preprocess.CannyHigh = FloatVariable("BALLOON_CANNY_HIGH", cfg.Preprocess.CannyHigh)
	cfg.Preprocess.CloseKernelSize = IntVariable("BALLOON_CLOSE_KERNEL", cfg.Preprocess.CloseKernelSize)

	cfg.Band.MinAreaFraction = FloatVariable("BALLOON_MIN_AREA_FRACTION", cfg.Band.MinAreaFraction)
	cfg.Band.MaxAreaFraction = FloatVariable("BALLOON_MAX_AREA_FRACTION", cfg.Band.MaxAreaFraction)

	cfg.Expansion.MarginScale = FloatVariable("BALLOON_EXPAND_MARGIN", cfg.Expansion.MarginScale)
	cfg.Expansion.WindowScale = FloatVariable("BALLOON_EXPAND_WINDOW", cfg.Expansion.WindowScale)
	cfg.Expansion.MaxIterations = IntVariable("BALLOON_EXPAND_ITERATIONS", cfg.Expansion.MaxIterations)
	cfg.Expansion.ConvergenceFraction = FloatVariable("BALLOON_EXPAND_CONVERGENCE", cfg.Expansion.ConvergenceFraction)

	return cfg
}

// StringVariable returns the value of an environment variable or a default value.
func StringVariable(name, defaultValue string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return defaultValue
}

// IntVariable returns the value of an environment variable as int or a
// default value. A set but unparsable value logs a warning and falls back.
func IntVariable(name string, defaultValue int) int {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("ignoring %s=%q: not an integer", name, value)
		return defaultValue
	}
	return parsed
}

// FloatVariable returns the value of an environment variable as float64 or
// a default value. A set but unparsable value logs a warning and falls back.
func FloatVariable(name string, defaultValue float64) float64 {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("ignoring %s=%q: not a number", name, value)
		return defaultValue
	}
	return parsed
}
