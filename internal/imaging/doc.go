// Package imaging provides the primitive filter stages of the balloon
// detection pipeline: grayscale conversion, Gaussian blur, Canny edge
// detection, morphological closing, and OCR pre-enhancement.
//
// All operations work with standard Go image.Image types and use a
// coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward. Every stage returns a new image
// rather than mutating its input, and no stage keeps state across calls:
// each function is a pure function of its arguments, so concurrent
// invocations on different images never interfere.
//
// # Binary Images
//
// Edge maps produced by CannyEdge, Preprocess, and MorphClose are
// single-channel *image.Gray values where 255 marks a foreground (edge)
// pixel and 0 marks background. Downstream contour extraction expects
// exactly this representation.
//
// # Error Handling
//
// Two sentinel errors classify all rejected calls:
//
//   - ErrInvalidInput: nil or zero-dimension image
//   - ErrInvalidParameter: out-of-range threshold, radius, or kernel size
//
// Stages either fully succeed or report an error; a partial or half-built
// image is never returned.
//
// # Tuning
//
// Canny thresholds and the closing kernel size are deliberate parameters
// rather than constants. See PreprocessOptions and DefaultPreprocessOptions
// for the values the rest of the pipeline starts from.
package imaging
