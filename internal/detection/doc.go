// Package detection extracts contours from binary edge maps and filters
// them into balloon candidates.
//
// The package operates on the output of the imaging package's preprocessing
// pipeline. ExtractContours groups foreground pixels into 8-connected
// components and traces each component's outer boundary into an ordered
// closed polyline. FilterCandidates then keeps the contours whose bounding
// box area falls inside a configurable acceptance band, reporting them as
// rectangles normalized to the unit square.
//
// # Determinism
//
// Both operations are pure functions: identical input yields identical
// output, including enumeration order, so tests can compare results
// directly. Callers should still not depend on a particular contour order
// as a contract.
//
// # Coordinate Spaces
//
// Contours are in pixel space relative to the edge map's origin. Candidate
// rectangles are in normalized [0,1] space; multiply by the target image's
// width and height to recover pixels.
package detection
