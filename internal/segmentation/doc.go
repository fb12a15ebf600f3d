// Package segmentation implements text-seeded balloon region expansion.
//
// Given an image and the pixel-space bounding box of already-located text
// (typically from an external OCR pass), the package grows the box into
// the enclosing speech balloon with a grab-cut-style iterative
// foreground/background classification, and can report the result either
// as a bounding rectangle or as a refined outer contour.
//
// Expansion is a heuristic: out-of-bounds seeds are clamped rather than
// rejected, iteration is capped, and a segmentation that never grows past
// the seed reports an absent result (nil) instead of an error.
package segmentation
