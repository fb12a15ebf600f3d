// Package annotate assembles detection results and renders diagnostic
// overlays.
//
// The single entry point, MarkCandidates, pairs filtered balloon
// candidates into an immutable DetectionResult and draws each candidate's
// contour, bounding rectangle, and index over a copy of the source image.
// Drawing uses distinct per-candidate hues so overlapping balloons remain
// distinguishable in the marked image.
package annotate
