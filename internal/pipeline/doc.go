// Package pipeline wires the balloon detection stages into the two
// operations callers actually use: marker-strategy detection over a whole
// page, and text-seeded expansion of a known text rectangle.
//
// The pipeline order is fixed and linear: preprocessing, contour
// extraction, candidate filtering, result aggregation. There is no state
// machine beyond that order and no state shared between invocations.
// Failures are never retried internally; the caller decides whether to
// retry with adjusted Config values.
package pipeline
