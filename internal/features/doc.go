// Package features computes the fixed, versioned feature vocabulary of a
// HandwritingSession.
//
// Extract is a total, deterministic function: it never errors, always
// returns every key of the vocabulary, and iterates strokes and points in
// capture order only, so identical sessions yield bit-identical vectors.
//
// Feature families:
//   - kinematic: velocity, acceleration and jerk over intra-stroke point pairs
//   - pressure: distribution of per-point pressure
//   - spatial: ink length, bounding box, canvas coverage, centroid offset
//   - temporal: pen-up pauses, stroke durations, ink time
//   - tremor: variance of the turning angle along each stroke
package features
