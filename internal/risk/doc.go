// Package risk aggregates a feature vector and task records into a
// session-level risk score, tier and rationale.
//
// Aggregate is pure: the weight table and tier thresholds arrive as an
// explicit WeightTable value, records are considered in a canonical order,
// and the same inputs always produce the same result.
package risk
