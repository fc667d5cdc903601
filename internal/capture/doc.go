// Package capture normalizes raw pen samples into a HandwritingSession.
//
// Normalize is the only entry point. It rejects structurally invalid input
// with ir.ErrCodeInvalidInput before any computation, drops empty strokes,
// and reconciles the reported elapsed time with the observed stroke span.
// It never resamples or smooths: every retained point is passed through
// unchanged.
package capture
