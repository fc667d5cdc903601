// Package ir provides the shared data model for graphomotor.
//
// All other internal packages import ir; ir imports nothing internal.
// It holds the session, feature, validation and result types, the
// AnalysisError taxonomy, and canonical JSON plus digests used to check
// that analysis is deterministic.
//
// Key design constraints:
//   - All JSON tags use snake_case
//   - Timestamps are integer milliseconds relative to the capture
//   - Values are immutable once constructed; components return new values
package ir
