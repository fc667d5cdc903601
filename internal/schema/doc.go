// Package schema validates YAML documents against the embedded CUE
// definitions for configuration and task reference files.
//
// Validation is structural only: types, ranges and closed field sets.
// Cross-field semantics (weight keys against the feature vocabulary,
// unique token lists) are checked by the owning packages afterwards.
package schema
