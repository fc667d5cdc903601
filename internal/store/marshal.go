package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/graphomotor/internal/ir"
)

// marshalResult converts a result to canonical JSON TEXT for storage.
// Canonical form keeps the stored text byte-identical to what the
// digest was computed over.
func marshalResult(r ir.SessionAnalysisResult) (string, error) {
	data, err := ir.MarshalCanonical(r)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(data), nil
}

// marshalValidation converts an optional validation result. nil is stored as NULL.
func marshalValidation(v *ir.TaskValidationResult) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal validation: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalResult(s string) (ir.SessionAnalysisResult, error) {
	var r ir.SessionAnalysisResult
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return ir.SessionAnalysisResult{}, fmt.Errorf("unmarshal result: %w", err)
	}
	if r.Features.Values == nil {
		r.Features.Values = map[string]float64{}
	}
	if r.Records == nil {
		r.Records = []ir.CognitiveTaskRecord{}
	}
	if r.Rationale == nil {
		r.Rationale = []ir.Contribution{}
	}
	return r, nil
}

func unmarshalValidation(s sql.NullString) (*ir.TaskValidationResult, error) {
	if !s.Valid {
		return nil, nil
	}
	var v ir.TaskValidationResult
	if err := json.Unmarshal([]byte(s.String), &v); err != nil {
		return nil, fmt.Errorf("unmarshal validation: %w", err)
	}
	if v.Deviations == nil {
		v.Deviations = []ir.Deviation{}
	}
	return &v, nil
}
