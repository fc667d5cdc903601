package validator

import (
	"math"
	"sort"

	"github.com/roach88/graphomotor/internal/ir"
)

// Attempt is one completed try at a task.
type Attempt struct {
	// Session is the captured ink.
	Session ir.HandwritingSession

	// Responses are the user's recorded entries, in entry order: typed or
	// recognised words for token tasks, or tapped labels for sequence tasks
	// whose targets have no canvas position.
	Responses []string
}

// Validator scores attempts against a reference table.
// Safe for concurrent use; it holds no mutable state.
type Validator struct {
	table Table
}

// New creates a validator over table after checking it.
func New(table Table) (*Validator, error) {
	if err := table.Check(); err != nil {
		return nil, err
	}
	return &Validator{table: table}, nil
}

// Table returns the reference table the validator was built from.
func (v *Validator) Table() Table {
	return v.table
}

// Validate scores attempt against the reference for taskID.
// Returns ir.ErrCodeUnsupportedTask if the table has no such task.
func (v *Validator) Validate(taskID string, attempt Attempt) (ir.TaskValidationResult, error) {
	ref, err := v.table.Lookup(taskID)
	if err != nil {
		return ir.TaskValidationResult{}, err
	}
	return ValidateReference(ref, attempt)
}

// ValidateReference scores attempt against an explicit reference.
func ValidateReference(ref TaskReference, attempt Attempt) (ir.TaskValidationResult, error) {
	if err := ref.Check(); err != nil {
		return ir.TaskValidationResult{}, err
	}

	var (
		conformance float64
		deviations  []ir.Deviation
	)
	threshold := ref.EffectiveThreshold()

	switch ref.Kind {
	case ir.TaskKindShape:
		conformance, deviations = scoreShape(*ref.Shape, attempt.Session, threshold)
	case ir.TaskKindTokens:
		conformance, deviations = scoreTokens(ref.Tokens, attempt.Responses)
	case ir.TaskKindSequence:
		conformance, deviations = scoreSequence(ref.Sequence, attempt, threshold)
	}

	conformance = clamp01(conformance)
	if deviations == nil {
		deviations = []ir.Deviation{}
	}
	return ir.TaskValidationResult{
		TaskID:      ref.ID,
		Kind:        ref.Kind,
		Conformance: conformance,
		Threshold:   threshold,
		Passed:      conformance >= threshold,
		Deviations:  deviations,
	}, nil
}

// RecordFromValidation derives the task record the aggregator consumes.
// Score and accuracy are the conformance; each deviation counts as an error.
func RecordFromValidation(r ir.TaskValidationResult, responseTimeMs int64) ir.CognitiveTaskRecord {
	if responseTimeMs < 0 {
		responseTimeMs = 0
	}
	return ir.CognitiveTaskRecord{
		TaskID:         r.TaskID,
		Score:          r.Conformance,
		Accuracy:       r.Conformance,
		ResponseTimeMs: responseTimeMs,
		ErrorCount:     len(r.Deviations),
	}
}

// severityFor grades a deviation by whether it cost the task its pass.
func severityFor(conformance, threshold float64) ir.Severity {
	if conformance < threshold {
		return ir.SeverityMajor
	}
	return ir.SeverityMinor
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
