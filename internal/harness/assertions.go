package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/graphomotor/internal/ir"
)

// evaluate checks a step outcome against its expectations and returns
// one message per failed expectation.
func evaluate(e Expect, sr StepResult) []string {
	if e.Error != "" {
		if sr.Err == nil {
			return []string{fmt.Sprintf("expected error %s, analysis succeeded", e.Error)}
		}
		if got := string(ir.CodeOf(sr.Err)); got != e.Error {
			return []string{fmt.Sprintf("expected error %s, got %s (%v)", e.Error, codeOrUnknown(got), sr.Err)}
		}
		return nil
	}
	if sr.Err != nil {
		return []string{fmt.Sprintf("unexpected error: %v", sr.Err)}
	}

	out := sr.Output
	res := out.Result
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if e.Tier != "" && string(res.Tier) != e.Tier {
		fail("tier: expected %s, got %s (score %.4f)", e.Tier, res.Tier, res.Score)
	}
	if e.MinScore != nil && res.Score < *e.MinScore {
		fail("score: expected >= %v, got %v", *e.MinScore, res.Score)
	}
	if e.MaxScore != nil && res.Score > *e.MaxScore {
		fail("score: expected <= %v, got %v", *e.MaxScore, res.Score)
	}
	if e.Degenerate != nil && res.DegenerateFeatures != *e.Degenerate {
		fail("degenerate: expected %v, got %v", *e.Degenerate, res.DegenerateFeatures)
	}
	if e.ReducedConfidence != nil && res.ReducedConfidence != *e.ReducedConfidence {
		fail("reduced_confidence: expected %v, got %v", *e.ReducedConfidence, res.ReducedConfidence)
	}
	if e.TaskEvidence != nil && res.TaskEvidence != *e.TaskEvidence {
		fail("task_evidence: expected %d, got %d", *e.TaskEvidence, res.TaskEvidence)
	}
	if e.Dropped != nil && out.Report.Dropped != *e.Dropped {
		fail("dropped: expected %d, got %d", *e.Dropped, out.Report.Dropped)
	}

	for _, name := range sortedFeatureNames(e.Features) {
		r := e.Features[name]
		v, ok := res.Features.Values[name]
		if !ok {
			fail("feature %s: not in vector", name)
			continue
		}
		if r.Min != nil && v < *r.Min {
			fail("feature %s: expected >= %v, got %v", name, *r.Min, v)
		}
		if r.Max != nil && v > *r.Max {
			fail("feature %s: expected <= %v, got %v", name, *r.Max, v)
		}
	}

	needsValidation := e.Passed != nil || e.MinConformance != nil || e.MaxConformance != nil ||
		len(e.Deviations) > 0 || e.NoDeviations
	if !needsValidation {
		return errs
	}
	val := out.Validation
	if val == nil {
		return append(errs, "validation expectations set but step has no task")
	}

	if e.Passed != nil && val.Passed != *e.Passed {
		fail("passed: expected %v, got %v (conformance %.4f, threshold %.2f)", *e.Passed, val.Passed, val.Conformance, val.Threshold)
	}
	if e.MinConformance != nil && val.Conformance < *e.MinConformance {
		fail("conformance: expected >= %v, got %v", *e.MinConformance, val.Conformance)
	}
	if e.MaxConformance != nil && val.Conformance > *e.MaxConformance {
		fail("conformance: expected <= %v, got %v", *e.MaxConformance, val.Conformance)
	}
	for _, d := range e.Deviations {
		if !val.HasDeviation(d) {
			fail("deviation %s: not found in [%s]", d, deviationNames(val.Deviations))
		}
	}
	if e.NoDeviations && len(val.Deviations) > 0 {
		fail("expected no deviations, got [%s]", deviationNames(val.Deviations))
	}
	return errs
}

func sortedFeatureNames(m map[string]Range) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func deviationNames(ds []ir.Deviation) string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Name
	}
	return strings.Join(names, ", ")
}

func codeOrUnknown(code string) string {
	if code == "" {
		return "untyped error"
	}
	return code
}
