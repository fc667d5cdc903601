package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/graphomotor/internal/capture"
	"github.com/roach88/graphomotor/internal/ir"
)

// snapshotDigits is the number of significant digits kept for floats in
// snapshots. Fused multiply-add on some architectures perturbs the last
// bits of trigonometric fixtures; ten digits hide that.
const snapshotDigits = 10

// ScenarioSnapshot is the golden form of a scenario run.
type ScenarioSnapshot struct {
	ScenarioName string         `json:"scenario_name"`
	Steps        []StepSnapshot `json:"steps"`
}

// StepSnapshot captures one step. Digests are left out because they
// hash exact float bits.
type StepSnapshot struct {
	Step       int                       `json:"step"`
	ID         string                    `json:"id,omitempty"`
	Task       string                    `json:"task,omitempty"`
	Error      string                    `json:"error,omitempty"`
	Report     *capture.Report           `json:"report,omitempty"`
	Validation *ir.TaskValidationResult  `json:"validation,omitempty"`
	Record     *ir.CognitiveTaskRecord   `json:"record,omitempty"`
	Result     *ir.SessionAnalysisResult `json:"result,omitempty"`
}

// Snapshot builds the snapshot of a run.
func Snapshot(scenario *Scenario, result *Result) ScenarioSnapshot {
	snap := ScenarioSnapshot{
		ScenarioName: scenario.Name,
		Steps:        make([]StepSnapshot, len(result.Steps)),
	}
	for i, sr := range result.Steps {
		s := StepSnapshot{Step: i, ID: sr.ID, Task: sr.Task}
		if sr.Err != nil {
			s.Error = codeOrUnknown(string(ir.CodeOf(sr.Err)))
		}
		if out := sr.Output; out != nil {
			report := out.Report
			res := out.Result
			s.Report = &report
			s.Validation = out.Validation
			s.Record = out.Record
			s.Result = &res
		}
		snap.Steps[i] = s
	}
	return snap
}

// MarshalSnapshot renders the snapshot of a run as canonical JSON with
// floats rounded to snapshotDigits significant digits.
func MarshalSnapshot(scenario *Scenario, result *Result) ([]byte, error) {
	raw, err := json.Marshal(Snapshot(scenario, result))
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	rounded, err := roundNumbers(generic)
	if err != nil {
		return nil, err
	}
	return ir.MarshalCanonical(rounded)
}

func roundNumbers(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		s := val.String()
		if !strings.ContainsAny(s, ".eE") {
			return val, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("snapshot number %q: %w", s, err)
		}
		f, _ = strconv.ParseFloat(strconv.FormatFloat(f, 'g', snapshotDigits, 64), 64)
		return f, nil
	case []any:
		for i := range val {
			r, err := roundNumbers(val[i])
			if err != nil {
				return nil, err
			}
			val[i] = r
		}
		return val, nil
	case map[string]any:
		for k := range val {
			r, err := roundNumbers(val[k])
			if err != nil {
				return nil, err
			}
			val[k] = r
		}
		return val, nil
	}
	return v, nil
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file, by default testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the run result; the test fails (via goldie) if the snapshot
// doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...goldie.Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result, opts...); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result, opts ...goldie.Option) error {
	t.Helper()

	data, err := MarshalSnapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t, append([]goldie.Option{
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	}, opts...)...)
	g.Assert(t, scenario.Name, data)
	return nil
}
