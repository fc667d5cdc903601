package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/graphomotor/internal/ir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// User keys persisted analyses. Defaults to DefaultUser.
	User string `yaml:"user,omitempty"`

	// Config and References optionally name files relative to the
	// scenario. Empty selects the built-in defaults.
	Config     string `yaml:"config,omitempty"`
	References string `yaml:"references,omitempty"`

	// PriorRecords are stored for the user before the first step.
	PriorRecords []PriorRecord `yaml:"prior_records,omitempty"`

	// Steps are analyzed in order.
	Steps []Step `yaml:"steps"`

	// dir is the directory of the scenario file, for relative paths.
	dir string
}

// DefaultUser is used when a scenario does not name a user.
const DefaultUser = "scenario-user"

// PriorRecord is a task record in YAML form.
type PriorRecord struct {
	TaskID         string  `yaml:"task_id"`
	Score          float64 `yaml:"score"`
	Accuracy       float64 `yaml:"accuracy"`
	ResponseTimeMs int64   `yaml:"response_time_ms"`
	ErrorCount     int     `yaml:"error_count"`
}

func (r PriorRecord) record() ir.CognitiveTaskRecord {
	return ir.CognitiveTaskRecord{
		TaskID:         r.TaskID,
		Score:          r.Score,
		Accuracy:       r.Accuracy,
		ResponseTimeMs: r.ResponseTimeMs,
		ErrorCount:     r.ErrorCount,
	}
}

// Step is one task attempt.
type Step struct {
	// Task is the reference task ID. Empty analyzes features only.
	Task string `yaml:"task,omitempty"`

	// Session loads a captured session file instead of drawing.
	Session string `yaml:"session,omitempty"`

	// Draw lists generated strokes, in pen order.
	Draw []StrokeSpec `yaml:"draw,omitempty"`

	// Canvas is the drawing area for generated strokes. Defaults to 400x400.
	Canvas *ir.CanvasSize `yaml:"canvas,omitempty"`

	// SampleMs is the sampling interval of generated strokes. Defaults to 16.
	SampleMs int64 `yaml:"sample_ms,omitempty"`

	// ElapsedMs is the reported task time. Zero lets the normalizer use
	// the stroke span.
	ElapsedMs int64 `yaml:"elapsed_ms,omitempty"`

	Responses      []string `yaml:"responses,omitempty"`
	ResponseTimeMs int64    `yaml:"response_time_ms,omitempty"`

	Expect Expect `yaml:"expect"`
}

// StrokeSpec generates one stroke.
type StrokeSpec struct {
	// Shape is one of circle, polygon, line, tap, points.
	Shape string `yaml:"shape"`

	// X, Y is the center (circle, polygon), the start (line) or the
	// position (tap).
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`

	// X1, Y1 is the end of a line.
	X1 float64 `yaml:"x1,omitempty"`
	Y1 float64 `yaml:"y1,omitempty"`

	// R is the radius (circle) or circumradius (polygon).
	R float64 `yaml:"r,omitempty"`

	// Samples is the segment count of a circle or line, or the samples
	// per side of a polygon.
	Samples int `yaml:"samples,omitempty"`

	Sides    int     `yaml:"sides,omitempty"`
	Rotation float64 `yaml:"rotation,omitempty"` // degrees

	// Wobble offsets alternate samples by this distance, perpendicular
	// to the direction of travel.
	Wobble float64 `yaml:"wobble,omitempty"`

	// Pressure overrides the generator's constant pressure.
	Pressure *float64 `yaml:"pressure,omitempty"`

	// PauseMs is the pen-up gap before this stroke.
	PauseMs int64 `yaml:"pause_ms,omitempty"`

	// Points are explicit [x, y] or [x, y, pressure] samples.
	Points [][]float64 `yaml:"points,omitempty"`
}

// Expect lists what an analysis step must conclude. Unset fields are
// not checked.
type Expect struct {
	// Error is the expected error code; when set the step must fail.
	Error string `yaml:"error,omitempty"`

	Tier              string           `yaml:"tier,omitempty"`
	MinScore          *float64         `yaml:"min_score,omitempty"`
	MaxScore          *float64         `yaml:"max_score,omitempty"`
	Passed            *bool            `yaml:"passed,omitempty"`
	MinConformance    *float64         `yaml:"min_conformance,omitempty"`
	MaxConformance    *float64         `yaml:"max_conformance,omitempty"`
	Deviations        []string         `yaml:"deviations,omitempty"`
	NoDeviations      bool             `yaml:"no_deviations,omitempty"`
	Features          map[string]Range `yaml:"features,omitempty"`
	Degenerate        *bool            `yaml:"degenerate,omitempty"`
	ReducedConfidence *bool            `yaml:"reduced_confidence,omitempty"`
	TaskEvidence      *int             `yaml:"task_evidence,omitempty"`
	Dropped           *int             `yaml:"dropped,omitempty"`
}

// Range bounds a feature value. Either end may be open.
type Range struct {
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`
}

// Shape names for StrokeSpec.
const (
	ShapeCircle  = "circle"
	ShapePolygon = "polygon"
	ShapeLine    = "line"
	ShapeTap     = "tap"
	ShapePoints  = "points"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// ParseScenario parses a scenario document. Relative paths in the
// scenario resolve against the working directory.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "expects:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// path resolves p against the scenario directory.
func (s *Scenario) path(p string) string {
	if p == "" || filepath.IsAbs(p) || s.dir == "" {
		return p
	}
	return filepath.Join(s.dir, p)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Session != "" && len(step.Draw) > 0 {
			return fmt.Errorf("step %d: session and draw are mutually exclusive", i)
		}
		for j, st := range step.Draw {
			if err := validateStroke(st); err != nil {
				return fmt.Errorf("step %d: draw[%d]: %w", i, j, err)
			}
		}
		for name, r := range step.Expect.Features {
			if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
				return fmt.Errorf("step %d: feature %s: min %v above max %v", i, name, *r.Min, *r.Max)
			}
		}
	}
	return nil
}

func validateStroke(st StrokeSpec) error {
	switch st.Shape {
	case ShapeCircle:
		if st.R <= 0 {
			return fmt.Errorf("circle needs r > 0")
		}
	case ShapePolygon:
		if st.R <= 0 || st.Sides < 3 {
			return fmt.Errorf("polygon needs r > 0 and sides >= 3")
		}
	case ShapeLine, ShapeTap:
	case ShapePoints:
		for k, p := range st.Points {
			if len(p) != 2 && len(p) != 3 {
				return fmt.Errorf("points[%d]: want [x, y] or [x, y, pressure], got %d values", k, len(p))
			}
		}
	default:
		return fmt.Errorf("unknown shape %q", st.Shape)
	}
	if st.Samples < 0 || st.PauseMs < 0 {
		return fmt.Errorf("samples and pause_ms must not be negative")
	}
	return nil
}
