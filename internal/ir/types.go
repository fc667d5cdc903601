package ir

import "sort"

// RawPoint is one capture sample in canvas-local coordinates.
// Pressure is in [0,1] and is 0 when the input device does not report it.
// T is milliseconds, monotonic within a session.
type RawPoint struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pressure float64 `json:"pressure"`
	T        int64   `json:"timestamp"`
}

// Stroke is one pen-down to pen-up gesture. A retained stroke always has
// at least one point and non-decreasing timestamps.
type Stroke struct {
	Points []RawPoint `json:"points"`
	Start  int64      `json:"start_time"`
	End    int64      `json:"end_time"`
}

// Duration returns End - Start in milliseconds.
func (s Stroke) Duration() int64 {
	return s.End - s.Start
}

// Len returns the number of points in the stroke.
func (s Stroke) Len() int {
	return len(s.Points)
}

// CanvasSize is the drawing area the session was captured on.
type CanvasSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns Width * Height.
func (c CanvasSize) Area() float64 {
	return c.Width * c.Height
}

// HandwritingSession is one completed task attempt.
// Built once by the normalizer and never mutated afterwards.
type HandwritingSession struct {
	Strokes   []Stroke   `json:"strokes"`
	ElapsedMs int64      `json:"elapsed_ms"`
	Canvas    CanvasSize `json:"canvas"`
}

// Span returns the time from the first stroke's start to the last stroke's end.
// Returns 0 for a session without strokes.
func (s HandwritingSession) Span() int64 {
	if len(s.Strokes) == 0 {
		return 0
	}
	return s.Strokes[len(s.Strokes)-1].End - s.Strokes[0].Start
}

// PointCount returns the number of points across all strokes.
func (s HandwritingSession) PointCount() int {
	n := 0
	for _, st := range s.Strokes {
		n += len(st.Points)
	}
	return n
}

// FeatureVector maps stable feature names to values.
// Values always holds the complete vocabulary named by Version.
// Degenerate marks a session with no usable ink; its values are the
// zero-filled sentinel state, not a measurement.
type FeatureVector struct {
	Version    string             `json:"version"`
	Values     map[string]float64 `json:"values"`
	Degenerate bool               `json:"degenerate"`
}

// Get returns the value for key, or 0 if the key is absent.
func (fv FeatureVector) Get(key string) float64 {
	return fv.Values[key]
}

// Keys returns the feature names in sorted order.
func (fv FeatureVector) Keys() []string {
	keys := make([]string, 0, len(fv.Values))
	for k := range fv.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Severity grades a detected deviation.
type Severity string

const (
	SeverityMinor Severity = "minor"
	SeverityMajor Severity = "major"
)

// Deviation is a named issue found while validating a task attempt,
// e.g. "incomplete_shape" or "missing_word:APPLE".
type Deviation struct {
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
}

// TaskKind selects how an attempt is compared against its reference.
type TaskKind string

const (
	TaskKindShape    TaskKind = "shape"
	TaskKindTokens   TaskKind = "tokens"
	TaskKindSequence TaskKind = "sequence"
)

// ValidTaskKinds defines allowed task kinds.
var ValidTaskKinds = map[TaskKind]bool{
	TaskKindShape:    true,
	TaskKindTokens:   true,
	TaskKindSequence: true,
}

// TaskValidationResult is the outcome of comparing an attempt with its reference.
type TaskValidationResult struct {
	TaskID      string      `json:"task_id"`
	Kind        TaskKind    `json:"kind"`
	Conformance float64     `json:"conformance"` // [0,1]
	Threshold   float64     `json:"threshold"`
	Passed      bool        `json:"passed"`
	Deviations  []Deviation `json:"deviations"`
}

// HasDeviation reports whether a deviation with the given name was recorded.
func (r TaskValidationResult) HasDeviation(name string) bool {
	for _, d := range r.Deviations {
		if d.Name == name {
			return true
		}
	}
	return false
}

// CognitiveTaskRecord summarises one completed task. Immutable once recorded.
type CognitiveTaskRecord struct {
	TaskID         string  `json:"task_id"`
	Score          float64 `json:"score"`
	Accuracy       float64 `json:"accuracy"`
	ResponseTimeMs int64   `json:"response_time_ms"`
	ErrorCount     int     `json:"error_count"`
}

// RiskTier is the coarse bucket derived from the composite risk score.
type RiskTier string

const (
	TierLow      RiskTier = "low"
	TierModerate RiskTier = "moderate"
	TierElevated RiskTier = "elevated"
)

// Contribution is one dimension's share of the composite risk score.
type Contribution struct {
	Dimension string  `json:"dimension"`
	Value     float64 `json:"value"`  // input value before normalisation
	Weight    float64 `json:"weight"` // signed weight from the table
	Amount    float64 `json:"amount"` // signed contribution to the score
}

// SessionAnalysisResult is the final aggregate of one analysis invocation.
// A new analysis produces a new result; results are never mutated.
//
// The rationale of a result has two parts. Rationale lists the top
// dimensions that moved the score. Notes carries the qualitative flags
// that have no score amount: with zero task records it always holds the
// reduced-confidence note, alongside ReducedConfidence and a
// TaskEvidence of 0.
type SessionAnalysisResult struct {
	Features           FeatureVector         `json:"features"`
	Records            []CognitiveTaskRecord `json:"records"`
	Tier               RiskTier              `json:"tier"`
	Score              float64               `json:"score"`
	Rationale          []Contribution        `json:"rationale"`
	TaskEvidence       int                   `json:"task_evidence"`
	ReducedConfidence  bool                  `json:"reduced_confidence"`
	DegenerateFeatures bool                  `json:"degenerate_features"`
	Notes              []string              `json:"notes,omitempty"` // rationale flags, see above
	WeightsVersion     string                `json:"weights_version"`
}
