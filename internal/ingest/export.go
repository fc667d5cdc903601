package ingest

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/roach88/graphomotor/internal/ir"
	"github.com/roach88/graphomotor/internal/pipeline"
)

// Export is one session as written by the collecting application.
type Export struct {
	ID             string     `json:"id"`
	TestType       string     `json:"testType"`
	CreatedAt      string     `json:"createdAt"`
	Responses      []string   `json:"responses,omitempty"`
	ResponseTimeMs int64      `json:"responseTime,omitempty"`
	Data           ExportData `json:"data"`
}

// ExportData is the drawing payload of an export.
type ExportData struct {
	Strokes    []ExportStroke `json:"strokes"`
	TotalTime  float64        `json:"totalTime"`
	CanvasSize ir.CanvasSize  `json:"canvasSize"`
}

// ExportStroke is one stroke as exported. StartTime and EndTime are
// informational; the normalizer derives stroke timing from the points.
type ExportStroke struct {
	Points    []ExportPoint `json:"points"`
	StartTime float64       `json:"startTime"`
	EndTime   float64       `json:"endTime"`
}

// ExportPoint is one sample. Timestamps may be fractional milliseconds
// and are usually wall-clock based.
type ExportPoint struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Pressure  float64 `json:"pressure"`
	Timestamp float64 `json:"timestamp"`
}

// testTypeTasks maps the application's test types to reference task IDs.
var testTypeTasks = map[string]string{
	"clockDrawing":    "clock_circle",
	"clock":           "clock_circle",
	"squareCopy":      "copy_square",
	"triangleCopy":    "copy_triangle",
	"pentagonCopy":    "copy_pentagon",
	"wordRecall":      "word_recall",
	"wordCopy":        "word_copy",
	"digitOrder":      "digit_order",
	"trailMaking":     "trail_making",
	"trailMakingTest": "trail_making",
}

// DecodeSessionJSON parses an application export. Unknown fields are
// ignored so newer exports still load.
func DecodeSessionJSON(data []byte) (Export, error) {
	var e Export
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&e); err != nil {
		return Export{}, ir.NewInvalidInput("", "decode session export: %v", err)
	}
	if dec.More() {
		return Export{}, ir.NewInvalidInput("", "decode session export: trailing data after document")
	}
	return e, nil
}

// TaskID returns the reference task for the export's test type. Unknown
// test types are returned unchanged so a custom reference table can name
// them directly.
func (e Export) TaskID() string {
	if id, ok := testTypeTasks[e.TestType]; ok {
		return id
	}
	return e.TestType
}

// Input converts the export into a pipeline input.
//
// Timestamps are rebased to the earliest sample and rounded to whole
// milliseconds, so the session is relative to its own first touch. A
// non-finite timestamp is passed through as -1 and rejected by the
// normalizer.
func (e Export) Input() pipeline.Input {
	origin := math.Inf(1)
	for _, st := range e.Data.Strokes {
		for _, p := range st.Points {
			if !math.IsNaN(p.Timestamp) && !math.IsInf(p.Timestamp, 0) && p.Timestamp < origin {
				origin = p.Timestamp
			}
		}
	}
	if math.IsInf(origin, 1) {
		origin = 0
	}

	strokes := make([][]ir.RawPoint, len(e.Data.Strokes))
	for i, st := range e.Data.Strokes {
		pts := make([]ir.RawPoint, len(st.Points))
		for j, p := range st.Points {
			t := int64(-1)
			if !math.IsNaN(p.Timestamp) && !math.IsInf(p.Timestamp, 0) {
				t = int64(math.Round(p.Timestamp - origin))
			}
			pts[j] = ir.RawPoint{X: p.X, Y: p.Y, Pressure: p.Pressure, T: t}
		}
		strokes[i] = pts
	}

	return pipeline.Input{
		TaskID:         e.TaskID(),
		Strokes:        strokes,
		Canvas:         e.Data.CanvasSize,
		ElapsedMs:      int64(math.Round(e.Data.TotalTime)),
		Responses:      e.Responses,
		ResponseTimeMs: e.ResponseTimeMs,
	}
}
