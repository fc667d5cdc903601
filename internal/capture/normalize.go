package capture

import (
	"fmt"
	"math"

	"github.com/roach88/graphomotor/internal/ir"
)

// Input bounds. Ink may stray off the canvas, but not so far that
// areas and squared distances leave the float64 range.
const (
	// MaxCanvasDimension is the largest accepted canvas width or height.
	MaxCanvasDimension = 1e6

	// MaxCanvasMultiple bounds |x| and |y| as a multiple of the canvas
	// width and height.
	MaxCanvasMultiple = 16
)

// Report describes the adjustments Normalize made to its input.
// The caller decides whether to log them.
type Report struct {
	// Dropped is the number of empty input strokes that were discarded.
	Dropped int `json:"dropped"`

	// Widened is true when the reported elapsed time was shorter than the
	// observed stroke span and was raised to the span.
	Widened bool `json:"widened"`

	// Clamped is true when a negative elapsed time was raised to 0.
	Clamped bool `json:"clamped"`

	// ReportedElapsedMs is the elapsed time as given by the caller.
	ReportedElapsedMs int64 `json:"reported_elapsed_ms"`
}

// Normalize validates raw strokes and builds an immutable session.
//
// strokes are in capture order. Each inner slice is one pen-down to
// pen-up gesture; empty ones are dropped. Point slices are copied so the
// returned session does not alias caller memory.
func Normalize(strokes [][]ir.RawPoint, canvas ir.CanvasSize, elapsedMs int64) (ir.HandwritingSession, Report, error) {
	report := Report{ReportedElapsedMs: elapsedMs}

	if err := checkCanvas(canvas); err != nil {
		return ir.HandwritingSession{}, report, err
	}

	session := ir.HandwritingSession{
		Strokes: make([]ir.Stroke, 0, len(strokes)),
		Canvas:  canvas,
	}

	for si, raw := range strokes {
		if len(raw) == 0 {
			report.Dropped++
			continue
		}
		if err := checkStroke(si, raw, canvas); err != nil {
			return ir.HandwritingSession{}, report, err
		}

		pts := make([]ir.RawPoint, len(raw))
		copy(pts, raw)
		session.Strokes = append(session.Strokes, ir.Stroke{
			Points: pts,
			Start:  pts[0].T,
			End:    pts[len(pts)-1].T,
		})
	}

	elapsed := elapsedMs
	if elapsed < 0 {
		elapsed = 0
		report.Clamped = true
	}
	if span := session.Span(); elapsed < span {
		elapsed = span
		report.Widened = true
	}
	session.ElapsedMs = elapsed

	return session, report, nil
}

func checkCanvas(c ir.CanvasSize) error {
	if !finite(c.Width) || c.Width <= 0 || c.Width > MaxCanvasDimension {
		return ir.NewInvalidInput("canvas.width", "must be in (0, %g], got %v", float64(MaxCanvasDimension), c.Width)
	}
	if !finite(c.Height) || c.Height <= 0 || c.Height > MaxCanvasDimension {
		return ir.NewInvalidInput("canvas.height", "must be in (0, %g], got %v", float64(MaxCanvasDimension), c.Height)
	}
	return nil
}

func checkStroke(si int, pts []ir.RawPoint, c ir.CanvasSize) error {
	maxX := MaxCanvasMultiple * c.Width
	maxY := MaxCanvasMultiple * c.Height
	for pi, p := range pts {
		field := fmt.Sprintf("strokes[%d].points[%d]", si, pi)
		if !finite(p.X) || !finite(p.Y) {
			return ir.NewInvalidInput(field, "coordinates must be finite, got (%v, %v)", p.X, p.Y)
		}
		if math.Abs(p.X) > maxX || math.Abs(p.Y) > maxY {
			return ir.NewInvalidInput(field, "coordinates (%v, %v) are too far outside the %vx%v canvas", p.X, p.Y, c.Width, c.Height)
		}
		if !finite(p.Pressure) || p.Pressure < 0 || p.Pressure > 1 {
			return ir.NewInvalidInput(field+".pressure", "must be in [0,1], got %v", p.Pressure)
		}
		if p.T < 0 {
			return ir.NewInvalidInput(field+".timestamp", "must not be negative, got %d", p.T)
		}
		if pi > 0 && p.T < pts[pi-1].T {
			return ir.NewInvalidInput(field+".timestamp",
				"timestamps must not decrease within a stroke (%d after %d)", p.T, pts[pi-1].T)
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
