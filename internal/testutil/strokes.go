package testutil

import (
	"math"

	"github.com/roach88/graphomotor/internal/ir"
)

// DefaultPressure is the constant pressure used by the fixture builders.
const DefaultPressure = 0.5

// Circle returns a closed circle of n segments around (cx, cy).
// The first and last points coincide; timestamps come from clk.
func Circle(clk *SampleClock, cx, cy, r float64, n int) []ir.RawPoint {
	pts := make([]ir.RawPoint, 0, n+1)
	for i := 0; i <= n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts = append(pts, ir.RawPoint{
			X:        cx + r*math.Cos(a),
			Y:        cy + r*math.Sin(a),
			Pressure: DefaultPressure,
			T:        clk.Next(),
		})
	}
	return pts
}

// Polygon returns a closed regular polygon with the given circumradius,
// rotated by rot radians, with perSide samples along each edge.
func Polygon(clk *SampleClock, cx, cy, r float64, sides, perSide int, rot float64) []ir.RawPoint {
	vertex := func(k int) (float64, float64) {
		a := rot + 2*math.Pi*float64(k)/float64(sides)
		return cx + r*math.Cos(a), cy + r*math.Sin(a)
	}

	pts := make([]ir.RawPoint, 0, sides*perSide+1)
	for k := 0; k < sides; k++ {
		x0, y0 := vertex(k)
		x1, y1 := vertex(k + 1)
		for j := 0; j < perSide; j++ {
			f := float64(j) / float64(perSide)
			pts = append(pts, ir.RawPoint{
				X:        x0 + f*(x1-x0),
				Y:        y0 + f*(y1-y0),
				Pressure: DefaultPressure,
				T:        clk.Next(),
			})
		}
	}
	x, y := vertex(0)
	pts = append(pts, ir.RawPoint{X: x, Y: y, Pressure: DefaultPressure, T: clk.Next()})
	return pts
}

// Line returns n+1 evenly spaced points from (x0, y0) to (x1, y1).
func Line(clk *SampleClock, x0, y0, x1, y1 float64, n int) []ir.RawPoint {
	pts := make([]ir.RawPoint, 0, n+1)
	for i := 0; i <= n; i++ {
		f := float64(i) / float64(n)
		pts = append(pts, ir.RawPoint{
			X:        x0 + f*(x1-x0),
			Y:        y0 + f*(y1-y0),
			Pressure: DefaultPressure,
			T:        clk.Next(),
		})
	}
	return pts
}

// Tap returns a single-point stroke at (x, y).
func Tap(clk *SampleClock, x, y float64) []ir.RawPoint {
	return []ir.RawPoint{{X: x, Y: y, Pressure: DefaultPressure, T: clk.Next()}}
}

// Session wraps already-ordered strokes into a session on a square canvas
// without going through the normalizer. Elapsed is the stroke span.
func Session(canvas float64, strokes ...[]ir.RawPoint) ir.HandwritingSession {
	s := ir.HandwritingSession{Canvas: ir.CanvasSize{Width: canvas, Height: canvas}}
	for _, pts := range strokes {
		if len(pts) == 0 {
			continue
		}
		s.Strokes = append(s.Strokes, ir.Stroke{
			Points: pts,
			Start:  pts[0].T,
			End:    pts[len(pts)-1].T,
		})
	}
	s.ElapsedMs = s.Span()
	return s
}
