package harness

import (
	"math"

	"github.com/roach88/graphomotor/internal/ir"
	"github.com/roach88/graphomotor/internal/testutil"
)

// Generator defaults.
const (
	defaultCanvas   = 400
	defaultSamples  = 48
	defaultPerSide  = 12
	defaultSampleMs = 16
)

// drawStrokes renders the generated strokes of a step on one time axis.
func drawStrokes(specs []StrokeSpec, sampleMs int64) [][]ir.RawPoint {
	if sampleMs <= 0 {
		sampleMs = defaultSampleMs
	}
	clk := testutil.NewSampleClock(0, sampleMs)

	strokes := make([][]ir.RawPoint, 0, len(specs))
	for _, spec := range specs {
		clk.Skip(spec.PauseMs)
		strokes = append(strokes, drawStroke(clk, spec))
	}
	return strokes
}

func drawStroke(clk *testutil.SampleClock, s StrokeSpec) []ir.RawPoint {
	var pts []ir.RawPoint
	switch s.Shape {
	case ShapeCircle:
		pts = testutil.Circle(clk, s.X, s.Y, s.R, samples(s.Samples, defaultSamples))
	case ShapePolygon:
		rot := s.Rotation * math.Pi / 180
		pts = testutil.Polygon(clk, s.X, s.Y, s.R, s.Sides, samples(s.Samples, defaultPerSide), rot)
	case ShapeLine:
		pts = testutil.Line(clk, s.X, s.Y, s.X1, s.Y1, samples(s.Samples, defaultSamples))
	case ShapeTap:
		pts = testutil.Tap(clk, s.X, s.Y)
	case ShapePoints:
		pts = make([]ir.RawPoint, 0, len(s.Points))
		for _, p := range s.Points {
			pressure := testutil.DefaultPressure
			if len(p) == 3 {
				pressure = p[2]
			}
			pts = append(pts, ir.RawPoint{X: p[0], Y: p[1], Pressure: pressure, T: clk.Next()})
		}
	}

	if s.Wobble != 0 {
		wobble(pts, s.Wobble)
	}
	if s.Pressure != nil {
		for i := range pts {
			pts[i].Pressure = *s.Pressure
		}
	}
	return pts
}

func samples(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

// wobble displaces interior samples alternately left and right of the
// path. Endpoints stay put so closure is unaffected.
func wobble(pts []ir.RawPoint, amount float64) {
	orig := make([]ir.RawPoint, len(pts))
	copy(orig, pts)
	for i := 1; i < len(pts)-1; i++ {
		dx := orig[i+1].X - orig[i-1].X
		dy := orig[i+1].Y - orig[i-1].Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		sign := 1.0
		if i%2 == 1 {
			sign = -1
		}
		pts[i].X += sign * amount * -dy / l
		pts[i].Y += sign * amount * dx / l
	}
}
