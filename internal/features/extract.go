package features

import (
	"math"

	"github.com/roach88/graphomotor/internal/ir"
)

// Extract computes the full feature vector of a session.
//
// A session with fewer than two points in total carries no motion to
// measure: its vector is marked Degenerate, counts keep their true value
// and every other feature is the sentinel 0.
func Extract(s ir.HandwritingSession, cfg Config) ir.FeatureVector {
	fv := zeroVector()
	values := fv.Values

	values[StrokeCount] = float64(len(s.Strokes))
	values[PointCount] = float64(s.PointCount())
	values[TotalTime] = float64(s.ElapsedMs)

	if s.PointCount() < 2 {
		fv.Degenerate = true
		return fv
	}

	kinematic(s, values)
	pressure(s, values)
	spatial(s, values)
	temporal(s, cfg, values)
	values[TremorIndex] = tremor(s)

	return fv
}

// sample is a derivative value located at a point in time.
type sample struct {
	v float64
	t float64
}

// differentiate returns the finite difference of consecutive samples.
// Pairs with no elapsed time are skipped.
func differentiate(in []sample) []sample {
	if len(in) < 2 {
		return nil
	}
	out := make([]sample, 0, len(in)-1)
	for i := 1; i < len(in); i++ {
		dt := in[i].t - in[i-1].t
		if dt == 0 {
			continue
		}
		out = append(out, sample{
			v: (in[i].v - in[i-1].v) / dt,
			t: (in[i].t + in[i-1].t) / 2,
		})
	}
	return out
}

func magnitudes(ss []sample) []float64 {
	out := make([]float64, len(ss))
	for i, s := range ss {
		out[i] = math.Abs(s.v)
	}
	return out
}

// kinematic fills velocity, acceleration and jerk features. Units are
// canvas px per ms, per ms^2, per ms^3. Derivatives never cross a pen-up.
func kinematic(s ir.HandwritingSession, values map[string]float64) {
	var vel, acc, jerk []float64
	for _, st := range s.Strokes {
		v := make([]sample, 0, len(st.Points))
		for i := 1; i < len(st.Points); i++ {
			p, q := st.Points[i-1], st.Points[i]
			dt := float64(q.T - p.T)
			if dt == 0 {
				continue
			}
			v = append(v, sample{
				v: math.Hypot(q.X-p.X, q.Y-p.Y) / dt,
				t: float64(p.T+q.T) / 2,
			})
		}
		a := differentiate(v)
		j := differentiate(a)

		for _, x := range v {
			vel = append(vel, x.v)
		}
		acc = append(acc, magnitudes(a)...)
		jerk = append(jerk, magnitudes(j)...)
	}

	values[AvgVelocity], values[VelocityVariance] = meanVar(vel)
	values[VelocityMax] = maxOf(vel)
	values[AvgAcceleration], values[AccelerationVariance] = meanVar(acc)
	values[AvgJerk], values[JerkVariance] = meanVar(jerk)
}

// pressure fills pressure features. Devices without pressure report 0 for
// every point, which leaves every pressure feature at 0.
func pressure(s ir.HandwritingSession, values map[string]float64) {
	ps := make([]float64, 0, s.PointCount())
	for _, st := range s.Strokes {
		for _, p := range st.Points {
			ps = append(ps, p.Pressure)
		}
	}

	mean, variance := meanVar(ps)
	values[AvgPressure] = mean
	values[PressureVariance] = variance
	values[PressureMin] = minOf(ps)
	values[PressureMax] = maxOf(ps)
	values[PressureRange] = values[PressureMax] - values[PressureMin]
	values[PressureCV] = ratio(math.Sqrt(variance), mean)
}

func spatial(s ir.HandwritingSession, values map[string]float64) {
	var (
		ink                    float64
		segments               int
		sumX, sumY             float64
		minX, maxX, minY, maxY float64
		seen                   bool
	)

	for _, st := range s.Strokes {
		for i, p := range st.Points {
			sumX += p.X
			sumY += p.Y
			if !seen {
				minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
				seen = true
			}
			minX = math.Min(minX, p.X)
			maxX = math.Max(maxX, p.X)
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
			if i > 0 {
				prev := st.Points[i-1]
				ink += math.Hypot(p.X-prev.X, p.Y-prev.Y)
				segments++
			}
		}
	}

	w, h := maxX-minX, maxY-minY
	n := float64(s.PointCount())
	cx, cy := sumX/n, sumY/n
	halfDiag := math.Hypot(s.Canvas.Width, s.Canvas.Height) / 2

	values[TotalInkLength] = ink
	values[AvgSegmentLength] = ratio(ink, float64(segments))
	values[BoundingBoxWidth] = w
	values[BoundingBoxHeight] = h
	values[BoundingBoxArea] = w * h
	values[AspectRatio] = ratio(w, h)
	values[CanvasCoverage] = ratio(w*h, s.Canvas.Area())
	values[CenterOffset] = ratio(math.Hypot(cx-s.Canvas.Width/2, cy-s.Canvas.Height/2), halfDiag)
}

func temporal(s ir.HandwritingSession, cfg Config, values map[string]float64) {
	var pauses []float64
	for i := 1; i < len(s.Strokes); i++ {
		gap := float64(s.Strokes[i].Start - s.Strokes[i-1].End)
		if gap > cfg.PauseThresholdMs {
			pauses = append(pauses, gap)
		}
	}

	durations := make([]float64, len(s.Strokes))
	var inkTime float64
	for i, st := range s.Strokes {
		durations[i] = float64(st.Duration())
		inkTime += durations[i]
	}

	var totalPause float64
	for _, p := range pauses {
		totalPause += p
	}

	values[PauseCount] = float64(len(pauses))
	values[AvgPauseDuration] = ratio(totalPause, float64(len(pauses)))
	values[MaxPauseDuration] = maxOf(pauses)
	values[TotalPauseTime] = totalPause
	values[AvgStrokeDuration], values[StrokeDurationVariance] = meanVar(durations)
	values[InkTimeRatio] = ratio(inkTime, float64(s.ElapsedMs))
}

// tremor returns the ink-length-weighted mean, over strokes, of the
// variance of the turning angle between consecutive non-zero
// displacements. A straight or smoothly curving stroke scores near 0.
func tremor(s ir.HandwritingSession) float64 {
	var weighted, totalLen float64
	for _, st := range s.Strokes {
		var (
			angles       []float64
			length       float64
			prevDX       float64
			prevDY       float64
			havePrevious bool
		)
		for i := 1; i < len(st.Points); i++ {
			dx := st.Points[i].X - st.Points[i-1].X
			dy := st.Points[i].Y - st.Points[i-1].Y
			if dx == 0 && dy == 0 {
				continue
			}
			length += math.Hypot(dx, dy)
			if havePrevious {
				cross := prevDX*dy - prevDY*dx
				dot := prevDX*dx + prevDY*dy
				angles = append(angles, wrapAngle(math.Atan2(cross, dot)))
			}
			prevDX, prevDY, havePrevious = dx, dy, true
		}
		if len(angles) == 0 {
			continue
		}
		_, v := meanVar(angles)
		weighted += v * length
		totalLen += length
	}
	return ratio(weighted, totalLen)
}
