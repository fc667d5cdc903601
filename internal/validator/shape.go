package validator

import (
	"math"

	"github.com/roach88/graphomotor/internal/ir"
)

// Shape scoring limits.
const (
	// maxRelativeRMS is the RMS deviation, relative to the fitted size,
	// above which a drawing is flagged incomplete.
	maxRelativeRMS = 0.05

	// minAngularCoverage is the fraction of a full turn around the fitted
	// centre the ink must sweep.
	minAngularCoverage = 0.9

	// maxClosureGap is the start-to-end distance, relative to the fitted
	// diameter, above which a shape is flagged open.
	maxClosureGap = 0.2

	// coverageBins is the angular resolution of the coverage measure.
	coverageBins = 72

	minShapePoints = 3

	// rotationRefinements is the number of golden-section iterations
	// applied to the best grid rotation of a polygon fit.
	rotationRefinements = 60
)

// invPhi is the golden-section ratio 1/phi.
var invPhi = (math.Sqrt(5) - 1) / 2

// fit is a primitive fitted to the ink.
type fit struct {
	cx, cy float64
	// size is the radius of a circle or the circumradius of a polygon.
	size float64
	rms  float64
}

func scoreShape(spec ShapeSpec, s ir.HandwritingSession, threshold float64) (float64, []ir.Deviation) {
	pts := points(s)
	if len(pts) < minShapePoints {
		return 0, []ir.Deviation{{Name: "empty_drawing", Severity: ir.SeverityMajor}}
	}

	var f fit
	if sides := spec.SideCount(); sides >= 3 {
		f = fitPolygon(s, pts, sides)
	} else {
		f = fitCircle(pts)
	}
	if f.size <= 0 || math.IsNaN(f.size) {
		return 0, []ir.Deviation{{Name: "incomplete_shape", Severity: ir.SeverityMajor}}
	}

	conformance := clamp01(1 - f.rms/f.size)

	var deviations []ir.Deviation
	if f.rms/f.size > maxRelativeRMS || angularCoverage(s, f.cx, f.cy) < minAngularCoverage {
		deviations = append(deviations, ir.Deviation{
			Name:     "incomplete_shape",
			Severity: severityFor(conformance, threshold),
		})
	}

	first, last := pts[0], pts[len(pts)-1]
	if math.Hypot(last.X-first.X, last.Y-first.Y) > maxClosureGap*2*f.size {
		deviations = append(deviations, ir.Deviation{Name: "open_shape", Severity: ir.SeverityMinor})
	}

	return conformance, deviations
}

func points(s ir.HandwritingSession) []ir.RawPoint {
	out := make([]ir.RawPoint, 0, s.PointCount())
	for _, st := range s.Strokes {
		out = append(out, st.Points...)
	}
	return out
}

// fitCircle is an algebraic least-squares (Kasa) fit on coordinates
// centred at the point mean. Collinear ink falls back to the mean with
// the mean distance as radius.
func fitCircle(pts []ir.RawPoint) fit {
	n := float64(len(pts))
	var mx, my float64
	for _, p := range pts {
		mx += p.X
		my += p.Y
	}
	mx /= n
	my /= n

	var sxx, sxy, syy, sxz, syz, sz float64
	for _, p := range pts {
		u, v := p.X-mx, p.Y-my
		z := u*u + v*v
		sxx += u * u
		sxy += u * v
		syy += v * v
		sxz += u * z
		syz += v * z
		sz += z
	}

	cx, cy := mx, my
	var r float64
	det := sxx*syy - sxy*sxy
	if math.Abs(det) > 1e-12*(sxx*syy+1) {
		a := (sxz*syy - syz*sxy) / det
		b := (sxx*syz - sxy*sxz) / det
		cx = mx + a/2
		cy = my + b/2
		r = math.Sqrt(sz/n + (a*a+b*b)/4)
	} else {
		for _, p := range pts {
			r += math.Hypot(p.X-cx, p.Y-cy)
		}
		r /= n
	}

	var sq float64
	for _, p := range pts {
		d := math.Hypot(p.X-cx, p.Y-cy) - r
		sq += d * d
	}
	return fit{cx: cx, cy: cy, size: r, rms: math.Sqrt(sq / n)}
}

// fitPolygon fits a regular polygon. The centre is the ink centroid
// weighted by segment length. The rotation is searched on a grid of at
// most one degree spanning one sector, then refined by golden-section
// search around the best grid angle. The circumradius is the
// least-squares solution for the chosen rotation.
func fitPolygon(s ir.HandwritingSession, pts []ir.RawPoint, sides int) fit {
	cx, cy := pathCentroid(s, pts)

	rho := make([]float64, len(pts))
	phi := make([]float64, len(pts))
	for i, p := range pts {
		rho[i] = math.Hypot(p.X-cx, p.Y-cy)
		phi[i] = math.Atan2(p.Y-cy, p.X-cx)
	}

	sector := 2 * math.Pi / float64(sides)
	half := math.Pi / float64(sides)
	apothem := math.Cos(half)
	shape := make([]float64, len(pts))

	// at returns the least-squares circumradius and RMS error for rotation alpha.
	at := func(alpha float64) (float64, float64) {
		// rho = R * shape(phi) on the polygon boundary.
		var num, den float64
		for i := range pts {
			k := math.Mod(phi[i]-alpha, sector)
			if k < 0 {
				k += sector
			}
			shape[i] = apothem / math.Cos(k-half)
			num += rho[i] * shape[i]
			den += shape[i] * shape[i]
		}
		r := num / den

		var sq float64
		for i := range pts {
			e := rho[i] - r*shape[i]
			sq += e * e
		}
		return r, math.Sqrt(sq / float64(len(pts)))
	}

	steps := max(1, int(math.Ceil(sector/(math.Pi/180))))
	step := sector / float64(steps)

	best := fit{cx: cx, cy: cy, rms: math.Inf(1)}
	bestAlpha := 0.0
	for d := 0; d < steps; d++ {
		alpha := step * float64(d)
		if r, rms := at(alpha); rms < best.rms {
			best.size, best.rms, bestAlpha = r, rms, alpha
		}
	}

	lo, hi := bestAlpha-step, bestAlpha+step
	for i := 0; i < rotationRefinements; i++ {
		m1 := hi - invPhi*(hi-lo)
		m2 := lo + invPhi*(hi-lo)
		_, e1 := at(m1)
		_, e2 := at(m2)
		if e1 < e2 {
			hi = m2
		} else {
			lo = m1
		}
	}
	if r, rms := at((lo + hi) / 2); rms < best.rms {
		best.size, best.rms = r, rms
	}
	return best
}

// pathCentroid is the centroid of the drawn path, each segment weighted
// by its length. Ink without any length falls back to the point mean.
func pathCentroid(s ir.HandwritingSession, pts []ir.RawPoint) (float64, float64) {
	var sx, sy, total float64
	for _, st := range s.Strokes {
		for i := 1; i < len(st.Points); i++ {
			p, q := st.Points[i-1], st.Points[i]
			l := math.Hypot(q.X-p.X, q.Y-p.Y)
			sx += (p.X + q.X) / 2 * l
			sy += (p.Y + q.Y) / 2 * l
			total += l
		}
	}
	if total > 0 {
		return sx / total, sy / total
	}
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return sx / n, sy / n
}

// angularCoverage returns the fraction of a full turn around (cx, cy)
// swept by the ink. Each intra-stroke segment covers the bins along its
// shorter arc, so sparse sampling of a continuous line still counts.
func angularCoverage(s ir.HandwritingSession, cx, cy float64) float64 {
	var covered [coverageBins]bool
	binWidth := 2 * math.Pi / coverageBins

	bin := func(a float64) int {
		a = math.Mod(a, 2*math.Pi)
		if a < 0 {
			a += 2 * math.Pi
		}
		b := int(a / binWidth)
		if b >= coverageBins {
			b = coverageBins - 1
		}
		return b
	}

	for _, st := range s.Strokes {
		for i, p := range st.Points {
			a := math.Atan2(p.Y-cy, p.X-cx)
			covered[bin(a)] = true
			if i == 0 {
				continue
			}
			prev := st.Points[i-1]
			a0 := math.Atan2(prev.Y-cy, prev.X-cx)
			delta := a - a0
			for delta > math.Pi {
				delta -= 2 * math.Pi
			}
			for delta <= -math.Pi {
				delta += 2 * math.Pi
			}
			steps := int(math.Ceil(math.Abs(delta) / binWidth))
			for k := 1; k < steps; k++ {
				covered[bin(a0+delta*float64(k)/float64(steps))] = true
			}
		}
	}

	n := 0
	for _, c := range covered {
		if c {
			n++
		}
	}
	return float64(n) / coverageBins
}
