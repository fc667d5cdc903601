package validator

import (
	"fmt"
	"math"

	"github.com/roach88/graphomotor/internal/ir"
)

// DefaultThreshold is the pass mark used when a reference declares none.
const DefaultThreshold = 0.6

// Shape primitives.
const (
	PrimitiveCircle   = "circle"
	PrimitiveTriangle = "triangle"
	PrimitiveSquare   = "square"
	PrimitivePentagon = "pentagon"
	PrimitiveHexagon  = "hexagon"
	PrimitivePolygon  = "polygon"
)

var namedSides = map[string]int{
	PrimitiveTriangle: 3,
	PrimitiveSquare:   4,
	PrimitivePentagon: 5,
	PrimitiveHexagon:  6,
}

// Table is the consolidated, versioned set of task references.
type Table struct {
	Version string                   `json:"version" yaml:"version"`
	Tasks   map[string]TaskReference `json:"tasks" yaml:"tasks"`
}

// TaskReference is the expected pattern for one task.
// Exactly one of Shape, Tokens or Sequence is used, selected by Kind.
type TaskReference struct {
	ID          string      `json:"id" yaml:"-"`
	Kind        ir.TaskKind `json:"kind" yaml:"kind"`
	Category    string      `json:"category,omitempty" yaml:"category,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`

	// Threshold is the pass mark in [0,1]. Zero means DefaultThreshold.
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`

	Shape    *ShapeSpec `json:"shape,omitempty" yaml:"shape,omitempty"`
	Tokens   []string   `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Sequence []Target   `json:"sequence,omitempty" yaml:"sequence,omitempty"`
}

// ShapeSpec names the primitive a shape task expects.
type ShapeSpec struct {
	Primitive string `json:"primitive" yaml:"primitive"`
	// Sides is required for "polygon" and implied by the named polygons.
	Sides int `json:"sides,omitempty" yaml:"sides,omitempty"`
}

// Target is one element of an expected sequence. Radius > 0 places the
// target on the canvas; Radius == 0 means the sequence is entered as
// responses instead of drawn.
type Target struct {
	Label  string  `json:"label" yaml:"label"`
	X      float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y      float64 `json:"y,omitempty" yaml:"y,omitempty"`
	Radius float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
}

// EffectiveThreshold returns the declared threshold or DefaultThreshold.
func (r TaskReference) EffectiveThreshold() float64 {
	if r.Threshold == 0 {
		return DefaultThreshold
	}
	return r.Threshold
}

// SideCount returns the number of polygon sides, or 0 for a circle.
func (s ShapeSpec) SideCount() int {
	if n, ok := namedSides[s.Primitive]; ok {
		return n
	}
	if s.Primitive == PrimitivePolygon {
		return s.Sides
	}
	return 0
}

// Lookup returns the reference for a task.
func (t Table) Lookup(taskID string) (TaskReference, error) {
	ref, ok := t.Tasks[taskID]
	if !ok {
		return TaskReference{}, ir.NewUnsupportedTask(taskID)
	}
	return ref, nil
}

// TaskIDs returns the task identifiers in sorted order.
func (t Table) TaskIDs() []string {
	return sortedKeys(t.Tasks)
}

// Check reports the first inconsistent definition in the table, in task
// identifier order, as ir.ErrCodeMalformedReference.
func (t Table) Check() error {
	if t.Version == "" {
		return ir.NewMalformedReference("", "version", "reference table must declare a version")
	}
	for _, id := range t.TaskIDs() {
		ref := t.Tasks[id]
		if ref.ID != id {
			return ir.NewMalformedReference(id, "id", "task id %q does not match its key", ref.ID)
		}
		if err := ref.Check(); err != nil {
			return err
		}
	}
	return nil
}

// Check validates a single reference definition.
func (r TaskReference) Check() error {
	if r.ID == "" {
		return ir.NewMalformedReference("", "id", "task id is required")
	}
	if !ir.ValidTaskKinds[r.Kind] {
		return ir.NewMalformedReference(r.ID, "kind", "unknown task kind %q", r.Kind)
	}
	if math.IsNaN(r.Threshold) || r.Threshold < 0 || r.Threshold > 1 {
		return ir.NewMalformedReference(r.ID, "threshold", "must be in [0,1], got %v", r.Threshold)
	}

	switch r.Kind {
	case ir.TaskKindShape:
		return r.checkShape()
	case ir.TaskKindTokens:
		return r.checkTokens()
	case ir.TaskKindSequence:
		return r.checkSequence()
	}
	return nil
}

func (r TaskReference) checkShape() error {
	if r.Shape == nil {
		return ir.NewMalformedReference(r.ID, "shape", "shape task has no shape definition")
	}
	p := r.Shape.Primitive
	switch {
	case p == PrimitiveCircle:
		if r.Shape.Sides != 0 {
			return ir.NewMalformedReference(r.ID, "shape.sides", "circle cannot declare sides")
		}
	case p == PrimitivePolygon:
		if r.Shape.Sides < 3 {
			return ir.NewMalformedReference(r.ID, "shape.sides", "polygon needs at least 3 sides, got %d", r.Shape.Sides)
		}
	case namedSides[p] > 0:
		if r.Shape.Sides != 0 && r.Shape.Sides != namedSides[p] {
			return ir.NewMalformedReference(r.ID, "shape.sides",
				"%s has %d sides, got %d", p, namedSides[p], r.Shape.Sides)
		}
	default:
		return ir.NewMalformedReference(r.ID, "shape.primitive", "unknown primitive %q", p)
	}
	return nil
}

func (r TaskReference) checkTokens() error {
	if len(r.Tokens) == 0 {
		return ir.NewMalformedReference(r.ID, "tokens", "token task has no expected tokens")
	}
	m := newMatcher()
	seen := make(map[string]bool, len(r.Tokens))
	for i, tok := range r.Tokens {
		key := m.key(tok)
		field := fmt.Sprintf("tokens[%d]", i)
		if key == "" {
			return ir.NewMalformedReference(r.ID, field, "token is blank")
		}
		if seen[key] {
			return ir.NewMalformedReference(r.ID, field, "duplicate token %q", tok)
		}
		seen[key] = true
	}
	return nil
}

func (r TaskReference) checkSequence() error {
	if len(r.Sequence) < 2 {
		return ir.NewMalformedReference(r.ID, "sequence", "sequence needs at least 2 targets, got %d", len(r.Sequence))
	}
	m := newMatcher()
	seen := make(map[string]bool, len(r.Sequence))
	placed := 0
	for i, tgt := range r.Sequence {
		field := fmt.Sprintf("sequence[%d]", i)
		key := m.key(tgt.Label)
		if key == "" {
			return ir.NewMalformedReference(r.ID, field+".label", "target label is blank")
		}
		if seen[key] {
			return ir.NewMalformedReference(r.ID, field+".label", "duplicate target %q", tgt.Label)
		}
		seen[key] = true
		if math.IsNaN(tgt.Radius) || math.IsInf(tgt.Radius, 0) || tgt.Radius < 0 {
			return ir.NewMalformedReference(r.ID, field+".radius", "must be a finite number >= 0, got %v", tgt.Radius)
		}
		if math.IsNaN(tgt.X) || math.IsInf(tgt.X, 0) || math.IsNaN(tgt.Y) || math.IsInf(tgt.Y, 0) {
			return ir.NewMalformedReference(r.ID, field, "target position must be finite")
		}
		if tgt.Radius > 0 {
			placed++
		}
	}
	if placed != 0 && placed != len(r.Sequence) {
		return ir.NewMalformedReference(r.ID, "sequence",
			"either every target or none must have a radius (%d of %d placed)", placed, len(r.Sequence))
	}
	return nil
}
