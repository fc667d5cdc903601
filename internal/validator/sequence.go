package validator

import (
	"math"

	"github.com/roach88/graphomotor/internal/ir"
)

// scoreSequence is the fraction of expected consecutive transitions that
// appear as consecutive visits in the attempt.
func scoreSequence(targets []Target, attempt Attempt, threshold float64) (float64, []ir.Deviation) {
	m := newMatcher()

	var visited []string
	if targets[0].Radius > 0 {
		visited = visitsFromInk(targets, attempt.Session, m)
	} else {
		visited = visitsFromResponses(attempt.Responses, m)
	}

	seen := make(map[[2]string]bool, len(visited))
	for i := 1; i < len(visited); i++ {
		seen[[2]string{visited[i-1], visited[i]}] = true
	}

	expected := len(targets) - 1
	reproduced := 0
	var missing []string
	for i := 1; i < len(targets); i++ {
		a, b := m.key(targets[i-1].Label), m.key(targets[i].Label)
		if seen[[2]string{a, b}] {
			reproduced++
			continue
		}
		missing = append(missing, "missing_transition:"+targets[i-1].Label+"->"+targets[i].Label)
	}

	conformance := float64(reproduced) / float64(expected)
	sev := severityFor(conformance, threshold)
	deviations := make([]ir.Deviation, 0, len(missing))
	for _, name := range missing {
		deviations = append(deviations, ir.Deviation{Name: name, Severity: sev})
	}
	return conformance, deviations
}

// visitsFromInk walks the ink in capture order and records which target
// each point falls inside. The first declared target wins an overlap;
// consecutive visits to the same target collapse into one.
func visitsFromInk(targets []Target, s ir.HandwritingSession, m *matcher) []string {
	keys := make([]string, len(targets))
	for i, t := range targets {
		keys[i] = m.key(t.Label)
	}

	var visited []string
	for _, st := range s.Strokes {
		for _, p := range st.Points {
			for i, t := range targets {
				if math.Hypot(p.X-t.X, p.Y-t.Y) > t.Radius {
					continue
				}
				if len(visited) == 0 || visited[len(visited)-1] != keys[i] {
					visited = append(visited, keys[i])
				}
				break
			}
		}
	}
	return visited
}

// visitsFromResponses treats each non-blank response as a visited label.
// Labels that name no target still break a transition.
func visitsFromResponses(responses []string, m *matcher) []string {
	var visited []string
	for _, r := range responses {
		k := m.key(r)
		if k == "" {
			continue
		}
		if len(visited) == 0 || visited[len(visited)-1] != k {
			visited = append(visited, k)
		}
	}
	return visited
}
