package validator

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/graphomotor/internal/ir"
)

// matcher builds comparison keys for tokens and labels: trimmed, Unicode
// case folded, NFC normalized. A cases.Caser is stateful, so each
// matcher owns one and must not be shared between goroutines.
type matcher struct {
	fold cases.Caser
}

func newMatcher() *matcher {
	return &matcher{fold: cases.Fold()}
}

func (m *matcher) key(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return norm.NFC.String(m.fold.String(norm.NFC.String(s)))
}

// scoreTokens credits each expected token at most once, in any order.
// Blank responses are ignored.
func scoreTokens(expected, responses []string) (float64, []ir.Deviation) {
	m := newMatcher()

	index := make(map[string]int, len(expected))
	for i, tok := range expected {
		index[m.key(tok)] = i
	}

	credited := make([]bool, len(expected))
	var repeated, intrusions []ir.Deviation
	reported := make(map[string]bool)

	for _, resp := range responses {
		k := m.key(resp)
		if k == "" {
			continue
		}
		i, ok := index[k]
		switch {
		case !ok:
			name := "intrusion:" + strings.TrimSpace(resp)
			if !reported[name] {
				reported[name] = true
				intrusions = append(intrusions, ir.Deviation{Name: name, Severity: ir.SeverityMinor})
			}
		case credited[i]:
			name := "repeated_word:" + expected[i]
			if !reported[name] {
				reported[name] = true
				repeated = append(repeated, ir.Deviation{Name: name, Severity: ir.SeverityMinor})
			}
		default:
			credited[i] = true
		}
	}

	matched := 0
	var deviations []ir.Deviation
	for i, tok := range expected {
		if credited[i] {
			matched++
			continue
		}
		deviations = append(deviations, ir.Deviation{Name: "missing_word:" + tok, Severity: ir.SeverityMajor})
	}
	deviations = append(deviations, repeated...)
	deviations = append(deviations, intrusions...)

	return float64(matched) / float64(len(expected)), deviations
}
