package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() HandwritingSession {
	return HandwritingSession{
		Strokes: []Stroke{{
			Points: []RawPoint{
				{X: 10, Y: 10, Pressure: 0.4, T: 0},
				{X: 12.5, Y: 11, Pressure: 0.45, T: 16},
			},
			Start: 0,
			End:   16,
		}},
		ElapsedMs: 1000,
		Canvas:    CanvasSize{Width: 400, Height: 400},
	}
}

func TestSessionDigestDeterminism(t *testing.T) {
	d1, err := SessionDigest(sampleSession())
	require.NoError(t, err)
	d2, err := SessionDigest(sampleSession())
	require.NoError(t, err)

	assert.Equal(t, d1, d2, "SessionDigest must be deterministic")
	assert.Len(t, d1, 64, "SHA-256 hex is 64 characters")
}

func TestSessionDigestChangesWithInput(t *testing.T) {
	base := MustSessionDigest(sampleSession())

	moved := sampleSession()
	moved.Strokes[0].Points[1].X = 12.6
	elapsed := sampleSession()
	elapsed.ElapsedMs = 1001

	assert.NotEqual(t, base, MustSessionDigest(moved), "different coordinates should change digest")
	assert.NotEqual(t, base, MustSessionDigest(elapsed), "different elapsed should change digest")
}

func TestResultDigestIgnoresMapOrder(t *testing.T) {
	r1 := SessionAnalysisResult{
		Features: FeatureVector{Version: "fv1", Values: map[string]float64{"a": 1, "b": 2}},
		Tier:     TierLow,
	}
	r2 := SessionAnalysisResult{
		Features: FeatureVector{Version: "fv1", Values: map[string]float64{"b": 2, "a": 1}},
		Tier:     TierLow,
	}
	assert.Equal(t, MustResultDigest(r1), MustResultDigest(r2))
}

func TestDomainSeparation(t *testing.T) {
	data := []byte(`{}`)
	assert.NotEqual(t, hashWithDomain(DomainSession, data), hashWithDomain(DomainResult, data),
		"same payload under different domains must not collide")
}
