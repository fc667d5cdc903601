package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/graphomotor/internal/features"
)

func TestVocab_Text(t *testing.T) {
	out, _, err := execute(t, "vocab")
	require.NoError(t, err)
	assert.Contains(t, out, "vocabulary fv1")
	assert.Contains(t, out, "weight=+0.20 baseline=0.05 scale=0.1")
	for _, key := range features.Vocabulary() {
		assert.Contains(t, out, key)
	}
}

func TestVocab_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "vocab")
	require.NoError(t, err)

	var result VocabResult
	decodeResponse(t, out, &result)
	assert.Equal(t, features.Version(), result.Version)
	assert.Equal(t, features.Vocabulary(), result.Features)
	require.Contains(t, result.Weights, features.TremorIndex)
	assert.InDelta(t, 0.2, result.Weights[features.TremorIndex].Weight, 1e-12)
	for key := range result.Weights {
		assert.Contains(t, result.Features, key)
	}
}
