package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/graphomotor/internal/features"
	"github.com/roach88/graphomotor/internal/ir"
)

// neutralVector puts every weighted feature exactly at its baseline.
func neutralVector(t WeightTable) ir.FeatureVector {
	values := make(map[string]float64)
	for _, k := range features.Vocabulary() {
		values[k] = 0
	}
	for k, w := range t.Features {
		values[k] = w.Baseline
	}
	return ir.FeatureVector{Version: ir.FeatureVocabularyVersion, Values: values}
}

func singleFeatureTable(weight float64) WeightTable {
	return WeightTable{
		Version:    "test",
		Vocabulary: ir.FeatureVocabularyVersion,
		Features: map[string]FeatureWeight{
			features.TremorIndex: {Weight: weight, Baseline: 0, Scale: 1},
		},
		Thresholds: Thresholds{Moderate: 0.3, Elevated: 0.6},
		TopN:       3,
	}
}

func TestAggregateNeutralWithoutTasks(t *testing.T) {
	table := DefaultWeights()
	res := Aggregate(neutralVector(table), nil, table, Options{})

	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, ir.TierLow, res.Tier)
	assert.True(t, res.ReducedConfidence)
	assert.Equal(t, 0, res.TaskEvidence)
	assert.Contains(t, res.Notes, NoteReducedConfidence)
	assert.Empty(t, res.Rationale)
	assert.NotNil(t, res.Records)
	assert.Equal(t, ir.WeightTableVersion, res.WeightsVersion)
}

func TestAggregateReducedConfidenceFlagTracksEvidence(t *testing.T) {
	table := singleFeatureTable(0.5)
	fv := ir.FeatureVector{Values: map[string]float64{features.TremorIndex: 0.5}}

	without := Aggregate(fv, nil, table, Options{})
	assert.Equal(t, []string{NoteReducedConfidence}, without.Notes)
	require.Len(t, without.Rationale, 1, "feature dimensions still explain the score")
	assert.Equal(t, "feature:tremor_index", without.Rationale[0].Dimension)

	with := Aggregate(fv, []ir.CognitiveTaskRecord{{TaskID: "clock_circle", Score: 1, Accuracy: 1}}, table, Options{})
	assert.False(t, with.ReducedConfidence)
	assert.NotContains(t, with.Notes, NoteReducedConfidence)
	assert.Equal(t, 1, with.TaskEvidence)
}

func TestAggregateTierBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  ir.RiskTier
	}{
		{"below moderate", 0.29, ir.TierLow},
		{"exactly moderate", 0.3, ir.TierModerate},
		{"between", 0.45, ir.TierModerate},
		{"exactly elevated", 0.6, ir.TierElevated},
		{"above elevated", 0.9, ir.TierElevated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Weight 1 with baseline 0 and scale 1 makes the score equal the value.
			table := singleFeatureTable(1)
			fv := ir.FeatureVector{Values: map[string]float64{features.TremorIndex: tt.value}}

			res := Aggregate(fv, nil, table, Options{})
			assert.Equal(t, tt.value, res.Score)
			assert.Equal(t, tt.want, res.Tier)
		})
	}
}

func TestTierFor(t *testing.T) {
	th := Thresholds{Moderate: 0.3, Elevated: 0.6}
	assert.Equal(t, ir.TierLow, TierFor(-1, th))
	assert.Equal(t, ir.TierModerate, TierFor(0.3, th))
	assert.Equal(t, ir.TierElevated, TierFor(0.6, th))
}

func TestAggregateContributionIsClamped(t *testing.T) {
	table := singleFeatureTable(0.5)
	fv := ir.FeatureVector{Values: map[string]float64{features.TremorIndex: 40}}

	res := Aggregate(fv, nil, table, Options{})
	assert.Equal(t, 0.5, res.Score)
	require.Len(t, res.Rationale, 1)
	assert.Equal(t, ir.Contribution{
		Dimension: "feature:tremor_index", Value: 40, Weight: 0.5, Amount: 0.5,
	}, res.Rationale[0])
}

func TestAggregateRecordOrderIndependent(t *testing.T) {
	table := DefaultWeights()
	fv := neutralVector(table)
	a := ir.CognitiveTaskRecord{TaskID: "word_recall", Score: 0.4, Accuracy: 0.4, ResponseTimeMs: 9000, ErrorCount: 3}
	b := ir.CognitiveTaskRecord{TaskID: "clock_circle", Score: 0.9, Accuracy: 0.9, ResponseTimeMs: 4000}
	c := ir.CognitiveTaskRecord{TaskID: "trail_making", Score: 0.5, Accuracy: 0.5, ResponseTimeMs: 12000, ErrorCount: 2}

	r1 := Aggregate(fv, []ir.CognitiveTaskRecord{a, b, c}, table, Options{})
	r2 := Aggregate(fv, []ir.CognitiveTaskRecord{c, a, b}, table, Options{})

	assert.Equal(t, r1, r2)
	assert.Equal(t, ir.MustResultDigest(r1), ir.MustResultDigest(r2))
	assert.Equal(t, 3, r1.TaskEvidence)
	assert.False(t, r1.ReducedConfidence)
	assert.Equal(t, "clock_circle", r1.Records[0].TaskID)
}

func TestAggregateRecordDimensions(t *testing.T) {
	table := DefaultWeights()
	records := []ir.CognitiveTaskRecord{
		{TaskID: "a", Score: 0.2, Accuracy: 0.2, ResponseTimeMs: 15000, ErrorCount: 4},
	}

	res := Aggregate(neutralVector(table), records, table, Options{})

	// Score deficit 0.8: (0.8 - 0.2) / 0.4 saturates at 1.
	// Accuracy deficit saturates the same way.
	// Error count 4: (4 - 1) / 3 = 1.
	// Response time 15000: (15000 - 5000) / 10000 = 1.
	assert.InDelta(t, 0.35+0.15+0.10+0.05, res.Score, 1e-12)
	assert.Equal(t, ir.TierElevated, res.Tier)

	require.Len(t, res.Rationale, 3)
	assert.Equal(t, DimScoreDeficit, res.Rationale[0].Dimension)
	assert.Equal(t, DimAccuracyDeficit, res.Rationale[1].Dimension)
	assert.Equal(t, DimErrorCount, res.Rationale[2].Dimension)
}

func TestAggregateRationaleTieBreak(t *testing.T) {
	table := WeightTable{
		Version:    "test",
		Vocabulary: ir.FeatureVocabularyVersion,
		Features: map[string]FeatureWeight{
			features.PauseCount:  {Weight: 0.1, Baseline: 0, Scale: 1},
			features.TremorIndex: {Weight: -0.1, Baseline: 0, Scale: 1},
			features.AvgVelocity: {Weight: 0.1, Baseline: 0, Scale: 1},
		},
		Thresholds: Thresholds{Moderate: 0.3, Elevated: 0.6},
		TopN:       2,
	}
	fv := ir.FeatureVector{Values: map[string]float64{
		features.PauseCount:  1,
		features.TremorIndex: 1,
		features.AvgVelocity: 1,
	}}

	res := Aggregate(fv, nil, table, Options{})

	require.Len(t, res.Rationale, 2)
	assert.Equal(t, "feature:avg_velocity", res.Rationale[0].Dimension)
	assert.Equal(t, "feature:pause_count", res.Rationale[1].Dimension)
}

func TestAggregateDegenerateExcludedByDefault(t *testing.T) {
	table := singleFeatureTable(1)
	fv := ir.FeatureVector{Values: map[string]float64{features.TremorIndex: 0.5}, Degenerate: true}

	res := Aggregate(fv, nil, table, Options{})
	assert.Equal(t, 0.0, res.Score)
	assert.True(t, res.DegenerateFeatures)
	assert.Contains(t, res.Notes, NoteDegenerateExcluded)

	included := Aggregate(fv, nil, table, Options{IncludeDegenerate: true})
	assert.Equal(t, 0.5, included.Score)
	assert.NotContains(t, included.Notes, NoteDegenerateExcluded)
}

func TestAggregateDoesNotAliasInputs(t *testing.T) {
	table := singleFeatureTable(1)
	fv := ir.FeatureVector{Values: map[string]float64{features.TremorIndex: 0.1}}
	records := []ir.CognitiveTaskRecord{{TaskID: "b"}, {TaskID: "a"}}

	res := Aggregate(fv, records, table, Options{})
	fv.Values[features.TremorIndex] = 99

	assert.Equal(t, 0.1, res.Features.Get(features.TremorIndex))
	assert.Equal(t, "b", records[0].TaskID, "caller slice keeps its order")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "feature:tremor_index raised the score by 0.150 (value 0.125)",
		Describe(ir.Contribution{Dimension: "feature:tremor_index", Value: 0.125, Amount: 0.15}))
	assert.Equal(t, "feature:avg_velocity lowered the score by 0.050 (value 0.65)",
		Describe(ir.Contribution{Dimension: "feature:avg_velocity", Value: 0.65, Amount: -0.05}))
}
