package risk

import (
	"math"

	"github.com/roach88/graphomotor/internal/features"
	"github.com/roach88/graphomotor/internal/ir"
)

// Dimension name prefixes.
const (
	FeaturePrefix = "feature:"
	TaskPrefix    = "tasks:"
)

// Task record dimensions.
const (
	DimScoreDeficit    = TaskPrefix + "score_deficit"
	DimAccuracyDeficit = TaskPrefix + "accuracy_deficit"
	DimErrorCount      = TaskPrefix + "error_count"
	DimResponseTime    = TaskPrefix + "response_time"
)

// DefaultTopN is the number of rationale entries kept by default.
const DefaultTopN = 3

// FeatureWeight maps one input value to a signed contribution:
// Weight * clamp((value - Baseline) / Scale, -1, 1).
// A zero Weight disables the dimension.
type FeatureWeight struct {
	Weight   float64 `json:"weight" yaml:"weight"`
	Baseline float64 `json:"baseline" yaml:"baseline"`
	Scale    float64 `json:"scale" yaml:"scale"`
}

// RecordWeights weighs the task evidence, averaged over all records.
type RecordWeights struct {
	// ScoreDeficit applies to 1 - mean score.
	ScoreDeficit FeatureWeight `json:"score_deficit" yaml:"score_deficit"`
	// AccuracyDeficit applies to 1 - mean accuracy.
	AccuracyDeficit FeatureWeight `json:"accuracy_deficit" yaml:"accuracy_deficit"`
	// ErrorCount applies to the mean error count.
	ErrorCount FeatureWeight `json:"error_count" yaml:"error_count"`
	// ResponseTime applies to the mean response time in milliseconds.
	ResponseTime FeatureWeight `json:"response_time" yaml:"response_time"`
}

// Thresholds are the tier boundaries. A score below Moderate is low, a
// score in [Moderate, Elevated) is moderate, and anything else is elevated.
type Thresholds struct {
	Moderate float64 `json:"moderate" yaml:"moderate"`
	Elevated float64 `json:"elevated" yaml:"elevated"`
}

// WeightTable is the versioned configuration of the aggregator.
type WeightTable struct {
	Version    string                   `json:"version" yaml:"version"`
	Vocabulary string                   `json:"vocabulary" yaml:"vocabulary"`
	Features   map[string]FeatureWeight `json:"features" yaml:"features"`
	Records    RecordWeights            `json:"records" yaml:"records"`
	Thresholds Thresholds               `json:"thresholds" yaml:"thresholds"`
	TopN       int                      `json:"top_n" yaml:"top_n"`
}

// DefaultWeights returns the built-in table w1 for vocabulary fv1.
//
// Positive weights raise the score when the value is above baseline,
// negative weights when it is below. Baselines describe an unremarkable
// adult attempt on a tablet at 16ms sampling; scales are the distance from
// baseline at which a dimension saturates.
func DefaultWeights() WeightTable {
	return WeightTable{
		Version:    ir.WeightTableVersion,
		Vocabulary: ir.FeatureVocabularyVersion,
		Features: map[string]FeatureWeight{
			features.AvgVelocity:      {Weight: -0.10, Baseline: 0.5, Scale: 0.3},
			features.VelocityVariance: {Weight: 0.05, Baseline: 0.05, Scale: 0.05},
			features.PressureCV:       {Weight: 0.05, Baseline: 0.2, Scale: 0.2},
			features.TremorIndex:      {Weight: 0.20, Baseline: 0.05, Scale: 0.1},
			features.PauseCount:       {Weight: 0.10, Baseline: 2, Scale: 4},
			features.AvgPauseDuration: {Weight: 0.10, Baseline: 800, Scale: 1500},
			features.InkTimeRatio:     {Weight: -0.10, Baseline: 0.6, Scale: 0.3},
		},
		Records: RecordWeights{
			ScoreDeficit:    FeatureWeight{Weight: 0.35, Baseline: 0.2, Scale: 0.4},
			AccuracyDeficit: FeatureWeight{Weight: 0.15, Baseline: 0.2, Scale: 0.4},
			ErrorCount:      FeatureWeight{Weight: 0.10, Baseline: 1, Scale: 3},
			ResponseTime:    FeatureWeight{Weight: 0.05, Baseline: 5000, Scale: 10000},
		},
		Thresholds: Thresholds{Moderate: 0.3, Elevated: 0.6},
		TopN:       DefaultTopN,
	}
}

// Check validates the table against the feature keys it may reference.
func (t WeightTable) Check(vocabulary []string) error {
	if t.Version == "" {
		return ir.NewInvalidConfig("weights.version", "weight table must declare a version")
	}
	if t.Vocabulary == "" {
		return ir.NewInvalidConfig("weights.vocabulary", "weight table must name the feature vocabulary it references")
	}

	known := make(map[string]bool, len(vocabulary))
	for _, k := range vocabulary {
		known[k] = true
	}
	for _, key := range sortedKeys(t.Features) {
		if !known[key] {
			return ir.NewInvalidConfig("weights.features."+key, "unknown feature %q for vocabulary %s", key, t.Vocabulary)
		}
		if err := t.Features[key].check("weights.features." + key); err != nil {
			return err
		}
	}

	records := []struct {
		field string
		w     FeatureWeight
	}{
		{"weights.records.score_deficit", t.Records.ScoreDeficit},
		{"weights.records.accuracy_deficit", t.Records.AccuracyDeficit},
		{"weights.records.error_count", t.Records.ErrorCount},
		{"weights.records.response_time", t.Records.ResponseTime},
	}
	for _, r := range records {
		if err := r.w.check(r.field); err != nil {
			return err
		}
	}

	th := t.Thresholds
	if !finite(th.Moderate) || !finite(th.Elevated) {
		return ir.NewInvalidConfig("thresholds", "tier thresholds must be finite")
	}
	if th.Moderate >= th.Elevated {
		return ir.NewInvalidConfig("thresholds",
			"moderate threshold %v must be below elevated threshold %v", th.Moderate, th.Elevated)
	}
	if t.TopN < 1 {
		return ir.NewInvalidConfig("top_n", "must be at least 1, got %d", t.TopN)
	}
	return nil
}

func (w FeatureWeight) check(field string) error {
	if !finite(w.Weight) || !finite(w.Baseline) {
		return ir.NewInvalidConfig(field, "weight and baseline must be finite")
	}
	if w.Weight != 0 && (!finite(w.Scale) || w.Scale <= 0) {
		return ir.NewInvalidConfig(field+".scale", "must be a positive finite number, got %v", w.Scale)
	}
	return nil
}

// contribution returns the signed contribution of value.
func (w FeatureWeight) contribution(value float64) float64 {
	if w.Weight == 0 {
		return 0
	}
	n := (value - w.Baseline) / w.Scale
	if n > 1 {
		n = 1
	}
	if n < -1 {
		n = -1
	}
	return w.Weight * n
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
