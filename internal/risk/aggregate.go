package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/roach88/graphomotor/internal/ir"
)

// Notes attached to results. They complete the rationale for conditions
// that carry no score amount.
const (
	NoteReducedConfidence  = "reduced confidence: task evidence count = 0"
	NoteDegenerateExcluded = "degenerate session: feature dimensions excluded"
)

// Options adjusts how evidence is treated.
type Options struct {
	// IncludeDegenerate keeps feature dimensions of a degenerate vector in
	// the score. By default they are excluded so an empty session does not
	// read as a low-risk signal.
	IncludeDegenerate bool `json:"include_degenerate" yaml:"include_degenerate"`
}

// Aggregate combines a feature vector and task records into a result.
//
// Records are considered in canonical order (task id, then values), so
// the outcome does not depend on the order they were supplied in. The
// table is expected to have passed Check.
func Aggregate(fv ir.FeatureVector, records []ir.CognitiveTaskRecord, table WeightTable, opts Options) ir.SessionAnalysisResult {
	sorted := SortRecords(records)

	var contribs []ir.Contribution
	var notes []string

	useFeatures := !fv.Degenerate || opts.IncludeDegenerate
	if useFeatures {
		for _, key := range sortedKeys(table.Features) {
			w := table.Features[key]
			if w.Weight == 0 {
				continue
			}
			v := fv.Get(key)
			contribs = append(contribs, ir.Contribution{
				Dimension: FeaturePrefix + key,
				Value:     v,
				Weight:    w.Weight,
				Amount:    w.contribution(v),
			})
		}
	} else {
		notes = append(notes, NoteDegenerateExcluded)
	}

	if len(sorted) > 0 {
		contribs = append(contribs, recordContributions(sorted, table.Records)...)
	} else {
		notes = append(notes, NoteReducedConfidence)
	}

	sort.Slice(contribs, func(i, j int) bool {
		return contribs[i].Dimension < contribs[j].Dimension
	})
	var score float64
	for _, c := range contribs {
		score += c.Amount
	}

	return ir.SessionAnalysisResult{
		Features:           copyVector(fv),
		Records:            sorted,
		Tier:               TierFor(score, table.Thresholds),
		Score:              score,
		Rationale:          rationale(contribs, table.TopN),
		TaskEvidence:       len(sorted),
		ReducedConfidence:  len(sorted) == 0,
		DegenerateFeatures: fv.Degenerate,
		Notes:              notes,
		WeightsVersion:     table.Version,
	}
}

// TierFor maps a score to its tier. Each boundary belongs to the higher tier.
func TierFor(score float64, th Thresholds) ir.RiskTier {
	switch {
	case score >= th.Elevated:
		return ir.TierElevated
	case score >= th.Moderate:
		return ir.TierModerate
	default:
		return ir.TierLow
	}
}

// SortRecords returns a copy of records in canonical order.
func SortRecords(records []ir.CognitiveTaskRecord) []ir.CognitiveTaskRecord {
	out := make([]ir.CognitiveTaskRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TaskID != b.TaskID {
			return a.TaskID < b.TaskID
		}
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		if a.Accuracy != b.Accuracy {
			return a.Accuracy < b.Accuracy
		}
		if a.ResponseTimeMs != b.ResponseTimeMs {
			return a.ResponseTimeMs < b.ResponseTimeMs
		}
		return a.ErrorCount < b.ErrorCount
	})
	return out
}

func recordContributions(records []ir.CognitiveTaskRecord, w RecordWeights) []ir.Contribution {
	var score, accuracy, errs, rt float64
	for _, r := range records {
		score += r.Score
		accuracy += r.Accuracy
		errs += float64(r.ErrorCount)
		rt += float64(r.ResponseTimeMs)
	}
	n := float64(len(records))

	dims := []struct {
		name  string
		value float64
		w     FeatureWeight
	}{
		{DimScoreDeficit, 1 - score/n, w.ScoreDeficit},
		{DimAccuracyDeficit, 1 - accuracy/n, w.AccuracyDeficit},
		{DimErrorCount, errs / n, w.ErrorCount},
		{DimResponseTime, rt / n, w.ResponseTime},
	}

	out := make([]ir.Contribution, 0, len(dims))
	for _, d := range dims {
		if d.w.Weight == 0 {
			continue
		}
		out = append(out, ir.Contribution{
			Dimension: d.name,
			Value:     d.value,
			Weight:    d.w.Weight,
			Amount:    d.w.contribution(d.value),
		})
	}
	return out
}

// rationale keeps the topN non-zero contributions by absolute amount,
// ties broken by dimension name.
func rationale(contribs []ir.Contribution, topN int) []ir.Contribution {
	out := make([]ir.Contribution, 0, len(contribs))
	for _, c := range contribs {
		if c.Amount != 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Amount), math.Abs(out[j].Amount)
		if ai != aj {
			return ai > aj
		}
		return out[i].Dimension < out[j].Dimension
	})
	if topN < 1 {
		topN = DefaultTopN
	}
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

func copyVector(fv ir.FeatureVector) ir.FeatureVector {
	values := make(map[string]float64, len(fv.Values))
	for k, v := range fv.Values {
		values[k] = v
	}
	return ir.FeatureVector{Version: fv.Version, Values: values, Degenerate: fv.Degenerate}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Describe renders one contribution as a rationale line, e.g.
// "feature:tremor_index raised the score by 0.150 (value 0.125)".
func Describe(c ir.Contribution) string {
	verb := "raised"
	if c.Amount < 0 {
		verb = "lowered"
	}
	return fmt.Sprintf("%s %s the score by %.3f (value %.4g)", c.Dimension, verb, math.Abs(c.Amount), c.Value)
}
