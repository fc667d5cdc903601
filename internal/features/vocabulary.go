package features

import "github.com/roach88/graphomotor/internal/ir"

// Feature keys of vocabulary fv1.
const (
	AvgVelocity          = "avg_velocity"
	VelocityVariance     = "velocity_variance"
	VelocityMax          = "velocity_max"
	AvgAcceleration      = "avg_acceleration"
	AccelerationVariance = "acceleration_variance"
	AvgJerk              = "avg_jerk"
	JerkVariance         = "jerk_variance"

	AvgPressure      = "avg_pressure"
	PressureVariance = "pressure_variance"
	PressureMin      = "pressure_min"
	PressureMax      = "pressure_max"
	PressureRange    = "pressure_range"
	PressureCV       = "pressure_cv"

	TotalInkLength    = "total_ink_length"
	AvgSegmentLength  = "avg_segment_length"
	BoundingBoxWidth  = "bounding_box_width"
	BoundingBoxHeight = "bounding_box_height"
	BoundingBoxArea   = "bounding_box_area"
	AspectRatio       = "aspect_ratio"
	CanvasCoverage    = "canvas_coverage"
	CenterOffset      = "center_offset"
	StrokeCount       = "stroke_count"
	PointCount        = "point_count"

	PauseCount             = "pause_count"
	AvgPauseDuration       = "avg_pause_duration"
	MaxPauseDuration       = "max_pause_duration"
	TotalPauseTime         = "total_pause_time"
	AvgStrokeDuration      = "avg_stroke_duration"
	StrokeDurationVariance = "stroke_duration_variance"
	TotalTime              = "total_time"
	InkTimeRatio           = "ink_time_ratio"

	TremorIndex = "tremor_index"
)

// Task categories that share a stroke-based vocabulary.
const (
	CategoryDrawing    = "drawing"
	CategoryWriting    = "writing"
	CategorySequencing = "sequencing"
)

var vocabulary = []string{
	AvgVelocity, VelocityVariance, VelocityMax,
	AvgAcceleration, AccelerationVariance, AvgJerk, JerkVariance,
	AvgPressure, PressureVariance, PressureMin, PressureMax, PressureRange, PressureCV,
	TotalInkLength, AvgSegmentLength,
	BoundingBoxWidth, BoundingBoxHeight, BoundingBoxArea, AspectRatio,
	CanvasCoverage, CenterOffset, StrokeCount, PointCount,
	PauseCount, AvgPauseDuration, MaxPauseDuration, TotalPauseTime,
	AvgStrokeDuration, StrokeDurationVariance, TotalTime, InkTimeRatio,
	TremorIndex,
}

// Version returns the vocabulary version produced by Extract.
func Version() string {
	return ir.FeatureVocabularyVersion
}

// Vocabulary returns the feature keys of the current vocabulary in
// declaration order. The returned slice is a copy.
func Vocabulary() []string {
	out := make([]string, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// VocabularyFor returns the key list that applies to a task category.
// Every stroke-based category shares one vocabulary; an unknown category
// returns false.
func VocabularyFor(category string) ([]string, bool) {
	switch category {
	case CategoryDrawing, CategoryWriting, CategorySequencing, "":
		return Vocabulary(), true
	}
	return nil, false
}

// IsFeature reports whether key belongs to the current vocabulary.
func IsFeature(key string) bool {
	for _, k := range vocabulary {
		if k == key {
			return true
		}
	}
	return false
}

// zeroVector returns a vector with every key set to the sentinel 0.
func zeroVector() ir.FeatureVector {
	values := make(map[string]float64, len(vocabulary))
	for _, k := range vocabulary {
		values[k] = 0
	}
	return ir.FeatureVector{Version: ir.FeatureVocabularyVersion, Values: values}
}
