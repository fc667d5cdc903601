package features

import (
	"math"

	"github.com/roach88/graphomotor/internal/ir"
)

// DefaultPauseThresholdMs is the pen-up gap above which a pause is counted.
const DefaultPauseThresholdMs = 500

// Config holds the tunables of feature extraction.
type Config struct {
	// PauseThresholdMs is the gap between strokes, in milliseconds, that a
	// pause must strictly exceed.
	PauseThresholdMs float64 `json:"pause_threshold_ms" yaml:"pause_threshold_ms"`
}

// DefaultConfig returns the documented default configuration.
func DefaultConfig() Config {
	return Config{PauseThresholdMs: DefaultPauseThresholdMs}
}

// Check validates the configuration.
func (c Config) Check() error {
	if math.IsNaN(c.PauseThresholdMs) || math.IsInf(c.PauseThresholdMs, 0) || c.PauseThresholdMs < 0 {
		return ir.NewInvalidConfig("pause_threshold_ms", "must be a finite number >= 0, got %v", c.PauseThresholdMs)
	}
	return nil
}
