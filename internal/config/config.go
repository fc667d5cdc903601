package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/graphomotor/internal/features"
	"github.com/roach88/graphomotor/internal/ir"
	"github.com/roach88/graphomotor/internal/risk"
	"github.com/roach88/graphomotor/internal/schema"
)

// DefaultWorkers is the batch parallelism when none is configured.
const DefaultWorkers = 4

// Config is a resolved configuration. It is passed explicitly to the
// components that need it.
type Config struct {
	Features features.Config
	Weights  risk.WeightTable
	Options  risk.Options

	// Workers bounds parallel analysis in batch mode.
	Workers int

	// Database is the sqlite path for persisted analyses. Empty disables persistence.
	Database string

	// ArchiveDir receives compressed raw captures. Empty disables archiving.
	ArchiveDir string

	// References is the task reference table path. Empty selects the built-in table.
	References string
}

// file mirrors the YAML layout. Pointers distinguish absent from zero.
type file struct {
	PauseThresholdMs  *float64          `yaml:"pause_threshold_ms"`
	IncludeDegenerate *bool             `yaml:"include_degenerate"`
	Workers           *int              `yaml:"workers"`
	Database          *string           `yaml:"database"`
	ArchiveDir        *string           `yaml:"archive_dir"`
	References        *string           `yaml:"references"`
	Weights           *risk.WeightTable `yaml:"weights"`
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		Features: features.DefaultConfig(),
		Weights:  risk.DefaultWeights(),
		Workers:  DefaultWorkers,
	}
}

// Load reads path and overlays it on the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes a YAML configuration document. name is used in error
// positions.
func Parse(name string, data []byte) (Config, error) {
	var f file
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, ir.NewInvalidConfig("", "failed to parse YAML: %v", err)
	}

	if err := schema.ValidateYAML(schema.Config, name, data); err != nil {
		return Config{}, schemaError(err)
	}

	cfg := Default()
	if f.PauseThresholdMs != nil {
		cfg.Features.PauseThresholdMs = *f.PauseThresholdMs
	}
	if f.IncludeDegenerate != nil {
		cfg.Options.IncludeDegenerate = *f.IncludeDegenerate
	}
	if f.Workers != nil {
		cfg.Workers = *f.Workers
	}
	if f.Database != nil {
		cfg.Database = *f.Database
	}
	if f.ArchiveDir != nil {
		cfg.ArchiveDir = *f.ArchiveDir
	}
	if f.References != nil {
		cfg.References = *f.References
	}
	if f.Weights != nil {
		cfg.Weights = *f.Weights
		if cfg.Weights.TopN == 0 {
			cfg.Weights.TopN = risk.DefaultTopN
		}
	}

	if err := cfg.Check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Check validates the configuration against the current feature vocabulary.
func (c Config) Check() error {
	if err := c.Features.Check(); err != nil {
		return err
	}
	if c.Weights.Vocabulary != features.Version() {
		return ir.NewInvalidConfig("weights.vocabulary",
			"weight table references vocabulary %q, extractor provides %q", c.Weights.Vocabulary, features.Version())
	}
	if err := c.Weights.Check(features.Vocabulary()); err != nil {
		return err
	}
	if c.Workers < 1 {
		return ir.NewInvalidConfig("workers", "must be at least 1, got %d", c.Workers)
	}
	return nil
}

func schemaError(err error) error {
	var se *schema.Error
	if !errors.As(err, &se) {
		return ir.NewInvalidConfig("", "%v", err)
	}
	ae := ir.NewInvalidConfig(se.Field, "%s", se.Message)
	if se.Pos.IsValid() {
		ae.Details = map[string]string{"pos": se.Pos.String()}
	}
	return ae
}
