package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CompilesEmbeddedSchema(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestValidateYAML_ConfigAccepted(t *testing.T) {
	doc := []byte(`
pause_threshold_ms: 400
workers: 4
weights:
  version: w2
  vocabulary: fv1
  thresholds:
    moderate: 0.2
    elevated: 0.5
  features:
    tremor_index: {weight: 0.2, baseline: 0.05, scale: 0.1}
`)
	assert.NoError(t, ValidateYAML(Config, "config.yaml", doc))
}

func TestValidateYAML_EmptyConfigAccepted(t *testing.T) {
	assert.NoError(t, ValidateYAML(Config, "config.yaml", []byte("{}\n")))
}

func TestValidateYAML_ConfigRejections(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"negative pause threshold", "pause_threshold_ms: -1\n"},
		{"zero workers", "workers: 0\n"},
		{"unknown field", "colour: blue\n"},
		{"string workers", "workers: four\n"},
		{"elevated below moderate", `
weights:
  version: w2
  vocabulary: fv1
  thresholds: {moderate: 0.6, elevated: 0.3}
  features: {}
`},
		{"missing baseline", `
weights:
  version: w2
  vocabulary: fv1
  thresholds: {moderate: 0.3, elevated: 0.6}
  features:
    tremor_index: {weight: 0.2, scale: 0.1}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateYAML(Config, "config.yaml", []byte(tt.doc))
			require.Error(t, err)
			var se *Error
			assert.True(t, errors.As(err, &se), "want *schema.Error, got %T", err)
		})
	}
}

func TestValidateYAML_ErrorPositionInDataFile(t *testing.T) {
	doc := []byte("workers: 2\npause_threshold_ms: -5\n")
	err := ValidateYAML(Config, "cfg.yaml", doc)
	require.Error(t, err)

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "pause_threshold_ms", se.Field)
	if se.Pos.IsValid() && se.Pos.Filename() == "cfg.yaml" {
		assert.Equal(t, 2, se.Pos.Line())
	}
	assert.Contains(t, se.Error(), "pause_threshold_ms")
}

func TestValidateYAML_References(t *testing.T) {
	good := []byte(`
version: r1
tasks:
  clock_circle:
    kind: shape
    shape: {primitive: circle}
  word_recall:
    kind: tokens
    tokens: [APPLE, CAR]
  trail:
    kind: sequence
    sequence:
      - {label: "1", x: 10, y: 10, radius: 5}
      - {label: A, x: 40, y: 10, radius: 5}
`)
	assert.NoError(t, ValidateYAML(References, "tasks.yaml", good))

	bad := []struct {
		name string
		doc  string
	}{
		{"missing version", "tasks: {}\n"},
		{"unknown kind", "version: r1\ntasks:\n  t: {kind: maze}\n"},
		{"threshold above one", "version: r1\ntasks:\n  t: {kind: tokens, tokens: [A], threshold: 1.5}\n"},
		{"unknown primitive", "version: r1\ntasks:\n  t: {kind: shape, shape: {primitive: star}}\n"},
		{"negative radius", "version: r1\ntasks:\n  t:\n    kind: sequence\n    sequence: [{label: A, radius: -1}, {label: B}]\n"},
		{"unknown task field", "version: r1\ntasks:\n  t: {kind: tokens, tokens: [A], colour: red}\n"},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateYAML(References, "tasks.yaml", []byte(tt.doc)))
		})
	}
}

func TestValidateYAML_UnknownDefinition(t *testing.T) {
	err := ValidateYAML(Definition("#Nope"), "x.yaml", []byte("{}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown definition")
}

func TestError_Format(t *testing.T) {
	assert.Equal(t, "workers: too small", (&Error{Field: "workers", Message: "too small"}).Error())
	assert.Equal(t, "bad", (&Error{Message: "bad"}).Error())
}
