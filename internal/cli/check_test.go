package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_Defaults(t *testing.T) {
	out, _, err := execute(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "config (built-in): ok (weights w1, vocabulary fv1)")
	assert.Contains(t, out, "references (built-in): ok (version r1, 8 tasks)")
}

func TestCheck_DefaultsJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "check")
	require.NoError(t, err)

	var result CheckResult
	decodeResponse(t, out, &result)
	assert.Equal(t, "w1", result.WeightsVersion)
	assert.Equal(t, "fv1", result.Vocabulary)
	assert.Equal(t, "r1", result.TableVersion)
	assert.Contains(t, result.Tasks, "trail_making")
	assert.Len(t, result.Tasks, 8)
}

func TestCheck_ConfigNamesReferences(t *testing.T) {
	dir := t.TempDir()
	refs := writeFile(t, dir, "tasks.yaml", `version: custom-1
tasks:
  ring:
    kind: shape
    shape: {primitive: circle}
`)
	cfg := writeFile(t, dir, "config.yaml", "references: "+refs+"\n")

	out, _, err := execute(t, "--format", "json", "check", "--config", cfg)
	require.NoError(t, err)

	var result CheckResult
	decodeResponse(t, out, &result)
	assert.Equal(t, refs, result.References)
	assert.Equal(t, "custom-1", result.TableVersion)
	assert.Equal(t, []string{"ring"}, result.Tasks)
}

func TestCheck_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", "pause_threshold_ms: 250\nworkers: 0\n")

	out, _, err := execute(t, "--format", "json", "check", "--config", cfg)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_CONFIG", resp.Error.Code)
}

func TestCheck_UnknownConfigField(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", "pause_treshold_ms: 250\n")

	_, _, err := execute(t, "check", "--config", cfg)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestCheck_MalformedReferences(t *testing.T) {
	dir := t.TempDir()
	refs := writeFile(t, dir, "tasks.yaml", `version: r2
tasks:
  recall:
    kind: tokens
`)

	out, _, err := execute(t, "--format", "json", "check", "--references", refs)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MALFORMED_REFERENCE", resp.Error.Code)
}

func TestCheck_MissingFile(t *testing.T) {
	_, _, err := execute(t, "check", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
