package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/graphomotor/internal/ir"
	"github.com/roach88/graphomotor/internal/schema"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(map[string]string{"tier": "low"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("INVALID_INPUT", "session rejected", map[string]string{"field": "canvas.width"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Equal(t, "session rejected", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Error("UNSUPPORTED_TASK", "no reference for maze", map[string]string{"task": "maze"}))
	assert.Contains(t, buf.String(), "Error [UNSUPPORTED_TASK]: no reference for maze")
	assert.NotContains(t, buf.String(), "Details:")

	buf.Reset()
	formatter.Verbose = true
	require.NoError(t, formatter.Error("UNSUPPORTED_TASK", "no reference for maze", map[string]string{"task": "maze"}))
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			diag := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: diag,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("archived %s", "s1.json.zst")

			assert.Empty(t, out.String())
			if tt.wantLog {
				assert.Contains(t, diag.String(), "archived s1.json.zst")
			} else {
				assert.Empty(t, diag.String())
			}
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	cause := fmt.Errorf("input 0: %w", ir.NewInvalidInput("strokes[0].points[1].pressure", "must be in [0,1], got 2"))
	err := formatter.Fail(ExitFailure, "analysis failed", cause)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, ir.IsInvalidInput(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "analysis failed: input 0:")
	assert.Equal(t, map[string]any{"field": "strokes[0].points[1].pressure"}, resp.Error.Details)
}

func TestClassify(t *testing.T) {
	code, details := classify(ir.NewUnsupportedTask("maze"))
	assert.Equal(t, "UNSUPPORTED_TASK", code)
	assert.Equal(t, map[string]string{"task": "maze"}, details)

	code, details = classify(&schema.Error{Field: "workers", Message: "invalid value 0"})
	assert.Equal(t, CodeSchema, code)
	assert.Equal(t, map[string]string{"field": "workers"}, details)

	code, details = classify(errors.New("disk full"))
	assert.Equal(t, CodeCommand, code)
	assert.Nil(t, details)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "no such file")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", WrapExitError(ExitCommandError, "db", errors.New("locked")))))
}

func TestOutputFormatter_FailTextWritesNothing(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Fail(ExitFailure, "invalid configuration", ir.NewInvalidConfig("workers", "must be at least 1"))
	require.Error(t, err)
	assert.Empty(t, buf.String())
	assert.Equal(t, "invalid configuration: INVALID_CONFIG: must be at least 1 (field=workers)", err.Error())
}
