package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/graphomotor/internal/ingest"
	"github.com/roach88/graphomotor/internal/ir"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// squareExport returns an export of a closed 200px square drawn clockwise
// from (100,100), with wall-clock timestamps.
func squareExport(id, testType string) ingest.Export {
	corners := [][2]float64{{100, 100}, {300, 100}, {300, 300}, {100, 300}, {100, 100}}
	var pts []ingest.ExportPoint
	ts := 1760000000000.0
	for c := 0; c < 4; c++ {
		a, b := corners[c], corners[c+1]
		for k := 0; k < 4; k++ {
			f := float64(k) / 4
			pts = append(pts, ingest.ExportPoint{
				X: a[0] + (b[0]-a[0])*f, Y: a[1] + (b[1]-a[1])*f,
				Pressure: 0.5, Timestamp: ts,
			})
			ts += 16
		}
	}
	pts = append(pts, ingest.ExportPoint{X: 100, Y: 100, Pressure: 0.5, Timestamp: ts})

	return ingest.Export{
		ID:        id,
		TestType:  testType,
		CreatedAt: "2026-03-02T10:15:00Z",
		Data: ingest.ExportData{
			Strokes:    []ingest.ExportStroke{{Points: pts, StartTime: pts[0].Timestamp, EndTime: ts}},
			TotalTime:  1500,
			CanvasSize: ir.CanvasSize{Width: 400, Height: 400},
		},
	}
}

func writeExport(t *testing.T, dir, name string, e ingest.Export) string {
	t.Helper()
	data, err := json.Marshal(e)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// decodeResponse parses a JSON CLI response, decoding Data into data.
func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error}
}
