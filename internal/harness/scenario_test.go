package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")

	content := `
name: test_scenario
description: "Test scenario for validation"
user: patient-1
prior_records:
  - {task_id: word_recall, score: 0.5, accuracy: 0.5, response_time_ms: 3000, error_count: 2}
steps:
  - task: clock_circle
    draw:
      - {shape: circle, x: 200, y: 200, r: 100}
    expect:
      passed: true
      features:
        tremor_index: {max: 0.01}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "patient-1", scenario.User)
	require.Len(t, scenario.PriorRecords, 1)
	assert.Equal(t, int64(3000), scenario.PriorRecords[0].ResponseTimeMs)
	require.Len(t, scenario.Steps, 1)
	assert.Equal(t, "clock_circle", scenario.Steps[0].Task)
	require.Len(t, scenario.Steps[0].Draw, 1)
	assert.Equal(t, ShapeCircle, scenario.Steps[0].Draw[0].Shape)
	require.NotNil(t, scenario.Steps[0].Expect.Passed)
	assert.True(t, *scenario.Steps[0].Expect.Passed)
	assert.Equal(t, dir, scenario.dir)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownFieldRejected(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: misspelled expect
steps:
  - task: clock_circle
    expects: {passed: true}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"missing name", "description: d\nsteps: [{task: t}]\n", "name is required"},
		{"missing description", "name: n\nsteps: [{task: t}]\n", "description is required"},
		{"no steps", "name: n\ndescription: d\n", "steps list is required"},
		{"session and draw", "name: n\ndescription: d\nsteps:\n  - {session: a.json, draw: [{shape: tap}]}\n", "mutually exclusive"},
		{"unknown shape", "name: n\ndescription: d\nsteps:\n  - draw: [{shape: star}]\n", "unknown shape"},
		{"circle without radius", "name: n\ndescription: d\nsteps:\n  - draw: [{shape: circle}]\n", "circle needs r > 0"},
		{"polygon with two sides", "name: n\ndescription: d\nsteps:\n  - draw: [{shape: polygon, r: 10, sides: 2}]\n", "sides >= 3"},
		{"short point", "name: n\ndescription: d\nsteps:\n  - draw: [{shape: points, points: [[1]]}]\n", "points[0]"},
		{"negative pause", "name: n\ndescription: d\nsteps:\n  - draw: [{shape: tap, pause_ms: -1}]\n", "must not be negative"},
		{"inverted range", "name: n\ndescription: d\nsteps:\n  - expect: {features: {pause_count: {min: 3, max: 1}}}\n", "above max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestScenarioPath(t *testing.T) {
	s := &Scenario{dir: "testdata/scenarios"}
	assert.Equal(t, filepath.Join("testdata/scenarios", "../sessions/a.json"), s.path("../sessions/a.json"))
	assert.Equal(t, "", s.path(""))
	assert.Equal(t, "/abs/x.json", s.path("/abs/x.json"))

	parsed := &Scenario{}
	assert.Equal(t, "rel.json", parsed.path("rel.json"))
}

func TestLoadScenario_AllFixturesParse(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	names := make(map[string]string)
	for _, p := range paths {
		s, err := LoadScenario(p)
		require.NoError(t, err, p)
		if prev, dup := names[s.Name]; dup {
			t.Fatalf("scenario name %q used by %s and %s", s.Name, prev, p)
		}
		names[s.Name] = p
	}
}
