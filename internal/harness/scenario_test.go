package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: test_scenario
description: "Test scenario for validation"
source: "+[->+<]"
input: "x"
tape:
  -1: 7
options:
  fixpoint: true
expect:
  output: ""
  pointer: 0
  cells:
    1: 1
assertions:
  - type: absent
    kind: loop
  - type: code_contains
    text: "p[1]"
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "+[->+<]", scenario.Source)
	assert.Equal(t, "x", scenario.Input)
	assert.Equal(t, map[int]int{-1: 7}, scenario.Tape)
	assert.True(t, scenario.Options.Fixpoint)
	assert.False(t, scenario.Options.DecMove)
	require.NotNil(t, scenario.Expect)
	require.NotNil(t, scenario.Expect.Output)
	assert.Equal(t, "", *scenario.Expect.Output)
	require.NotNil(t, scenario.Expect.Pointer)
	assert.Equal(t, 0, *scenario.Expect.Pointer)
	assert.Equal(t, map[int]int{1: 1}, scenario.Expect.Cells)
	require.Len(t, scenario.Assertions, 2)
	assert.Equal(t, AssertAbsent, scenario.Assertions[0].Type)
	assert.Equal(t, "loop", scenario.Assertions[0].Kind)
}

func TestLoadScenario_SourceFileRelative(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "programs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "programs", "p.b"), []byte("++."), 0644))
	path := writeScenario(t, dir, `
name: from_file
description: "Program loaded from a file"
source_file: programs/p.b
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "++.", scenario.Source)
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown field", "name: x\ndescription: d\nsource: \"+\"\nasertions: []\n", "field asertions not found"},
		{"missing name", "description: d\nsource: \"+\"\n", "name is required"},
		{"missing description", "name: x\nsource: \"+\"\n", "description is required"},
		{"missing source", "name: x\ndescription: d\n", "source or source_file is required"},
		{"missing source file", "name: x\ndescription: d\nsource_file: nope.b\n", "source_file"},
		{"tape value", "name: x\ndescription: d\nsource: \"+\"\ntape:\n  0: 256\n", "is not a byte"},
		{"expect cell value", "name: x\ndescription: d\nsource: \"+\"\nexpect:\n  cells:\n    0: -1\n", "is not a byte"},
		{"negative step limit", "name: x\ndescription: d\nsource: \"+\"\nstep_limit: -1\n", "step_limit"},
		{"assertion without type", "name: x\ndescription: d\nsource: \"+\"\nassertions:\n  - kind: loop\n", "type is required"},
		{"unknown assertion", "name: x\ndescription: d\nsource: \"+\"\nassertions:\n  - type: trace_order\n", "unknown assertion type"},
		{"unknown kind", "name: x\ndescription: d\nsource: \"+\"\nassertions:\n  - type: contains\n    kind: Loop\n", "unknown node kind"},
		{"code_contains without text", "name: x\ndescription: d\nsource: \"+\"\nassertions:\n  - type: code_contains\n", "text is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, t.TempDir(), tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenarios_Testdata(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	assert.Contains(t, names, "hello_byte")
	assert.Contains(t, names, "move_chain")
}
