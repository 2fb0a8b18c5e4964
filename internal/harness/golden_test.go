package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"hello_byte", "glider", "move_chain"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "%v", result.Errors)
		})
	}
}

func TestAssertGolden_ExistingResult(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "hello_byte.yaml"))
	require.NoError(t, err)
	result, err := Run(s)
	require.NoError(t, err)

	AssertGolden(t, "hello_byte", result)
}
