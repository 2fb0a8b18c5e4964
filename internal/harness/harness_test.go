package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tapec/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func TestRun_Scenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v\noptimized:\n%s", result.Errors, result.Optimized)
		})
	}
}

func TestRun_ReportsExpectMismatch(t *testing.T) {
	result, err := Run(&Scenario{
		Name:   "mismatch",
		Source: "++.>",
		Expect: &Expect{
			Output:  ptr("\x03"),
			Pointer: ptr(0),
			Cells:   map[int]int{0: 2},
		},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, "\x02", result.Output)
	assert.Equal(t, 1, result.Pointer)
	assert.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "expect.output")
	assert.Contains(t, result.Errors[1], "expect.pointer")
}

func TestRun_SyntaxErrorIsReturned(t *testing.T) {
	_, err := Run(&Scenario{Name: "bad", Source: "+["})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile")
}

func TestRun_RawFaultIsReturned(t *testing.T) {
	_, err := Run(&Scenario{Name: "spin", Source: "+[]", StepLimit: 1000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "raw program")
}

func TestRun_TapeOffsetOutsideTape(t *testing.T) {
	_, err := Run(&Scenario{Name: "far", Source: "+", Tape: map[int]int{origin: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the tape")
}

func TestRun_DebugDumpMatchesWindow(t *testing.T) {
	result, err := Run(&Scenario{Name: "dbg", Source: "+++@"})
	require.NoError(t, err)
	require.True(t, result.Pass, "%v", result.Errors)
	assert.Contains(t, result.Debug, "\nDBG OUTPUT:\n*  3 ")
}

func TestRun_RandomProgramsAgree(t *testing.T) {
	ran := 0
	for seed := int64(0); seed < 60; seed++ {
		result, err := Run(&Scenario{
			Name:      "random",
			Source:    testutil.RandomProgram(seed, 40),
			Input:     "abc",
			StepLimit: 100000,
		})
		if err != nil {
			// Raw program faulted or ran too long; nothing to compare.
			continue
		}
		ran++
		assert.True(t, result.Pass, "seed %d: %v", seed, result.Errors)
	}
	assert.Greater(t, ran, 5)
}
