package testutil

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balanced(src string) bool {
	depth := 0
	for _, c := range src {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

func TestRandomProgram_Deterministic(t *testing.T) {
	assert.Equal(t, RandomProgram(42, 60), RandomProgram(42, 60))
	assert.NotEqual(t, RandomProgram(1, 60), RandomProgram(2, 60))
}

func TestRandomProgram_Balanced(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		src := RandomProgram(seed, 80)
		require.True(t, balanced(src), "seed %d: %q", seed, src)
	}
}

func TestMoveChain(t *testing.T) {
	assert.Equal(t, ">>>[-]<[->+<]<[->+<]<[->+<]", MoveChain(3))
	assert.True(t, balanced(MoveChain(12)))
	assert.Equal(t, 12, strings.Count(MoveChain(12), "[->+<]"))
}

func TestDecMoveNest(t *testing.T) {
	assert.Equal(t, "[-[-[-]>]>]", DecMoveNest(2, 1))
	assert.Equal(t, "[-[-]>>]", DecMoveNest(1, 2))
}

func TestSequentialIDs(t *testing.T) {
	ids := NewSequentialIDs("")
	assert.Equal(t, "run-0001", ids.Generate())
	assert.Equal(t, "run-0002", ids.Generate())

	custom := NewSequentialIDs("test")
	assert.Equal(t, "test-0001", custom.Generate())
}

func TestSequentialIDs_Concurrent(t *testing.T) {
	ids := NewSequentialIDs("c")
	seen := make(map[string]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := ids.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 500)
}
