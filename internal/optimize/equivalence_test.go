package optimize_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tapec/internal/interp"
	"github.com/roach88/tapec/internal/ir"
	"github.com/roach88/tapec/internal/optimize"
	"github.com/roach88/tapec/internal/parser"
	"github.com/roach88/tapec/internal/testutil"
)

const (
	tapeSize  = 1 << 16
	origin    = 1 << 15
	stepLimit = 200000
	input     = "tapec"
)

type outcome struct {
	out   string
	debug string
	tape  []byte
	ptr   int
	err   error
}

func execute(b ir.Block, tape []byte, limit int64) outcome {
	var out, debug bytes.Buffer
	m := interp.New(tapeSize, origin, strings.NewReader(input), &out)
	copy(m.Tape, tape)
	m.Debug = &debug
	m.WindowStart = origin - 9
	m.WindowEnd = origin + 18
	m.StepLimit = limit
	err := m.Run(b)
	if errors.Is(err, interp.ErrDebugExit) {
		err = nil
	}
	return outcome{out: out.String(), debug: debug.String(), tape: m.Tape, ptr: m.Ptr, err: err}
}

// seedTape fills the cells around the origin so loops see non-zero data, and
// plants the markers the generator's scan idioms look for so they stop
// inside the tape.
func seedTape(seed int64) []byte {
	tape := make([]byte, tapeSize)
	tape[origin-200] = 255
	tape[origin+200] = 255
	for i := origin - 302; i <= origin-300; i++ {
		tape[i] = 254
	}
	x := uint32(seed)*2654435761 + 1
	for i := origin - 64; i < origin+64; i++ {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		if x%3 == 0 {
			tape[i] = byte(x >> 8)
		}
	}
	return tape
}

func checkEquivalent(t *testing.T, seed int64, src string, cfg optimize.Config) bool {
	t.Helper()
	raw, err := parser.Parse(src)
	require.NoError(t, err)

	tape := seedTape(seed)
	want := execute(raw, tape, stepLimit)
	if want.err != nil {
		return false
	}

	opt, err := optimize.Run(raw, optimize.Passes(cfg), cfg)
	require.NoError(t, err)
	got := execute(opt, tape, 2*stepLimit)

	require.NoError(t, got.err, "seed %d: %q", seed, src)
	assert.Equal(t, want.out, got.out, "output, seed %d: %q", seed, src)
	assert.Equal(t, want.debug, got.debug, "debug dump, seed %d: %q", seed, src)
	assert.Equal(t, want.ptr, got.ptr, "pointer, seed %d: %q", seed, src)
	assert.True(t, bytes.Equal(want.tape, got.tape), "tape, seed %d: %q\n%s", seed, src, ir.Sprint(opt))
	return true
}

func TestOptimizedMatchesRaw(t *testing.T) {
	cfg := optimize.DefaultConfig()
	checked := 0
	for seed := int64(0); seed < 400; seed++ {
		if checkEquivalent(t, seed, testutil.RandomProgram(seed, 50), cfg) {
			checked++
		}
	}
	// Most programs finish inside the step limit; a collapse here means the
	// generator or the interpreter changed, not the optimizer.
	assert.Greater(t, checked, 40)
}

func TestOptimizedMatchesRaw_Fixpoint(t *testing.T) {
	cfg := optimize.DefaultConfig()
	cfg.Mode = optimize.ModeFixpoint
	for seed := int64(1000); seed < 1200; seed++ {
		checkEquivalent(t, seed, testutil.RandomProgram(seed, 50), cfg)
	}
}

func TestOptimizedMatchesRaw_Idioms(t *testing.T) {
	cfg := optimize.DefaultConfig()
	for i, src := range []string{
		testutil.MoveChain(11),
		testutil.MoveChain(16),
		">>>>>>>>>>>>" + testutil.MoveChain(11) + "<<<<<",
		"<<<<<<[-]--->>>>>>+++[---<<<+++]---",
		"[-]>>>>[-]-<<<<+[->+]-",
		"[->+>[-]<<]",
		"[->+<]>[-<++>]<",
		"[[-]>+.<]",
		">[-]<[->+<]",
		"++++++++[>++++++++<-]>+.",
	} {
		require.True(t, checkEquivalent(t, int64(i), src, cfg), "raw run failed: %q", src)
	}
}
