package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tapec/internal/ir"
	"github.com/roach88/tapec/internal/parser"
)

func run(t *testing.T, b ir.Block, in string) (*Machine, string) {
	t.Helper()
	var out bytes.Buffer
	m := New(64, 32, strings.NewReader(in), &out)
	require.NoError(t, m.Run(b))
	return m, out.String()
}

func TestRun_HelloByte(t *testing.T) {
	b, err := parser.Parse("++++++++[>++++++++<-]>+.")
	require.NoError(t, err)
	m, out := run(t, b, "")
	assert.Equal(t, "A", out)
	assert.Equal(t, 33, m.Ptr)
}

func TestRun_Echo(t *testing.T) {
	b, err := parser.Parse(",.,.,.")
	require.NoError(t, err)
	_, out := run(t, b, "hi")
	// End of input reads as zero.
	assert.Equal(t, "hi\x00", out)
}

func TestRun_Wraparound(t *testing.T) {
	m, _ := run(t, ir.Block{ir.NewAdd(0, -1), ir.NewAdd(1, 255), ir.NewAdd(1, 2)}, "")
	assert.Equal(t, byte(255), m.Tape[32])
	assert.Equal(t, byte(1), m.Tape[33])
}

func TestRun_MultiplyNodes(t *testing.T) {
	b := ir.Block{
		ir.Assign{Offset: 0, Value: 7},
		ir.Assign{Offset: 1, Value: 100},
		ir.NewMultAdd(0, 1, 3),
		ir.NewMultAssign(0, 2, -1),
	}
	m, _ := run(t, b, "")
	assert.Equal(t, byte(121), m.Tape[33])
	assert.Equal(t, byte(249), m.Tape[34])
}

func TestRun_IfRunsOnce(t *testing.T) {
	b := ir.Block{
		ir.Assign{Offset: 0, Value: 5},
		ir.If{Body: ir.Block{ir.NewAdd(1, 1)}},
		ir.Right{Offset: 2},
		ir.If{Body: ir.Block{ir.NewAdd(1, 1)}},
	}
	m, _ := run(t, b, "")
	assert.Equal(t, byte(1), m.Tape[33])
	assert.Equal(t, byte(0), m.Tape[35])
}

func TestRun_Glider(t *testing.T) {
	m := New(64, 32, nil, nil)
	m.Tape[26] = 253
	require.NoError(t, m.Run(ir.Block{ir.Glider{Offset: -3, Target: 253}}))
	assert.Equal(t, 26, m.Ptr)
}

func TestRun_DecMove(t *testing.T) {
	m := New(64, 10, nil, nil)
	m.Tape[10] = 4
	require.NoError(t, m.Run(ir.Block{ir.DecMove{Offset: 2, MaxMoves: 3}}))
	assert.Equal(t, byte(1), m.Tape[10])
	assert.Equal(t, 16, m.Ptr)

	m = New(64, 10, nil, nil)
	m.Tape[10] = 4
	require.NoError(t, m.Run(ir.Block{ir.DecMove{Offset: 2, MaxMoves: 255}}))
	assert.Equal(t, byte(0), m.Tape[10])
	assert.Equal(t, 18, m.Ptr)
}

func TestRun_MemMove(t *testing.T) {
	m := New(64, 10, nil, nil)
	copy(m.Tape[10:], []byte{1, 2, 3, 4})
	require.NoError(t, m.Run(ir.Block{ir.MemMove{Src: 0, Dest: 2, Size: 4}}))
	assert.Equal(t, []byte{0, 0, 1, 2, 3, 4}, m.Tape[10:16])
}

func TestRun_MemMoveLeft(t *testing.T) {
	m := New(64, 10, nil, nil)
	copy(m.Tape[11:], []byte{1, 2, 3})
	require.NoError(t, m.Run(ir.Block{ir.MemMove{Src: 1, Dest: 0, Size: 3}}))
	assert.Equal(t, []byte{1, 2, 3, 0}, m.Tape[10:14])
}

func TestRun_StepLimit(t *testing.T) {
	m := New(64, 32, nil, nil)
	m.StepLimit = 1000
	err := m.Run(ir.Block{ir.NewAdd(0, 1), ir.Loop{Body: ir.Block{ir.NewAdd(1, 1)}}})
	assert.ErrorIs(t, err, ErrStepLimit)
}

func TestRun_TapeBounds(t *testing.T) {
	m := New(8, 0, nil, nil)
	err := m.Run(ir.Block{ir.Right{Offset: -1}})
	assert.ErrorIs(t, err, ErrTapeBounds)

	m = New(8, 0, nil, nil)
	err = m.Run(ir.Block{ir.NewAdd(8, 1)})
	assert.ErrorIs(t, err, ErrTapeBounds)
}

func TestRun_DebugDump(t *testing.T) {
	var dbg bytes.Buffer
	m := New(32, 2, nil, nil)
	m.Debug = &dbg
	m.WindowStart, m.WindowEnd, m.BlockSize = 0, 6, 3
	m.Tape[3] = 7
	require.NoError(t, m.Run(ir.Block{ir.Dbg{Offset: 1}}))
	assert.Equal(t, "\nDBG OUTPUT:\n"+
		"   0    0    0 \n"+
		"*  7    0    0 \n", dbg.String())
}

func TestRun_DebugBudget(t *testing.T) {
	m := New(32, 0, nil, nil)
	m.DebugBudget = 2
	b := ir.Block{ir.Dbg{}, ir.NewAdd(0, 1), ir.Dbg{}, ir.NewAdd(0, 1)}
	err := m.Run(b)
	assert.ErrorIs(t, err, ErrDebugExit)
	assert.Equal(t, byte(1), m.Tape[0])
}

func TestWindow(t *testing.T) {
	m := New(8, 4, nil, nil)
	m.Tape[3], m.Tape[4] = 9, 8
	assert.Equal(t, []byte{9, 8, 0}, m.Window(4, -1, 3))
	assert.Equal(t, []byte{0, 0}, m.Window(4, 4, 2))
}
