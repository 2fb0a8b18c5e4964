package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tapec/internal/ir"
)

// render returns the statements for b without the surrounding program.
func render(t *testing.T, b ir.Block) string {
	t.Helper()
	var buf bytes.Buffer
	c := &cEmitter{emitter: emitter{w: &buf}}
	require.NoError(t, c.block(b))
	return buf.String()
}

func TestRender_Nodes(t *testing.T) {
	tests := []struct {
		name string
		node ir.Node
		want string
	}{
		{"assign", ir.Assign{Offset: 2, Value: 7}, "p[2] = 7u;\n"},
		{"increment", ir.NewAdd(0, 1), "p[0]++;\n"},
		{"decrement", ir.NewAdd(-1, -1), "p[-1]--;\n"},
		{"add", ir.NewAdd(3, 5), "p[3] += 5u;\n"},
		{"subtract", ir.NewAdd(3, -5), "p[3] -= 5u;\n"},
		{"subtract 128", ir.NewAdd(0, 128), "p[0] -= 128u;\n"},
		{"copy", ir.NewMultAssign(0, 4, 1), "p[4] = p[0];\n"},
		{"negate", ir.NewMultAssign(0, 4, -1), "p[4] = -p[0];\n"},
		{"scale", ir.NewMultAssign(0, 4, -3), "p[4] = p[0] * 253u;\n"},
		{"accumulate", ir.NewMultAdd(0, 1, 1), "p[1] += p[0];\n"},
		{"drain", ir.NewMultAdd(0, 1, -1), "p[1] -= p[0];\n"},
		{"accumulate scaled", ir.NewMultAdd(0, 1, 8), "p[1] += p[0] * 8u;\n"},
		{"drain scaled", ir.NewMultAdd(2, -1, -2), "p[-1] -= p[2] * 2u;\n"},
		{"step right", ir.Right{Offset: 1}, "p++;\n"},
		{"step left", ir.Right{Offset: -1}, "p--;\n"},
		{"jump right", ir.Right{Offset: 9}, "p += 9;\n"},
		{"jump left", ir.Right{Offset: -9}, "p -= 9;\n"},
		{"input", ir.Input{Offset: 1}, "p[1] = read_byte();\n"},
		{"output", ir.Output{Offset: -2}, "putchar(p[-2]);\n"},
		{"debug", ir.Dbg{Offset: 0}, "dbg(&p[0]);\n"},
		{"glider", ir.Glider{Offset: -3, Target: 253}, "while (*p != 253) {\n\tp -= 3;\n}\n"},
		{"decmove bounded", ir.DecMove{Offset: 1, MaxMoves: 22}, "dm = *p < 22 ? *p : 22;\n*p -= dm;\np += 1 * dm;\n"},
		{"decmove unbounded", ir.DecMove{Offset: -2, MaxMoves: 255}, "dm = *p;\n*p = 0;\np += -2 * dm;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, ir.Block{tt.node}))
		})
	}
}

func TestRender_Nested(t *testing.T) {
	b := ir.Block{
		ir.Loop{Body: ir.Block{
			ir.If{Body: ir.Block{ir.NewAdd(1, 1)}},
			ir.Right{Offset: 2},
		}},
	}
	want := "while (*p) {\n" +
		"\tif (*p) {\n" +
		"\t\tp[1]++;\n" +
		"\t}\n" +
		"\tp += 2;\n" +
		"}\n"
	assert.Equal(t, want, render(t, b))
}

func TestRender_MemMove(t *testing.T) {
	got := render(t, ir.Block{ir.MemMove{Src: 0, Dest: 2, Size: 12}})
	assert.Equal(t, "memmove(p + 2, p + 0, 12);\np[0] = 0;\np[1] = 0;\n", got)

	got = render(t, ir.Block{ir.MemMove{Src: -1, Dest: -3, Size: 11}})
	assert.Equal(t, "memmove(p - 3, p - 1, 11);\np[8] = 0;\np[9] = 0;\n", got)

	got = render(t, ir.Block{ir.MemMove{Src: 0, Dest: 20, Size: 2}})
	assert.Equal(t, "memmove(p + 20, p + 0, 2);\np[0] = 0;\np[1] = 0;\n", got)
}

func TestC_Program(t *testing.T) {
	b := ir.Block{
		ir.NewAdd(0, 8),
		ir.NewMultAdd(0, 1, 8),
		ir.Assign{Offset: 0, Value: 0},
		ir.NewAdd(1, 1),
		ir.Output{Offset: 1},
		ir.Right{Offset: 1},
	}
	code, err := C(b, DefaultOptions())
	require.NoError(t, err)
	assert.NotContains(t, code, "uint8_t dm;")

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "hello_byte", []byte(code))
}

func TestC_CustomLayoutWithDecMove(t *testing.T) {
	b := ir.Block{
		ir.DecMove{Offset: 2, MaxMoves: 30},
		ir.Loop{Body: ir.Block{ir.Dbg{Offset: -1}, ir.Right{Offset: -1}}},
	}
	opts := Options{TapeSize: 4096, Origin: 64, DebugStart: 0, DebugEnd: 18, DebugBlock: 6, DebugBudget: 5}
	code, err := C(b, opts)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "decmove_custom_layout", []byte(code))
}

func TestC_EmptyProgram(t *testing.T) {
	code, err := C(ir.Block{}, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(code, "\tuint8_t *p = &mem[1000];\n\n\n\treturn EXIT_SUCCESS;\n}\n"))
}

func TestC_NilNode(t *testing.T) {
	_, err := C(ir.Block{ir.NewAdd(0, 1), nil}, DefaultOptions())
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestOptions_Validate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	bad := []Options{
		{TapeSize: 0, Origin: 0, DebugBlock: 1, DebugBudget: 1},
		{TapeSize: 10, Origin: 10, DebugBlock: 1, DebugBudget: 1},
		{TapeSize: 10, Origin: 0, DebugBlock: 0, DebugBudget: 1},
		{TapeSize: 10, Origin: 0, DebugStart: 5, DebugEnd: 11, DebugBlock: 1, DebugBudget: 1},
		{TapeSize: 10, Origin: 0, DebugBlock: 1, DebugBudget: 0},
	}
	for _, o := range bad {
		assert.Error(t, o.Validate(), "%+v", o)
		_, err := C(ir.Block{}, o)
		assert.Error(t, err)
	}
}

type brokenWriter struct{ n int }

func (w *brokenWriter) Write(p []byte) (int, error) {
	if w.n <= 0 {
		return 0, assert.AnError
	}
	w.n--
	return len(p), nil
}

func TestWriteC_WriteError(t *testing.T) {
	err := WriteC(&brokenWriter{n: 1}, ir.Block{ir.NewAdd(0, 1)}, DefaultOptions())
	assert.Error(t, err)
}
