package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	assert.Equal(t, uint8(255), Wrap(-1))
	assert.Equal(t, uint8(0), Wrap(256))
	assert.Equal(t, uint8(1), Wrap(257))
	assert.Equal(t, uint8(253), Wrap(-3))
}

func TestSigned(t *testing.T) {
	assert.Equal(t, -1, Signed(255))
	assert.Equal(t, 1, Signed(1))
	assert.Equal(t, -128, Signed(128))
	assert.Equal(t, 127, Signed(127))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "mult_add", KindMultAdd.String())
	assert.Equal(t, "mem_move", KindMemMove.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Node
		want bool
	}{
		{"same add", NewAdd(0, -1), Add{Offset: 0, Value: 255}, true},
		{"different offset", NewAdd(0, 1), NewAdd(1, 1), false},
		{"different kind same fields", Input{Offset: 2}, Output{Offset: 2}, false},
		{"assign vs add", Assign{0, 1}, Add{0, 1}, false},
		{"empty loops", Loop{}, Loop{Body: Block{}}, true},
		{"loop vs if", Loop{Body: Block{NewAdd(0, 1)}}, If{Body: Block{NewAdd(0, 1)}}, false},
		{"add vs loop", NewAdd(0, 1), Loop{Body: Block{NewAdd(0, 1)}}, false},
		{
			"nested loops",
			Loop{Body: Block{Right{1}, Loop{Body: Block{NewAdd(0, -1)}}}},
			Loop{Body: Block{Right{1}, Loop{Body: Block{NewAdd(0, -1)}}}},
			true,
		},
		{
			"nested loops differ deep",
			Loop{Body: Block{Loop{Body: Block{NewAdd(0, -1)}}}},
			Loop{Body: Block{Loop{Body: Block{NewAdd(0, 1)}}}},
			false,
		},
		{"nil vs node", nil, Right{1}, false},
		{"nil vs nil", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a))
		})
	}
}

func TestEqualBlocksLength(t *testing.T) {
	assert.False(t, EqualBlocks(Block{Right{1}}, Block{Right{1}, Right{1}}))
	assert.True(t, EqualBlocks(nil, Block{}))
}

func TestStringForms(t *testing.T) {
	assert.Equal(t, "Add(3, -1)", NewAdd(3, -1).String())
	assert.Equal(t, "Assign(0, 0)", Assign{}.String())
	assert.Equal(t, "MultAdd(0, 1, +2)", NewMultAdd(0, 1, 2).String())
	assert.Equal(t, "Glider(-3, 253)", Glider{Offset: -3, Target: 253}.String())
	assert.Equal(t, "MemMove(0, -1, 11)", MemMove{Src: 0, Dest: -1, Size: 11}.String())
}

func TestSprint(t *testing.T) {
	b := Block{
		Right{2},
		Loop{Body: Block{NewAdd(0, -1), If{Body: Block{Output{1}}}}},
	}
	want := "Right(+2)\n" +
		"Loop {\n" +
		"  Add(0, -1)\n" +
		"  If {\n" +
		"    Output(1)\n" +
		"  }\n" +
		"}\n"
	assert.Equal(t, want, Sprint(b))
}

func TestInspectAndCount(t *testing.T) {
	b := Block{
		NewAdd(0, 1),
		Loop{Body: Block{NewAdd(0, -1), Loop{Body: Block{Right{1}}}}},
		Output{0},
	}
	assert.Equal(t, 6, Count(b))
	assert.True(t, Contains(b, KindRight))
	assert.False(t, Contains(b, KindDecMove))

	h := Histogram(b)
	assert.Equal(t, 2, h[KindLoop])
	assert.Equal(t, 2, h[KindAdd])

	// Skipping bodies stops descent.
	var top int
	Inspect(b, func(Node) bool {
		top++
		return false
	})
	assert.Equal(t, 3, top)
}

type countingVisitor struct {
	kinds []Kind
}

func (c *countingVisitor) record(n Node) error {
	c.kinds = append(c.kinds, n.Kind())
	return nil
}

func (c *countingVisitor) VisitAssign(n Assign) error         { return c.record(n) }
func (c *countingVisitor) VisitAdd(n Add) error               { return c.record(n) }
func (c *countingVisitor) VisitMultAssign(n MultAssign) error { return c.record(n) }
func (c *countingVisitor) VisitMultAdd(n MultAdd) error       { return c.record(n) }
func (c *countingVisitor) VisitRight(n Right) error           { return c.record(n) }
func (c *countingVisitor) VisitInput(n Input) error           { return c.record(n) }
func (c *countingVisitor) VisitOutput(n Output) error         { return c.record(n) }
func (c *countingVisitor) VisitDbg(n Dbg) error               { return c.record(n) }
func (c *countingVisitor) VisitIf(n If) error                 { return c.record(n) }
func (c *countingVisitor) VisitLoop(n Loop) error             { return c.record(n) }
func (c *countingVisitor) VisitGlider(n Glider) error         { return c.record(n) }
func (c *countingVisitor) VisitDecMove(n DecMove) error       { return c.record(n) }
func (c *countingVisitor) VisitMemMove(n MemMove) error       { return c.record(n) }

func TestAcceptDispatchesByKind(t *testing.T) {
	nodes := Block{
		Assign{}, Add{}, MultAssign{}, MultAdd{}, Right{}, Input{}, Output{}, Dbg{},
		If{}, Loop{}, Glider{}, DecMove{}, MemMove{},
	}
	v := &countingVisitor{}
	for _, n := range nodes {
		assert.NoError(t, n.Accept(v))
	}
	for i, n := range nodes {
		assert.Equal(t, n.Kind(), v.kinds[i])
		assert.Equal(t, Kind(i), n.Kind())
	}
}
