package ir

import "fmt"

// Kind identifies the concrete type of a Node.
type Kind int

const (
	KindAssign Kind = iota
	KindAdd
	KindMultAssign
	KindMultAdd
	KindRight
	KindInput
	KindOutput
	KindDbg
	KindIf
	KindLoop
	KindGlider
	KindDecMove
	KindMemMove
)

var kindNames = [...]string{
	KindAssign:     "assign",
	KindAdd:        "add",
	KindMultAssign: "mult_assign",
	KindMultAdd:    "mult_add",
	KindRight:      "right",
	KindInput:      "input",
	KindOutput:     "output",
	KindDbg:        "dbg",
	KindIf:         "if",
	KindLoop:       "loop",
	KindGlider:     "glider",
	KindDecMove:    "dec_move",
	KindMemMove:    "mem_move",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Node is a sealed interface: only the types in this file implement it.
type Node interface {
	Kind() Kind
	Accept(v Visitor) error
	fmt.Stringer
	node()
}

// Block is an ordered sequence of nodes executed with a common entry pointer.
type Block []Node

// Visitor has one method per node kind. Consumers that must handle every
// kind implement it so that a new kind fails to compile until handled.
type Visitor interface {
	VisitAssign(Assign) error
	VisitAdd(Add) error
	VisitMultAssign(MultAssign) error
	VisitMultAdd(MultAdd) error
	VisitRight(Right) error
	VisitInput(Input) error
	VisitOutput(Output) error
	VisitDbg(Dbg) error
	VisitIf(If) error
	VisitLoop(Loop) error
	VisitGlider(Glider) error
	VisitDecMove(DecMove) error
	VisitMemMove(MemMove) error
}

// Assign sets cell[Offset] to Value.
type Assign struct {
	Offset int
	Value  uint8
}

// Add adds Value to cell[Offset], wrapping mod 256.
type Add struct {
	Offset int
	Value  uint8
}

// MultAssign sets cell[Dest] to cell[Src] * Value.
type MultAssign struct {
	Src   int
	Dest  int
	Value uint8
}

// MultAdd adds cell[Src] * Value to cell[Dest].
type MultAdd struct {
	Src   int
	Dest  int
	Value uint8
}

// Right moves the pointer by Offset. After folding it only appears as a
// committed boundary before nested control flow or at the end of a block.
type Right struct {
	Offset int
}

// Input reads one byte into cell[Offset]; end of input stores 0.
type Input struct {
	Offset int
}

// Output writes cell[Offset] as one byte.
type Output struct {
	Offset int
}

// Dbg dumps the debug window with the pointer marked at Offset.
type Dbg struct {
	Offset int
}

// If executes Body once when the current cell is non-zero.
type If struct {
	Body Block
}

// Loop executes Body while the current cell is non-zero.
type Loop struct {
	Body Block
}

// Glider moves the pointer by Offset until the current cell equals Target.
type Glider struct {
	Offset int
	Target uint8
}

// DecMove takes dm = min(cell, MaxMoves), subtracts dm from the current cell
// and moves the pointer by Offset*dm. MaxMoves >= 255 means unbounded.
type DecMove struct {
	Offset   int
	MaxMoves int
}

// MemMove relocates Size cells from Src to Dest. Source cells outside the
// destination range are zeroed afterwards.
type MemMove struct {
	Src  int
	Dest int
	Size int
}

func (Assign) node()     {}
func (Add) node()        {}
func (MultAssign) node() {}
func (MultAdd) node()    {}
func (Right) node()      {}
func (Input) node()      {}
func (Output) node()     {}
func (Dbg) node()        {}
func (If) node()         {}
func (Loop) node()       {}
func (Glider) node()     {}
func (DecMove) node()    {}
func (MemMove) node()    {}

func (Assign) Kind() Kind     { return KindAssign }
func (Add) Kind() Kind        { return KindAdd }
func (MultAssign) Kind() Kind { return KindMultAssign }
func (MultAdd) Kind() Kind    { return KindMultAdd }
func (Right) Kind() Kind      { return KindRight }
func (Input) Kind() Kind      { return KindInput }
func (Output) Kind() Kind     { return KindOutput }
func (Dbg) Kind() Kind        { return KindDbg }
func (If) Kind() Kind         { return KindIf }
func (Loop) Kind() Kind       { return KindLoop }
func (Glider) Kind() Kind     { return KindGlider }
func (DecMove) Kind() Kind    { return KindDecMove }
func (MemMove) Kind() Kind    { return KindMemMove }

func (n Assign) Accept(v Visitor) error     { return v.VisitAssign(n) }
func (n Add) Accept(v Visitor) error        { return v.VisitAdd(n) }
func (n MultAssign) Accept(v Visitor) error { return v.VisitMultAssign(n) }
func (n MultAdd) Accept(v Visitor) error    { return v.VisitMultAdd(n) }
func (n Right) Accept(v Visitor) error      { return v.VisitRight(n) }
func (n Input) Accept(v Visitor) error      { return v.VisitInput(n) }
func (n Output) Accept(v Visitor) error     { return v.VisitOutput(n) }
func (n Dbg) Accept(v Visitor) error        { return v.VisitDbg(n) }
func (n If) Accept(v Visitor) error         { return v.VisitIf(n) }
func (n Loop) Accept(v Visitor) error       { return v.VisitLoop(n) }
func (n Glider) Accept(v Visitor) error     { return v.VisitGlider(n) }
func (n DecMove) Accept(v Visitor) error    { return v.VisitDecMove(n) }
func (n MemMove) Accept(v Visitor) error    { return v.VisitMemMove(n) }

// Wrap reduces an arbitrary delta to a cell value (mod 256).
func Wrap(n int) uint8 {
	return uint8(n)
}

// Signed returns the int8 view of a cell value, so 255 reads as -1.
func Signed(v uint8) int {
	return int(int8(v))
}

// NewAdd builds an Add from a signed delta.
func NewAdd(offset, delta int) Add {
	return Add{Offset: offset, Value: Wrap(delta)}
}

// NewMultAdd builds a MultAdd from a signed factor.
func NewMultAdd(src, dest, factor int) MultAdd {
	return MultAdd{Src: src, Dest: dest, Value: Wrap(factor)}
}

// NewMultAssign builds a MultAssign from a signed factor.
func NewMultAssign(src, dest, factor int) MultAssign {
	return MultAssign{Src: src, Dest: dest, Value: Wrap(factor)}
}

// ParseKind returns the Kind named s, accepting the snake_case names
// printed by Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}
