package optimize

import (
	"github.com/roach88/tapec/internal/ir"
)

// Fold applies one round of pointer-move cancellation, write fusion and loop
// reduction to b and every nested body it keeps.
//
// A running shift holds pointer motion not yet emitted; every offset written
// to the result is relative to the block entry pointer. The shift is
// committed as a Right before any node that observes the real pointer
// (If, Loop, Glider, DecMove) and at the end of the block.
func Fold(b ir.Block) ir.Block {
	f := &folder{out: make(ir.Block, 0, len(b))}
	for _, n := range b {
		f.fold(n)
	}
	f.commit()
	return f.out
}

type folder struct {
	out   ir.Block
	shift int
}

func (f *folder) last() ir.Node {
	if len(f.out) == 0 {
		return nil
	}
	return f.out[len(f.out)-1]
}

func (f *folder) replaceLast(n ir.Node) {
	f.out[len(f.out)-1] = n
}

func (f *folder) dropLast() {
	f.out = f.out[:len(f.out)-1]
}

func (f *folder) commit() {
	if f.shift != 0 {
		f.out = append(f.out, ir.Right{Offset: f.shift})
		f.shift = 0
	}
}

func (f *folder) fold(n ir.Node) {
	switch n := n.(type) {
	case ir.Right:
		f.shift += n.Offset

	case ir.Assign:
		off := n.Offset + f.shift
		if writes(f.last(), off) {
			f.dropLast()
		}
		f.out = append(f.out, ir.Assign{Offset: off, Value: n.Value})

	case ir.Add:
		off := n.Offset + f.shift
		switch prev := f.last().(type) {
		case ir.Add:
			if prev.Offset == off {
				if sum := prev.Value + n.Value; sum != 0 {
					f.replaceLast(ir.Add{Offset: off, Value: sum})
				} else {
					f.dropLast()
				}
				return
			}
		case ir.Assign:
			if prev.Offset == off {
				f.replaceLast(ir.Assign{Offset: off, Value: prev.Value + n.Value})
				return
			}
		}
		f.out = append(f.out, ir.Add{Offset: off, Value: n.Value})

	case ir.MultAssign:
		f.out = append(f.out, ir.MultAssign{Src: n.Src + f.shift, Dest: n.Dest + f.shift, Value: n.Value})

	case ir.MultAdd:
		src, dest := n.Src+f.shift, n.Dest+f.shift
		// Adding into a cell just zeroed is an assignment.
		if prev, ok := f.last().(ir.Assign); ok && prev.Offset == dest && prev.Value == 0 && src != dest {
			f.replaceLast(ir.MultAssign{Src: src, Dest: dest, Value: n.Value})
			return
		}
		f.out = append(f.out, ir.MultAdd{Src: src, Dest: dest, Value: n.Value})

	case ir.Input:
		f.out = append(f.out, ir.Input{Offset: n.Offset + f.shift})
	case ir.Output:
		f.out = append(f.out, ir.Output{Offset: n.Offset + f.shift})
	case ir.Dbg:
		f.out = append(f.out, ir.Dbg{Offset: n.Offset + f.shift})
	case ir.MemMove:
		f.out = append(f.out, ir.MemMove{Src: n.Src + f.shift, Dest: n.Dest + f.shift, Size: n.Size})

	case ir.Loop:
		f.commit()
		f.out = append(f.out, reduceLoop(n.Body)...)
	case ir.If:
		f.commit()
		f.out = append(f.out, ir.If{Body: Fold(n.Body)})
	case ir.Glider, ir.DecMove:
		f.commit()
		f.out = append(f.out, n)
	}
}

// reduceLoop tries the loop recognizers in priority order and falls back to
// keeping the loop with a folded body.
func reduceLoop(body ir.Block) ir.Block {
	if reduced, ok := ReduceSimpleLoop(body); ok {
		return reduced
	}
	if reduced, ok := ReduceComplexLoop(body); ok {
		return ir.Block{reduced}
	}
	if reduced, ok := ReduceIfLoop(body); ok {
		return ir.Block{reduced}
	}
	return ir.Block{ir.Loop{Body: Fold(body)}}
}

// writes reports whether n overwrites or updates the cell at off.
func writes(n ir.Node, off int) bool {
	switch n := n.(type) {
	case ir.Add:
		return n.Offset == off
	case ir.Assign:
		return n.Offset == off
	case ir.MultAdd:
		return n.Dest == off
	case ir.MultAssign:
		return n.Dest == off
	}
	return false
}

// Optimize applies Fold exactly rounds times.
func Optimize(b ir.Block, rounds int) ir.Block {
	for i := 0; i < rounds; i++ {
		b = Fold(b)
	}
	return b
}

// Fixpoint applies Fold until the output no longer changes or maxRounds
// is reached. It returns the result and the number of rounds applied.
func Fixpoint(b ir.Block, maxRounds int) (ir.Block, int) {
	for i := 0; i < maxRounds; i++ {
		next := Fold(b)
		if ir.EqualBlocks(b, next) {
			return next, i + 1
		}
		b = next
	}
	return b, maxRounds
}
