package optimize

import (
	"sort"

	"github.com/roach88/tapec/internal/ir"
)

// ReduceSimpleLoop reduces a loop made only of Add and Right whose net pointer
// motion is zero and which decrements the tested cell by exactly one per
// iteration. Each other touched cell receives cell[0] times its per-iteration
// delta, then the tested cell is cleared:
//
//	[->+++>-<<]  =>  MultAdd(0, 1, +3) MultAdd(0, 2, -1) Assign(0, 0)
func ReduceSimpleLoop(body ir.Block) (ir.Block, bool) {
	deltas := make(map[int]uint8)
	shift := 0
	for _, n := range body {
		switch n := n.(type) {
		case ir.Add:
			deltas[n.Offset+shift] += n.Value
		case ir.Right:
			shift += n.Offset
		default:
			return nil, false
		}
	}
	if shift != 0 || deltas[0] != 0xFF {
		return nil, false
	}
	delete(deltas, 0)

	offsets := make([]int, 0, len(deltas))
	for off, d := range deltas {
		if d != 0 {
			offsets = append(offsets, off)
		}
	}
	sort.Ints(offsets)

	result := make(ir.Block, 0, len(offsets)+1)
	for _, off := range offsets {
		result = append(result, ir.MultAdd{Src: 0, Dest: off, Value: deltas[off]})
	}
	return append(result, ir.Assign{Offset: 0, Value: 0}), true
}

// ReduceComplexLoop turns a loop with no pointer motion, no I/O and no
// nesting into a single If. The tested cell must be decremented by exactly
// one per iteration and never otherwise written or read, so the loop runs
// cell[0] times; constant Adds elsewhere become MultAdd from cell[0].
//
// Every MultAdd/MultAssign source must be statically zero at the end of the
// body, so that iterations after the first read only what the iteration
// itself added. On top of that the rewrite is only linear in the trip
// count when:
//   - no source is offset 0 or its own destination
//   - a source is never read right after a non-zero Assign to it
//   - any cell that is reset (Assign/MultAssign) ends the body with an Assign
func ReduceComplexLoop(body ir.Block) (ir.If, bool) {
	result := make(ir.Block, 0, len(body)+1)
	var originDelta uint8
	clears := map[int]bool{0: true}

	for _, n := range body {
		switch n := n.(type) {
		case ir.Add:
			if n.Offset == 0 {
				originDelta += n.Value
				continue
			}
			delete(clears, n.Offset)
			result = append(result, ir.MultAdd{Src: 0, Dest: n.Offset, Value: n.Value})
		case ir.MultAdd:
			if n.Dest == 0 {
				return ir.If{}, false
			}
			delete(clears, n.Dest)
			result = append(result, n)
		case ir.MultAssign:
			if n.Dest == 0 {
				return ir.If{}, false
			}
			delete(clears, n.Dest)
			result = append(result, n)
		case ir.Assign:
			if n.Offset == 0 {
				return ir.If{}, false
			}
			if n.Value == 0 {
				clears[n.Offset] = true
			} else {
				delete(clears, n.Offset)
			}
			result = append(result, n)
		default:
			return ir.If{}, false
		}
	}

	if originDelta != 0xFF {
		return ir.If{}, false
	}
	for _, n := range result {
		if src, ok := source(n); ok && !clears[src] {
			return ir.If{}, false
		}
	}
	if !linearInTripCount(body) {
		return ir.If{}, false
	}

	return ir.If{Body: append(result, ir.Assign{Offset: 0, Value: 0})}, true
}

// linearInTripCount checks, over the original loop body, that running the
// reduced body once is the same as running the loop cell[0] times.
func linearInTripCount(b ir.Block) bool {
	// lastReset tracks the most recent reset of each cell in body order;
	// lastWrite tracks the final write of each cell.
	lastReset := make(map[int]ir.Node)
	lastWrite := make(map[int]ir.Node)

	for _, n := range b {
		if src, ok := source(n); ok {
			if src == 0 || src == dest(n) {
				return false
			}
			if a, ok := lastReset[src].(ir.Assign); ok && a.Value != 0 {
				return false
			}
		}
		switch n := n.(type) {
		case ir.Add:
			lastWrite[n.Offset] = n
		case ir.Assign:
			lastReset[n.Offset] = n
			lastWrite[n.Offset] = n
		case ir.MultAssign:
			lastReset[n.Dest] = n
			lastWrite[n.Dest] = n
		case ir.MultAdd:
			lastWrite[n.Dest] = n
		}
	}

	for off := range lastReset {
		if _, ok := lastWrite[off].(ir.Assign); !ok {
			return false
		}
	}
	return true
}

// ReduceIfLoop turns a loop that clears its own tested cell first into an
// If: with cell[0] zero after the first node and never touched again, the
// body runs at most once. Pointer motion and nested control flow reject.
func ReduceIfLoop(body ir.Block) (ir.If, bool) {
	if len(body) == 0 || !ir.Equal(body[0], ir.Assign{Offset: 0, Value: 0}) {
		return ir.If{}, false
	}

	for _, n := range body[1:] {
		switch n := n.(type) {
		case ir.Add:
			if n.Offset == 0 {
				return ir.If{}, false
			}
		case ir.Assign:
			if n.Offset == 0 {
				return ir.If{}, false
			}
		case ir.MultAdd:
			if n.Src == 0 || n.Dest == 0 {
				return ir.If{}, false
			}
		case ir.MultAssign:
			if n.Src == 0 || n.Dest == 0 {
				return ir.If{}, false
			}
		case ir.Input:
			if n.Offset == 0 {
				return ir.If{}, false
			}
		case ir.Output:
			if n.Offset == 0 {
				return ir.If{}, false
			}
		case ir.Dbg:
			if n.Offset == 0 {
				return ir.If{}, false
			}
		default:
			return ir.If{}, false
		}
	}

	return ir.If{Body: append(ir.Block{}, body...)}, true
}

// source returns the cell a multiply node reads.
func source(n ir.Node) (int, bool) {
	switch n := n.(type) {
	case ir.MultAdd:
		return n.Src, true
	case ir.MultAssign:
		return n.Src, true
	}
	return 0, false
}

// dest returns the cell a multiply node writes.
func dest(n ir.Node) int {
	switch n := n.(type) {
	case ir.MultAdd:
		return n.Dest
	case ir.MultAssign:
		return n.Dest
	}
	return 0
}
