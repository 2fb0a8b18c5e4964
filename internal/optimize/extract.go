package optimize

import (
	"github.com/roach88/tapec/internal/ir"
)

// matcher tries to match an idiom starting at b[i]. On success it returns the
// replacement node and the index just past the matched span.
type matcher func(b ir.Block, i int) (ir.Node, int, bool)

// extract scans b left to right, replacing every span match accepts and
// recursing into the bodies of nodes it leaves in place.
func extract(b ir.Block, match matcher) ir.Block {
	result := make(ir.Block, 0, len(b))
	for i := 0; i < len(b); {
		if n, next, ok := match(b, i); ok {
			result = append(result, n)
			i = next
			continue
		}
		switch n := b[i].(type) {
		case ir.Loop:
			result = append(result, ir.Loop{Body: extract(n.Body, match)})
		case ir.If:
			result = append(result, ir.If{Body: extract(n.Body, match)})
		default:
			result = append(result, n)
		}
		i++
	}
	return result
}

// countRun counts consecutive nodes equal to want starting at b[i].
func countRun(b ir.Block, i int, want ir.Node) int {
	count := 0
	for i+count < len(b) && ir.Equal(b[i+count], want) {
		count++
	}
	return count
}

var (
	inc       = ir.NewAdd(0, 1)
	dec       = ir.NewAdd(0, -1)
	stepRight = ir.Right{Offset: 1}
	stepLeft  = ir.Right{Offset: -1}
)

// ExtractGliders replaces the scan idiom
//
//	+^k [ -^k (>^a | <^b) +^k ] -^k
//
// with Glider(a-b, 256-k): move the pointer by a-b until the current cell
// holds 256-k. It runs on raw parser output, before Fold.
func ExtractGliders(b ir.Block) ir.Block {
	return extract(b, matchGlider)
}

func matchGlider(b ir.Block, i int) (ir.Node, int, bool) {
	k := countRun(b, i, inc)
	if k == 0 || i+k >= len(b) {
		return nil, 0, false
	}
	loop, ok := b[i+k].(ir.Loop)
	if !ok {
		return nil, 0, false
	}

	body := loop.Body
	if countRun(body, 0, dec) != k {
		return nil, 0, false
	}
	right := countRun(body, k, stepRight)
	left := countRun(body, k, stepLeft)
	steps := right + left
	if countRun(body, k+steps, inc) != k || k+steps+k != len(body) {
		return nil, 0, false
	}

	after := i + k + 1
	if min(countRun(b, after, dec), k) != k {
		return nil, 0, false
	}
	return ir.Glider{Offset: right - left, Target: ir.Wrap(-k)}, after + k, true
}

// ExtractMemMoves collapses chains of one-cell moves
//
//	MultAssign(s+i, d+i, 1) Assign(s+i, 0)   for i = 0, ±1, ±2, ...
//
// into one MemMove when the chain has at least minSize cells and running it
// cell by cell is the same as a block relocation. It runs after Fold.
func ExtractMemMoves(b ir.Block, minSize int) ir.Block {
	return extract(b, func(b ir.Block, i int) (ir.Node, int, bool) {
		return matchMemMove(b, i, minSize)
	})
}

func matchMemMove(b ir.Block, i int, minSize int) (ir.Node, int, bool) {
	first, ok := b[i].(ir.MultAssign)
	if !ok {
		return nil, 0, false
	}
	src, dest := first.Src, first.Dest

	isMove := func(at, step int) bool {
		if at+1 >= len(b) {
			return false
		}
		if !ir.Equal(b[at], ir.MultAssign{Src: src + step, Dest: dest + step, Value: 1}) {
			return false
		}
		return ir.Equal(b[at+1], ir.Assign{Offset: src + step, Value: 0})
	}

	if !isMove(i, 0) {
		return nil, 0, false
	}
	var dir int
	switch {
	case isMove(i+2, 1):
		dir = 1
	case isMove(i+2, -1):
		dir = -1
	default:
		return nil, 0, false
	}

	size := 2
	next := i + 4
	for isMove(next, size*dir) {
		size++
		next += 2
	}

	if dir == -1 {
		src -= size - 1
		dest -= size - 1
	}
	if size < minSize || !relocationSafe(src, dest, size, dir) {
		return nil, 0, false
	}
	return ir.MemMove{Src: src, Dest: dest, Size: size}, next, true
}

// relocationSafe reports whether a chain moving size cells from src to dest
// in direction dir reads every source cell before the chain overwrites it.
// Ranges are normalized to their leftmost cell.
func relocationSafe(src, dest, size, dir int) bool {
	switch {
	case dest+size <= src || src+size <= dest:
		return true
	case dest < src:
		return dir == 1
	case dest > src:
		return dir == -1
	}
	return false
}

// maxDecMoveDepth bounds the nested-loop scan of the dec-move recognizer.
const maxDecMoveDepth = 255

// minDecMoveDepth is the nesting below which a dec-move nest is left alone.
const minDecMoveDepth = 20

// ExtractDecMoves replaces nests of the form
//
//	[- [- [- ... [-] ... >^n] >^n] >^n]
//
// deeper than minDecMoveDepth with DecMove(n, depth). The rewrite assumes the
// cells the pointer lands on are zero and that the tested cell does not exceed
// the nest depth. The syntax proves neither, so the pass is opt-in and not
// part of the default pipeline.
func ExtractDecMoves(b ir.Block) ir.Block {
	return extract(b, matchDecMove)
}

func matchDecMove(b ir.Block, i int) (ir.Node, int, bool) {
	loop, ok := b[i].(ir.Loop)
	if !ok {
		return nil, 0, false
	}
	moves := -1
	for depth := 0; depth < maxDecMoveDepth; depth++ {
		body := loop.Body
		if len(body) < 3 || !ir.Equal(body[0], dec) {
			return nil, 0, false
		}
		n := countRun(body, 2, stepRight)
		if moves < 0 {
			moves = n
		}
		if n != moves || len(body)-2 != n {
			return nil, 0, false
		}
		inner, ok := body[1].(ir.Loop)
		if !ok {
			return nil, 0, false
		}
		if depth > minDecMoveDepth && len(inner.Body) == 1 && ir.Equal(inner.Body[0], dec) {
			return ir.DecMove{Offset: moves, MaxMoves: depth + 1}, i + 1, true
		}
		loop = inner
	}
	return nil, 0, false
}
