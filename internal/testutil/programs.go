package testutil

import (
	"math/rand"
	"strings"
)

// idioms are fragments the optimizer has dedicated rewrites for. Mixing
// them into random programs makes the recognizers fire far more often than
// uniform noise would.
var idioms = []string{
	"[-]",
	"[->+<]",
	"[->>+++<<]",
	"[-<+>>--<]",
	"[>+<-]",
	"[->+>+<<]",
	"[-]>[-]<",
	"[>]",
	"[<<]",
	"+[-<+]-",
	"++[--<<<++]--",
	">>[-]<<[->>+<<]",
	"[[-]>+<]",
	"[-]>>+<<",
	"[->+<]>[-<+>]<",
}

// RandomProgram returns a syntactically valid program built from weighted
// opcodes and known idioms. The same seed always yields the same program.
// Loops are always balanced; termination is not guaranteed, so callers run
// the result under a step limit.
func RandomProgram(seed int64, size int) string {
	g := &programGen{rng: rand.New(rand.NewSource(seed))}
	g.block(size, 0)
	return g.sb.String()
}

type programGen struct {
	rng *rand.Rand
	sb  strings.Builder
}

const maxGenDepth = 4

func (g *programGen) block(budget, depth int) {
	for budget > 0 {
		budget--
		switch r := g.rng.Intn(100); {
		case r < 25:
			g.run('+', 1+g.rng.Intn(5))
		case r < 40:
			g.run('-', 1+g.rng.Intn(5))
		case r < 52:
			g.run('>', 1+g.rng.Intn(3))
		case r < 64:
			g.run('<', 1+g.rng.Intn(3))
		case r < 68:
			g.sb.WriteByte('.')
		case r < 70:
			g.sb.WriteByte(',')
		case r < 71:
			g.sb.WriteByte('@')
		case r < 73:
			g.sb.WriteString(" x\n")
		case r < 88:
			g.sb.WriteString(idioms[g.rng.Intn(len(idioms))])
		default:
			if depth >= maxGenDepth {
				continue
			}
			g.sb.WriteString("[-")
			inner := 1 + g.rng.Intn(6)
			g.block(inner, depth+1)
			g.sb.WriteByte(']')
			budget -= inner
		}
	}
}

func (g *programGen) run(c byte, n int) {
	for i := 0; i < n; i++ {
		g.sb.WriteByte(c)
	}
}

// MoveChain returns source that clears the cell just right of a size-cell
// run and then shifts the run one place right, walking from the rightmost
// cell leftwards. The pointer ends where it started.
func MoveChain(size int) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat(">", size))
	sb.WriteString("[-]<")
	for i := 0; i < size; i++ {
		sb.WriteString("[->+<]")
		if i < size-1 {
			sb.WriteByte('<')
		}
	}
	return sb.String()
}

// DecMoveNest returns a saturating dec-move nest of the given depth whose
// levels each step moves cells to the right.
func DecMoveNest(depth, moves int) string {
	step := strings.Repeat(">", moves)
	var sb strings.Builder
	for i := 0; i < depth; i++ {
		sb.WriteString("[-")
	}
	sb.WriteString("[-]")
	for i := 0; i < depth; i++ {
		sb.WriteString(step)
		sb.WriteByte(']')
	}
	return sb.String()
}
