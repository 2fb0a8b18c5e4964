package emit

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/roach88/tapec/internal/ir"
)

// ErrUnknownNode is returned when the tree holds a node the backend cannot
// render. It indicates a compiler defect, never bad user input.
var ErrUnknownNode = errors.New("unknown IR node")

// Options describe the runtime the generated program carries.
type Options struct {
	TapeSize    int // cells in the static tape
	Origin      int // initial pointer index
	DebugStart  int // first cell of the debug window
	DebugEnd    int // one past the last cell of the debug window
	DebugBlock  int // cells per debug line
	DebugBudget int // debug dumps before the program exits
}

// DefaultOptions returns the standard runtime layout.
func DefaultOptions() Options {
	return Options{
		TapeSize:    1000000,
		Origin:      1000,
		DebugStart:  1000,
		DebugEnd:    1100,
		DebugBlock:  9,
		DebugBudget: 100000,
	}
}

// Validate reports layouts the generated program could not run with.
func (o Options) Validate() error {
	switch {
	case o.TapeSize <= 0:
		return fmt.Errorf("tape size must be positive, got %d", o.TapeSize)
	case o.Origin < 0 || o.Origin >= o.TapeSize:
		return fmt.Errorf("origin %d outside tape of %d cells", o.Origin, o.TapeSize)
	case o.DebugBlock <= 0:
		return fmt.Errorf("debug block size must be positive, got %d", o.DebugBlock)
	case o.DebugStart < 0 || o.DebugEnd > o.TapeSize || o.DebugStart > o.DebugEnd:
		return fmt.Errorf("debug window [%d, %d) outside tape of %d cells", o.DebugStart, o.DebugEnd, o.TapeSize)
	case o.DebugBudget <= 0:
		return fmt.Errorf("debug budget must be positive, got %d", o.DebugBudget)
	}
	return nil
}

var prelude = template.Must(template.New("prelude").Parse(`#include <stdint.h>
#include <stdio.h>
#include <stdlib.h>
#include <string.h>

static uint8_t mem[{{.TapeSize}}];

static uint8_t read_byte(void) {
	int c = getchar();
	return (uint8_t)(c == EOF ? 0 : c);
}

static long dbg_count = {{.DebugBudget}};

static void dbg(uint8_t *p) {
	int i, j;
	printf("\nDBG OUTPUT:\n");
	for (i = {{.DebugStart}}; i < {{.DebugEnd}}; i += {{.DebugBlock}}) {
		for (j = 0; j < {{.DebugBlock}}; j++) {
			if (p == &mem[i + j])
				printf("*%3d ", mem[i + j]);
			else
				printf(" %3d ", mem[i + j]);
		}
		printf("\n");
	}
	if (--dbg_count == 0)
		exit(0);
}

int main(void) {
	uint8_t *p = &mem[{{.Origin}}];
`))

// C renders b as a complete C program.
func C(b ir.Block, opts Options) (string, error) {
	var sb strings.Builder
	if err := WriteC(&sb, b, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteC renders b as a complete C program to w.
func WriteC(w io.Writer, b ir.Block, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if err := prelude.Execute(w, opts); err != nil {
		return fmt.Errorf("write prelude: %w", err)
	}

	c := &cEmitter{emitter: emitter{w: w, depth: 1}}
	if ir.Contains(b, ir.KindDecMove) {
		c.line("uint8_t dm;")
	}
	c.blank()
	if err := c.block(b); err != nil {
		return err
	}
	c.blank()
	c.line("return EXIT_SUCCESS;")
	c.raw("}\n")
	return c.err
}

// cEmitter renders nodes as C statements over the tape pointer p.
type cEmitter struct {
	emitter
}

func (c *cEmitter) block(b ir.Block) error {
	for _, n := range b {
		if n == nil {
			return fmt.Errorf("%w: nil node", ErrUnknownNode)
		}
		if err := n.Accept(c); err != nil {
			return err
		}
	}
	return c.err
}

func (c *cEmitter) nested(head string, body ir.Block) error {
	c.line("%s {", head)
	c.depth++
	err := c.block(body)
	c.depth--
	c.line("}")
	return err
}

func (c *cEmitter) VisitAssign(n ir.Assign) error {
	c.line("p[%d] = %du;", n.Offset, n.Value)
	return nil
}

func (c *cEmitter) VisitAdd(n ir.Add) error {
	switch v := ir.Signed(n.Value); {
	case v == 1:
		c.line("p[%d]++;", n.Offset)
	case v == -1:
		c.line("p[%d]--;", n.Offset)
	case v < 0:
		c.line("p[%d] -= %du;", n.Offset, -v)
	default:
		c.line("p[%d] += %du;", n.Offset, v)
	}
	return nil
}

func (c *cEmitter) VisitMultAssign(n ir.MultAssign) error {
	switch ir.Signed(n.Value) {
	case 1:
		c.line("p[%d] = p[%d];", n.Dest, n.Src)
	case -1:
		c.line("p[%d] = -p[%d];", n.Dest, n.Src)
	default:
		c.line("p[%d] = p[%d] * %du;", n.Dest, n.Src, n.Value)
	}
	return nil
}

func (c *cEmitter) VisitMultAdd(n ir.MultAdd) error {
	switch v := ir.Signed(n.Value); {
	case v == 1:
		c.line("p[%d] += p[%d];", n.Dest, n.Src)
	case v == -1:
		c.line("p[%d] -= p[%d];", n.Dest, n.Src)
	case v < 0:
		c.line("p[%d] -= p[%d] * %du;", n.Dest, n.Src, -v)
	default:
		c.line("p[%d] += p[%d] * %du;", n.Dest, n.Src, v)
	}
	return nil
}

func (c *cEmitter) VisitRight(n ir.Right) error {
	c.move(n.Offset)
	return nil
}

func (c *cEmitter) move(off int) {
	switch {
	case off == 1:
		c.line("p++;")
	case off == -1:
		c.line("p--;")
	case off < 0:
		c.line("p -= %d;", -off)
	case off > 0:
		c.line("p += %d;", off)
	}
}

func (c *cEmitter) VisitInput(n ir.Input) error {
	c.line("p[%d] = read_byte();", n.Offset)
	return nil
}

func (c *cEmitter) VisitOutput(n ir.Output) error {
	c.line("putchar(p[%d]);", n.Offset)
	return nil
}

func (c *cEmitter) VisitDbg(n ir.Dbg) error {
	c.line("dbg(&p[%d]);", n.Offset)
	return nil
}

func (c *cEmitter) VisitIf(n ir.If) error {
	return c.nested("if (*p)", n.Body)
}

func (c *cEmitter) VisitLoop(n ir.Loop) error {
	return c.nested("while (*p)", n.Body)
}

func (c *cEmitter) VisitGlider(n ir.Glider) error {
	c.line("while (*p != %d) {", n.Target)
	c.depth++
	c.move(n.Offset)
	c.depth--
	c.line("}")
	return nil
}

func (c *cEmitter) VisitDecMove(n ir.DecMove) error {
	if n.MaxMoves < 255 {
		c.line("dm = *p < %d ? *p : %d;", n.MaxMoves, n.MaxMoves)
		c.line("*p -= dm;")
	} else {
		c.line("dm = *p;")
		c.line("*p = 0;")
	}
	c.line("p += %d * dm;", n.Offset)
	return nil
}

func (c *cEmitter) VisitMemMove(n ir.MemMove) error {
	c.line("memmove(p%s, p%s, %d);", signed(n.Dest), signed(n.Src), n.Size)
	for _, off := range vacated(n) {
		c.line("p[%d] = 0;", off)
	}
	return nil
}

// vacated returns the source cells a block move leaves behind, ascending.
func vacated(n ir.MemMove) []int {
	var cells []int
	for off := n.Src; off < n.Src+n.Size; off++ {
		if off < n.Dest || off >= n.Dest+n.Size {
			cells = append(cells, off)
		}
	}
	return cells
}
