package ir

import (
	"fmt"
	"io"
	"strings"
)

func (n Assign) String() string { return fmt.Sprintf("Assign(%d, %d)", n.Offset, n.Value) }
func (n Add) String() string    { return fmt.Sprintf("Add(%d, %+d)", n.Offset, Signed(n.Value)) }

func (n MultAssign) String() string {
	return fmt.Sprintf("MultAssign(%d, %d, %+d)", n.Src, n.Dest, Signed(n.Value))
}

func (n MultAdd) String() string {
	return fmt.Sprintf("MultAdd(%d, %d, %+d)", n.Src, n.Dest, Signed(n.Value))
}

func (n Right) String() string  { return fmt.Sprintf("Right(%+d)", n.Offset) }
func (n Input) String() string  { return fmt.Sprintf("Input(%d)", n.Offset) }
func (n Output) String() string { return fmt.Sprintf("Output(%d)", n.Offset) }
func (n Dbg) String() string    { return fmt.Sprintf("Dbg(%d)", n.Offset) }
func (n If) String() string     { return fmt.Sprintf("If[%d]", len(n.Body)) }
func (n Loop) String() string   { return fmt.Sprintf("Loop[%d]", len(n.Body)) }

func (n Glider) String() string {
	return fmt.Sprintf("Glider(%+d, %d)", n.Offset, n.Target)
}

func (n DecMove) String() string {
	return fmt.Sprintf("DecMove(%+d, %d)", n.Offset, n.MaxMoves)
}

func (n MemMove) String() string {
	return fmt.Sprintf("MemMove(%d, %d, %d)", n.Src, n.Dest, n.Size)
}

// Fprint writes b to w, one node per line, nested bodies indented by two spaces.
func Fprint(w io.Writer, b Block) error {
	p := &printer{w: w}
	p.block(b, 0)
	return p.err
}

// Sprint is like Fprint but returns the text.
func Sprint(b Block) string {
	var sb strings.Builder
	_ = Fprint(&sb, b)
	return sb.String()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(depth int, s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", depth), s)
}

func (p *printer) block(b Block, depth int) {
	for _, n := range b {
		switch n := n.(type) {
		case If:
			p.line(depth, "If {")
			p.block(n.Body, depth+1)
			p.line(depth, "}")
		case Loop:
			p.line(depth, "Loop {")
			p.block(n.Body, depth+1)
			p.line(depth, "}")
		default:
			p.line(depth, n.String())
		}
	}
}
