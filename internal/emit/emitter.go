package emit

import (
	"fmt"
	"io"
	"strings"
)

// emitter wraps an io.Writer with indentation-aware line helpers.
type emitter struct {
	w     io.Writer
	err   error // first write error
	depth int
}

// line writes one indented line.
func (e *emitter) line(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, strings.Repeat("\t", e.depth)+format+"\n", args...)
}

// raw writes text verbatim.
func (e *emitter) raw(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

// blank writes an empty line.
func (e *emitter) blank() {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, "\n")
}

// signed renders n as " + |n|" or " - |n|" for pointer arithmetic.
func signed(n int) string {
	if n < 0 {
		return fmt.Sprintf(" - %d", -n)
	}
	return fmt.Sprintf(" + %d", n)
}
