package parser

import (
	"github.com/roach88/tapec/internal/ir"
)

// Significant is the set of characters the parser reads.
const Significant = "+-<>.,[]@"

// frame is one open loop: the body collected so far and where it opened.
type frame struct {
	body ir.Block
	open Pos
}

// Parse returns the raw IR for src. Loops are tracked on an explicit stack,
// so nesting depth is limited only by memory.
func Parse(src string) (ir.Block, error) {
	stack := []frame{{}}
	line, col := 1, 0

	for i := 0; i < len(src); i++ {
		c := src[i]
		col++
		pos := Pos{Offset: i, Line: line, Column: col}

		top := &stack[len(stack)-1]
		switch c {
		case '\n':
			line++
			col = 0
		case '+':
			top.body = append(top.body, ir.NewAdd(0, 1))
		case '-':
			top.body = append(top.body, ir.NewAdd(0, -1))
		case '<':
			top.body = append(top.body, ir.Right{Offset: -1})
		case '>':
			top.body = append(top.body, ir.Right{Offset: 1})
		case ',':
			top.body = append(top.body, ir.Input{Offset: 0})
		case '.':
			top.body = append(top.body, ir.Output{Offset: 0})
		case '@':
			top.body = append(top.body, ir.Dbg{Offset: 0})
		case '[':
			stack = append(stack, frame{open: pos})
		case ']':
			if len(stack) == 1 {
				return nil, &SyntaxError{Code: CodeUnmatchedClose, Pos: pos, Err: ErrUnmatchedClose}
			}
			body := top.body
			if body == nil {
				body = ir.Block{}
			}
			stack = stack[:len(stack)-1]
			parent := &stack[len(stack)-1]
			parent.body = append(parent.body, ir.Loop{Body: body})
		}
	}

	if len(stack) > 1 {
		open := stack[len(stack)-1].open
		return nil, &SyntaxError{Code: CodeUnclosedLoop, Pos: open, Err: ErrUnclosedLoop}
	}
	if stack[0].body == nil {
		return ir.Block{}, nil
	}
	return stack[0].body, nil
}

// Filter returns only the significant characters of src.
func Filter(src string) string {
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '+', '-', '<', '>', '.', ',', '[', ']', '@':
			out = append(out, src[i])
		}
	}
	return string(out)
}
