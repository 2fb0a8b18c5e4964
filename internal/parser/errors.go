package parser

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrUnmatchedClose means a ']' appeared with no open loop.
	ErrUnmatchedClose = errors.New("unmatched loop close")
	// ErrUnclosedLoop means input ended while a loop was still open.
	ErrUnclosedLoop = errors.New("unclosed loop")
)

// Error codes reported alongside syntax errors.
const (
	CodeUnmatchedClose = "UnmatchedClose"
	CodeUnclosedLoop   = "UnclosedLoop"
)

// Pos is a position in the source text. Line and Column are 1-based;
// Offset is the 0-based byte offset.
type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// SyntaxError reports a bracket mismatch at a source position.
type SyntaxError struct {
	Code string
	Pos  Pos
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Pos, e.Code, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
