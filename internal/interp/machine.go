package interp

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/tapec/internal/ir"
)

var (
	// ErrStepLimit means the program ran longer than Machine.StepLimit.
	ErrStepLimit = errors.New("step limit exceeded")
	// ErrTapeBounds means the program touched a cell outside the tape.
	ErrTapeBounds = errors.New("tape access out of bounds")
	// ErrDebugExit means the debug budget reached zero; the program stops
	// as if it had exited normally.
	ErrDebugExit = errors.New("debug budget exhausted")
)

// Debug window defaults, matching the emitted C program.
const (
	DefaultWindowStart = 1000
	DefaultWindowEnd   = 1100
	DefaultBlockSize   = 9
)

// Machine is the interpreter state. The zero value is not usable; use New.
type Machine struct {
	Tape []byte
	Ptr  int

	In    io.ByteReader
	Out   io.Writer
	Debug io.Writer

	WindowStart int
	WindowEnd   int
	BlockSize   int
	DebugBudget int

	StepLimit int64 // 0 means unlimited
	Steps     int64
}

// New returns a machine with a zeroed tape of tapeSize cells and the
// pointer at origin. Input reads from in (nil means empty input) and output
// goes to out (nil discards).
func New(tapeSize, origin int, in io.Reader, out io.Writer) *Machine {
	if in == nil {
		in = eofReader{}
	}
	if out == nil {
		out = io.Discard
	}
	return &Machine{
		Tape:        make([]byte, tapeSize),
		Ptr:         origin,
		In:          bufio.NewReader(in),
		Out:         out,
		Debug:       io.Discard,
		WindowStart: DefaultWindowStart,
		WindowEnd:   DefaultWindowEnd,
		BlockSize:   DefaultBlockSize,
		DebugBudget: 100000,
	}
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

// Run executes b. A program stopped by the debug budget returns
// ErrDebugExit; callers that treat it as a normal exit should check for it.
func (m *Machine) Run(b ir.Block) error {
	for _, n := range b {
		if err := m.step(); err != nil {
			return err
		}
		if err := n.Accept(m); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) step() error {
	m.Steps++
	if m.StepLimit > 0 && m.Steps > m.StepLimit {
		return ErrStepLimit
	}
	return nil
}

func (m *Machine) index(off int) (int, error) {
	i := m.Ptr + off
	if i < 0 || i >= len(m.Tape) {
		return 0, fmt.Errorf("%w: cell %d", ErrTapeBounds, i)
	}
	return i, nil
}

func (m *Machine) cell(off int) (*byte, error) {
	i, err := m.index(off)
	if err != nil {
		return nil, err
	}
	return &m.Tape[i], nil
}

func (m *Machine) move(delta int) error {
	m.Ptr += delta
	if m.Ptr < 0 || m.Ptr >= len(m.Tape) {
		return fmt.Errorf("%w: pointer %d", ErrTapeBounds, m.Ptr)
	}
	return nil
}

func (m *Machine) VisitAssign(n ir.Assign) error {
	c, err := m.cell(n.Offset)
	if err != nil {
		return err
	}
	*c = n.Value
	return nil
}

func (m *Machine) VisitAdd(n ir.Add) error {
	c, err := m.cell(n.Offset)
	if err != nil {
		return err
	}
	*c += n.Value
	return nil
}

func (m *Machine) VisitMultAssign(n ir.MultAssign) error {
	src, err := m.cell(n.Src)
	if err != nil {
		return err
	}
	dst, err := m.cell(n.Dest)
	if err != nil {
		return err
	}
	*dst = *src * n.Value
	return nil
}

func (m *Machine) VisitMultAdd(n ir.MultAdd) error {
	src, err := m.cell(n.Src)
	if err != nil {
		return err
	}
	dst, err := m.cell(n.Dest)
	if err != nil {
		return err
	}
	*dst += *src * n.Value
	return nil
}

func (m *Machine) VisitRight(n ir.Right) error {
	return m.move(n.Offset)
}

func (m *Machine) VisitInput(n ir.Input) error {
	c, err := m.cell(n.Offset)
	if err != nil {
		return err
	}
	b, err := m.In.ReadByte()
	if errors.Is(err, io.EOF) {
		*c = 0
		return nil
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	*c = b
	return nil
}

func (m *Machine) VisitOutput(n ir.Output) error {
	c, err := m.cell(n.Offset)
	if err != nil {
		return err
	}
	if _, err := m.Out.Write([]byte{*c}); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// VisitDbg prints the debug window with the marked cell prefixed by '*',
// in the same layout as the emitted C dbg function.
func (m *Machine) VisitDbg(n ir.Dbg) error {
	mark, err := m.index(n.Offset)
	if err != nil {
		return err
	}
	fmt.Fprint(m.Debug, "\nDBG OUTPUT:\n")
	for i := m.WindowStart; i < m.WindowEnd; i += m.BlockSize {
		for j := 0; j < m.BlockSize; j++ {
			v := 0
			if i+j < len(m.Tape) {
				v = int(m.Tape[i+j])
			}
			if i+j == mark {
				fmt.Fprintf(m.Debug, "*%3d ", v)
			} else {
				fmt.Fprintf(m.Debug, " %3d ", v)
			}
		}
		fmt.Fprint(m.Debug, "\n")
	}
	m.DebugBudget--
	if m.DebugBudget == 0 {
		return ErrDebugExit
	}
	return nil
}

func (m *Machine) VisitIf(n ir.If) error {
	c, err := m.cell(0)
	if err != nil {
		return err
	}
	if *c == 0 {
		return nil
	}
	return m.Run(n.Body)
}

func (m *Machine) VisitLoop(n ir.Loop) error {
	for {
		c, err := m.cell(0)
		if err != nil {
			return err
		}
		if *c == 0 {
			return nil
		}
		if err := m.Run(n.Body); err != nil {
			return err
		}
		if err := m.step(); err != nil {
			return err
		}
	}
}

func (m *Machine) VisitGlider(n ir.Glider) error {
	for {
		c, err := m.cell(0)
		if err != nil {
			return err
		}
		if *c == n.Target {
			return nil
		}
		if err := m.move(n.Offset); err != nil {
			return err
		}
		if err := m.step(); err != nil {
			return err
		}
	}
}

func (m *Machine) VisitDecMove(n ir.DecMove) error {
	c, err := m.cell(0)
	if err != nil {
		return err
	}
	dm := int(*c)
	if n.MaxMoves < 255 && dm > n.MaxMoves {
		dm = n.MaxMoves
	}
	*c -= uint8(dm)
	return m.move(n.Offset * dm)
}

func (m *Machine) VisitMemMove(n ir.MemMove) error {
	if n.Size <= 0 {
		return nil
	}
	src, err := m.index(n.Src)
	if err != nil {
		return err
	}
	dst, err := m.index(n.Dest)
	if err != nil {
		return err
	}
	if _, err := m.index(n.Src + n.Size - 1); err != nil {
		return err
	}
	if _, err := m.index(n.Dest + n.Size - 1); err != nil {
		return err
	}
	copy(m.Tape[dst:dst+n.Size], m.Tape[src:src+n.Size])
	for i := src; i < src+n.Size; i++ {
		if i < dst || i >= dst+n.Size {
			m.Tape[i] = 0
		}
	}
	return nil
}

// Window returns a copy of n cells starting at origin+off.
func (m *Machine) Window(origin, off, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		j := origin + off + i
		if j >= 0 && j < len(m.Tape) {
			out[i] = m.Tape[j]
		}
	}
	return out
}
