package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/tapec/internal/compiler"
	"github.com/roach88/tapec/internal/config"
	"github.com/roach88/tapec/internal/interp"
	"github.com/roach88/tapec/internal/ir"
	"github.com/roach88/tapec/internal/optimize"
	"github.com/roach88/tapec/internal/store"
)

// DefaultStepLimit bounds the raw run of a scenario without step_limit.
const DefaultStepLimit = 1_000_000

// The interpreter tape is smaller than the C runtime's. Both runs place the
// origin in the middle so scenarios can use negative offsets.
const (
	tapeSize = 1 << 16
	origin   = 1 << 15
)

// Harness holds what one scenario run needs.
type Harness struct {
	store  *store.Store
	cfg    config.Config
	logger *slog.Logger
}

type run struct {
	out   string
	debug string
	ptr   int
	tape  []byte
	steps int64
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store. The program is
// compiled twice and the second compile must come from the cache. The raw
// and optimized trees are then interpreted from the same initial tape and
// must agree on output, debug text, pointer and every cell.
//
// An error is returned only when the scenario cannot run at all: a parse
// error, or a raw program that faults. Mismatches are reported in
// Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		cfg:    scenarioConfig(scenario.Options),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return h.run(context.Background(), scenario)
}

func scenarioConfig(o Options) config.Config {
	cfg := config.Default()
	if o.Fixpoint {
		cfg.Optimize.Mode = optimize.ModeFixpoint
	}
	cfg.Optimize.DecMove = o.DecMove
	cfg.Optimize.Glider = !o.NoGlider
	cfg.Optimize.MemMove = !o.NoMemMove
	return cfg
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	opts := compiler.Options{
		Optimize: h.cfg.OptimizeConfig(),
		Emit:     h.cfg.EmitOptions(),
		Logger:   h.logger,
	}
	params := h.cfg.CanonicalMap()

	first, art, hit, err := compiler.CompileCached(ctx, h.store, scenario.Source, compiler.BackendC, params, opts)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	result := NewResult()
	if hit {
		result.AddError("first compile: unexpected cache hit")
	}

	second, cached, hit, err := compiler.CompileCached(ctx, h.store, scenario.Source, compiler.BackendC, params, opts)
	if err != nil {
		return nil, fmt.Errorf("recompile: %w", err)
	}
	if !hit {
		result.AddError("second compile: expected a cache hit")
	}
	if cached.Key != art.Key {
		result.AddError(fmt.Sprintf("artifact key changed: %s then %s", art.Key, cached.Key))
	}
	if second.Code != first.Code {
		result.AddError("cached code differs from compiled code")
	}

	result.Code = first.Code
	result.Optimized = ir.Sprint(first.Optimized)
	result.RawNodes = first.Stats.RawNodes
	result.OptimizedNodes = first.Stats.OptimizedNodes

	tape, err := initialTape(scenario.Tape)
	if err != nil {
		return nil, err
	}
	limit := scenario.StepLimit
	if limit == 0 {
		limit = DefaultStepLimit
	}

	want, err := h.execute(first.Raw, scenario.Input, tape, limit)
	if err != nil {
		return nil, fmt.Errorf("raw program: %w", err)
	}
	got, err := h.execute(first.Optimized, scenario.Input, tape, 2*limit)
	if err != nil {
		result.AddError(fmt.Sprintf("optimized program: %v", err))
		return result, nil
	}
	compareRuns(result, want, got)

	result.Output = got.out
	result.Debug = got.debug
	result.Pointer = got.ptr - origin
	result.cells = got.tape

	h.logger.Debug("scenario executed",
		"name", scenario.Name,
		"raw_steps", want.steps,
		"optimized_steps", got.steps,
	)

	checkExpect(result, scenario.Expect)
	for _, msg := range EvaluateAssertions(first.Optimized, result.Code, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func initialTape(cells map[int]int) ([]byte, error) {
	tape := make([]byte, tapeSize)
	for off, v := range cells {
		i := origin + off
		if i < 0 || i >= tapeSize {
			return nil, fmt.Errorf("tape[%d]: offset outside the tape", off)
		}
		tape[i] = byte(v)
	}
	return tape, nil
}

// execute interprets b with the debug window placed where the C runtime
// places it relative to the origin. A program stopped by its debug budget
// counts as a normal exit.
func (h *Harness) execute(b ir.Block, input string, tape []byte, limit int64) (run, error) {
	var out, debug bytes.Buffer
	m := interp.New(tapeSize, origin, strings.NewReader(input), &out)
	copy(m.Tape, tape)
	m.Debug = &debug
	m.WindowStart = origin + h.cfg.Debug.WindowStart - h.cfg.Tape.Origin
	m.WindowEnd = origin + h.cfg.Debug.WindowEnd - h.cfg.Tape.Origin
	m.BlockSize = h.cfg.Debug.BlockSize
	m.DebugBudget = h.cfg.Debug.Budget
	m.StepLimit = limit

	if err := m.Run(b); err != nil && !errors.Is(err, interp.ErrDebugExit) {
		return run{}, err
	}
	return run{
		out:   out.String(),
		debug: debug.String(),
		ptr:   m.Ptr,
		tape:  m.Tape,
		steps: m.Steps,
	}, nil
}

func compareRuns(result *Result, want, got run) {
	if want.out != got.out {
		result.AddError(fmt.Sprintf("output: raw %q, optimized %q", want.out, got.out))
	}
	if want.debug != got.debug {
		result.AddError("debug dump differs between raw and optimized runs")
	}
	if want.ptr != got.ptr {
		result.AddError(fmt.Sprintf("pointer: raw %d, optimized %d", want.ptr-origin, got.ptr-origin))
	}
	for i := range want.tape {
		if want.tape[i] != got.tape[i] {
			result.AddError(fmt.Sprintf("cell %d: raw %d, optimized %d", i-origin, want.tape[i], got.tape[i]))
			return
		}
	}
}

func checkExpect(result *Result, expect *Expect) {
	if expect == nil {
		return
	}
	if expect.Output != nil && *expect.Output != result.Output {
		result.AddError(fmt.Sprintf("expect.output: want %q, got %q", *expect.Output, result.Output))
	}
	if expect.Pointer != nil && *expect.Pointer != result.Pointer {
		result.AddError(fmt.Sprintf("expect.pointer: want %d, got %d", *expect.Pointer, result.Pointer))
	}
	for off, v := range expect.Cells {
		i := origin + off
		if i < 0 || i >= len(result.cells) {
			result.AddError(fmt.Sprintf("expect.cells[%d]: offset outside the tape", off))
			continue
		}
		if int(result.cells[i]) != v {
			result.AddError(fmt.Sprintf("expect.cells[%d]: want %d, got %d", off, v, result.cells[i]))
		}
	}
}
