package compiler

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/roach88/tapec/internal/emit"
	"github.com/roach88/tapec/internal/ir"
	"github.com/roach88/tapec/internal/optimize"
	"github.com/roach88/tapec/internal/parser"
)

// Backend names a target language.
type Backend string

// BackendC renders a C program.
const BackendC Backend = "c"

// UsageError reports a command the compiler cannot act on, such as an
// output path with an unknown extension. It is detected before any input
// is read.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// BackendForPath selects the backend from the output file extension.
func BackendForPath(path string) (Backend, error) {
	switch filepath.Ext(path) {
	case ".c":
		return BackendC, nil
	}
	return "", &UsageError{Message: fmt.Sprintf("%s: Unknown output type", path)}
}

// Options configure one compilation.
type Options struct {
	Optimize optimize.Config
	Emit     emit.Options
	Logger   *slog.Logger
}

// DefaultOptions returns the standard pipeline and runtime layout.
func DefaultOptions() Options {
	return Options{
		Optimize: optimize.DefaultConfig(),
		Emit:     emit.DefaultOptions(),
	}
}

// Stats summarizes what the optimizer did.
type Stats struct {
	RawNodes       int
	OptimizedNodes int
	Kinds          map[ir.Kind]int // optimized node counts per kind
}

// Result is the output of Compile.
type Result struct {
	Raw       ir.Block
	Optimized ir.Block
	Code      string
	Stats     Stats
}

// Compile parses src, optimizes it and renders it with the C backend.
// A parse error is returned as *parser.SyntaxError.
func Compile(src string, opts Options) (*Result, error) {
	raw, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	return CompileIR(raw, opts)
}

// CompileIR is Compile for an already parsed program.
func CompileIR(raw ir.Block, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cfg := opts.Optimize
	cfg.Logger = logger

	optimized, err := optimize.Run(raw, optimize.Passes(cfg), cfg)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	code, err := emit.C(optimized, opts.Emit)
	if err != nil {
		return nil, fmt.Errorf("emit: %w", err)
	}

	stats := Stats{
		RawNodes:       ir.Count(raw),
		OptimizedNodes: ir.Count(optimized),
		Kinds:          ir.Histogram(optimized),
	}
	logger.Info("compiled",
		"raw_nodes", stats.RawNodes,
		"optimized_nodes", stats.OptimizedNodes,
		"code_bytes", len(code),
	)

	return &Result{Raw: raw, Optimized: optimized, Code: code, Stats: stats}, nil
}
