package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tapec/internal/compiler"
	"github.com/roach88/tapec/internal/config"
	"github.com/roach88/tapec/internal/optimize"
	"github.com/roach88/tapec/internal/parser"
	"github.com/roach88/tapec/internal/store"
)

const compileUsage = "Usage: tapec compile <input> <output.c>"

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Cache     string // optional artifact store path
	Fixpoint  bool
	DecMove   bool
	DumpAfter string
}

// CompileSummary is the success payload of the compile command.
type CompileSummary struct {
	Input          string `json:"input"`
	Output         string `json:"output"`
	Backend        string `json:"backend"`
	RawNodes       int    `json:"raw_nodes"`
	OptimizedNodes int    `json:"optimized_nodes"`
	CodeBytes      int    `json:"code_bytes"`
	CacheHit       bool   `json:"cache_hit"`
	RunID          string `json:"run_id,omitempty"`
}

func (s CompileSummary) String() string {
	cached := ""
	if s.CacheHit {
		cached = " (cached)"
	}
	return fmt.Sprintf("✓ Compiled %s → %s: %d nodes → %d nodes, %d bytes%s",
		s.Input, s.Output, s.RawNodes, s.OptimizedNodes, s.CodeBytes, cached)
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <input> <output>",
		Short: "Compile a program to C",
		Long: `Compile a tape-language program to a standalone C source file.

The output extension selects the backend; only .c is supported. Nothing is
written unless compilation succeeds.

Exit codes:
  0 - Compiled
  2 - Usage error, unreadable input or syntax error

Examples:
  tapec compile hello.b hello.c
  tapec compile mandel.b mandel.c --cache ./tapec.db
  tapec compile deep.b deep.c --decmove --fixpoint`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Cache, "cache", "", "path to SQLite artifact store")
	cmd.Flags().BoolVar(&opts.Fixpoint, "fixpoint", false, "fold until the tree stops changing")
	cmd.Flags().BoolVar(&opts.DecMove, "decmove", false, "collapse saturating dec-move nests")
	cmd.Flags().StringVar(&opts.DumpAfter, "dump-after", "", "print the IR to stderr after this pass (\"*\" for all)")

	return cmd
}

func runCompile(ctx context.Context, opts *CompileOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.newFormatter(cmd)

	// Argument and backend checks come before touching the input file.
	if len(args) != 2 {
		return formatter.Fail(ExitCommandError, ErrCodeUsage, compileUsage, nil)
	}
	input, output := args[0], args[1]

	backend, err := compiler.BackendForPath(output)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeUsage, err.Error(), nil)
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	applyCompileFlags(&cfg, opts, cmd)

	if info, err := os.Stat(input); err != nil || !info.Mode().IsRegular() {
		return formatter.Fail(ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("%s: Not a file", input), nil)
	}
	src, err := os.ReadFile(input)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("%s: %v", input, err), nil)
	}

	logger := opts.newLogger(cmd.ErrOrStderr())
	copts := compiler.Options{
		Optimize: cfg.OptimizeConfig(),
		Emit:     cfg.EmitOptions(),
		Logger:   logger,
	}
	copts.Optimize.DumpAfter = opts.DumpAfter
	copts.Optimize.Dump = cmd.ErrOrStderr()

	summary := CompileSummary{Input: input, Output: output, Backend: string(backend)}

	var (
		res *compiler.Result
		st  *store.Store
		art store.Artifact
	)
	if opts.Cache != "" {
		st, err = store.Open(opts.Cache)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeCache, fmt.Sprintf("open cache: %v", err), nil)
		}
		defer st.Close()

		res, art, summary.CacheHit, err = compiler.CompileCached(ctx, st, string(src), backend, cfg.CanonicalMap(), copts)
	} else {
		res, err = compiler.Compile(string(src), copts)
	}
	if err != nil {
		return compileFailure(formatter, input, err)
	}

	if err := os.WriteFile(output, []byte(res.Code), 0644); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
	}

	if st != nil {
		run, err := st.RecordRun(ctx, store.Run{
			ArtifactKey: art.Key,
			InputPath:   input,
			OutputPath:  output,
			CacheHit:    summary.CacheHit,
		})
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeCache, fmt.Sprintf("record run: %v", err), nil)
		}
		summary.RunID = run.ID
	}

	summary.RawNodes = res.Stats.RawNodes
	summary.OptimizedNodes = res.Stats.OptimizedNodes
	summary.CodeBytes = len(res.Code)
	formatter.VerboseLog("Kinds after optimization: %v", res.Stats.Kinds)
	return formatter.Success(summary)
}

// applyCompileFlags layers explicitly set flags over the loaded config.
func applyCompileFlags(cfg *config.Config, opts *CompileOptions, cmd *cobra.Command) {
	if cmd.Flags().Changed("fixpoint") {
		cfg.Optimize.Mode = optimize.ModeFixed
		if opts.Fixpoint {
			cfg.Optimize.Mode = optimize.ModeFixpoint
		}
	}
	if cmd.Flags().Changed("decmove") {
		cfg.Optimize.DecMove = opts.DecMove
	}
}

// compileFailure maps a compile error to its output and exit code. Syntax
// errors are user errors; anything else from the pipeline is a defect.
func compileFailure(formatter *OutputFormatter, input string, err error) error {
	var syntaxErr *parser.SyntaxError
	if errors.As(err, &syntaxErr) {
		details := map[string]any{
			"kind":   syntaxErr.Code,
			"line":   syntaxErr.Pos.Line,
			"column": syntaxErr.Pos.Column,
		}
		return formatter.Fail(ExitCommandError, ErrCodeSyntax, fmt.Sprintf("%s:%v", input, syntaxErr), details)
	}
	var usageErr *compiler.UsageError
	if errors.As(err, &usageErr) {
		return formatter.Fail(ExitCommandError, ErrCodeUsage, usageErr.Message, nil)
	}
	return formatter.Fail(ExitFailure, ErrCodeInternal, err.Error(), nil)
}
