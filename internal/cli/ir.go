package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tapec/internal/compiler"
	"github.com/roach88/tapec/internal/ir"
)

// IROptions holds flags for the ir command.
type IROptions struct {
	*RootOptions
	Stage    string
	Fixpoint bool
	DecMove  bool
}

// IRDump is the JSON payload of the ir command.
type IRDump struct {
	Stage string `json:"stage"`
	Nodes int    `json:"nodes"`
	Tree  []any  `json:"tree"`
}

// NewIRCommand creates the ir command.
func NewIRCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IROptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ir <input>",
		Short: "Print the IR of a program",
		Long: `Print the IR of a program after a pipeline stage.

Stages, in order: parse, glider, fold, final. Passes disabled in the
configuration are skipped.

Examples:
  tapec ir hello.b
  tapec ir hello.b --stage parse
  tapec ir hello.b --stage final --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIR(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Stage, "stage", compiler.StageFinal, "stage to print (parse|glider|fold|final)")
	cmd.Flags().BoolVar(&opts.Fixpoint, "fixpoint", false, "fold until the tree stops changing")
	cmd.Flags().BoolVar(&opts.DecMove, "decmove", false, "collapse saturating dec-move nests")

	return cmd
}

func runIR(opts *IROptions, input string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	applyCompileFlags(&cfg, &CompileOptions{Fixpoint: opts.Fixpoint, DecMove: opts.DecMove}, cmd)

	src, err := os.ReadFile(input)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeReadFailed, fmt.Sprintf("%s: Not a file", input), nil)
	}

	b, err := compiler.IRAt(string(src), opts.Stage, compiler.Options{
		Optimize: cfg.OptimizeConfig(),
		Emit:     cfg.EmitOptions(),
		Logger:   opts.newLogger(cmd.ErrOrStderr()),
	})
	if err != nil {
		return compileFailure(formatter, input, err)
	}

	if opts.Format == "json" {
		return formatter.Success(IRDump{Stage: opts.Stage, Nodes: ir.Count(b), Tree: ir.Encode(b)})
	}
	if err := ir.Fprint(cmd.OutOrStdout(), b); err != nil {
		return WrapExitError(ExitFailure, "write IR", err)
	}
	return nil
}

