package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tapec/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool   // rewrite golden files from the generated C
	Filter    string // glob over scenario file names, without extension
	GoldenDir string // defaults to golden/ next to the scenarios directory
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name           string   `json:"name"`
	Pass           bool     `json:"pass"`
	RawNodes       int      `json:"raw_nodes,omitempty"`
	OptimizedNodes int      `json:"optimized_nodes,omitempty"`
	Errors         []string `json:"errors,omitempty"`
}

// TestResult aggregates a test run.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run YAML scenarios through the compiler.

Every scenario is compiled twice (the second compile must hit the cache),
its raw and optimized trees are interpreted from the same tape and must
agree, and its expectations and assertions are checked. If a golden file
named after the scenario exists, the generated C must match it.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error

Examples:
  tapec test ./testdata/scenarios
  tapec test ./testdata/scenarios --filter "move_*"
  tapec test ./testdata/scenarios --update`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose file name matches this glob")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden", "", "golden file directory")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, "scenarios directory not found: "+dir)
	}
	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	golden := opts.GoldenDir
	if golden == "" {
		golden = filepath.Join(filepath.Dir(filepath.Clean(dir)), "golden")
	}
	f := opts.newFormatter(cmd)

	result := TestResult{Scenarios: []ScenarioResult{}, Total: len(files)}
	for _, file := range files {
		r := checkScenario(file, golden, opts.Update, f)
		if r.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Scenarios = append(result.Scenarios, r)
		if f.Format != "json" {
			printScenario(f.Writer, r)
		}
	}

	if f.Format == "json" {
		return reportTestJSON(f.Writer, result)
	}
	return reportTestText(f.Writer, result)
}

// findScenarioFiles walks dir for .yaml and .yml files. filter, when set,
// is matched against the base name without its extension.
func findScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			ok, err := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext))
			if err != nil {
				return fmt.Errorf("invalid filter pattern %q: %w", filter, err)
			}
			if !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func checkScenario(file, goldenDir string, update bool, f *OutputFormatter) ScenarioResult {
	s, err := harness.LoadScenario(file)
	if err != nil {
		return failed(filepath.Base(file), "failed to load scenario: "+err.Error())
	}
	res, err := harness.Run(s)
	if err != nil {
		return failed(s.Name, "execution failed: "+err.Error())
	}

	path := filepath.Join(goldenDir, s.Name+".golden")
	if update {
		if err := writeGolden(path, res.Code); err != nil {
			return failed(s.Name, err.Error())
		}
		f.VerboseLog("updated %s", path)
	} else if err := compareGolden(path, res.Code); err != nil {
		res.AddError(err.Error())
	}

	return ScenarioResult{
		Name:           s.Name,
		Pass:           res.Pass,
		RawNodes:       res.RawNodes,
		OptimizedNodes: res.OptimizedNodes,
		Errors:         res.Errors,
	}
}

func failed(name string, errs ...string) ScenarioResult {
	return ScenarioResult{Name: name, Errors: errs}
}

func writeGolden(path, code string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return fmt.Errorf("failed to update golden file: %w", err)
	}
	return nil
}

// compareGolden is a no-op when the golden file does not exist.
func compareGolden(path, code string) error {
	want, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("failed to read golden file: %w", err)
	case string(want) != code:
		return errors.New("generated code does not match golden file (run with --update to regenerate)")
	}
	return nil
}

func printScenario(w io.Writer, r ScenarioResult) {
	if r.Pass {
		fmt.Fprintf(w, "✓ %s (%d → %d nodes)\n", r.Name, r.RawNodes, r.OptimizedNodes)
		return
	}
	fmt.Fprintf(w, "✗ %s\n", r.Name)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

func reportTestJSON(w io.Writer, result TestResult) error {
	resp := CLIResponse{Status: "ok", Data: result}
	var failure error
	if result.Failed > 0 {
		msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
		resp.Status = "error"
		resp.Error = &CLIError{Code: ErrCodeGeneric, Message: msg}
		failure = &ExitError{Code: ExitFailure, Message: msg, reported: true}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	return failure
}

func reportTestText(w io.Writer, result TestResult) error {
	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return nil
	}
	fmt.Fprintf(w, "\nTest Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
