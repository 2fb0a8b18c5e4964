package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tapec/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Cache string
	Limit int
}

// HistoryResult is the payload of the history command.
type HistoryResult struct {
	Runs []HistoryEntry `json:"runs"`
}

// HistoryEntry is one recorded compile run.
type HistoryEntry struct {
	Seq         int64  `json:"seq"`
	ID          string `json:"id"`
	Input       string `json:"input"`
	Output      string `json:"output"`
	ArtifactKey string `json:"artifact_key"`
	CacheHit    bool   `json:"cache_hit"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded compile runs",
		Long: `List compile runs recorded in an artifact store, oldest first.

Examples:
  tapec history --cache ./tapec.db
  tapec history --cache ./tapec.db --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Cache, "cache", "", "path to SQLite artifact store (required)")
	_ = cmd.MarkFlagRequired("cache")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "show only the most recent runs (0 for all)")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.newFormatter(cmd)

	// Opening a missing path would create an empty store.
	if _, err := os.Stat(opts.Cache); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeCache, fmt.Sprintf("cache not found: %s", opts.Cache), nil)
	}
	st, err := store.Open(opts.Cache)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeCache, fmt.Sprintf("open cache: %v", err), nil)
	}
	defer st.Close()

	runs, err := st.Runs(ctx, opts.Limit)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeCache, err.Error(), nil)
	}

	result := HistoryResult{Runs: make([]HistoryEntry, len(runs))}
	for i, r := range runs {
		result.Runs[i] = HistoryEntry{
			Seq:         r.Seq,
			ID:          r.ID,
			Input:       r.InputPath,
			Output:      r.OutputPath,
			ArtifactKey: r.ArtifactKey,
			CacheHit:    r.CacheHit,
		}
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, e := range result.Runs {
		hit := "miss"
		if e.CacheHit {
			hit = "hit"
		}
		fmt.Fprintf(w, "%4d  %s  %s → %s  [%s %s]\n", e.Seq, e.ID, e.Input, e.Output, hit, shortKey(e.ArtifactKey))
	}
	return nil
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
