package optimize

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/tapec/internal/ir"
)

// Fold modes.
const (
	ModeFixed    = "fixed"    // apply Fold a fixed number of rounds
	ModeFixpoint = "fixpoint" // apply Fold until the tree stops changing
)

// DefaultMemMoveMin is the shortest chain ExtractMemMoves collapses.
// Chains of ten cells or fewer stay in per-cell form.
const DefaultMemMoveMin = 11

// Config selects and tunes the passes of the pipeline.
type Config struct {
	Mode       string // ModeFixed or ModeFixpoint
	Rounds     int    // Fold rounds in ModeFixed
	MaxRounds  int    // Fold round cap in ModeFixpoint
	Glider     bool
	MemMove    bool
	MemMoveMin int
	DecMove    bool

	DumpAfter string    // dump IR after this pass ("*" for all)
	Dump      io.Writer // destination for dumps
	Logger    *slog.Logger
}

// DefaultConfig returns the standard pipeline: gliders, three Fold rounds,
// block moves.
func DefaultConfig() Config {
	return Config{
		Mode:       ModeFixed,
		Rounds:     3,
		MaxRounds:  16,
		Glider:     true,
		MemMove:    true,
		MemMoveMin: DefaultMemMoveMin,
	}
}

// Pass describes a single tree-to-tree rewrite.
type Pass struct {
	Name string
	Fn   func(ir.Block) ir.Block
}

// Pass names.
const (
	PassGlider  = "glider"
	PassDecMove = "decmove"
	PassFold    = "fold"
	PassMemMove = "memmove"
)

// Passes returns the pipeline selected by cfg, in execution order:
// glider, decmove, fold, memmove.
func Passes(cfg Config) []Pass {
	var passes []Pass
	if cfg.Glider {
		passes = append(passes, Pass{Name: PassGlider, Fn: ExtractGliders})
	}
	if cfg.DecMove {
		passes = append(passes, Pass{Name: PassDecMove, Fn: ExtractDecMoves})
	}
	passes = append(passes, Pass{Name: PassFold, Fn: foldPass(cfg)})
	if cfg.MemMove {
		minSize := cfg.MemMoveMin
		if minSize <= 0 {
			minSize = DefaultMemMoveMin
		}
		passes = append(passes, Pass{Name: PassMemMove, Fn: func(b ir.Block) ir.Block {
			return ExtractMemMoves(b, minSize)
		}})
	}
	return passes
}

func foldPass(cfg Config) func(ir.Block) ir.Block {
	logger := loggerOf(cfg)
	if cfg.Mode == ModeFixpoint {
		maxRounds := cfg.MaxRounds
		if maxRounds <= 0 {
			maxRounds = 16
		}
		return func(b ir.Block) ir.Block {
			out, rounds := Fixpoint(b, maxRounds)
			logger.Debug("fold reached fixed point", "rounds", rounds, "max_rounds", maxRounds)
			return out
		}
	}
	rounds := cfg.Rounds
	if rounds <= 0 {
		rounds = 3
	}
	return func(b ir.Block) ir.Block {
		return Optimize(b, rounds)
	}
}

// Run executes passes on b in order and returns the final tree.
func Run(b ir.Block, passes []Pass, cfg Config) (ir.Block, error) {
	logger := loggerOf(cfg)
	for _, p := range passes {
		before := ir.Count(b)
		b = p.Fn(b)
		logger.Debug("pass complete",
			"pass", p.Name,
			"nodes_before", before,
			"nodes_after", ir.Count(b),
		)

		if cfg.Dump != nil && shouldDump(cfg.DumpAfter, p.Name) {
			if _, err := fmt.Fprintf(cfg.Dump, "--- after %s ---\n", p.Name); err != nil {
				return nil, fmt.Errorf("dump after %s: %w", p.Name, err)
			}
			if err := ir.Fprint(cfg.Dump, b); err != nil {
				return nil, fmt.Errorf("dump after %s: %w", p.Name, err)
			}
		}
	}
	return b, nil
}

func shouldDump(pattern, name string) bool {
	return pattern == "*" || pattern == name
}

func loggerOf(cfg Config) *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
