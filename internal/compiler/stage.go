package compiler

import (
	"fmt"

	"github.com/roach88/tapec/internal/ir"
	"github.com/roach88/tapec/internal/optimize"
	"github.com/roach88/tapec/internal/parser"
)

// Stages at which the IR can be inspected, in pipeline order.
const (
	StageParse  = "parse"
	StageGlider = "glider"
	StageFold   = "fold"
	StageFinal  = "final"
)

// Stages lists every valid stage name.
var Stages = []string{StageParse, StageGlider, StageFold, StageFinal}

// passOrder places each pass in pipeline order.
var passOrder = map[string]int{
	optimize.PassGlider:  1,
	optimize.PassDecMove: 2,
	optimize.PassFold:    3,
	optimize.PassMemMove: 4,
}

var stageOrder = map[string]int{
	StageParse:  0,
	StageGlider: 1,
	StageFold:   3,
	StageFinal:  4,
}

// IRAt parses src and runs the enabled passes up to and including stage.
// Disabled passes are skipped, so "glider" with gliders off is the parse tree.
func IRAt(src, stage string, opts Options) (ir.Block, error) {
	last, ok := stageOrder[stage]
	if !ok {
		return nil, &UsageError{Message: fmt.Sprintf("unknown stage %q (want one of %v)", stage, Stages)}
	}

	b, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}

	cfg := opts.Optimize
	cfg.Logger = opts.Logger
	var passes []optimize.Pass
	for _, p := range optimize.Passes(cfg) {
		if passOrder[p.Name] <= last {
			passes = append(passes, p)
		}
	}
	return optimize.Run(b, passes, cfg)
}
