package compiler

import (
	"context"
	"fmt"

	"github.com/roach88/tapec/internal/ir"
	"github.com/roach88/tapec/internal/parser"
	"github.com/roach88/tapec/internal/store"
)

// Cache is the part of the store the compiler reads and writes.
type Cache interface {
	LookupArtifact(ctx context.Context, key string) (store.Artifact, bool, error)
	WriteArtifact(ctx context.Context, a store.Artifact) (store.Artifact, error)
}

// CompileCached is Compile backed by an artifact cache. The key covers the
// parsed program (so comments never cause a miss), the backend and params,
// which must hold every setting that changes the output.
//
// On a hit the optimizer does not run: Result.Optimized and Stats.Kinds are
// nil and the code and node counts come from the stored artifact.
func CompileCached(ctx context.Context, cache Cache, src string, backend Backend, params map[string]any, opts Options) (*Result, store.Artifact, bool, error) {
	raw, err := parser.Parse(src)
	if err != nil {
		return nil, store.Artifact{}, false, err
	}

	key, err := ir.ArtifactKey(raw, string(backend), params)
	if err != nil {
		return nil, store.Artifact{}, false, fmt.Errorf("artifact key: %w", err)
	}

	art, found, err := cache.LookupArtifact(ctx, key)
	if err != nil {
		return nil, store.Artifact{}, false, err
	}
	if found {
		if opts.Logger != nil {
			opts.Logger.Debug("artifact cache hit", "key", key, "seq", art.Seq)
		}
		return &Result{
			Raw:  raw,
			Code: art.Code,
			Stats: Stats{
				RawNodes:       art.RawNodes,
				OptimizedNodes: art.OptimizedNodes,
			},
		}, art, true, nil
	}

	res, err := CompileIR(raw, opts)
	if err != nil {
		return nil, store.Artifact{}, false, err
	}

	programHash, err := ir.ProgramHash(raw)
	if err != nil {
		return nil, store.Artifact{}, false, err
	}
	paramsJSON, err := store.MarshalParams(params)
	if err != nil {
		return nil, store.Artifact{}, false, err
	}
	art, err = cache.WriteArtifact(ctx, store.Artifact{
		Key:            key,
		ProgramHash:    programHash,
		Backend:        string(backend),
		Params:         paramsJSON,
		Code:           res.Code,
		RawNodes:       res.Stats.RawNodes,
		OptimizedNodes: res.Stats.OptimizedNodes,
	})
	if err != nil {
		return nil, store.Artifact{}, false, err
	}
	return res, art, false, nil
}
