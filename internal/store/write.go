package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/tapec/internal/ir"
)

// MarshalParams converts compile settings to the canonical JSON stored
// alongside an artifact.
func MarshalParams(params map[string]any) (string, error) {
	data, err := ir.MarshalCanonical(params)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	return string(data), nil
}

// WriteArtifact stores a compile result and returns it with its seq.
// Uses ON CONFLICT(key) DO NOTHING: the key is a content hash, so an existing
// row already holds identical code and is returned unchanged.
func (s *Store) WriteArtifact(ctx context.Context, a Artifact) (Artifact, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Artifact{}, fmt.Errorf("write artifact: %w", err)
	}
	defer tx.Rollback()

	seq, err := nextSeq(ctx, tx, "artifacts")
	if err != nil {
		return Artifact{}, fmt.Errorf("write artifact: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO artifacts
		(key, program_hash, backend, params, code, raw_nodes, optimized_nodes, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`,
		a.Key,
		a.ProgramHash,
		a.Backend,
		a.Params,
		a.Code,
		a.RawNodes,
		a.OptimizedNodes,
		seq,
	)
	if err != nil {
		return Artifact{}, fmt.Errorf("write artifact: %w", err)
	}

	stored, found, err := lookupArtifact(ctx, tx, a.Key)
	if err != nil {
		return Artifact{}, err
	}
	if !found {
		return Artifact{}, fmt.Errorf("write artifact: row %s missing after insert", a.Key)
	}
	if err := tx.Commit(); err != nil {
		return Artifact{}, fmt.Errorf("write artifact: commit: %w", err)
	}
	return stored, nil
}

// RecordRun appends a run to the history, assigning its ID and seq.
// The referenced artifact must exist (foreign key constraint).
func (s *Store) RecordRun(ctx context.Context, r Run) (Run, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	seq, err := nextSeq(ctx, tx, "runs")
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	r.Seq = seq
	if r.ID == "" {
		r.ID = s.ids.Generate()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, artifact_key, input_path, output_path, cache_hit, seq)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		r.ArtifactKey,
		r.InputPath,
		r.OutputPath,
		r.CacheHit,
		r.Seq,
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("record run: commit: %w", err)
	}
	return r, nil
}

// nextSeq returns MAX(seq)+1 for table. Table names are constants of this
// package, never user input.
func nextSeq(ctx context.Context, tx *sql.Tx, table string) (int64, error) {
	var last sql.NullInt64
	if err := tx.QueryRowContext(ctx, "SELECT MAX(seq) FROM "+table).Scan(&last); err != nil {
		return 0, fmt.Errorf("next seq for %s: %w", table, err)
	}
	return last.Int64 + 1, nil
}
