package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// LookupArtifact returns the artifact stored under key. The bool is false
// when no such artifact exists.
func (s *Store) LookupArtifact(ctx context.Context, key string) (Artifact, bool, error) {
	return lookupArtifact(ctx, s.db, key)
}

func lookupArtifact(ctx context.Context, q queryer, key string) (Artifact, bool, error) {
	var a Artifact
	err := q.QueryRowContext(ctx, `
		SELECT key, program_hash, backend, params, code, raw_nodes, optimized_nodes, seq
		FROM artifacts
		WHERE key = ?
	`, key).Scan(
		&a.Key,
		&a.ProgramHash,
		&a.Backend,
		&a.Params,
		&a.Code,
		&a.RawNodes,
		&a.OptimizedNodes,
		&a.Seq,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Artifact{}, false, nil
	}
	if err != nil {
		return Artifact{}, false, fmt.Errorf("lookup artifact: %w", err)
	}
	return a, true, nil
}

// Runs returns up to limit runs ordered by seq ASC, id ASC COLLATE BINARY.
// A limit of zero or less returns every run. When limited, the most recent
// runs are returned, still in ascending order.
//
// Returns an empty slice (not nil) if no runs are recorded.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, artifact_key, input_path, output_path, cache_hit, seq
		FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`
	args := []any{}
	if limit > 0 {
		query = `
			SELECT id, artifact_key, input_path, output_path, cache_hit, seq
			FROM (
				SELECT * FROM runs
				ORDER BY seq DESC, id COLLATE BINARY DESC
				LIMIT ?
			)
			ORDER BY seq ASC, id COLLATE BINARY ASC
		`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.ArtifactKey, &r.InputPath, &r.OutputPath, &r.CacheHit, &r.Seq); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
