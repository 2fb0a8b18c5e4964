// Package store provides the SQLite-backed compile cache and run history.
//
// Two tables are kept:
//   - artifacts: generated code keyed by a content hash of the raw program,
//     the backend and every setting that changes the output
//   - runs: one row per compile invocation, pointing at the artifact it
//     produced or reused
//
// # Ordering
//
// Rows carry a logical seq (MAX(seq)+1 at insert time), never a timestamp.
// Listings order by seq ASC, id ASC COLLATE BINARY so that history output is
// stable across machines.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: runs must reference a stored artifact
//
// Cache keys are computed by ir.ArtifactKey using canonical JSON and SHA-256
// with domain separation.
package store
