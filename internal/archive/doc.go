// Package archive provides the SQLite-backed matrix archive written by a
// covariance run.
//
// The archive holds:
//   - Runs: one record per compute invocation (seed, channel, config hash)
//   - Entries: the named vectors and matrices of the latest checkpoint
//
// # Checkpoints
//
// The engine checkpoints after every (systematic, variable) pair. A
// checkpoint replaces the whole entry set inside one transaction, so a
// failure part-way through a run leaves the last complete checkpoint
// intact. Entries carry the seq of the checkpoint that wrote them; ordering
// uses seq, never timestamps.
//
// # Database Configuration
//
//   - WAL mode: readers (show, summary) do not block the writer
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: entries reference their run
//
// Matrix data is stored as little-endian float64 BLOBs, row-major.
package archive
