package archive

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/roach88/syscov/internal/model"
)

// Run describes one compute invocation.
type Run struct {
	ID            string
	Seq           int64
	StartedAt     time.Time
	Channel       string
	Seed          uint64
	ConfigHash    string
	EngineVersion string
}

// BeginRun records a run and assigns its Seq, one past the latest run.
// Re-recording an existing run id is a no-op.
func (a *Archive) BeginRun(ctx context.Context, run Run) (Run, error) {
	var last int64
	if err := a.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM runs`).Scan(&last); err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}
	run.Seq = last + 1
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO runs (id, seq, started_at, channel, seed, config_hash, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Seq,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Channel,
		strconv.FormatUint(run.Seed, 10),
		run.ConfigHash,
		run.EngineVersion,
	)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}
	return run, nil
}

// Checkpoint replaces every entry of the archive with entries in one
// transaction. On error the previous checkpoint is kept.
func (a *Archive) Checkpoint(ctx context.Context, runID string, seq int64, entries []model.Entry) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("checkpoint: clear entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (name, run_id, seq, rows, cols, data)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if len(e.Data) != e.Rows*e.Cols {
			return fmt.Errorf("checkpoint: entry %s has %d values for %dx%d", e.Name, len(e.Data), e.Rows, e.Cols)
		}
		if _, err := stmt.ExecContext(ctx, e.Name, runID, seq, e.Rows, e.Cols, encodeFloats(e.Data)); err != nil {
			return fmt.Errorf("checkpoint: write %s: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("checkpoint: commit: %w", err)
	}
	return nil
}
