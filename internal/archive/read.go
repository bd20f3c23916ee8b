package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/roach88/syscov/internal/model"
)

// ErrNotFound is returned when a named entry is not in the archive.
var ErrNotFound = errors.New("archive: entry not found")

// Info describes a stored entry without its data.
type Info struct {
	Name  string
	RunID string
	Seq   int64
	Rows  int
	Cols  int
}

// List returns every entry's description ordered by name.
// Returns an empty slice (not nil) for an empty archive.
func (a *Archive) List(ctx context.Context) ([]Info, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT name, run_id, seq, rows, cols
		FROM entries
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	infos := []Info{}
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.Name, &info.RunID, &info.Seq, &info.Rows, &info.Cols); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return infos, nil
}

// Get returns the named entry, or ErrNotFound.
func (a *Archive) Get(ctx context.Context, name string) (model.Entry, error) {
	var (
		e    model.Entry
		blob []byte
	)
	err := a.db.QueryRowContext(ctx, `
		SELECT name, rows, cols, data FROM entries WHERE name = ?
	`, name).Scan(&e.Name, &e.Rows, &e.Cols, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return model.Entry{}, fmt.Errorf("read entry %s: %w", name, err)
	}
	if e.Data, err = decodeFloats(blob, e.Rows*e.Cols); err != nil {
		return model.Entry{}, fmt.Errorf("read entry %s: %w", name, err)
	}
	return e, nil
}

// All returns every entry ordered by name.
func (a *Archive) All(ctx context.Context) ([]model.Entry, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT name, rows, cols, data
		FROM entries
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []model.Entry{}
	for rows.Next() {
		var (
			e    model.Entry
			blob []byte
		)
		if err := rows.Scan(&e.Name, &e.Rows, &e.Cols, &blob); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.Data, err = decodeFloats(blob, e.Rows*e.Cols); err != nil {
			return nil, fmt.Errorf("read entry %s: %w", e.Name, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Runs returns every recorded run ordered by seq.
func (a *Archive) Runs(ctx context.Context) ([]Run, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, seq, started_at, channel, seed, config_hash, engine_version
		FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			r       Run
			started string
			seed    string
		)
		if err := rows.Scan(&r.ID, &r.Seq, &started, &r.Channel, &seed, &r.ConfigHash, &r.EngineVersion); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("run %s: started_at: %w", r.ID, err)
		}
		if r.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("run %s: seed: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
