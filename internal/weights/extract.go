package weights

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"gonum.org/v1/gonum/mat"

	"github.com/roach88/syscov/internal/logging"
	"github.com/roach88/syscov/internal/model"
)

// Options tunes extraction.
type Options struct {
	// BatchBudget is the largest record batch, in bytes, expected from the
	// store. Larger batches are processed but logged. Zero selects
	// DefaultBatchBudget.
	BatchBudget uint64

	Allocator memory.Allocator
	Logger    *slog.Logger
}

// Result holds the universe weights of the selected neutrino events.
type Result struct {
	// Weights has one row per non-cosmic selected event, in selection
	// order, and one column per universe. Nil when nothing was selected
	// from a neutrino.
	Weights *mat.Dense

	// Matched flags the rows of Weights that were filled from the store.
	Matched []bool

	Universes int

	// Mismatches lists the selected events that were not filled.
	Mismatches []*JoinMismatchError

	// Batches is the number of record batches read in the weight pass.
	Batches int
}

// joined pairs a selected weight row with its store row.
type joined struct {
	row      int
	storeRow int
	nuID     int32
}

// Extract reads the universe weights of systematic parameter param for the
// selected events from the event store at path.
//
// selected is the key of every selected record, cosmic ones included;
// cosmic records get no weight row. The store is read twice: once for the
// join and once for the weights.
func Extract(ctx context.Context, path string, selected []model.EventKey, param int, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Allocator == nil {
		opts.Allocator = memory.DefaultAllocator
	}
	if opts.BatchBudget == 0 {
		opts.BatchBudget, _ = ParseBudget(DefaultBatchBudget)
	}

	var keys []model.EventKey
	for _, k := range selected {
		if !k.IsCosmic() {
			keys = append(keys, k)
		}
	}

	rows, off, err := joinPass(ctx, path, keys, param, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Matched:   make([]bool, len(keys)),
		Universes: off.universes(),
	}
	if len(keys) > 0 {
		res.Weights = mat.NewDense(len(keys), res.Universes, nil)
	}
	reasons := make(map[int]string, len(keys))
	for i := range keys {
		reasons[i] = ReasonNoStoreRow
	}
	for _, j := range rows {
		reasons[j.row] = ReasonOutsideWindow
	}

	if len(rows) > 0 {
		if err := weightPass(ctx, path, rows, off, opts, res, reasons); err != nil {
			return nil, err
		}
	}

	for i, k := range keys {
		if res.Matched[i] {
			continue
		}
		res.Mismatches = append(res.Mismatches, &JoinMismatchError{Key: k, Row: i, Reason: reasons[i]})
	}
	opts.Logger.Debug("weights extracted",
		"param", param,
		"selected", len(keys),
		"matched", len(keys)-len(res.Mismatches),
		"universes", res.Universes,
		"batches", res.Batches)
	return res, nil
}

// joinPass reads the header branches, keeps the first store row of each
// (run, subrun, event, nu_id) key and right-joins keys onto it. The
// returned rows are sorted by store row.
func joinPass(ctx context.Context, path string, keys []model.EventKey, param int, opts Options) ([]joined, offsets, error) {
	want := make(map[model.EventKey][]int, len(keys))
	for i, k := range keys {
		want[k] = append(want[k], i)
	}

	var (
		rows     []joined
		off      offsets
		haveOff  bool
		storeRow int
	)
	seen := make(map[model.EventKey]struct{})
	err := eachRecord(ctx, path, opts.Allocator, func(rec arrow.Record) error {
		h, err := readHeader(rec)
		if err != nil {
			return err
		}
		for i := 0; i < int(rec.NumRows()); i++ {
			nus, err := h.neutrinos(i)
			if err != nil {
				return err
			}
			if !haveOff && len(nus) > 0 {
				if off, err = h.offsetTable(i, param); err != nil {
					return err
				}
				haveOff = true
			}
			for _, nu := range nus {
				k := model.EventKey{
					Run:    int64(h.run.Value(i)),
					Subrun: int64(h.subrun.Value(i)),
					Event:  int64(h.evt.Value(i)),
					NuID:   int64(nu),
				}
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				for _, r := range want[k] {
					rows = append(rows, joined{row: r, storeRow: storeRow + i, nuID: nu})
				}
			}
		}
		storeRow += int(rec.NumRows())
		return nil
	})
	if err != nil {
		return nil, offsets{}, err
	}
	if !haveOff {
		return nil, offsets{}, fmt.Errorf("%w: %s", ErrNoOffsetTable, path)
	}
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].storeRow < rows[b].storeRow })
	return rows, off, nil
}

// weightPass streams record batches and copies each joined row's universe
// block once its store row falls inside the batch window.
func weightPass(ctx context.Context, path string, rows []joined, off offsets, opts Options, res *Result, reasons map[int]string) error {
	next := 0
	offset := 0
	return eachRecord(ctx, path, opts.Allocator, func(rec arrow.Record) error {
		res.Batches++
		n := int(rec.NumRows())
		if size := recordBytes(rec); size > opts.BatchBudget {
			opts.Logger.Warn("record batch exceeds budget",
				"batch", res.Batches,
				"size", FormatBudget(size),
				"budget", FormatBudget(opts.BatchBudget))
		}
		univ, err := typed[*array.List](rec, BranchUniv)
		if err != nil {
			return err
		}
		vals, ok := univ.ListValues().(*array.Float32)
		if !ok {
			return fmt.Errorf("%w: %s values are %s", ErrBranchType, BranchUniv, univ.ListValues().DataType())
		}
		flat := vals.Float32Values()
		for ; next < len(rows); next++ {
			j := rows[next]
			local := j.storeRow - offset
			if local >= n {
				break
			}
			if local < 0 {
				continue
			}
			start, end := univ.ValueOffsets(local)
			lo := int(start) + off.stride*int(j.nuID) + off.begin
			hi := int(start) + off.stride*int(j.nuID) + off.end
			if j.nuID < 0 || lo < int(start) || hi > int(end) {
				reasons[j.row] = ReasonShortBlock
				continue
			}
			dst := res.Weights.RawRowView(j.row)
			for u, w := range flat[lo:hi] {
				dst[u] = float64(w)
			}
			res.Matched[j.row] = true
		}
		offset += n
		opts.Logger.Log(ctx, logging.LevelTrace, "weight batch",
			"batch", res.Batches,
			"rows", n,
			"offset", offset)
		return nil
	})
}

// eachRecord opens the store and calls fn for every record batch.
func eachRecord(ctx context.Context, path string, mem memory.Allocator, fn func(arrow.Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}
	defer f.Close()
	return readRecords(ctx, f, mem, fn)
}

func readRecords(ctx context.Context, r io.Reader, mem memory.Allocator, fn func(arrow.Record) error) error {
	rdr, err := ipc.NewReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("read event store: %w", err)
	}
	defer rdr.Release()
	for rdr.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(rdr.Record()); err != nil {
			return err
		}
	}
	if err := rdr.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("read event store: %w", err)
	}
	return nil
}
