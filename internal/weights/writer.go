package weights

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// Event is one store row: an event header and the universe weights of each
// neutrino in it.
type Event struct {
	Run       uint32
	Subrun    uint32
	Event     uint32
	Neutrinos []Neutrino
}

// Neutrino carries the weights of one simulated interaction. Params[p] is
// the universe weight vector of systematic parameter p.
type Neutrino struct {
	Index  int32
	Params [][]float32
}

// ErrInconsistentLayout is returned when an event's parameter layout
// differs from the first event written.
var ErrInconsistentLayout = errors.New("weights: inconsistent parameter layout")

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithBatchBudget caps the estimated size of each record batch in bytes.
func WithBatchBudget(n uint64) WriterOption {
	return func(w *Writer) { w.budget = n }
}

// WithAllocator sets the Arrow memory allocator.
func WithAllocator(mem memory.Allocator) WriterOption {
	return func(w *Writer) { w.mem = mem }
}

// Writer streams events into an event store.
type Writer struct {
	ipc     *ipc.Writer
	builder *array.RecordBuilder
	mem     memory.Allocator
	budget  uint64
	pending uint64
	rows    int
	layout  []int
}

// NewWriter returns a Writer emitting an Arrow IPC stream to w.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	sw := &Writer{mem: memory.DefaultAllocator}
	for _, opt := range opts {
		opt(sw)
	}
	if sw.budget == 0 {
		sw.budget, _ = ParseBudget(DefaultBatchBudget)
	}
	schema := Schema()
	sw.ipc = ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(sw.mem))
	sw.builder = array.NewRecordBuilder(sw.mem, schema)
	return sw
}

// Append adds one event, flushing the current batch first if the event
// would push it past the budget.
func (w *Writer) Append(ev Event) error {
	if err := w.checkLayout(ev); err != nil {
		return err
	}
	size := eventBytes(ev)
	if w.rows > 0 && w.pending+size > w.budget {
		if err := w.Flush(); err != nil {
			return err
		}
	}

	b := w.builder
	b.Field(0).(*array.Uint32Builder).Append(ev.Run)
	b.Field(1).(*array.Uint32Builder).Append(ev.Subrun)
	b.Field(2).(*array.Uint32Builder).Append(ev.Event)

	nuIndex := b.Field(3).(*array.ListBuilder)
	wgtLength := b.Field(4).(*array.ListBuilder)
	univIdx := b.Field(5).(*array.ListBuilder)
	univLength := b.Field(6).(*array.ListBuilder)
	univ := b.Field(8).(*array.ListBuilder)
	nuIndex.Append(true)
	wgtLength.Append(true)
	univIdx.Append(true)
	univLength.Append(true)
	univ.Append(true)

	var total int64
	for _, nu := range ev.Neutrinos {
		nuIndex.ValueBuilder().(*array.Int32Builder).Append(nu.Index)
		wgtLength.ValueBuilder().(*array.Int32Builder).Append(int32(len(nu.Params)))
		for _, p := range nu.Params {
			univIdx.ValueBuilder().(*array.Int64Builder).Append(total)
			univLength.ValueBuilder().(*array.Int64Builder).Append(int64(len(p)))
			univ.ValueBuilder().(*array.Float32Builder).AppendValues(p, nil)
			total += int64(len(p))
		}
	}
	b.Field(7).(*array.Int64Builder).Append(total)

	w.pending += size
	w.rows++
	return nil
}

// Flush writes the buffered events as one record batch.
func (w *Writer) Flush() error {
	if w.rows == 0 {
		return nil
	}
	rec := w.builder.NewRecord()
	defer rec.Release()
	if err := w.ipc.Write(rec); err != nil {
		return fmt.Errorf("write record batch: %w", err)
	}
	w.pending = 0
	w.rows = 0
	return nil
}

// Close flushes pending events and ends the stream. It does not close the
// underlying io.Writer.
func (w *Writer) Close() error {
	defer w.builder.Release()
	if err := w.Flush(); err != nil {
		return err
	}
	if err := w.ipc.Close(); err != nil {
		return fmt.Errorf("close event store: %w", err)
	}
	return nil
}

// checkLayout enforces one universe count per parameter across the store,
// so the offset table of the first event applies to every event.
func (w *Writer) checkLayout(ev Event) error {
	for _, nu := range ev.Neutrinos {
		lens := make([]int, len(nu.Params))
		for i, p := range nu.Params {
			lens[i] = len(p)
		}
		if w.layout == nil {
			w.layout = lens
			continue
		}
		if len(lens) != len(w.layout) {
			return fmt.Errorf("%w: event %d/%d/%d has %d parameters, want %d",
				ErrInconsistentLayout, ev.Run, ev.Subrun, ev.Event, len(lens), len(w.layout))
		}
		for i := range lens {
			if lens[i] != w.layout[i] {
				return fmt.Errorf("%w: event %d/%d/%d parameter %d has %d universes, want %d",
					ErrInconsistentLayout, ev.Run, ev.Subrun, ev.Event, i, lens[i], w.layout[i])
			}
		}
	}
	return nil
}

// eventBytes estimates the Arrow footprint of one event row.
func eventBytes(ev Event) uint64 {
	// three header words, the total and five list offsets
	size := uint64(3*4 + 8 + 5*4)
	for _, nu := range ev.Neutrinos {
		size += 4 + 4 + uint64(len(nu.Params))*16
		for _, p := range nu.Params {
			size += uint64(len(p)) * 4
		}
	}
	return size
}

// WriteFile writes events to a new event store at path.
func WriteFile(path string, events []Event, opts ...WriterOption) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create event store: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close event store: %w", cerr)
		}
	}()
	w := NewWriter(f, opts...)
	for _, ev := range events {
		if err := w.Append(ev); err != nil {
			w.builder.Release()
			return err
		}
	}
	return w.Close()
}
