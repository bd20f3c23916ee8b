package eventlog

import (
	"fmt"
	"math"

	"github.com/roach88/syscov/internal/model"
)

// Kind is the storage type of a column.
type Kind int

const (
	// KindFloat columns hold at least one non-integral or NaN value.
	KindFloat Kind = iota
	// KindInt columns hold only finite integral values.
	KindInt
)

func (k Kind) String() string {
	if k == KindInt {
		return "int"
	}
	return "float"
}

// Column is one named, typed column of a Table.
type Column struct {
	Name   string
	Kind   Kind
	ints   []int64
	floats []float64
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	if c.Kind == KindInt {
		return len(c.ints)
	}
	return len(c.floats)
}

// Float returns row i as a float64 regardless of kind.
func (c *Column) Float(i int) float64 {
	if c.Kind == KindInt {
		return float64(c.ints[i])
	}
	return c.floats[i]
}

// newColumn stores values as integers when every value is finite and integral.
func newColumn(name string, values []float64) *Column {
	integral := len(values) > 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			integral = false
			break
		}
	}
	if !integral {
		return &Column{Name: name, Kind: KindFloat, floats: values}
	}
	ints := make([]int64, len(values))
	for i, v := range values {
		ints[i] = int64(v)
	}
	return &Column{Name: name, Kind: KindInt, ints: ints}
}

func (c *Column) pick(rows []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == KindInt {
		out.ints = make([]int64, len(rows))
		for i, r := range rows {
			out.ints[i] = c.ints[r]
		}
		return out
	}
	out.floats = make([]float64, len(rows))
	for i, r := range rows {
		out.floats[i] = c.floats[r]
	}
	return out
}

// Table is an ordered, read-only collection of event records for one tag of
// one sample.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

func newTable(columns []*Column) *Table {
	t := &Table{columns: columns, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		t.index[c.Name] = i
	}
	if len(columns) > 0 {
		t.rows = columns[0].Len()
	}
	return t
}

// NumRows returns the number of records.
func (t *Table) NumRows() int {
	return t.rows
}

// Columns returns the column names in header order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the table carries the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return t.columns[i], nil
}

// Floats returns a copy of the named column as float64 values.
func (t *Table) Floats(name string) ([]float64, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, c.Len())
	for i := range out {
		out[i] = c.Float(i)
	}
	return out, nil
}

// Ints returns a copy of the named column, which must be integral.
func (t *Table) Ints(name string) ([]int64, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != KindInt {
		return nil, fmt.Errorf("%w: %q", ErrNotIntegral, name)
	}
	return append([]int64(nil), c.ints...), nil
}

// Keys returns the identity of every record. The run, subrun and event
// columns are required; a table without a nu_id column (e.g. event-level
// tags) reports nu_id 0 for every record.
func (t *Table) Keys() ([]model.EventKey, error) {
	run, err := t.Ints(ColRun)
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	subrun, err := t.Ints(ColSubrun)
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	event, err := t.Ints(ColEvent)
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	var nu []int64
	if t.Has(ColNuID) {
		if nu, err = t.Ints(ColNuID); err != nil {
			return nil, fmt.Errorf("keys: %w", err)
		}
	}

	keys := make([]model.EventKey, t.rows)
	for i := range keys {
		keys[i] = model.EventKey{Run: run[i], Subrun: subrun[i], Event: event[i]}
		if nu != nil {
			keys[i].NuID = nu[i]
		}
	}
	return keys, nil
}

// Select returns a new table holding the given rows, in the given order.
// Rows may repeat.
func (t *Table) Select(rows []int) *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.pick(rows)
	}
	out := newTable(cols)
	out.rows = len(rows)
	return out
}

