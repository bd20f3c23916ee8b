package weights

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
)

// Branch names of the event store.
const (
	BranchRun        = "rec.hdr.run"
	BranchSubrun     = "rec.hdr.subrun"
	BranchEvent      = "rec.hdr.evt"
	BranchNuIndex    = "rec.mc.nu.index"
	BranchWgtLength  = "rec.mc.nu.wgt..length"
	BranchUnivIdx    = "rec.mc.nu.wgt.univ..idx"
	BranchUnivLength = "rec.mc.nu.wgt.univ..length"
	BranchUnivTotal  = "rec.mc.nu.wgt.univ..totarraysize"
	BranchUniv       = "rec.mc.nu.wgt.univ"
)

// Schema returns the Arrow schema of the event store.
func Schema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: BranchRun, Type: arrow.PrimitiveTypes.Uint32},
		{Name: BranchSubrun, Type: arrow.PrimitiveTypes.Uint32},
		{Name: BranchEvent, Type: arrow.PrimitiveTypes.Uint32},
		{Name: BranchNuIndex, Type: arrow.ListOf(arrow.PrimitiveTypes.Int32)},
		{Name: BranchWgtLength, Type: arrow.ListOf(arrow.PrimitiveTypes.Int32)},
		{Name: BranchUnivIdx, Type: arrow.ListOf(arrow.PrimitiveTypes.Int64)},
		{Name: BranchUnivLength, Type: arrow.ListOf(arrow.PrimitiveTypes.Int64)},
		{Name: BranchUnivTotal, Type: arrow.PrimitiveTypes.Int64},
		{Name: BranchUniv, Type: arrow.ListOf(arrow.PrimitiveTypes.Float32)},
	}, nil)
}

// header is the typed view of the header branches of one record batch.
type header struct {
	run, subrun, evt *array.Uint32
	nuIndex          *array.List
	wgtLength        *array.List
	univIdx          *array.List
	univLength       *array.List
	univTotal        *array.Int64
}

func column(rec arrow.Record, name string) (arrow.Array, error) {
	idx := rec.Schema().FieldIndices(name)
	if len(idx) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingBranch, name)
	}
	return rec.Column(idx[0]), nil
}

func typed[T arrow.Array](rec arrow.Record, name string) (T, error) {
	var zero T
	col, err := column(rec, name)
	if err != nil {
		return zero, err
	}
	t, ok := col.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %s", ErrBranchType, name, col.DataType())
	}
	return t, nil
}

func readHeader(rec arrow.Record) (*header, error) {
	var (
		h   header
		err error
	)
	if h.run, err = typed[*array.Uint32](rec, BranchRun); err != nil {
		return nil, err
	}
	if h.subrun, err = typed[*array.Uint32](rec, BranchSubrun); err != nil {
		return nil, err
	}
	if h.evt, err = typed[*array.Uint32](rec, BranchEvent); err != nil {
		return nil, err
	}
	if h.nuIndex, err = typed[*array.List](rec, BranchNuIndex); err != nil {
		return nil, err
	}
	if h.wgtLength, err = typed[*array.List](rec, BranchWgtLength); err != nil {
		return nil, err
	}
	if h.univIdx, err = typed[*array.List](rec, BranchUnivIdx); err != nil {
		return nil, err
	}
	if h.univLength, err = typed[*array.List](rec, BranchUnivLength); err != nil {
		return nil, err
	}
	if h.univTotal, err = typed[*array.Int64](rec, BranchUnivTotal); err != nil {
		return nil, err
	}
	return &h, nil
}

// neutrinos returns the neutrino ids of event row i.
func (h *header) neutrinos(i int) ([]int32, error) {
	vals, ok := h.nuIndex.ListValues().(*array.Int32)
	if !ok {
		return nil, fmt.Errorf("%w: %s values are %s", ErrBranchType, BranchNuIndex, h.nuIndex.ListValues().DataType())
	}
	start, end := h.nuIndex.ValueOffsets(i)
	return vals.Int32Values()[start:end], nil
}

// offsets is the universe layout shared by every event of a store.
type offsets struct {
	begin  int
	end    int
	stride int
}

func (o offsets) universes() int { return o.end - o.begin }

// offsetTable derives the layout of parameter param from event row i.
func (h *header) offsetTable(i, param int) (offsets, error) {
	idxVals, ok := h.univIdx.ListValues().(*array.Int64)
	if !ok {
		return offsets{}, fmt.Errorf("%w: %s values are %s", ErrBranchType, BranchUnivIdx, h.univIdx.ListValues().DataType())
	}
	lenVals, ok := h.univLength.ListValues().(*array.Int64)
	if !ok {
		return offsets{}, fmt.Errorf("%w: %s values are %s", ErrBranchType, BranchUnivLength, h.univLength.ListValues().DataType())
	}
	is, ie := h.univIdx.ValueOffsets(i)
	ls, le := h.univLength.ValueOffsets(i)
	idx := idxVals.Int64Values()[is:ie]
	length := lenVals.Int64Values()[ls:le]
	wgtVals, ok := h.wgtLength.ListValues().(*array.Int32)
	if !ok {
		return offsets{}, fmt.Errorf("%w: %s values are %s", ErrBranchType, BranchWgtLength, h.wgtLength.ListValues().DataType())
	}
	ws, we := h.wgtLength.ValueOffsets(i)
	perEvent := int(we - ws)
	if perEvent == 0 {
		return offsets{}, fmt.Errorf("%w: %s is empty", ErrNoOffsetTable, BranchWgtLength)
	}
	// idx and length hold one entry per (neutrino, parameter); only the
	// first neutrino's block is addressed by param.
	params := min(int(wgtVals.Value(int(ws))), len(idx), len(length))
	if param < 0 || param >= params {
		return offsets{}, fmt.Errorf("%w: index %d, store has %d", ErrUnknownParameter, param, params)
	}
	o := offsets{
		begin:  int(idx[param]),
		end:    int(idx[param] + length[param]),
		stride: int(h.univTotal.Value(i)) / perEvent,
	}
	if o.universes() < 1 {
		return offsets{}, fmt.Errorf("%w: parameter %d has no universes", ErrUnknownParameter, param)
	}
	return o, nil
}
