package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrNotSquare is returned when a square matrix is requested from a
// non-square entry.
var ErrNotSquare = errors.New("model: entry is not square")

// Entry is one named array of the archive: a matrix stored row-major, or a
// vector stored as a single row.
type Entry struct {
	Name string
	Rows int
	Cols int
	Data []float64
}

// MatrixEntry copies m into an entry.
func MatrixEntry(name string, m mat.Matrix) Entry {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, m.At(i, j))
		}
	}
	return Entry{Name: name, Rows: r, Cols: c, Data: data}
}

// VectorEntry copies v into a single-row entry.
func VectorEntry(name string, v []float64) Entry {
	return Entry{Name: name, Rows: 1, Cols: len(v), Data: append([]float64(nil), v...)}
}

// IsVector reports whether the entry holds a single row.
func (e Entry) IsVector() bool {
	return e.Rows == 1
}

// Dense returns the entry as a matrix sharing no storage with e.
func (e Entry) Dense() *mat.Dense {
	if e.Rows == 0 || e.Cols == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(e.Rows, e.Cols, append([]float64(nil), e.Data...))
}

// Sym returns the entry as a symmetric matrix. Only the upper triangle is
// read.
func (e Entry) Sym() (*mat.SymDense, error) {
	if e.Rows != e.Cols || e.Rows == 0 {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrNotSquare, e.Name, e.Rows, e.Cols)
	}
	return mat.NewSymDense(e.Rows, append([]float64(nil), e.Data...)), nil
}
