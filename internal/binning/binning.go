// Package binning assigns values to fixed-width histogram bins.
//
// Bins are half-open, [e_i, e_i+1). Values below the first edge map to
// Underflow; values at or above the last edge, and NaN, map to the overflow
// index n. Both sentinels must be excluded from every downstream sum; use
// Valid to test an index.
package binning

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Underflow is the bin index of values below the histogram range.
const Underflow = -1

// ErrInvalidSpec is returned for a bin specification that cannot form edges.
var ErrInvalidSpec = errors.New("binning: invalid bin specification")

// Spec is a fixed-width binning of [Low, High) into N bins.
// The edges are computed once and shared by every consumer of the Spec.
type Spec struct {
	N     int
	Low   float64
	High  float64
	edges []float64
}

// NewSpec builds a Spec with n bins over [low, high).
func NewSpec(n int, low, high float64) (*Spec, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: need at least one bin, got %d", ErrInvalidSpec, n)
	}
	if math.IsNaN(low) || math.IsNaN(high) || math.IsInf(low, 0) || math.IsInf(high, 0) {
		return nil, fmt.Errorf("%w: range must be finite", ErrInvalidSpec)
	}
	if !(low < high) {
		return nil, fmt.Errorf("%w: low %g must be below high %g", ErrInvalidSpec, low, high)
	}
	edges := floats.Span(make([]float64, n+1), low, high)
	return &Spec{N: n, Low: low, High: high, edges: edges}, nil
}

// Overflow returns the sentinel index of values at or above High.
func (s *Spec) Overflow() int {
	return s.N
}

// Edges returns a copy of the n+1 bin edges.
func (s *Spec) Edges() []float64 {
	return append([]float64(nil), s.edges...)
}

// Centers returns the n bin centers.
func (s *Spec) Centers() []float64 {
	c := make([]float64, s.N)
	for i := range c {
		c[i] = (s.edges[i] + s.edges[i+1]) / 2
	}
	return c
}

// Widths returns the n bin widths.
func (s *Spec) Widths() []float64 {
	w := make([]float64, s.N)
	for i := range w {
		w[i] = s.edges[i+1] - s.edges[i]
	}
	return w
}

// Index returns the bin of x, Underflow, or Overflow.
func (s *Spec) Index(x float64) int {
	if math.IsNaN(x) {
		return s.N
	}
	// First edge strictly greater than x; the bin is the one before it.
	i := sort.Search(len(s.edges), func(i int) bool { return s.edges[i] > x })
	if i == len(s.edges) {
		return s.N
	}
	return i - 1
}

// Assign returns the bin index of every value.
func (s *Spec) Assign(values []float64) []int {
	idx := make([]int, len(values))
	for i, v := range values {
		idx[i] = s.Index(v)
	}
	return idx
}

// Counts returns the number of in-range indices per bin.
func (s *Spec) Counts(indices []int) []float64 {
	counts := make([]float64, s.N)
	for _, b := range indices {
		if Valid(b, s.N) {
			counts[b]++
		}
	}
	return counts
}

// Valid reports whether idx is an in-range bin of an n-bin histogram.
func Valid(idx, n int) bool {
	return idx >= 0 && idx < n
}
