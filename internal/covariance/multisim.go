package covariance

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/roach88/syscov/internal/binning"
)

// MultisimInput is the binned selection and its universe weights.
//
// Bins and Cosmic have one entry per selected record. Weights has one row
// per non-cosmic record, in record order, and one column per universe.
// Matched flags the weight rows that were found in the event store; rows
// that were not are left out of the ensemble. Weights may be nil only when
// there are no non-cosmic records.
type MultisimInput struct {
	Bins      []int
	Cosmic    []bool
	Weights   *mat.Dense
	Matched   []bool
	NBins     int
	Universes int
}

// MultisimResult holds the multisim covariance and the central value it is
// measured against.
type MultisimResult struct {
	Cov *mat.SymDense
	CV  []float64

	// Ensemble is the per-bin, per-universe weighted count (NBins x universes).
	Ensemble *mat.Dense
}

// Multisim computes the covariance of the deviation of every universe from
// the central value.
//
// For each bin b and universe u the ensemble value is the sum of the
// universe weights of matched non-cosmic records in b plus the number of
// cosmic records in b. Cosmic records weigh exactly 1 in every universe:
// the weight store carries no cosmic variation. The central value of b is
// the unweighted count of all records in b. The result is the sample
// covariance across universes of cv[b] - ensemble[b,u].
func Multisim(in MultisimInput) (*MultisimResult, error) {
	if in.NBins < 1 {
		return nil, fmt.Errorf("%w: multisim needs at least one bin", ErrDimensionMismatch)
	}
	if len(in.Cosmic) != len(in.Bins) {
		return nil, fmt.Errorf("%w: %d bins for %d cosmic flags", ErrDimensionMismatch, len(in.Bins), len(in.Cosmic))
	}
	if in.Universes < 1 {
		return nil, fmt.Errorf("%w: multisim needs at least one universe", ErrDimensionMismatch)
	}
	universes := in.Universes
	var rows int
	if in.Weights != nil {
		var cols int
		rows, cols = in.Weights.Dims()
		if cols != universes {
			return nil, fmt.Errorf("%w: %d weight columns for %d universes", ErrDimensionMismatch, cols, universes)
		}
	}
	if len(in.Matched) != rows {
		return nil, fmt.Errorf("%w: %d weight rows for %d matched flags", ErrDimensionMismatch, rows, len(in.Matched))
	}

	ensemble := mat.NewDense(in.NBins, universes, nil)
	cv := make([]float64, in.NBins)
	cosmics := make([]float64, in.NBins)

	w := 0
	for r, b := range in.Bins {
		cosmic := in.Cosmic[r]
		row := w
		if !cosmic {
			w++
		}
		if !binning.Valid(b, in.NBins) {
			continue
		}
		cv[b]++
		if cosmic {
			cosmics[b]++
			continue
		}
		if row >= rows {
			return nil, fmt.Errorf("%w: more non-cosmic records than weight rows (%d)", ErrDimensionMismatch, rows)
		}
		if !in.Matched[row] {
			continue
		}
		for u := 0; u < universes; u++ {
			ensemble.Set(b, u, ensemble.At(b, u)+in.Weights.At(row, u))
		}
	}
	if w != rows {
		return nil, fmt.Errorf("%w: %d non-cosmic records for %d weight rows", ErrDimensionMismatch, w, rows)
	}

	deviation := mat.NewDense(in.NBins, universes, nil)
	for b := 0; b < in.NBins; b++ {
		for u := 0; u < universes; u++ {
			ensemble.Set(b, u, ensemble.At(b, u)+cosmics[b])
			deviation.Set(b, u, cv[b]-ensemble.At(b, u))
		}
	}

	return &MultisimResult{
		Cov:      Sample(deviation),
		CV:       cv,
		Ensemble: ensemble,
	}, nil
}
