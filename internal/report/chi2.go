package report

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/roach88/syscov/internal/covariance"
)

// Chi2Result is the agreement between a detector variation and the CV.
type Chi2Result struct {
	Chi2   float64 `json:"chi2"`
	DOF    int     `json:"dof"`
	PValue float64 `json:"p_value"`
}

// Chi2 returns vnominalᵀ·R⁻¹·vnominal over the bins where vnominal is
// non-zero, and its p-value for that many degrees of freedom.
func Chi2(vnominal []float64, rmatrix mat.Symmetric) (Chi2Result, error) {
	n := rmatrix.SymmetricDim()
	if len(vnominal) != n {
		return Chi2Result{}, fmt.Errorf("%w: chi2 of %d values against %dx%d", covariance.ErrDimensionMismatch, len(vnominal), n, n)
	}
	var kept []int
	for b, v := range vnominal {
		if v != 0 {
			kept = append(kept, b)
		}
	}
	m := len(kept)
	if m == 0 {
		return Chi2Result{PValue: 1}, nil
	}

	r := mat.NewSymDense(m, nil)
	v := mat.NewVecDense(m, nil)
	for i, bi := range kept {
		v.SetVec(i, vnominal[bi])
		for j := i; j < m; j++ {
			r.SetSym(i, j, rmatrix.At(bi, kept[j]))
		}
	}
	l, err := covariance.Factor(r, "rmatrix")
	if err != nil {
		return Chi2Result{}, err
	}
	// With R = L·Lᵀ, vᵀR⁻¹v = |L⁻¹v|².
	var y mat.VecDense
	if err := y.SolveVec(l, v); err != nil {
		return Chi2Result{}, &covariance.SingularMatrixError{Size: m, Context: "rmatrix"}
	}
	chi2 := mat.Dot(&y, &y)
	return Chi2Result{
		Chi2:   chi2,
		DOF:    m,
		PValue: distuv.ChiSquared{K: float64(m)}.Survival(chi2),
	}, nil
}
