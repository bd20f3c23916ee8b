package covariance

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Fractional normalizes cov by the outer product of the central values:
// out[i,j] = cov[i,j] / (cv[i]*cv[j]), and 0 where the product is zero.
func Fractional(cov mat.Symmetric, cv []float64) (*mat.SymDense, error) {
	n := cov.SymmetricDim()
	if len(cv) != n {
		return nil, fmt.Errorf("%w: fractional of %dx%d with %d central values", ErrDimensionMismatch, n, n, len(cv))
	}
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if norm := cv[i] * cv[j]; norm != 0 {
				out.SetSym(i, j, cov.At(i, j)/norm)
			}
		}
	}
	return out, nil
}
