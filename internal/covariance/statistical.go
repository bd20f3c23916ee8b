package covariance

import "gonum.org/v1/gonum/mat"

// Statistical returns the diagonal covariance of independent Poisson bins:
// the b-th diagonal entry is the raw count of bin b.
func Statistical(counts []float64) *mat.SymDense {
	out := mat.NewSymDense(len(counts), nil)
	for b, c := range counts {
		out.SetSym(b, b, c)
	}
	return out
}
