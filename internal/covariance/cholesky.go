package covariance

import "gonum.org/v1/gonum/mat"

// conditionLimit is the largest condition number accepted from a
// factorization. Rank-deficient bootstrap matrices can factorize with a
// pivot of a few ulps; those are rejected as singular.
const conditionLimit = 1e12

// Factor returns the lower-triangular Cholesky factor L of a, a = L*Lᵀ.
// A matrix that is not positive definite, or whose condition number
// exceeds conditionLimit, yields *SingularMatrixError.
func Factor(a *mat.SymDense, context string) (*mat.TriDense, error) {
	n := a.SymmetricDim()
	var chol mat.Cholesky
	if !chol.Factorize(a) || chol.Cond() > conditionLimit {
		return nil, &SingularMatrixError{Size: n, Context: context}
	}
	l := mat.NewTriDense(n, mat.Lower, nil)
	chol.LTo(l)
	return l, nil
}
