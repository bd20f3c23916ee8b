package covariance

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Sample returns the sample covariance of the rows of x, each column being
// one observation. With fewer than two observations the result is the zero
// matrix. x must have at least one row.
func Sample(x mat.Matrix) *mat.SymDense {
	r, c := x.Dims()
	out := mat.NewSymDense(r, nil)
	if c < 2 {
		return out
	}
	stat.CovarianceMatrix(out, x.T(), nil)
	return out
}

// RowMeans returns the mean of each row of x.
func RowMeans(x mat.Matrix) []float64 {
	r, c := x.Dims()
	means := make([]float64, r)
	if c == 0 {
		return means
	}
	for i := 0; i < r; i++ {
		var sum float64
		for j := 0; j < c; j++ {
			sum += x.At(i, j)
		}
		means[i] = sum / float64(c)
	}
	return means
}

// IsZero reports whether every element of a is exactly zero.
func IsZero(a mat.Symmetric) bool {
	n := a.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if a.At(i, j) != 0 {
				return false
			}
		}
	}
	return true
}
