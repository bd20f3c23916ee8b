// Package covariance implements the numeric core shared by every systematic:
// sample covariance, fractional normalization, the statistical covariance,
// the multisim reweighting engine and Cholesky factorization.
//
// Conventions:
//   - Matrices are gonum types; covariances are always *mat.SymDense.
//   - Sample covariance follows the "rows are variables, columns are
//     observations" layout and divides by (n-1). Fewer than two
//     observations yield the zero matrix rather than NaN.
//   - Results are never mutated after they are returned.
package covariance
