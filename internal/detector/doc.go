// Package detector computes the covariance induced by a detector-model
// variation.
//
// A variation sample is a re-simulation of the central-value (CV) sample
// with one detector parameter changed. Signal interactions present in both
// samples form the common population. Resampling that population with
// replacement and counting the selected candidates of each sample per bin
// gives, for every bootstrap iteration, the difference between variation
// and CV. The mean difference (vnominal) and its covariance (rmatrix)
// define a Gaussian model of the response; detector universes drawn from
// that model through a Cholesky factor of rmatrix yield the detector
// covariance (dmatrix).
//
// Bins whose mean difference is exactly zero cannot contribute and would
// make rmatrix singular, so they are masked: universes are drawn on the
// remaining bins and masked rows and columns of dmatrix are zero.
package detector
