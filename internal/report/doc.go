// Package report turns archived covariances and event tables into plot
// data: stacked histograms with uncertainty bands, ratio and relative
// error panels, 2D histograms, confusion matrices and selection flows.
//
// Nothing here renders. Every function returns plain values that a
// plotting front end draws as-is, together with the style hints of
// config.Style.
package report
