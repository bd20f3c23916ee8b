package model

import "strings"

// Reserved group names filled automatically by the aggregator.
const (
	// GroupTotal sums every member, statistical included.
	GroupTotal = "total"

	// GroupTotalSyst sums every member except the statistical one.
	GroupTotalSyst = "total_syst"

	// StatisticalName is the member name used for the statistical covariance.
	StatisticalName = "statistical"
)

// Suffixes of the auxiliary entries stored next to a covariance matrix.
const (
	SuffixCV       = "cv"
	SuffixVNominal = "vnominal"
	SuffixRMatrix  = "rmatrix"
	SuffixRatio    = "ratio"
	SuffixCRatio   = "cratio"
)

const fractionalPrefix = "fractional_"

// MatrixName returns the archive name of a covariance matrix,
// e.g. "flux_reco_energy".
func MatrixName(systematic, variable string) string {
	return systematic + "_" + variable
}

// FractionalName returns the archive name of the fractional form of a
// covariance matrix, e.g. "fractional_flux_reco_energy".
func FractionalName(systematic, variable string) string {
	return fractionalPrefix + MatrixName(systematic, variable)
}

// AuxName returns the archive name of an auxiliary vector or matrix,
// e.g. "detvar_reco_energy_vnominal".
func AuxName(systematic, variable, suffix string) string {
	return MatrixName(systematic, variable) + "_" + suffix
}

// IsFractional reports whether an archive name refers to a fractional entry.
func IsFractional(name string) bool {
	return strings.HasPrefix(name, fractionalPrefix)
}

// IsReservedGroup reports whether a group name is filled automatically.
func IsReservedGroup(name string) bool {
	return name == GroupTotal || name == GroupTotalSyst
}
