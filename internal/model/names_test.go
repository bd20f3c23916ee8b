package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrixNames(t *testing.T) {
	assert.Equal(t, "flux_reco_energy", MatrixName("flux", "reco_energy"))
	assert.Equal(t, "fractional_flux_reco_energy", FractionalName("flux", "reco_energy"))
	assert.Equal(t, "det_reco_energy_vnominal", AuxName("det", "reco_energy", SuffixVNominal))
	assert.Equal(t, "fractional_statistical_x", FractionalName(StatisticalName, "x"))
}

func TestIsFractional(t *testing.T) {
	assert.True(t, IsFractional(FractionalName("a", "b")))
	assert.False(t, IsFractional(MatrixName("a", "b")))
}

func TestIsReservedGroup(t *testing.T) {
	assert.True(t, IsReservedGroup("total"))
	assert.True(t, IsReservedGroup("total_syst"))
	assert.False(t, IsReservedGroup("flux"))
}

func TestEventKey(t *testing.T) {
	k := EventKey{Run: 1, Subrun: 2, Event: 3, NuID: -1}
	assert.True(t, k.IsCosmic())
	assert.Equal(t, EventID{Run: 1, Subrun: 2, Event: 3}, k.EventID())
	assert.Equal(t, "1/2/3/-1", k.String())
	assert.Equal(t, "1/2/3", k.EventID().String())

	k.NuID = 0
	assert.False(t, k.IsCosmic())
}
