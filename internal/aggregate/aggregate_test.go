package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/roach88/syscov/internal/model"
)

func diag(v ...float64) *mat.SymDense {
	m := mat.NewSymDense(len(v), nil)
	for i, x := range v {
		m.SetSym(i, i, x)
	}
	return m
}

func members() []Member {
	return []Member{
		{Systematic: "flux_a", Variable: "x", Groups: []string{"flux"}, Cov: diag(1, 2), Fractional: diag(0.1, 0.2)},
		{Systematic: "flux_b", Variable: "x", Groups: []string{"flux"}, Cov: diag(3, 4), Fractional: diag(0.3, 0.4)},
		{Systematic: "det", Variable: "x", Groups: []string{"detector"}, Cov: diag(5, 6), Fractional: diag(0.5, 0.6),
			Extras: []model.Entry{model.VectorEntry("det_x_vnominal", []float64{1, -1})}},
		{Systematic: "stats", Variable: "x", Statistical: true, Cov: diag(10, 20), Fractional: diag(0.01, 0.02)},
	}
}

func byName(entries []model.Entry) map[string]model.Entry {
	out := make(map[string]model.Entry, len(entries))
	for _, e := range entries {
		out[e.Name] = e
	}
	return out
}

func TestEntries_GroupsAndTotals(t *testing.T) {
	a := New()
	for _, m := range members() {
		require.NoError(t, a.Add(m))
	}
	got := byName(a.Entries())

	assert.Equal(t, []float64{4, 0, 0, 6}, got["flux_x"].Data)
	assert.InDeltaSlice(t, []float64{0.4, 0, 0, 0.6}, got["fractional_flux_x"].Data, 1e-12)
	assert.Equal(t, []float64{5, 0, 0, 6}, got["detector_x"].Data)
	assert.Equal(t, []float64{19, 0, 0, 32}, got["total_x"].Data)
	assert.Equal(t, []float64{9, 0, 0, 12}, got["total_syst_x"].Data)
	assert.Equal(t, []float64{10, 0, 0, 20}, got["statistical_x"].Data)
	assert.Contains(t, got, "fractional_statistical_x")
	assert.Contains(t, got, "det_x_vnominal")
	assert.NotContains(t, got, "stats_x")
}

func TestEntries_OrderIndependent(t *testing.T) {
	forward := New()
	for _, m := range members() {
		require.NoError(t, forward.Add(m))
	}
	backward := New()
	ms := members()
	for i := len(ms) - 1; i >= 0; i-- {
		require.NoError(t, backward.Add(ms[i]))
	}
	assert.Equal(t, forward.Entries(), backward.Entries())
}

func TestEntries_Sorted(t *testing.T) {
	a := New()
	for _, m := range members() {
		require.NoError(t, a.Add(m))
	}
	entries := a.Entries()
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Name, entries[i].Name)
	}
}

func TestAdd_ReplacesSameMember(t *testing.T) {
	a := New()
	require.NoError(t, a.Add(Member{Systematic: "s", Variable: "x", Cov: diag(1), Fractional: diag(1)}))
	require.NoError(t, a.Add(Member{Systematic: "s", Variable: "x", Cov: diag(2), Fractional: diag(1)}))
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, []float64{2}, byName(a.Entries())["total_x"].Data)
}

func TestAdd_Errors(t *testing.T) {
	a := New()
	err := a.Add(Member{Systematic: "s", Variable: "x", Groups: []string{"total"}, Cov: diag(1), Fractional: diag(1)})
	assert.ErrorIs(t, err, ErrReservedGroup)

	err = a.Add(Member{Systematic: "s", Variable: "x", Cov: diag(1, 1), Fractional: diag(1)})
	assert.ErrorIs(t, err, ErrShape)

	require.NoError(t, a.Add(Member{Systematic: "s", Variable: "x", Cov: diag(1), Fractional: diag(1)}))
	err = a.Add(Member{Systematic: "t", Variable: "x", Cov: diag(1, 1), Fractional: diag(1, 1)})
	assert.ErrorIs(t, err, ErrShape)

	err = a.Add(Member{Systematic: "u", Variable: "y"})
	assert.ErrorIs(t, err, ErrShape)
}
