package covariance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/roach88/syscov/internal/binning"
)

// Two neutrino records and one cosmic record in a single bin. The cosmic
// record adds 1 to every universe.
func TestMultisim_CosmicUnitWeight(t *testing.T) {
	res, err := Multisim(MultisimInput{
		Bins:      []int{0, 0, 0},
		Cosmic:    []bool{false, false, true},
		Weights:   mat.NewDense(2, 2, []float64{1.0, 1.1, 0.9, 1.0}),
		Matched:   []bool{true, true},
		NBins:     1,
		Universes: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, []float64{3}, res.CV)
	assert.InDelta(t, 2.9, res.Ensemble.At(0, 0), 1e-12)
	assert.InDelta(t, 3.1, res.Ensemble.At(0, 1), 1e-12)

	// cv - ensemble = [0.1, -0.1]; sample variance = 0.02.
	assert.InDelta(t, 0.02, res.Cov.At(0, 0), 1e-12)
}

func TestMultisim_SingleUniverseEqualToCVIsZero(t *testing.T) {
	res, err := Multisim(MultisimInput{
		Bins:      []int{0, 1, 1},
		Cosmic:    []bool{false, false, false},
		Weights:   mat.NewDense(3, 1, []float64{1, 1, 1}),
		Matched:   []bool{true, true, true},
		NBins:     2,
		Universes: 1,
	})
	require.NoError(t, err)
	assert.True(t, IsZero(res.Cov))
}

func TestMultisim_IdenticalUniversesAreZero(t *testing.T) {
	res, err := Multisim(MultisimInput{
		Bins:      []int{0, 1},
		Cosmic:    []bool{false, false},
		Weights:   mat.NewDense(2, 3, []float64{1, 1, 1, 1, 1, 1}),
		Matched:   []bool{true, true},
		NBins:     2,
		Universes: 3,
	})
	require.NoError(t, err)
	assert.True(t, IsZero(res.Cov))
}

func TestMultisim_SentinelsAndUnmatchedExcluded(t *testing.T) {
	res, err := Multisim(MultisimInput{
		Bins:    []int{0, binning.Underflow, 2, 1},
		Cosmic:  []bool{false, false, false, false},
		Weights: mat.NewDense(4, 2, []float64{
			1, 2,
			100, 200, // underflow
			100, 200, // overflow
			50, 60, // unmatched
		}),
		Matched:   []bool{true, true, true, false},
		NBins:     2,
		Universes: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 1}, res.CV, "unmatched records still count in the central value")
	assert.Equal(t, []float64{1, 2}, mat.Row(nil, 0, res.Ensemble))
	assert.Equal(t, []float64{0, 0}, mat.Row(nil, 1, res.Ensemble))
}

func TestMultisim_AllCosmic(t *testing.T) {
	res, err := Multisim(MultisimInput{
		Bins:      []int{0, 0},
		Cosmic:    []bool{true, true},
		NBins:     1,
		Universes: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, res.CV)
	assert.True(t, IsZero(res.Cov))
}

func TestMultisim_ShapeErrors(t *testing.T) {
	cases := []struct {
		name string
		in   MultisimInput
	}{
		{"no bins", MultisimInput{NBins: 0, Universes: 1}},
		{"no universes", MultisimInput{NBins: 1}},
		{"cosmic length", MultisimInput{Bins: []int{0}, NBins: 1, Universes: 1}},
		{"matched length", MultisimInput{
			Bins: []int{0}, Cosmic: []bool{false},
			Weights: mat.NewDense(1, 1, nil), NBins: 1, Universes: 1,
		}},
		{"too few weight rows", MultisimInput{
			Bins: []int{0, 0}, Cosmic: []bool{false, false},
			Weights: mat.NewDense(1, 1, nil), Matched: []bool{true}, NBins: 1, Universes: 1,
		}},
		{"too many weight rows", MultisimInput{
			Bins: []int{0}, Cosmic: []bool{false},
			Weights: mat.NewDense(2, 1, nil), Matched: []bool{true, true}, NBins: 1, Universes: 1,
		}},
		{"universe mismatch", MultisimInput{
			Bins: []int{0}, Cosmic: []bool{false},
			Weights: mat.NewDense(1, 2, nil), Matched: []bool{true}, NBins: 1, Universes: 3,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Multisim(tc.in)
			assert.ErrorIs(t, err, ErrDimensionMismatch)
		})
	}
}
