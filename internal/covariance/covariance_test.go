package covariance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/roach88/syscov/internal/binning"
)

func TestSample_MatchesHandComputation(t *testing.T) {
	// Two variables, three observations.
	x := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		2, 4, 9,
	})
	cov := Sample(x)

	assert.InDelta(t, 1.0, cov.At(0, 0), 1e-12)
	assert.InDelta(t, 13.0, cov.At(1, 1), 1e-12)
	assert.InDelta(t, 3.5, cov.At(0, 1), 1e-12)
	assert.Equal(t, cov.At(0, 1), cov.At(1, 0))
}

func TestSample_SingleObservationIsZero(t *testing.T) {
	cov := Sample(mat.NewDense(3, 1, []float64{1, 2, 3}))
	assert.True(t, IsZero(cov))
	assert.Equal(t, 3, cov.SymmetricDim())
}

func TestRowMeans(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{1, 3, 10, 20})
	assert.Equal(t, []float64{2, 15}, RowMeans(x))
}

func TestFractional(t *testing.T) {
	cov := mat.NewSymDense(3, []float64{
		4, 2, 1,
		2, 9, 3,
		1, 3, 5,
	})
	cv := []float64{2, 3, 0}

	frac, err := Fractional(cov, cv)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			norm := cv[i] * cv[j]
			got := frac.At(i, j)
			assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
			if norm == 0 {
				assert.Equal(t, 0.0, got, "(%d,%d) with zero denominator", i, j)
				continue
			}
			assert.InDelta(t, cov.At(i, j)/norm, got, 1e-12)
		}
	}
}

func TestFractional_DimensionMismatch(t *testing.T) {
	_, err := Fractional(mat.NewSymDense(2, nil), []float64{1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestStatistical_DiagonalEqualsBinnerCounts(t *testing.T) {
	spec, err := binning.NewSpec(3, 0, 3)
	require.NoError(t, err)
	counts := spec.Counts(spec.Assign([]float64{0.1, 0.2, 1.5, 2.9, 2.1, 2.2, 7, -1}))

	cov := Statistical(counts)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				assert.Equal(t, counts[i], cov.At(i, j))
			} else {
				assert.Equal(t, 0.0, cov.At(i, j))
			}
		}
	}
	assert.Equal(t, []float64{2, 1, 3}, counts)
}

func TestFactor(t *testing.T) {
	a := mat.NewSymDense(2, []float64{4, 2, 2, 3})
	l, err := Factor(a, "test")
	require.NoError(t, err)

	var back mat.Dense
	back.Mul(l, l.T())
	assert.True(t, mat.EqualApprox(&back, a, 1e-12))
}

func TestFactor_NotPositiveDefinite(t *testing.T) {
	a := mat.NewSymDense(2, []float64{1, 2, 2, 1})
	_, err := Factor(a, "rmatrix")
	require.Error(t, err)

	var se *SingularMatrixError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Size)
	assert.True(t, IsSingular(err))
	assert.Contains(t, err.Error(), "rmatrix")
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero(mat.NewSymDense(2, nil)))
	assert.False(t, IsZero(mat.NewSymDense(2, []float64{0, 0, 0, 1e-300})))
}
