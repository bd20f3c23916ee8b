package binning

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpec_Edges(t *testing.T) {
	s, err := NewSpec(4, 0, 2)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, s.Edges())
	assert.Equal(t, []float64{0.25, 0.75, 1.25, 1.75}, s.Centers())
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5}, s.Widths())
	assert.Equal(t, 4, s.Overflow())
}

func TestNewSpec_Invalid(t *testing.T) {
	cases := []struct {
		name      string
		n         int
		low, high float64
	}{
		{"zero bins", 0, 0, 1},
		{"inverted range", 3, 1, 0},
		{"empty range", 3, 1, 1},
		{"nan", 3, math.NaN(), 1},
		{"inf", 3, 0, math.Inf(1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSpec(tc.n, tc.low, tc.high)
			assert.ErrorIs(t, err, ErrInvalidSpec)
		})
	}
}

func TestIndex_HalfOpenBins(t *testing.T) {
	s, err := NewSpec(4, 0, 2)
	require.NoError(t, err)

	assert.Equal(t, 0, s.Index(0))
	assert.Equal(t, 0, s.Index(0.49))
	assert.Equal(t, 1, s.Index(0.5), "lower edge belongs to the bin")
	assert.Equal(t, 3, s.Index(1.99))
	assert.Equal(t, Underflow, s.Index(-0.01))
	assert.Equal(t, s.Overflow(), s.Index(2), "upper edge is out of range")
	assert.Equal(t, s.Overflow(), s.Index(100))
	assert.Equal(t, s.Overflow(), s.Index(math.NaN()))
}

func TestAssignAndCounts(t *testing.T) {
	s, err := NewSpec(2, 0, 2)
	require.NoError(t, err)

	idx := s.Assign([]float64{0.1, 1.5, 1.7, -3, 2, math.NaN()})
	assert.Equal(t, []int{0, 1, 1, Underflow, 2, 2}, idx)
	assert.Equal(t, []float64{1, 2}, s.Counts(idx), "sentinels are excluded")
}

func TestAssign_Idempotent(t *testing.T) {
	s, err := NewSpec(7, -1, 3)
	require.NoError(t, err)

	values := make([]float64, 200)
	for i := range values {
		values[i] = -1.5 + float64(i)*0.0271
	}
	assert.Equal(t, s.Assign(values), s.Assign(values))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(0, 3))
	assert.True(t, Valid(2, 3))
	assert.False(t, Valid(3, 3))
	assert.False(t, Valid(Underflow, 3))
}
