package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSource_SameSeedSameStream(t *testing.T) {
	a, b := New(42), New(42)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
		assert.Equal(t, a.Normal(), b.Normal())
	}
}

func TestSource_DifferentSeedsDiffer(t *testing.T) {
	a, b := New(1), New(2)

	same := true
	for i := 0; i < 20; i++ {
		if a.Normal() != b.Normal() {
			same = false
		}
	}
	assert.False(t, same)
}

func TestSource_IntNRange(t *testing.T) {
	s := New(7)
	for i := 0; i < 1000; i++ {
		v := s.IntN(5)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 5)
	}
}

func TestSource_Normals(t *testing.T) {
	s := New(3)
	out := s.Normals(make([]float64, 4))
	assert.Len(t, out, 4)
	assert.Equal(t, uint64(3), s.Seed())

	one := New(3)
	for i, v := range out {
		assert.Equal(t, one.Normal(), v, "draw %d", i)
	}
}
