// Package random provides the single seedable random source used by a run.
//
// Bootstrap resampling and Cholesky universe draws both consume the same
// Source so that one seed reproduces a whole run.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source draws uniform indices and standard normal variates.
// It is not safe for concurrent use; a run owns exactly one.
type Source struct {
	seed   uint64
	rng    *rand.Rand
	normal distuv.Normal
}

// New returns a Source seeded with seed.
func New(seed uint64) *Source {
	pcg := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Source{
		seed:   seed,
		rng:    rand.New(pcg),
		normal: distuv.Normal{Mu: 0, Sigma: 1, Src: pcg},
	}
}

// NewSeed returns a fresh seed from the operating system.
// Callers record it so that the run can be repeated.
func NewSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("random: crypto/rand failed: " + err.Error())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// Seed returns the seed the Source was built with.
func (s *Source) Seed() uint64 {
	return s.seed
}

// IntN returns a uniform index in [0, n). Panics if n <= 0.
func (s *Source) IntN(n int) int {
	return s.rng.IntN(n)
}

// Normal returns one standard normal variate.
func (s *Source) Normal() float64 {
	return s.normal.Rand()
}

// Normals fills dst with standard normal variates and returns it.
func (s *Source) Normals(dst []float64) []float64 {
	for i := range dst {
		dst[i] = s.normal.Rand()
	}
	return dst
}
