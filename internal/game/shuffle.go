package game

import (
	"math/rand/v2"
)

// Shuffler produces presentation orders for a session.
type Shuffler interface {
	// Perm returns a permutation of 0..n-1.
	Perm(n int) []int
}

type randShuffler struct {
	r *rand.Rand
}

// NewSeededShuffler returns a deterministic Shuffler. The same seed always
// yields the same sequence of permutations.
func NewSeededShuffler(seed uint64) Shuffler {
	return &randShuffler{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewShuffler returns a Shuffler seeded from the runtime-seeded global
// generator, so every call gets an independent stream.
func NewShuffler() Shuffler {
	return &randShuffler{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Perm is a uniform Fisher–Yates shuffle of the identity permutation.
func (s *randShuffler) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	s.r.Shuffle(n, func(i, j int) { p[i], p[j] = p[j], p[i] })
	return p
}
