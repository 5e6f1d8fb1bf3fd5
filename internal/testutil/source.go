// Package testutil provides deterministic helpers for tests: a counting RNG
// source and a fixed run-ID generator.
package testutil

import "golang.org/x/exp/rand"

// CountingSource wraps a rand.Source and counts how many values were drawn.
//
// Tests use it to assert that a code path consumed (or did not consume)
// randomness, e.g. that a fully enumerated model never samples.
type CountingSource struct {
	src   rand.Source
	draws int
}

// NewCountingSource creates a counting source seeded deterministically.
func NewCountingSource(seed uint64) *CountingSource {
	return &CountingSource{src: rand.NewSource(seed)}
}

// Uint64 implements rand.Source.
func (s *CountingSource) Uint64() uint64 {
	s.draws++
	return s.src.Uint64()
}

// Seed implements rand.Source.
func (s *CountingSource) Seed(seed uint64) {
	s.src.Seed(seed)
}

// Draws returns the number of values drawn so far.
func (s *CountingSource) Draws() int {
	return s.draws
}

// Reset zeroes the draw counter without reseeding.
func (s *CountingSource) Reset() {
	s.draws = 0
}
