package engine

import "golang.org/x/exp/rand"

// Seed scopes a deterministic RNG source to one run: the runtime's source
// is swapped at Enter and restored at Exit, so seeded runs cannot perturb
// the stream of unrelated later runs.
type Seed struct {
	Base
	seed uint64
	prev rand.Source
}

// NewSeed creates the seeding handler.
func NewSeed(seed uint64) *Seed {
	return &Seed{seed: seed}
}

// Enter installs a fresh source seeded with the configured value.
func (h *Seed) Enter(rt *Runtime) error {
	h.prev = rt.SetSource(rand.NewSource(h.seed))
	return nil
}

// Exit restores the previous source.
func (h *Seed) Exit(rt *Runtime, runErr error) error {
	rt.SetSource(h.prev)
	h.prev = nil
	return nil
}
