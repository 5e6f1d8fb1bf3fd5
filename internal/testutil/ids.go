package testutil

import "fmt"

// FixedIDGenerator hands out run IDs from a deterministic sequence.
//
// Unlike the production UUID generator, the same test produces the same IDs
// on every run, which keeps command output and stored rows comparable.
type FixedIDGenerator struct {
	prefix string
	next   int
}

// NewFixedIDGenerator creates a generator producing "<prefix>-000001",
// "<prefix>-000002", and so on. An empty prefix defaults to "test-run".
func NewFixedIDGenerator(prefix string) *FixedIDGenerator {
	if prefix == "" {
		prefix = "test-run"
	}
	return &FixedIDGenerator{prefix: prefix}
}

// NewID returns the next ID in the sequence.
func (g *FixedIDGenerator) NewID() string {
	g.next++
	return fmt.Sprintf("%s-%06d", g.prefix, g.next)
}
