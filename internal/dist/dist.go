// Package dist provides the distribution objects attached to sample sites.
//
// Distributions are tensor-parameterized: a Categorical whose logits carry an
// enumerated axis yields log-densities over that axis too, which is what lets
// the lazy joint accumulator build marginalizable tables. Density kernels and
// samplers come from gonum's stat/distuv.
package dist

import (
	"golang.org/x/exp/rand"

	"github.com/minuet-ml/minuet/internal/tensor"
)

// Distribution is the contract a sample site's distribution must satisfy.
type Distribution interface {
	// LogProb evaluates the log-density of value, broadcasting the value's
	// named axes against the parameters' axes.
	LogProb(value *tensor.Tensor) (*tensor.Tensor, error)

	// Sample draws a batch of n independent values along the named axis,
	// one per cell of the parameters' batch axes.
	Sample(src rand.Source, dim string, n int) (*tensor.Tensor, error)

	// Draw produces a single unbatched value. Fails if the parameters carry
	// named axes, since a single draw cannot represent a batch.
	Draw(src rand.Source) (float64, error)

	// EnumSupport returns the cardinality of a finite support, or false for
	// distributions that cannot be enumerated.
	EnumSupport() (int, bool)
}

// cellAt reads the element of t addressed by the subset of coords naming
// t's axes. Used to broadcast parameter tensors cell by cell.
func cellAt(t *tensor.Tensor, coords map[string]int) (float64, error) {
	sub := make(map[string]int)
	for _, d := range t.Dims() {
		sub[d] = coords[d]
	}
	return t.At(sub)
}
