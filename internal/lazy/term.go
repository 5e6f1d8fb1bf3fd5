// Package lazy implements the deferred log-joint algebra.
//
// The joint accumulator does not evaluate densities as the model runs; it
// appends Density terms to a running Sum and the driver wraps the total in
// Reduce nodes. Numeric work happens only when Eval forces the expression.
// There is no rewriting or optimization of the term tree - evaluation is
// structural.
package lazy

import (
	"github.com/minuet-ml/minuet/internal/dist"
	"github.com/minuet-ml/minuet/internal/tensor"
)

// Term is a sealed deferred expression over named tensors.
// Only Density, Sum, and Reduce implement it.
type Term interface {
	term()
}

// Density is the deferred log-density of a value under a distribution.
// Site names the sample site the term came from, for diagnostics.
type Density struct {
	Site  string
	Dist  dist.Distribution
	Value *tensor.Tensor
}

func (*Density) term() {}

// Sum is an ordered sum of terms. The zero value is the empty total, which
// evaluates to scalar zero.
type Sum struct {
	Terms []Term
}

func (*Sum) term() {}

// Append returns a Sum extended by one term. The receiver is not mutated,
// so the accumulator can hand out snapshots safely.
func (s *Sum) Append(t Term) *Sum {
	terms := make([]Term, 0, len(s.Terms)+1)
	terms = append(terms, s.Terms...)
	terms = append(terms, t)
	return &Sum{Terms: terms}
}

// ReduceOp selects the reduction kernel applied by a Reduce node.
type ReduceOp string

const (
	// OpLogSumExp marginalizes an enumerated axis.
	OpLogSumExp ReduceOp = "logsumexp"

	// OpMean averages out the shared sampling axis.
	OpMean ReduceOp = "mean"
)

// Reduce defers a one-axis reduction of an inner term.
type Reduce struct {
	Op    ReduceOp
	Dim   string
	Inner Term
}

func (*Reduce) term() {}

// LogSumExp wraps a term in a deferred log-sum-exp reduction over dim.
func LogSumExp(inner Term, dim string) *Reduce {
	return &Reduce{Op: OpLogSumExp, Dim: dim, Inner: inner}
}

// Mean wraps a term in a deferred mean reduction over dim.
func Mean(inner Term, dim string) *Reduce {
	return &Reduce{Op: OpMean, Dim: dim, Inner: inner}
}
