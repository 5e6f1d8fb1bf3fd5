package lazy

import (
	"fmt"

	"github.com/minuet-ml/minuet/internal/tensor"
)

// Eval forces a term to a concrete tensor. This is the only place in the
// package that touches tensor data.
//
// Density terms materialize through the distribution's LogProb; Sum terms
// broadcast-add in order; Reduce terms evaluate their inner term first and
// then apply the kernel.
//
// A mean reduction over an axis the evaluated term does not carry is the
// identity: averaging an expression over an axis it does not depend on
// changes nothing. A log-sum-exp reduction over an absent axis is an error,
// since marginalizing a variable that left no trace in the total means the
// driver's bookkeeping is wrong.
func Eval(t Term) (*tensor.Tensor, error) {
	switch node := t.(type) {
	case *Density:
		lp, err := node.Dist.LogProb(node.Value)
		if err != nil {
			return nil, fmt.Errorf("lazy: density at site %q: %w", node.Site, err)
		}
		if !lp.IsFinite() {
			return nil, fmt.Errorf("lazy: density at site %q is not finite", node.Site)
		}
		return lp, nil

	case *Sum:
		acc := tensor.Scalar(0)
		for i, inner := range node.Terms {
			v, err := Eval(inner)
			if err != nil {
				return nil, err
			}
			acc, err = tensor.Add(acc, v)
			if err != nil {
				return nil, fmt.Errorf("lazy: sum term %d: %w", i, err)
			}
		}
		return acc, nil

	case *Reduce:
		v, err := Eval(node.Inner)
		if err != nil {
			return nil, err
		}
		switch node.Op {
		case OpLogSumExp:
			out, err := tensor.LogSumExp(v, node.Dim)
			if err != nil {
				return nil, fmt.Errorf("lazy: %w", err)
			}
			return out, nil
		case OpMean:
			if !v.HasDim(node.Dim) {
				return v, nil
			}
			out, err := tensor.Mean(v, node.Dim)
			if err != nil {
				return nil, fmt.Errorf("lazy: %w", err)
			}
			return out, nil
		default:
			return nil, fmt.Errorf("lazy: unknown reduce op %q", node.Op)
		}

	default:
		return nil, fmt.Errorf("lazy: unknown term type %T", t)
	}
}
