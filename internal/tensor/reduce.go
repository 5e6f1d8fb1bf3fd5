package tensor

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// LogSumExp reduces out one named axis with the numerically stable
// log-sum-exp kernel. Summing out an enumerated axis of a log-density table
// marginalizes the corresponding discrete variable.
func LogSumExp(t *Tensor, dim string) (*Tensor, error) {
	return t.reduce(dim, floats.LogSumExp)
}

// Sum reduces out one named axis by addition.
func Sum(t *Tensor, dim string) (*Tensor, error) {
	return t.reduce(dim, floats.Sum)
}

// Mean reduces out one named axis by averaging. Averaging over the shared
// particle axis turns a batch of per-draw log-densities into a Monte Carlo
// estimate.
func Mean(t *Tensor, dim string) (*Tensor, error) {
	return t.reduce(dim, func(lane []float64) float64 {
		return floats.Sum(lane) / float64(len(lane))
	})
}

// reduce removes the named axis, applying kernel to each lane along it.
func (t *Tensor) reduce(dim string, kernel func([]float64) float64) (*Tensor, error) {
	ax := t.axis(dim)
	if ax < 0 {
		return nil, fmt.Errorf("tensor: reduce over missing axis %q (have %v)", dim, t.dims)
	}

	outDims := slices.Delete(slices.Clone(t.dims), ax, ax+1)
	outSizes := slices.Delete(slices.Clone(t.sizes), ax, ax+1)
	out, err := Zeros(outDims, outSizes)
	if err != nil {
		return nil, err
	}

	str := t.strides()
	k := t.sizes[ax]
	lane := make([]float64, k)
	coords := make([]int, len(outDims))
	for i := range out.data {
		// Base offset in t for this output cell with the reduced axis at 0.
		flat := 0
		j := 0
		for tAx := range t.dims {
			if tAx == ax {
				continue
			}
			flat += coords[j] * str[tAx]
			j++
		}
		for c := 0; c < k; c++ {
			lane[c] = t.data[flat+c*str[ax]]
		}
		out.data[i] = kernel(lane)
		increment(coords, outSizes)
	}
	return out, nil
}
