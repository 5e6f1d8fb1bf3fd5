package tensor

import (
	"fmt"
	"math"
	"slices"
)

// Gather replaces the named axis of t by advanced indexing with an
// integer-coded index tensor. The index tensor's axes join the result in
// place of the gathered axis; axes the index shares with t align by name.
//
// Example: gathering rows of a transition table indexed by an enumerated
// previous state turns table[prev_state, next] into out[x_prev, next].
func Gather(t *Tensor, dim string, index *Tensor) (*Tensor, error) {
	ax := t.axis(dim)
	if ax < 0 {
		return nil, fmt.Errorf("tensor: gather over missing axis %q (have %v)", dim, t.dims)
	}
	if index.HasDim(dim) {
		return nil, fmt.Errorf("tensor: index tensor must not carry the gathered axis %q", dim)
	}

	// Result axes: t's axes with dim removed, then index axes t lacks.
	outDims := slices.Delete(slices.Clone(t.dims), ax, ax+1)
	outSizes := slices.Delete(slices.Clone(t.sizes), ax, ax+1)
	for ix, d := range index.dims {
		pos := slices.Index(outDims, d)
		if pos < 0 {
			outDims = append(outDims, d)
			outSizes = append(outSizes, index.sizes[ix])
			continue
		}
		if outSizes[pos] != index.sizes[ix] {
			return nil, fmt.Errorf("tensor: gather axis %q size mismatch: %d vs %d", d, outSizes[pos], index.sizes[ix])
		}
	}

	out, err := Zeros(outDims, outSizes)
	if err != nil {
		return nil, err
	}

	tstr := t.strides()
	istr := index.strides()
	// Output axis -> t axis (gathered axis excluded) and -> index axis.
	tm := make([]int, len(outDims))
	for i, d := range outDims {
		tAx := t.axis(d)
		if tAx == ax {
			tAx = -1
		}
		tm[i] = tAx
	}
	im := axisMap(outDims, index)

	coords := make([]int, len(outDims))
	for i := range out.data {
		raw := pick(index.data, im, istr, coords)
		code := int(raw)
		if float64(code) != raw || math.IsNaN(raw) {
			return nil, fmt.Errorf("tensor: non-integer index %v for axis %q", raw, dim)
		}
		if code < 0 || code >= t.sizes[ax] {
			return nil, fmt.Errorf("tensor: index %d out of range for axis %q (size %d)", code, dim, t.sizes[ax])
		}
		flat := code * tstr[ax]
		for outAx, tAx := range tm {
			if tAx >= 0 {
				flat += coords[outAx] * tstr[tAx]
			}
		}
		out.data[i] = t.data[flat]
		increment(coords, outSizes)
	}
	return out, nil
}
