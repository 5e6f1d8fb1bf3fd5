package tensor

import (
	"fmt"
	"slices"
)

// Union computes the broadcast axis set of several tensors: axes appear in
// first-seen order and shared names must agree in size.
func Union(ts ...*Tensor) ([]string, []int, error) {
	var dims []string
	var sizes []int
	for _, t := range ts {
		for i, d := range t.dims {
			pos := slices.Index(dims, d)
			if pos < 0 {
				dims = append(dims, d)
				sizes = append(sizes, t.sizes[i])
				continue
			}
			if sizes[pos] != t.sizes[i] {
				return nil, nil, fmt.Errorf("tensor: axis %q size mismatch: %d vs %d", d, sizes[pos], t.sizes[i])
			}
		}
	}
	return dims, sizes, nil
}

// FromCells builds a tensor by evaluating fill once per cell, in row-major
// order. The coords map passed to fill holds one coordinate per axis and is
// reused between calls; fill must not retain it.
//
// The row-major visit order is part of the contract: callers drawing random
// numbers inside fill rely on it for reproducible output under a seeded
// source.
func FromCells(dims []string, sizes []int, fill func(coords map[string]int) (float64, error)) (*Tensor, error) {
	out, err := Zeros(dims, sizes)
	if err != nil {
		return nil, err
	}
	coords := make([]int, len(dims))
	named := make(map[string]int, len(dims))
	for i := range out.data {
		for ax, d := range out.dims {
			named[d] = coords[ax]
		}
		v, err := fill(named)
		if err != nil {
			return nil, err
		}
		out.data[i] = v
		increment(coords, out.sizes)
	}
	return out, nil
}
