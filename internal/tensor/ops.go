package tensor

import (
	"fmt"
	"slices"
)

// Add broadcast-adds two tensors by axis name.
// The result carries the union of both axis sets: a's axes in order, then
// b's axes that a lacks. Axes shared by name must agree in size.
func Add(a, b *Tensor) (*Tensor, error) {
	return zip(a, b, func(x, y float64) float64 { return x + y })
}

// AddScalar adds a constant to every element.
func AddScalar(t *Tensor, c float64) *Tensor {
	out := t.clone()
	for i := range out.data {
		out.data[i] += c
	}
	return out
}

// Scale multiplies every element by a constant.
func Scale(t *Tensor, c float64) *Tensor {
	out := t.clone()
	for i := range out.data {
		out.data[i] *= c
	}
	return out
}

func (t *Tensor) clone() *Tensor {
	return &Tensor{
		dims:  slices.Clone(t.dims),
		sizes: slices.Clone(t.sizes),
		data:  slices.Clone(t.data),
	}
}

// unionDims computes the broadcast axis set of a and b: a's axes in order,
// then b's axes not present in a. Shared axes must have equal sizes.
func unionDims(a, b *Tensor) ([]string, []int, error) {
	dims := slices.Clone(a.dims)
	sizes := slices.Clone(a.sizes)
	for bx, d := range b.dims {
		ax := a.axis(d)
		if ax < 0 {
			dims = append(dims, d)
			sizes = append(sizes, b.sizes[bx])
			continue
		}
		if a.sizes[ax] != b.sizes[bx] {
			return nil, nil, fmt.Errorf("tensor: axis %q size mismatch: %d vs %d", d, a.sizes[ax], b.sizes[bx])
		}
	}
	return dims, sizes, nil
}

// axisMap maps each output axis position to the operand's axis position,
// or -1 where the operand lacks that axis (broadcast).
func axisMap(outDims []string, t *Tensor) []int {
	m := make([]int, len(outDims))
	for i, d := range outDims {
		m[i] = t.axis(d)
	}
	return m
}

// pick reads the operand element addressed by output coordinates, using a
// precomputed axis map and operand strides. Broadcast axes are skipped.
func pick(data []float64, m, strides, coords []int) float64 {
	flat := 0
	for outAx, tAx := range m {
		if tAx >= 0 {
			flat += coords[outAx] * strides[tAx]
		}
	}
	return data[flat]
}

// zip applies f elementwise over the named-broadcast of a and b.
func zip(a, b *Tensor, f func(float64, float64) float64) (*Tensor, error) {
	dims, sizes, err := unionDims(a, b)
	if err != nil {
		return nil, err
	}
	out, err := Zeros(dims, sizes)
	if err != nil {
		return nil, err
	}
	am := axisMap(dims, a)
	bm := axisMap(dims, b)
	astr := a.strides()
	bstr := b.strides()
	coords := make([]int, len(dims))
	for i := range out.data {
		out.data[i] = f(pick(a.data, am, astr, coords), pick(b.data, bm, bstr, coords))
		increment(coords, sizes)
	}
	return out, nil
}
