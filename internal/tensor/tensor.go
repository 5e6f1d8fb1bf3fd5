package tensor

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Tensor is a dense float64 array with named axes.
//
// Data is stored row-major in axis order. A scalar has no axes and exactly
// one element. An axis name appears at most once per tensor.
type Tensor struct {
	dims  []string
	sizes []int
	data  []float64
}

// New creates a tensor from explicit axes, sizes, and row-major data.
// The data slice is copied.
func New(dims []string, sizes []int, data []float64) (*Tensor, error) {
	if len(dims) != len(sizes) {
		return nil, fmt.Errorf("tensor: %d dims but %d sizes", len(dims), len(sizes))
	}
	n := 1
	for i, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("tensor: axis %q has non-positive size %d", dims[i], s)
		}
		n *= s
	}
	seen := make(map[string]bool, len(dims))
	for _, d := range dims {
		if d == "" {
			return nil, fmt.Errorf("tensor: empty axis name")
		}
		if seen[d] {
			return nil, fmt.Errorf("tensor: duplicate axis %q", d)
		}
		seen[d] = true
	}
	if len(data) != n {
		return nil, fmt.Errorf("tensor: data length %d does not match volume %d", len(data), n)
	}
	return &Tensor{
		dims:  slices.Clone(dims),
		sizes: slices.Clone(sizes),
		data:  slices.Clone(data),
	}, nil
}

// Scalar creates a zero-axis tensor holding a single value.
func Scalar(v float64) *Tensor {
	return &Tensor{data: []float64{v}}
}

// FromSlice creates a one-axis tensor along the given axis.
func FromSlice(dim string, values []float64) (*Tensor, error) {
	return New([]string{dim}, []int{len(values)}, values)
}

// Arange creates a one-axis tensor holding the integer codes 0..n-1.
// Used to enumerate the support of a discrete variable along a named axis.
func Arange(dim string, n int) (*Tensor, error) {
	codes := make([]float64, n)
	for i := range codes {
		codes[i] = float64(i)
	}
	return New([]string{dim}, []int{n}, codes)
}

// Zeros creates a zero-filled tensor with the given axes.
func Zeros(dims []string, sizes []int) (*Tensor, error) {
	return Full(dims, sizes, 0)
}

// Full creates a tensor with every element set to v.
func Full(dims []string, sizes []int, v float64) (*Tensor, error) {
	n := 1
	for _, s := range sizes {
		n *= s
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = v
	}
	return New(dims, sizes, data)
}

// Dims returns the axis names in storage order.
func (t *Tensor) Dims() []string {
	return slices.Clone(t.dims)
}

// Sizes returns the axis sizes in storage order.
func (t *Tensor) Sizes() []int {
	return slices.Clone(t.sizes)
}

// Data returns a copy of the row-major element data.
func (t *Tensor) Data() []float64 {
	return slices.Clone(t.data)
}

// HasDim reports whether the tensor carries the named axis.
func (t *Tensor) HasDim(dim string) bool {
	return t.axis(dim) >= 0
}

// Size returns the length of the named axis, or an error if absent.
func (t *Tensor) Size(dim string) (int, error) {
	ax := t.axis(dim)
	if ax < 0 {
		return 0, fmt.Errorf("tensor: no axis %q (have %v)", dim, t.dims)
	}
	return t.sizes[ax], nil
}

// At returns the element addressed by a full set of axis coordinates.
// Every axis of the tensor must be present in coords.
func (t *Tensor) At(coords map[string]int) (float64, error) {
	if len(coords) != len(t.dims) {
		return 0, fmt.Errorf("tensor: At needs %d coordinates, got %d", len(t.dims), len(coords))
	}
	flat := 0
	str := t.strides()
	for ax, d := range t.dims {
		c, ok := coords[d]
		if !ok {
			return 0, fmt.Errorf("tensor: missing coordinate for axis %q", d)
		}
		if c < 0 || c >= t.sizes[ax] {
			return 0, fmt.Errorf("tensor: coordinate %d out of range for axis %q (size %d)", c, d, t.sizes[ax])
		}
		flat += c * str[ax]
	}
	return t.data[flat], nil
}

// Item returns the value of a scalar tensor.
func (t *Tensor) Item() (float64, error) {
	if len(t.dims) != 0 {
		return 0, fmt.Errorf("tensor: Item on non-scalar tensor with axes %v", t.dims)
	}
	return t.data[0], nil
}

// String renders the tensor's axes and sizes, not its data.
func (t *Tensor) String() string {
	if len(t.dims) == 0 {
		return fmt.Sprintf("scalar(%g)", t.data[0])
	}
	parts := make([]string, len(t.dims))
	for i, d := range t.dims {
		parts[i] = fmt.Sprintf("%s:%d", d, t.sizes[i])
	}
	return "tensor[" + strings.Join(parts, " ") + "]"
}

// IsFinite reports whether every element is finite or -Inf.
// +Inf and NaN indicate a malformed density and are rejected by Eval.
func (t *Tensor) IsFinite() bool {
	for _, v := range t.data {
		if math.IsNaN(v) || math.IsInf(v, 1) {
			return false
		}
	}
	return true
}

// axis returns the storage position of the named axis, or -1.
func (t *Tensor) axis(dim string) int {
	return slices.Index(t.dims, dim)
}

// strides returns row-major strides for the tensor's sizes.
func (t *Tensor) strides() []int {
	str := make([]int, len(t.sizes))
	acc := 1
	for i := len(t.sizes) - 1; i >= 0; i-- {
		str[i] = acc
		acc *= t.sizes[i]
	}
	return str
}

// increment advances coords through the row-major index space of sizes.
func increment(coords, sizes []int) {
	for i := len(coords) - 1; i >= 0; i-- {
		coords[i]++
		if coords[i] < sizes[i] {
			return
		}
		coords[i] = 0
	}
}
