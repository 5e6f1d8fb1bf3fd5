package dist

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/minuet-ml/minuet/internal/tensor"
)

// Bernoulli is a coin flip over the codes {0, 1}.
type Bernoulli struct {
	p float64
}

// NewBernoulli builds a Bernoulli with success probability p.
func NewBernoulli(p float64) (*Bernoulli, error) {
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("dist: bernoulli probability %v outside [0,1]", p)
	}
	return &Bernoulli{p: p}, nil
}

// LogProb evaluates log P(value) elementwise over the value's axes.
func (d *Bernoulli) LogProb(value *tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.FromCells(value.Dims(), value.Sizes(), func(coords map[string]int) (float64, error) {
		x, err := cellAt(value, coords)
		if err != nil {
			return 0, err
		}
		switch x {
		case 0:
			return math.Log1p(-d.p), nil
		case 1:
			return math.Log(d.p), nil
		default:
			return 0, fmt.Errorf("dist: bernoulli value %v not in {0,1}", x)
		}
	})
}

// Sample draws n values along the named axis.
func (d *Bernoulli) Sample(src rand.Source, dim string, n int) (*tensor.Tensor, error) {
	if n <= 0 {
		return nil, fmt.Errorf("dist: sample count must be positive, got %d", n)
	}
	b := distuv.Bernoulli{P: d.p, Src: src}
	return tensor.FromCells([]string{dim}, []int{n}, func(map[string]int) (float64, error) {
		return b.Rand(), nil
	})
}

// Draw produces one value.
func (d *Bernoulli) Draw(src rand.Source) (float64, error) {
	return distuv.Bernoulli{P: d.p, Src: src}.Rand(), nil
}

// EnumSupport returns the two-element support.
func (d *Bernoulli) EnumSupport() (int, bool) {
	return 2, true
}
