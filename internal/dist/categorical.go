package dist

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/minuet-ml/minuet/internal/tensor"
)

// Categorical is a discrete distribution over integer codes 0..k-1.
//
// Logits carry one designated support axis of length k; any further axes are
// batch axes, which may themselves be enumerated axes from upstream sites.
// Logits need not be normalized.
type Categorical struct {
	logp    *tensor.Tensor // log-normalized along axis
	axis    string
	support int
}

// NewCategorical builds a categorical distribution from a logits tensor and
// the name of its support axis. Logits are normalized once, up front.
func NewCategorical(axis string, logits *tensor.Tensor) (*Categorical, error) {
	if !logits.HasDim(axis) {
		return nil, fmt.Errorf("dist: logits missing support axis %q (have %v)", axis, logits.Dims())
	}
	k, err := logits.Size(axis)
	if err != nil {
		return nil, err
	}
	logZ, err := tensor.LogSumExp(logits, axis)
	if err != nil {
		return nil, fmt.Errorf("dist: normalize logits: %w", err)
	}
	logp, err := tensor.Add(logits, tensor.Scale(logZ, -1))
	if err != nil {
		return nil, fmt.Errorf("dist: normalize logits: %w", err)
	}
	return &Categorical{logp: logp, axis: axis, support: k}, nil
}

// NewCategoricalProbs builds a categorical from a probability vector.
// The support axis carries the given name.
func NewCategoricalProbs(axis string, probs []float64) (*Categorical, error) {
	logits := make([]float64, len(probs))
	for i, p := range probs {
		if p < 0 {
			return nil, fmt.Errorf("dist: negative probability %v at code %d", p, i)
		}
		logits[i] = math.Log(p) // log(0) = -Inf is legal
	}
	t, err := tensor.FromSlice(axis, logits)
	if err != nil {
		return nil, err
	}
	return NewCategorical(axis, t)
}

// LogProb evaluates log P(value). The value tensor holds integer codes and
// must not carry the support axis; its axes replace the support axis in the
// result, so an enumerated value yields a table over both the parameters'
// batch axes and the enumeration axis.
func (c *Categorical) LogProb(value *tensor.Tensor) (*tensor.Tensor, error) {
	out, err := tensor.Gather(c.logp, c.axis, value)
	if err != nil {
		return nil, fmt.Errorf("dist: categorical logprob: %w", err)
	}
	return out, nil
}

// Sample draws n values per batch cell along the named axis.
func (c *Categorical) Sample(src rand.Source, dim string, n int) (*tensor.Tensor, error) {
	if n <= 0 {
		return nil, fmt.Errorf("dist: sample count must be positive, got %d", n)
	}
	if c.logp.HasDim(dim) {
		return nil, fmt.Errorf("dist: sample axis %q collides with a parameter axis", dim)
	}

	batchDims, batchSizes, err := batchShape(c.logp, c.axis)
	if err != nil {
		return nil, err
	}
	outDims := append([]string{dim}, batchDims...)
	outSizes := append([]int{n}, batchSizes...)

	return tensor.FromCells(outDims, outSizes, func(coords map[string]int) (float64, error) {
		weights := make([]float64, c.support)
		for code := 0; code < c.support; code++ {
			coords[c.axis] = code
			lp, err := cellAt(c.logp, coords)
			if err != nil {
				return 0, err
			}
			weights[code] = math.Exp(lp)
		}
		delete(coords, c.axis)
		cat := distuv.NewCategorical(weights, src)
		return cat.Rand(), nil
	})
}

// Draw produces one value. Requires unbatched parameters.
func (c *Categorical) Draw(src rand.Source) (float64, error) {
	if len(c.logp.Dims()) != 1 {
		return 0, fmt.Errorf("dist: single draw from batched categorical with axes %v", c.logp.Dims())
	}
	weights := make([]float64, c.support)
	for code, lp := range c.logp.Data() {
		weights[code] = math.Exp(lp)
	}
	cat := distuv.NewCategorical(weights, src)
	return cat.Rand(), nil
}

// EnumSupport returns the support cardinality.
func (c *Categorical) EnumSupport() (int, bool) {
	return c.support, true
}

// batchShape lists t's axes minus the support axis, in storage order.
func batchShape(t *tensor.Tensor, axis string) ([]string, []int, error) {
	var dims []string
	var sizes []int
	allSizes := t.Sizes()
	for i, d := range t.Dims() {
		if d == axis {
			continue
		}
		dims = append(dims, d)
		sizes = append(sizes, allSizes[i])
	}
	return dims, sizes, nil
}
