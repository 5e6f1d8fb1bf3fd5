package dist

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/minuet-ml/minuet/internal/tensor"
)

// Normal is a Gaussian with tensor-valued mean and standard deviation.
// Scalar parameters broadcast against any value; a mean carrying an
// enumerated axis yields per-state emission densities.
type Normal struct {
	mu    *tensor.Tensor
	sigma *tensor.Tensor
}

// NewNormal builds a Gaussian from mean and standard deviation tensors.
func NewNormal(mu, sigma *tensor.Tensor) (*Normal, error) {
	for _, v := range sigma.Data() {
		if v <= 0 {
			return nil, fmt.Errorf("dist: non-positive stddev %v", v)
		}
	}
	if _, _, err := tensor.Union(mu, sigma); err != nil {
		return nil, fmt.Errorf("dist: normal parameters: %w", err)
	}
	return &Normal{mu: mu, sigma: sigma}, nil
}

// NewNormalScalar builds a Gaussian with scalar parameters.
func NewNormalScalar(mu, sigma float64) (*Normal, error) {
	return NewNormal(tensor.Scalar(mu), tensor.Scalar(sigma))
}

// LogProb evaluates the Gaussian log-density, broadcasting the value's axes
// against the parameter axes.
func (d *Normal) LogProb(value *tensor.Tensor) (*tensor.Tensor, error) {
	dims, sizes, err := tensor.Union(value, d.mu, d.sigma)
	if err != nil {
		return nil, fmt.Errorf("dist: normal logprob: %w", err)
	}
	return tensor.FromCells(dims, sizes, func(coords map[string]int) (float64, error) {
		x, err := cellAt(value, coords)
		if err != nil {
			return 0, err
		}
		mu, err := cellAt(d.mu, coords)
		if err != nil {
			return 0, err
		}
		sigma, err := cellAt(d.sigma, coords)
		if err != nil {
			return 0, err
		}
		return distuv.Normal{Mu: mu, Sigma: sigma}.LogProb(x), nil
	})
}

// Sample draws n values per parameter batch cell along the named axis.
func (d *Normal) Sample(src rand.Source, dim string, n int) (*tensor.Tensor, error) {
	if n <= 0 {
		return nil, fmt.Errorf("dist: sample count must be positive, got %d", n)
	}
	batchDims, batchSizes, err := tensor.Union(d.mu, d.sigma)
	if err != nil {
		return nil, err
	}
	for _, bd := range batchDims {
		if bd == dim {
			return nil, fmt.Errorf("dist: sample axis %q collides with a parameter axis", dim)
		}
	}
	outDims := append([]string{dim}, batchDims...)
	outSizes := append([]int{n}, batchSizes...)

	return tensor.FromCells(outDims, outSizes, func(coords map[string]int) (float64, error) {
		mu, err := cellAt(d.mu, coords)
		if err != nil {
			return 0, err
		}
		sigma, err := cellAt(d.sigma, coords)
		if err != nil {
			return 0, err
		}
		return distuv.Normal{Mu: mu, Sigma: sigma, Src: src}.Rand(), nil
	})
}

// Draw produces one value. Requires scalar parameters.
func (d *Normal) Draw(src rand.Source) (float64, error) {
	mu, err := d.mu.Item()
	if err != nil {
		return 0, fmt.Errorf("dist: single draw from batched normal: %w", err)
	}
	sigma, err := d.sigma.Item()
	if err != nil {
		return 0, fmt.Errorf("dist: single draw from batched normal: %w", err)
	}
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: src}.Rand(), nil
}

// EnumSupport reports that a continuous support cannot be enumerated.
func (d *Normal) EnumSupport() (int, bool) {
	return 0, false
}
