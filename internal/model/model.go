// Package model defines the bundled generative models and the YAML model
// file format the CLI loads. Each model compiles to an engine.Model closure
// whose discrete latents request enumeration.
package model

import (
	"fmt"
	"math"

	"github.com/minuet-ml/minuet/internal/dist"
	"github.com/minuet-ml/minuet/internal/engine"
	"github.com/minuet-ml/minuet/internal/tensor"
)

// HMM is a hidden Markov model with discrete latent states and Gaussian
// emissions. Latent sites are named x0, x1, ... and observations y0, y1, ...
type HMM struct {
	// Initial is the distribution over the first latent state.
	Initial []float64 `yaml:"initial"`

	// Transition is the row-stochastic state transition matrix:
	// Transition[i][j] is the probability of moving from state i to j.
	Transition [][]float64 `yaml:"transition"`

	// Means holds one emission mean per state.
	Means []float64 `yaml:"means"`

	// Sigma is the shared emission standard deviation.
	Sigma float64 `yaml:"sigma"`

	// Observations is the observed emission sequence.
	Observations []float64 `yaml:"observations"`
}

// Validate checks structural consistency of the parameters.
func (h HMM) Validate() error {
	k := len(h.Initial)
	if k == 0 {
		return fmt.Errorf("hmm: initial distribution is empty")
	}
	if err := validateWeights("initial", h.Initial); err != nil {
		return fmt.Errorf("hmm: %w", err)
	}
	if len(h.Transition) != k {
		return fmt.Errorf("hmm: transition has %d rows for %d states", len(h.Transition), k)
	}
	for i, row := range h.Transition {
		if len(row) != k {
			return fmt.Errorf("hmm: transition row %d has %d entries for %d states", i, len(row), k)
		}
		if err := validateWeights(fmt.Sprintf("transition row %d", i), row); err != nil {
			return fmt.Errorf("hmm: %w", err)
		}
	}
	if len(h.Means) != k {
		return fmt.Errorf("hmm: %d means for %d states", len(h.Means), k)
	}
	if h.Sigma <= 0 {
		return fmt.Errorf("hmm: sigma must be positive, got %g", h.Sigma)
	}
	if len(h.Observations) == 0 {
		return fmt.Errorf("hmm: no observations")
	}
	return nil
}

// Model compiles the HMM into a generative procedure. Each latent requests
// enumeration, so the marginal over the state chain is exact.
func (h HMM) Model() engine.Model {
	return func(rt *engine.Runtime) error {
		k := len(h.Initial)

		prior, err := dist.NewCategoricalProbs("state", h.Initial)
		if err != nil {
			return err
		}
		x, err := rt.Sample("x0", prior, engine.WithEnumerate())
		if err != nil {
			return err
		}

		flat := make([]float64, 0, k*k)
		for _, row := range h.Transition {
			for _, p := range row {
				flat = append(flat, math.Log(p))
			}
		}
		transTable, err := tensor.New([]string{"prev", "state"}, []int{k, k}, flat)
		if err != nil {
			return err
		}
		meansTable, err := tensor.FromSlice("emit", h.Means)
		if err != nil {
			return err
		}

		for t, y := range h.Observations {
			mu, err := tensor.Gather(meansTable, "emit", x)
			if err != nil {
				return err
			}
			emit, err := dist.NewNormal(mu, tensor.Scalar(h.Sigma))
			if err != nil {
				return err
			}
			if _, err := rt.Observe(fmt.Sprintf("y%d", t), emit, tensor.Scalar(y)); err != nil {
				return err
			}

			if t == len(h.Observations)-1 {
				break
			}
			rows, err := tensor.Gather(transTable, "prev", x)
			if err != nil {
				return err
			}
			step, err := dist.NewCategorical("state", rows)
			if err != nil {
				return err
			}
			x, err = rt.Sample(fmt.Sprintf("x%d", t+1), step, engine.WithEnumerate())
			if err != nil {
				return err
			}
		}
		return nil
	}
}

// Mixture is a two-component Gaussian mixture with an independent Bernoulli
// assignment per observation. Assignment sites are named z0, z1, ... and
// observations y0, y1, ...
type Mixture struct {
	// Weight is the probability of the second component.
	Weight float64 `yaml:"weight"`

	// Means holds the two component means.
	Means []float64 `yaml:"means"`

	// Sigma is the shared standard deviation.
	Sigma float64 `yaml:"sigma"`

	// Observations is the observed sample.
	Observations []float64 `yaml:"observations"`
}

// Validate checks structural consistency of the parameters.
func (m Mixture) Validate() error {
	if m.Weight < 0 || m.Weight > 1 {
		return fmt.Errorf("mixture: weight must be in [0, 1], got %g", m.Weight)
	}
	if len(m.Means) != 2 {
		return fmt.Errorf("mixture: need exactly 2 means, got %d", len(m.Means))
	}
	if m.Sigma <= 0 {
		return fmt.Errorf("mixture: sigma must be positive, got %g", m.Sigma)
	}
	if len(m.Observations) == 0 {
		return fmt.Errorf("mixture: no observations")
	}
	return nil
}

// Model compiles the mixture into a generative procedure with enumerated
// component assignments.
func (m Mixture) Model() engine.Model {
	return func(rt *engine.Runtime) error {
		comp, err := dist.NewBernoulli(m.Weight)
		if err != nil {
			return err
		}
		meansTable, err := tensor.FromSlice("comp", m.Means)
		if err != nil {
			return err
		}

		for i, y := range m.Observations {
			z, err := rt.Sample(fmt.Sprintf("z%d", i), comp, engine.WithEnumerate())
			if err != nil {
				return err
			}
			mu, err := tensor.Gather(meansTable, "comp", z)
			if err != nil {
				return err
			}
			emit, err := dist.NewNormal(mu, tensor.Scalar(m.Sigma))
			if err != nil {
				return err
			}
			if _, err := rt.Observe(fmt.Sprintf("y%d", i), emit, tensor.Scalar(y)); err != nil {
				return err
			}
		}
		return nil
	}
}

// validateWeights checks that a probability vector is usable: entries are
// finite and non-negative with positive total mass. Exact normalization is
// not required; Categorical normalizes internally.
func validateWeights(label string, w []float64) error {
	total := 0.0
	for i, p := range w {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return fmt.Errorf("%s: entry %d is %g, want finite and non-negative", label, i, p)
		}
		total += p
	}
	if total <= 0 {
		return fmt.Errorf("%s: total mass is %g, want positive", label, total)
	}
	return nil
}
