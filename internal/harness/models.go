package harness

import (
	"github.com/minuet-ml/minuet/internal/dist"
	"github.com/minuet-ml/minuet/internal/engine"
	"github.com/minuet-ml/minuet/internal/model"
	"github.com/minuet-ml/minuet/internal/tensor"
)

// HMMScenario is the two-state chain with Gaussian emissions: every latent
// is enumerated, so the objective is the exact forward-algorithm marginal.
func HMMScenario() *Scenario {
	hmm := model.HMM{
		Initial: []float64{0.6, 0.4},
		Transition: [][]float64{
			{0.7, 0.3},
			{0.2, 0.8},
		},
		Means:        []float64{-1.0, 1.5},
		Sigma:        0.8,
		Observations: []float64{-0.5, 0.9, 1.2},
	}
	return &Scenario{
		Name:        "hmm-forward",
		Description: "two-state HMM with all latents enumerated",
		Model:       hmm.Model(),
		Particles:   1,
		Seed:        1,
	}
}

// MixtureScenario is the two-coin mixture: one enumerated Bernoulli
// assignment per observation.
func MixtureScenario() *Scenario {
	mix := model.Mixture{
		Weight:       0.3,
		Means:        []float64{-1.0, 2.0},
		Sigma:        0.5,
		Observations: []float64{0.7, -0.4},
	}
	return &Scenario{
		Name:        "two-coins",
		Description: "per-observation enumerated mixture assignments",
		Model:       mix.Model(),
		Particles:   1,
		Seed:        1,
	}
}

// SampledScenario has a continuous latent, so its value carries the shared
// sampling axis and the objective is a Monte Carlo estimate.
func SampledScenario() *Scenario {
	m := func(rt *engine.Runtime) error {
		prior, err := dist.NewNormalScalar(0, 1)
		if err != nil {
			return err
		}
		z, err := rt.Sample("z", prior)
		if err != nil {
			return err
		}
		emit, err := dist.NewNormal(z, tensor.Scalar(1))
		if err != nil {
			return err
		}
		_, err = rt.Observe("y", emit, tensor.Scalar(0.4))
		return err
	}
	return &Scenario{
		Name:        "sampled-normal",
		Description: "continuous latent vectorized over the particle axis",
		Model:       m,
		Particles:   4,
		Seed:        7,
	}
}

// Scenarios returns every bundled scenario.
func Scenarios() []*Scenario {
	return []*Scenario{
		HMMScenario(),
		MixtureScenario(),
		SampledScenario(),
	}
}
