package infer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/minuet-ml/minuet/internal/dist"
	"github.com/minuet-ml/minuet/internal/engine"
	"github.com/minuet-ml/minuet/internal/tensor"
)

// hmm is a small hidden Markov model with discrete latent states and
// Gaussian emissions. Latents are enumerated; observations are observed.
type hmm struct {
	pi    []float64
	trans [][]float64
	means []float64
	sigma float64
	obs   []float64
}

func (h hmm) model(rt *engine.Runtime) error {
	k := len(h.pi)

	prior, err := dist.NewCategoricalProbs("state", h.pi)
	if err != nil {
		return err
	}
	x, err := rt.Sample("x0", prior, engine.WithEnumerate())
	if err != nil {
		return err
	}

	flat := make([]float64, 0, k*k)
	for _, row := range h.trans {
		for _, p := range row {
			flat = append(flat, math.Log(p))
		}
	}
	transTable, err := tensor.New([]string{"prev", "state"}, []int{k, k}, flat)
	if err != nil {
		return err
	}
	meansTable, err := tensor.FromSlice("mix", h.means)
	if err != nil {
		return err
	}

	for t, y := range h.obs {
		mu, err := tensor.Gather(meansTable, "mix", x)
		if err != nil {
			return err
		}
		emit, err := dist.NewNormal(mu, tensor.Scalar(h.sigma))
		if err != nil {
			return err
		}
		if _, err := rt.Observe(site("y", t), emit, tensor.Scalar(y)); err != nil {
			return err
		}

		if t == len(h.obs)-1 {
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
		x, err = rt.Sample(site("x", t+1), step, engine.WithEnumerate())
		if err != nil {
			return err
		}
	}
	return nil
}

func site(prefix string, i int) string {
	return prefix + string(rune('0'+i))
}

// forward computes the reference log-marginal with the forward algorithm.
func (h hmm) forward() float64 {
	k := len(h.pi)
	alpha := make([]float64, k)
	for i := 0; i < k; i++ {
		alpha[i] = math.Log(h.pi[i]) + distuv.Normal{Mu: h.means[i], Sigma: h.sigma}.LogProb(h.obs[0])
	}
	lane := make([]float64, k)
	for t := 1; t < len(h.obs); t++ {
		next := make([]float64, k)
		for j := 0; j < k; j++ {
			for i := 0; i < k; i++ {
				lane[i] = alpha[i] + math.Log(h.trans[i][j])
			}
			next[j] = floats.LogSumExp(lane) + distuv.Normal{Mu: h.means[j], Sigma: h.sigma}.LogProb(h.obs[t])
		}
		alpha = next
	}
	return floats.LogSumExp(alpha)
}

func testHMM() hmm {
	return hmm{
		pi: []float64{0.6, 0.4},
		trans: [][]float64{
			{0.7, 0.3},
			{0.2, 0.8},
		},
		means: []float64{-1.0, 1.5},
		sigma: 0.8,
		obs:   []float64{-0.5, 0.9, 1.2, -1.1},
	}
}

func TestMarginal_HMMMatchesForwardAlgorithm(t *testing.T) {
	h := testHMM()

	res, err := Marginal(h.model, Config{Seed: 1})
	require.NoError(t, err)

	assert.InDelta(t, h.forward(), res.LogMarginal, 1e-10)
	assert.Equal(t, []string{"x0", "x1", "x2", "x3"}, res.EnumDims)
	assert.Len(t, res.Trace, 8, "four latents and four observations")
}

func TestMarginal_FullyEnumeratedIgnoresParticleCount(t *testing.T) {
	h := testHMM()

	one, err := Marginal(h.model, Config{Seed: 1, Particles: 1})
	require.NoError(t, err)
	many, err := Marginal(h.model, Config{Seed: 2, Particles: 64})
	require.NoError(t, err)

	assert.InDelta(t, one.LogMarginal, many.LogMarginal, 1e-12,
		"no sampled site means no dependence on the sampling axis or seed")
}

func TestMarginal_ThreeStateChain(t *testing.T) {
	h := hmm{
		pi: []float64{0.5, 0.25, 0.25},
		trans: [][]float64{
			{0.8, 0.1, 0.1},
			{0.3, 0.4, 0.3},
			{0.1, 0.1, 0.8},
		},
		means: []float64{-2, 0, 2},
		sigma: 1.1,
		obs:   []float64{0.2, -1.9, 2.4},
	}

	res, err := Marginal(h.model, Config{Seed: 7})
	require.NoError(t, err)
	assert.InDelta(t, h.forward(), res.LogMarginal, 1e-10)
}

// mixture enumerates a single Bernoulli assignment for one observation.
func mixtureModel(p, mu0, mu1, sigma, y float64) engine.Model {
	return func(rt *engine.Runtime) error {
		comp, err := dist.NewBernoulli(p)
		if err != nil {
			return err
		}
		z, err := rt.Sample("z", comp, engine.WithEnumerate())
		if err != nil {
			return err
		}
		meansTable, err := tensor.FromSlice("mix", []float64{mu0, mu1})
		if err != nil {
			return err
		}
		mu, err := tensor.Gather(meansTable, "mix", z)
		if err != nil {
			return err
		}
		emit, err := dist.NewNormal(mu, tensor.Scalar(sigma))
		if err != nil {
			return err
		}
		_, err = rt.Observe("y", emit, tensor.Scalar(y))
		return err
	}
}

func TestMarginal_TwoComponentMixtureClosedForm(t *testing.T) {
	p, mu0, mu1, sigma, y := 0.3, -1.0, 2.0, 0.5, 0.7

	res, err := Marginal(mixtureModel(p, mu0, mu1, sigma, y), Config{Seed: 3})
	require.NoError(t, err)

	want := math.Log(
		(1-p)*math.Exp(distuv.Normal{Mu: mu0, Sigma: sigma}.LogProb(y)) +
			p*math.Exp(distuv.Normal{Mu: mu1, Sigma: sigma}.LogProb(y)))
	assert.InDelta(t, want, res.LogMarginal, 1e-10)
}

// sampledModel has a continuous latent, so the objective is a Monte Carlo
// estimate over the sampling axis.
func sampledModel(rt *engine.Runtime) error {
	priorZ, err := dist.NewNormalScalar(0, 1)
	if err != nil {
		return err
	}
	z, err := rt.Sample("z", priorZ)
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

func TestMarginal_SampledLatentIsSeedReproducible(t *testing.T) {
	a, err := Marginal(sampledModel, Config{Seed: 11, Particles: 32})
	require.NoError(t, err)
	b, err := Marginal(sampledModel, Config{Seed: 11, Particles: 32})
	require.NoError(t, err)

	assert.Equal(t, a.LogMarginal, b.LogMarginal)
	assert.False(t, math.IsNaN(a.LogMarginal))
	assert.False(t, math.IsInf(a.LogMarginal, 0))
}

func TestReplay_ReproducesSampledObjective(t *testing.T) {
	orig, err := Marginal(sampledModel, Config{Seed: 5, Particles: 16})
	require.NoError(t, err)

	// A different seed does not matter: every unobserved site takes its
	// recorded value, so no fresh randomness is consumed.
	replayed, err := Replay(sampledModel, orig.Trace, Config{Seed: 99, Particles: 16})
	require.NoError(t, err)

	assert.Equal(t, orig.LogMarginal, replayed.LogMarginal)
	assert.Len(t, replayed.Trace, len(orig.Trace))
}

func TestReplay_ReEnumeratesLatents(t *testing.T) {
	h := testHMM()

	orig, err := Marginal(h.model, Config{Seed: 1})
	require.NoError(t, err)

	replayed, err := Replay(h.model, orig.Trace, Config{Seed: 2})
	require.NoError(t, err)

	assert.InDelta(t, orig.LogMarginal, replayed.LogMarginal, 1e-12)
	assert.Equal(t, orig.EnumDims, replayed.EnumDims)
}

func TestNegLogLikelihood_NegatesMarginal(t *testing.T) {
	h := testHMM()

	res, err := Marginal(h.model, Config{Seed: 1})
	require.NoError(t, err)
	nll, err := NegLogLikelihood(h.model, Config{Seed: 1})
	require.NoError(t, err)

	assert.InDelta(t, -res.LogMarginal, nll, 1e-15)
}
