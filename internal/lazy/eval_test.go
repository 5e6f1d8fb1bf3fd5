package lazy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/minuet-ml/minuet/internal/dist"
	"github.com/minuet-ml/minuet/internal/tensor"
)

// countingDist wraps a categorical and counts LogProb calls, to verify that
// building terms defers all density evaluation.
type countingDist struct {
	inner dist.Distribution
	calls int
}

func (c *countingDist) LogProb(v *tensor.Tensor) (*tensor.Tensor, error) {
	c.calls++
	return c.inner.LogProb(v)
}

func (c *countingDist) Sample(src rand.Source, dim string, n int) (*tensor.Tensor, error) {
	return c.inner.Sample(src, dim, n)
}

func (c *countingDist) Draw(src rand.Source) (float64, error) {
	return c.inner.Draw(src)
}

func (c *countingDist) EnumSupport() (int, bool) {
	return c.inner.EnumSupport()
}

func newCounting(t *testing.T, probs []float64) *countingDist {
	t.Helper()
	inner, err := dist.NewCategoricalProbs("k", probs)
	require.NoError(t, err)
	return &countingDist{inner: inner}
}

func TestBuildingTermsDefersEvaluation(t *testing.T) {
	d := newCounting(t, []float64{0.5, 0.5})

	total := (&Sum{}).Append(&Density{Site: "x", Dist: d, Value: tensor.Scalar(0)})
	total = total.Append(&Density{Site: "y", Dist: d, Value: tensor.Scalar(1)})
	expr := Mean(LogSumExp(total, "missing_is_an_error_only_at_eval"), "p")

	assert.Zero(t, d.calls, "no density may be evaluated before Eval")
	_ = expr
}

func TestEval_EmptySumIsZero(t *testing.T) {
	v, err := Eval(&Sum{})
	require.NoError(t, err)

	got, err := v.Item()
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestEval_SumBroadcastsTerms(t *testing.T) {
	d := newCounting(t, []float64{0.25, 0.75})
	supportX, err := tensor.Arange("x", 2)
	require.NoError(t, err)
	supportY, err := tensor.Arange("y", 2)
	require.NoError(t, err)

	total := (&Sum{}).
		Append(&Density{Site: "x", Dist: d, Value: supportX}).
		Append(&Density{Site: "y", Dist: d, Value: supportY})

	v, err := Eval(total)
	require.NoError(t, err)

	assert.Equal(t, 2, d.calls)
	assert.ElementsMatch(t, []string{"x", "y"}, v.Dims())
	cell, err := v.At(map[string]int{"x": 0, "y": 1})
	require.NoError(t, err)
	assert.InDelta(t, math.Log(0.25)+math.Log(0.75), cell, 1e-12)
}

func TestEval_LogSumExpMarginalizes(t *testing.T) {
	d := newCounting(t, []float64{0.25, 0.75})
	support, err := tensor.Arange("x", 2)
	require.NoError(t, err)

	total := (&Sum{}).Append(&Density{Site: "x", Dist: d, Value: support})
	v, err := Eval(LogSumExp(total, "x"))
	require.NoError(t, err)

	got, err := v.Item()
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got, 1e-12, "marginal of a full support is one")
}

func TestEval_LogSumExpOverAbsentAxisFails(t *testing.T) {
	total := (&Sum{}).Append(&Density{
		Site:  "x",
		Dist:  newCounting(t, []float64{1}),
		Value: tensor.Scalar(0),
	})

	_, err := Eval(LogSumExp(total, "ghost"))
	assert.Error(t, err)
}

func TestEval_MeanOverAbsentAxisIsIdentity(t *testing.T) {
	d := newCounting(t, []float64{0.5, 0.5})

	total := (&Sum{}).Append(&Density{Site: "x", Dist: d, Value: tensor.Scalar(0)})
	v, err := Eval(Mean(total, "particle"))
	require.NoError(t, err)

	got, err := v.Item()
	require.NoError(t, err)
	assert.InDelta(t, math.Log(0.5), got, 1e-12)
}

func TestEval_MeanAveragesAxis(t *testing.T) {
	lanes, err := tensor.FromSlice("particle", []float64{0, 1})
	require.NoError(t, err)
	mu, err := tensor.FromSlice("particle", []float64{0, 1})
	require.NoError(t, err)
	norm, err := dist.NewNormal(mu, tensor.Scalar(1))
	require.NoError(t, err)

	total := (&Sum{}).Append(&Density{Site: "z", Dist: norm, Value: lanes})
	v, err := Eval(Mean(total, "particle"))
	require.NoError(t, err)

	got, err := v.Item()
	require.NoError(t, err)
	assert.InDelta(t, -0.5*math.Log(2*math.Pi), got, 1e-12, "both lanes sit at their means")
}

func TestEval_AppendDoesNotMutateReceiver(t *testing.T) {
	d := newCounting(t, []float64{1})
	base := (&Sum{}).Append(&Density{Site: "a", Dist: d, Value: tensor.Scalar(0)})

	_ = base.Append(&Density{Site: "b", Dist: d, Value: tensor.Scalar(0)})
	assert.Len(t, base.Terms, 1)
}

func TestEval_RejectsNaNDensity(t *testing.T) {
	mu := tensor.Scalar(math.NaN())
	norm, err := dist.NewNormal(mu, tensor.Scalar(1))
	require.NoError(t, err)

	total := (&Sum{}).Append(&Density{Site: "z", Dist: norm, Value: tensor.Scalar(0)})
	_, err = Eval(total)
	assert.Error(t, err)
}
