package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/minuet-ml/minuet/internal/dist"
	"github.com/minuet-ml/minuet/internal/tensor"
)

func mustCategorical(t *testing.T, probs ...float64) *dist.Categorical {
	t.Helper()
	c, err := dist.NewCategoricalProbs("k", probs)
	require.NoError(t, err)
	return c
}

func mustNormal(t *testing.T, mu, sigma float64) *dist.Normal {
	t.Helper()
	d, err := dist.NewNormalScalar(mu, sigma)
	require.NoError(t, err)
	return d
}

func TestSample_DefaultDrawWithoutHandlers(t *testing.T) {
	rt := NewRuntime(rand.NewSource(1))

	var got *tensor.Tensor
	err := rt.Run(func(rt *Runtime) error {
		v, err := rt.Sample("x", mustCategorical(t, 0, 1))
		got = v
		return err
	})
	require.NoError(t, err)

	v, err := got.Item()
	require.NoError(t, err)
	assert.Equal(t, 1.0, v, "the only positive-probability code is 1")
}

func TestSample_DuplicateSiteName(t *testing.T) {
	rt := NewRuntime(rand.NewSource(1))

	err := rt.Run(func(rt *Runtime) error {
		if _, err := rt.Sample("x", mustCategorical(t, 1)); err != nil {
			return err
		}
		_, err := rt.Sample("x", mustCategorical(t, 1))
		return err
	})
	require.Error(t, err)
	assert.True(t, IsDuplicateSite(err))
}

func TestSample_SiteNamesResetBetweenRuns(t *testing.T) {
	rt := NewRuntime(rand.NewSource(1))
	model := func(rt *Runtime) error {
		_, err := rt.Sample("x", mustCategorical(t, 1))
		return err
	}

	require.NoError(t, rt.Run(model))
	require.NoError(t, rt.Run(model), "a fresh run may reuse site names")
}

func TestSample_InvalidSites(t *testing.T) {
	rt := NewRuntime(rand.NewSource(1))

	_, err := rt.Sample("", mustCategorical(t, 1))
	require.Error(t, err)
	var se *SiteError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeInvalidSite, se.Code)

	_, err = rt.Sample("x", nil)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeInvalidSite, se.Code)
}

func TestObserve_MissingValue(t *testing.T) {
	rt := NewRuntime(rand.NewSource(1))

	_, err := rt.Sample("y", mustNormal(t, 0, 1), WithObserved(nil))
	require.Error(t, err)
	var se *SiteError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeMissingObservation, se.Code)
}

func TestObserve_KeepsValueAndSkipsDraw(t *testing.T) {
	rt := NewRuntime(rand.NewSource(1))

	v, err := rt.Observe("y", mustNormal(t, 0, 1), tensor.Scalar(2.5))
	require.NoError(t, err)

	got, err := v.Item()
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)
}

// orderProbe records the phase order a message passes through it.
type orderProbe struct {
	Base
	id  string
	log *[]string
}

func (p *orderProbe) Enter(*Runtime) error {
	*p.log = append(*p.log, "enter:"+p.id)
	return nil
}

func (p *orderProbe) Exit(*Runtime, error) error {
	*p.log = append(*p.log, "exit:"+p.id)
	return nil
}

func (p *orderProbe) ProcessMessage(*Runtime, *Message) error {
	*p.log = append(*p.log, "pre:"+p.id)
	return nil
}

func (p *orderProbe) PostProcessMessage(*Runtime, *Message) error {
	*p.log = append(*p.log, "post:"+p.id)
	return nil
}

func TestRun_HandlerOrdering(t *testing.T) {
	var log []string
	outer := &orderProbe{id: "outer", log: &log}
	inner := &orderProbe{id: "inner", log: &log}
	rt := NewRuntime(rand.NewSource(1), outer, inner)

	err := rt.Run(func(rt *Runtime) error {
		_, err := rt.Sample("x", mustCategorical(t, 1))
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"enter:outer", "enter:inner",
		"pre:inner", "pre:outer",
		"post:outer", "post:inner",
		"exit:inner", "exit:outer",
	}, log)
}

// failingEnter fails on Enter to exercise partial unwind.
type failingEnter struct{ Base }

func (failingEnter) Enter(*Runtime) error { return errors.New("boom") }

func TestRun_EnterFailureUnwindsEnteredHandlersOnly(t *testing.T) {
	var log []string
	outer := &orderProbe{id: "outer", log: &log}
	rt := NewRuntime(rand.NewSource(1), outer, failingEnter{})

	err := rt.Run(func(rt *Runtime) error {
		t.Fatal("model must not run when a handler fails to enter")
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, []string{"enter:outer", "exit:outer"}, log)
}

func TestRun_ModelErrorStillUnwinds(t *testing.T) {
	var log []string
	outer := &orderProbe{id: "outer", log: &log}
	rt := NewRuntime(rand.NewSource(1), outer)

	modelErr := errors.New("model failed")
	err := rt.Run(func(rt *Runtime) error { return modelErr })
	require.ErrorIs(t, err, modelErr)
	assert.Contains(t, log, "exit:outer")
}

// resolver resolves every unobserved message with a fixed scalar.
type resolver struct {
	Base
	value float64
}

func (r *resolver) ProcessMessage(rt *Runtime, m *Message) error {
	if m.Done || m.Observed {
		return nil
	}
	m.Value = tensor.Scalar(r.value)
	m.Done = true
	return nil
}

func TestSample_FirstResolverWins(t *testing.T) {
	// Pre-draw order is innermost-first, so the inner resolver runs first
	// and the outer one must skip the already-resolved message.
	outer := &resolver{value: 1}
	inner := &resolver{value: 2}
	rt := NewRuntime(rand.NewSource(1), outer, inner)

	var got float64
	err := rt.Run(func(rt *Runtime) error {
		v, err := rt.Sample("x", mustCategorical(t, 1))
		if err != nil {
			return err
		}
		got, err = v.Item()
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)
}
