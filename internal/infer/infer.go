// Package infer contains the driving routine that composes the effect
// handlers, runs a model once, and reduces the accumulated symbolic
// log-joint to a numeric objective.
package infer

import (
	"fmt"
	"log/slog"

	"golang.org/x/exp/rand"

	"github.com/minuet-ml/minuet/internal/engine"
	"github.com/minuet-ml/minuet/internal/lazy"
)

// Config controls one inference run.
type Config struct {
	// Particles is the size of the shared sampling axis. Defaults to 1.
	Particles int

	// Seed initializes the run-scoped RNG source.
	Seed uint64
}

// Result is the outcome of one composed run.
type Result struct {
	// LogMarginal is the evaluated objective: the log-joint with every
	// enumerated axis summed out and the sampling axis averaged out.
	LogMarginal float64

	// Trace holds the run's sites in execution order.
	Trace []engine.SiteRecord

	// EnumDims lists the enumeration axes that were marginalized.
	EnumDims []string
}

// Marginal runs the model once under the composed handler stack and reduces
// the symbolic total to a scalar.
//
// The stack, outermost-first: seed, vectorizer, enumerator, joint
// accumulator, trace. Pre-draw dispatch is innermost-first, so enumeration
// requests resolve before the vectorizer sees the site.
//
// Reduction order: every enumeration axis is summed out with log-sum-exp,
// innermost reductions first in reverse lease order, then the sampling axis
// is averaged out. Only then is the expression forced to a number.
func Marginal(model engine.Model, cfg Config) (*Result, error) {
	particles := cfg.Particles
	if particles <= 0 {
		particles = 1
	}

	vec := engine.NewVectorize(particles)
	enum := engine.NewEnumerate()
	joint := engine.NewLogJoint()
	trace := engine.NewTrace()
	rt := engine.NewRuntime(
		rand.NewSource(cfg.Seed),
		engine.NewSeed(cfg.Seed),
		vec, enum, joint, trace,
	)

	if err := rt.Run(model); err != nil {
		return nil, fmt.Errorf("run model: %w", err)
	}

	return evaluate(vec, enum, joint, trace, particles)
}

// Replay re-executes a model with its unobserved sites forced to the values
// of a recorded trace, and evaluates the same objective. A replayed run with
// the same particle count reproduces the original objective exactly.
//
// The replay handler sits between the vectorizer and the enumerator, so
// enumeration requests are honored fresh (re-leasing their axes) while
// sampled sites take their recorded values instead of new draws.
func Replay(model engine.Model, records []engine.SiteRecord, cfg Config) (*Result, error) {
	particles := cfg.Particles
	if particles <= 0 {
		particles = 1
	}

	vec := engine.NewVectorize(particles)
	enum := engine.NewEnumerate()
	joint := engine.NewLogJoint()
	trace := engine.NewTrace()
	rt := engine.NewRuntime(
		rand.NewSource(cfg.Seed),
		engine.NewSeed(cfg.Seed),
		vec, engine.NewReplay(records), enum, joint, trace,
	)

	if err := rt.Run(model); err != nil {
		return nil, fmt.Errorf("replay model: %w", err)
	}

	return evaluate(vec, enum, joint, trace, particles)
}

// evaluate reduces the accumulated log-joint to the scalar objective.
func evaluate(vec *engine.Vectorize, enum *engine.Enumerate, joint *engine.LogJoint, trace *engine.Trace, particles int) (*Result, error) {
	enumDims := enum.EnumDims()
	var expr lazy.Term = joint.Total()
	for i := len(enumDims) - 1; i >= 0; i-- {
		expr = lazy.LogSumExp(expr, enumDims[i])
	}
	expr = lazy.Mean(expr, vec.Dim())

	out, err := lazy.Eval(expr)
	if err != nil {
		return nil, fmt.Errorf("evaluate log-joint: %w", err)
	}
	v, err := out.Item()
	if err != nil {
		return nil, fmt.Errorf("objective is not scalar after reduction: %w", err)
	}

	slog.Debug("marginal evaluated",
		"log_marginal", v,
		"enum_dims", len(enumDims),
		"particles", particles,
		"sites", len(trace.Records()),
	)

	return &Result{
		LogMarginal: v,
		Trace:       trace.Records(),
		EnumDims:    enumDims,
	}, nil
}

// NegLogLikelihood is Marginal negated, the loss minimized by gradient-free
// or finite-difference optimizers.
func NegLogLikelihood(model engine.Model, cfg Config) (float64, error) {
	res, err := Marginal(model, cfg)
	if err != nil {
		return 0, err
	}
	return -res.LogMarginal, nil
}
