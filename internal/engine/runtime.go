package engine

import (
	"fmt"
	"log/slog"

	"golang.org/x/exp/rand"

	"github.com/minuet-ml/minuet/internal/dims"
	"github.com/minuet-ml/minuet/internal/dist"
	"github.com/minuet-ml/minuet/internal/tensor"
)

// Model is the user-supplied generative procedure. It announces random-draw
// events through the runtime it is given and returns the first error it hits.
type Model func(rt *Runtime) error

// Runtime owns the handler stack, the axis registry, and the RNG source for
// one or more runs.
//
// Handlers are given outermost-first: the first handler entered is the last
// to see a message pre-draw and the first to see it post-draw.
//
// Not safe for concurrent use. Execution is single-threaded by design -
// every event is handled inline, immediately, in model statement order.
type Runtime struct {
	handlers []Handler
	registry *dims.Registry
	src      rand.Source
	seen     map[string]bool
}

// NewRuntime creates a runtime over the given handler stack.
func NewRuntime(src rand.Source, handlers ...Handler) *Runtime {
	return &Runtime{
		handlers: handlers,
		registry: dims.NewRegistry(),
		src:      src,
	}
}

// Dims returns the runtime's axis registry. Handlers lease and release
// named axes through it.
func (rt *Runtime) Dims() *dims.Registry {
	return rt.registry
}

// Source returns the current RNG source.
func (rt *Runtime) Source() rand.Source {
	return rt.src
}

// SetSource swaps the RNG source, returning the previous one. Used by the
// seed handler to scope reproducibility to a run.
func (rt *Runtime) SetSource(src rand.Source) rand.Source {
	prev := rt.src
	rt.src = src
	return prev
}

// Run executes the model once under the handler stack.
//
// Handlers enter in stack order and exit in reverse, and exits run even when
// the model fails, so scoped resources (leased axes, swapped RNG sources)
// unwind deterministically. The first error wins; exit errors during a
// failure unwind are logged and dropped.
func (rt *Runtime) Run(model Model) error {
	rt.seen = make(map[string]bool)

	entered := 0
	var runErr error
	for _, h := range rt.handlers {
		if err := h.Enter(rt); err != nil {
			runErr = fmt.Errorf("handler enter: %w", err)
			break
		}
		entered++
	}

	if runErr == nil {
		runErr = model(rt)
	}

	for i := entered - 1; i >= 0; i-- {
		if err := rt.handlers[i].Exit(rt, runErr); err != nil {
			if runErr == nil {
				runErr = fmt.Errorf("handler exit: %w", err)
				continue
			}
			slog.Warn("handler exit failed during unwind",
				"error", err,
				"run_error", runErr,
			)
		}
	}
	return runErr
}

// Sample announces a random-draw event and returns its resolved value.
//
// The message passes through the stack innermost-first pre-draw; if no
// handler resolves it, the default sampler takes a single draw from the
// distribution. Post-draw, the resolved message passes through the stack
// outermost-first.
func (rt *Runtime) Sample(name string, d dist.Distribution, opts ...SiteOption) (*tensor.Tensor, error) {
	if name == "" {
		return nil, newSiteError(ErrCodeInvalidSite, name, "sample site needs a name")
	}
	if d == nil {
		return nil, newSiteError(ErrCodeInvalidSite, name, "sample site needs a distribution")
	}
	if rt.seen == nil {
		rt.seen = make(map[string]bool)
	}
	if rt.seen[name] {
		return nil, newSiteError(ErrCodeDuplicateSite, name, "site name used twice in one run")
	}
	rt.seen[name] = true

	m := &Message{Name: name, Dist: d}
	for _, opt := range opts {
		opt(m)
	}
	if m.Observed && m.Value == nil {
		return nil, newSiteError(ErrCodeMissingObservation, name, "observed site without a value")
	}

	for i := len(rt.handlers) - 1; i >= 0; i-- {
		if err := rt.handlers[i].ProcessMessage(rt, m); err != nil {
			return nil, fmt.Errorf("process site %q: %w", name, err)
		}
	}

	if !m.Done {
		if m.Observed {
			m.Done = true
		} else {
			v, err := m.Dist.Draw(rt.src)
			if err != nil {
				return nil, fmt.Errorf("default draw at site %q: %w", name, err)
			}
			m.Value = tensor.Scalar(v)
			m.Done = true
		}
	}

	slog.Debug("site resolved",
		"site", m.Name,
		"observed", m.Observed,
		"enumerated", m.Enumerated,
		"value", m.Value.String(),
	)

	for _, h := range rt.handlers {
		if err := h.PostProcessMessage(rt, m); err != nil {
			return nil, fmt.Errorf("post-process site %q: %w", name, err)
		}
	}

	return m.Value, nil
}

// Observe announces an observed event: a draw whose value is fixed to data.
func (rt *Runtime) Observe(name string, d dist.Distribution, value *tensor.Tensor) (*tensor.Tensor, error) {
	return rt.Sample(name, d, WithObserved(value))
}
