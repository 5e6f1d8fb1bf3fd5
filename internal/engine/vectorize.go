package engine

import "fmt"

// defaultParticleDim is the prefix for the shared sampling axis.
const defaultParticleDim = "particle"

// Vectorize substitutes a batch of parallel draws for each single draw,
// with every site in the run sharing one globally-scoped sampling axis.
//
// The axis is leased at Enter and released at Exit; its lifetime is exactly
// the handler's scope.
type Vectorize struct {
	Base
	particles int
	dim       string
	entered   bool
}

// NewVectorize creates the vectorizing handler with the given batch size.
func NewVectorize(particles int) *Vectorize {
	return &Vectorize{particles: particles}
}

// Enter leases the shared sampling axis.
func (h *Vectorize) Enter(rt *Runtime) error {
	if h.particles <= 0 {
		return fmt.Errorf("vectorize: particle count must be positive, got %d", h.particles)
	}
	dim, err := rt.Dims().Fresh(defaultParticleDim)
	if err != nil {
		return fmt.Errorf("vectorize: lease sampling axis: %w", err)
	}
	h.dim = dim
	h.entered = true
	return nil
}

// Exit releases the sampling axis. The axis name itself stays readable so
// the driver can reduce over it after the run.
func (h *Vectorize) Exit(rt *Runtime, runErr error) error {
	if !h.entered {
		return nil
	}
	h.entered = false
	if err := rt.Dims().Release(h.dim); err != nil {
		return fmt.Errorf("vectorize: release sampling axis: %w", err)
	}
	return nil
}

// ProcessMessage resolves an unobserved, unresolved site with a batch of
// draws along the shared axis. Sites carrying the enumeration directive are
// left alone - enumeration takes precedence over sampling.
func (h *Vectorize) ProcessMessage(rt *Runtime, m *Message) error {
	if m.Done || m.Observed || m.Infer.Enumerate {
		return nil
	}
	v, err := m.Dist.Sample(rt.Source(), h.dim, h.particles)
	if err != nil {
		return fmt.Errorf("vectorize site %q: %w", m.Name, err)
	}
	m.Value = v
	m.Done = true
	return nil
}

// Dim returns the shared sampling axis name of the current or most recent
// run, empty before the first run.
func (h *Vectorize) Dim() string {
	return h.dim
}
