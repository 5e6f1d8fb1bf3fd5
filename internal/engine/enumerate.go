package engine

import (
	"slices"

	"github.com/minuet-ml/minuet/internal/tensor"
)

// Enumerate substitutes an exhaustive support enumeration for the sampled
// value at every site that requests it.
//
// The enumeration axis is named after the site itself, so the variable stays
// identifiable through every downstream tensor it flows into. The axis name
// is leased from the runtime's registry when the site resolves and released
// when the handler's scope exits, so it cannot leak into later runs.
type Enumerate struct {
	Base
	leased []string // live leases, released at Exit
	dims   []string // all axes used this run, kept for the driver
}

// NewEnumerate creates the enumeration handler.
func NewEnumerate() *Enumerate {
	return &Enumerate{}
}

// Enter clears the axis record from any previous run.
func (h *Enumerate) Enter(rt *Runtime) error {
	h.dims = nil
	return nil
}

// ProcessMessage resolves an unobserved, unresolved site that carries the
// enumeration directive. Requesting enumeration of a distribution without
// enumerable support is a site error, not a silent fallback to sampling.
func (h *Enumerate) ProcessMessage(rt *Runtime, m *Message) error {
	if m.Done || m.Observed || !m.Infer.Enumerate {
		return nil
	}
	k, ok := m.Dist.EnumSupport()
	if !ok {
		return newSiteError(ErrCodeEnumUnsupported, m.Name, "distribution has no enumerable support")
	}

	if err := rt.Dims().Lease(m.Name); err != nil {
		return newSiteError(ErrCodeDuplicateSite, m.Name, "enumeration axis: %v", err)
	}
	h.leased = append(h.leased, m.Name)
	h.dims = append(h.dims, m.Name)

	support, err := tensor.Arange(m.Name, k)
	if err != nil {
		return err
	}
	m.Value = support
	m.Done = true
	m.Enumerated = true
	return nil
}

// Exit releases every enumeration axis leased during the run, in reverse
// lease order.
func (h *Enumerate) Exit(rt *Runtime, runErr error) error {
	var firstErr error
	for i := len(h.leased) - 1; i >= 0; i-- {
		if err := rt.Dims().Release(h.leased[i]); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	h.leased = nil
	return firstErr
}

// EnumDims returns the enumeration axes of the current or most recent run,
// in lease order. The driver reduces them out in reverse.
func (h *Enumerate) EnumDims() []string {
	return slices.Clone(h.dims)
}
