package engine

import (
	"github.com/minuet-ml/minuet/internal/tensor"
)

// Replay resolves unobserved sites from a previously recorded trace,
// matched by site name. Sites absent from the trace fall through to the
// rest of the stack.
type Replay struct {
	Base
	values map[string]*tensor.Tensor
}

// NewReplay builds a replay handler from trace records.
func NewReplay(records []SiteRecord) *Replay {
	values := make(map[string]*tensor.Tensor, len(records))
	for _, r := range records {
		if r.Observed {
			continue
		}
		values[r.Name] = r.Value
	}
	return &Replay{values: values}
}

// ProcessMessage substitutes the recorded value for a matching site.
func (h *Replay) ProcessMessage(rt *Runtime, m *Message) error {
	if m.Done || m.Observed {
		return nil
	}
	v, ok := h.values[m.Name]
	if !ok {
		return nil
	}
	m.Value = v
	m.Done = true
	return nil
}
