package engine

import (
	"github.com/minuet-ml/minuet/internal/lazy"
)

// LogJoint accumulates the symbolic log-joint of a run.
//
// For every site that is observed or enumerated it appends a deferred
// density term to a running lazy sum. Nothing is evaluated while the model
// runs; the driver reduces and forces the total afterwards.
type LogJoint struct {
	Base
	total *lazy.Sum
}

// NewLogJoint creates the accumulator with an empty total.
func NewLogJoint() *LogJoint {
	return &LogJoint{total: &lazy.Sum{}}
}

// Enter resets the total so a handler instance can drive repeated runs.
func (h *LogJoint) Enter(rt *Runtime) error {
	h.total = &lazy.Sum{}
	return nil
}

// PostProcessMessage appends a deferred density term for observed and
// enumerated sites. Other sites contribute no term.
func (h *LogJoint) PostProcessMessage(rt *Runtime, m *Message) error {
	if !m.Observed && !m.Enumerated {
		return nil
	}
	if m.Value == nil {
		return newSiteError(ErrCodeUnresolvedSite, m.Name, "post-draw notification without a value")
	}
	h.total = h.total.Append(&lazy.Density{
		Site:  m.Name,
		Dist:  m.Dist,
		Value: m.Value,
	})
	return nil
}

// Total returns the accumulated symbolic sum.
func (h *LogJoint) Total() *lazy.Sum {
	return h.total
}
