package engine

import (
	"slices"

	"github.com/minuet-ml/minuet/internal/tensor"
)

// SiteRecord is one entry of an execution trace: the resolved state of a
// sample site in the order sites executed.
type SiteRecord struct {
	Name       string
	Observed   bool
	Enumerated bool
	Dims       []string
	Sizes      []int
	Value      *tensor.Tensor
}

// Trace records every site of a run in execution order. The recorded values
// feed the trace store, the golden-test harness, and Replay.
type Trace struct {
	Base
	records []SiteRecord
}

// NewTrace creates an empty trace handler.
func NewTrace() *Trace {
	return &Trace{}
}

// Enter clears recordings from any previous run.
func (h *Trace) Enter(rt *Runtime) error {
	h.records = nil
	return nil
}

// PostProcessMessage appends the resolved site to the trace.
func (h *Trace) PostProcessMessage(rt *Runtime, m *Message) error {
	if m.Value == nil {
		return newSiteError(ErrCodeUnresolvedSite, m.Name, "post-draw notification without a value")
	}
	h.records = append(h.records, SiteRecord{
		Name:       m.Name,
		Observed:   m.Observed,
		Enumerated: m.Enumerated,
		Dims:       m.Value.Dims(),
		Sizes:      m.Value.Sizes(),
		Value:      m.Value,
	})
	return nil
}

// Records returns the recorded sites in execution order.
func (h *Trace) Records() []SiteRecord {
	return slices.Clone(h.records)
}
