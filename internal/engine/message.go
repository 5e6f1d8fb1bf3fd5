package engine

import (
	"github.com/minuet-ml/minuet/internal/dist"
	"github.com/minuet-ml/minuet/internal/tensor"
)

// Directives carries per-site inference requests, set by site options and
// read by handlers. The zero value requests nothing.
type Directives struct {
	// Enumerate asks for the site's discrete support to be enumerated in
	// place of a sampled value.
	Enumerate bool
}

// Message is the per-event record threaded through the handler stack for
// one random-draw site.
//
// Handlers communicate exclusively through this record: a resolver sets
// Value and Done, and every later resolver skips a done message. The record
// lives for a single pass through the stack; nothing retains it afterwards.
type Message struct {
	// Name uniquely identifies the sample site within one run.
	Name string

	// Dist is the site's distribution object.
	Dist dist.Distribution

	// Value is the resolved value, nil until a handler or the default
	// sampler fills it in.
	Value *tensor.Tensor

	// Observed marks a site whose value was supplied by the caller.
	Observed bool

	// Done marks the message as resolved; resolvers skip done messages.
	Done bool

	// Enumerated marks a value that is an exhaustive support enumeration
	// rather than a draw. Set by the enumeration handler.
	Enumerated bool

	// Infer holds the site's inference directives.
	Infer Directives
}

// SiteOption configures a sample site at the call site.
type SiteOption func(*Message)

// WithObserved marks the site observed with the given value.
func WithObserved(value *tensor.Tensor) SiteOption {
	return func(m *Message) {
		m.Observed = true
		m.Value = value
	}
}

// WithEnumerate requests exhaustive enumeration of the site's support.
func WithEnumerate() SiteOption {
	return func(m *Message) {
		m.Infer.Enumerate = true
	}
}
