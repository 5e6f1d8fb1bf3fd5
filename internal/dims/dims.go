// Package dims tracks the named tensor axes that are live during one
// handler-composed run.
//
// An axis name is a shared resource: the enumerator tags each enumerated
// variable with an axis named after its sample site, and the vectorizer
// leases one particle axis reused by every draw in the run. Leases are
// scoped to the handler that took them and must be released when that
// handler's scope exits, so an axis cannot leak into unrelated later runs.
package dims

import (
	"fmt"
	"slices"
)

// Registry tracks live axis leases for a single runtime.
//
// Not safe for concurrent use: execution is single-threaded and synchronous,
// one event at a time, so the registry needs no locking.
type Registry struct {
	leased []string // in lease order
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Lease reserves an axis name. Leasing a name that is already live is an
// error - duplicate axis names would silently alias two distinct variables.
func (r *Registry) Lease(name string) error {
	if name == "" {
		return fmt.Errorf("dims: empty axis name")
	}
	if slices.Contains(r.leased, name) {
		return fmt.Errorf("dims: axis %q already leased", name)
	}
	r.leased = append(r.leased, name)
	return nil
}

// Release frees a leased axis name. Releasing a name that is not live is an
// error: it means a handler is unwinding a scope it never entered.
func (r *Registry) Release(name string) error {
	i := slices.Index(r.leased, name)
	if i < 0 {
		return fmt.Errorf("dims: axis %q is not leased", name)
	}
	r.leased = slices.Delete(r.leased, i, i+1)
	return nil
}

// Fresh derives an unused axis name from prefix and leases it.
func (r *Registry) Fresh(prefix string) (string, error) {
	if !slices.Contains(r.leased, prefix) {
		if err := r.Lease(prefix); err != nil {
			return "", err
		}
		return prefix, nil
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s_%d", prefix, i)
		if !slices.Contains(r.leased, name) {
			if err := r.Lease(name); err != nil {
				return "", err
			}
			return name, nil
		}
	}
}

// Live reports whether the axis name is currently leased.
func (r *Registry) Live(name string) bool {
	return slices.Contains(r.leased, name)
}

// Leased returns the live axis names in lease order.
func (r *Registry) Leased() []string {
	return slices.Clone(r.leased)
}

// Len returns the number of live leases.
func (r *Registry) Len() int {
	return len(r.leased)
}
