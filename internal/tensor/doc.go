// Package tensor implements small dense float64 tensors whose axes are
// identified by name rather than position.
//
// Named axes make broadcasting declarative: binary operations align axes by
// name and the result carries the union of the operands' axes. Reductions
// remove exactly one named axis. This is the substrate the effect handlers
// build on - an enumerated variable is a tensor carrying an axis named after
// its sample site, and a batch of parallel draws is a tensor carrying the
// shared particle axis.
//
// Tensors are immutable after construction. All operations allocate their
// result.
package tensor
