// Package dispatch evaluates primitive function calls.
//
// A call site is compiled once from a registered function and its argument
// bindings; compilation is where caller defects surface, as errors the host
// is expected to abort on. Evaluating a compiled call site never fails
// because of the data it is given: an argument of the wrong shape or a
// failing external routine becomes one diagnostic row in the caller's sink
// and the call yields no output rows, so one bad row cannot stop the rest
// of a relation.
package dispatch
