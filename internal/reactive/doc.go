// Package reactive implements a small synchronous re-render model: state
// cells whose writes trigger a render pass, memo cells that cache a value
// until their dependency list changes, and effects that re-run only when
// their dependency list changes.
//
// Everything in this package runs on one logical thread. Work produced on
// other goroutines must be handed to the owning loop through
// Runtime.Post; none of the types here are safe for concurrent use.
//
// Dependency lists are compared shallowly, element by element. A slice is
// the same as another only when both share the backing array, length and
// capacity, so collections must be replaced rather than mutated in place
// for a change to be observed.
package reactive
