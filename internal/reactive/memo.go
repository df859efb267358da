package reactive

import "slices"

// Memo caches the result of a computation until its dependency list
// changes. One Memo must back exactly one computation; sharing a cell
// between two computations returns one computation's value for the other.
type Memo[T any] struct {
	scope        *Scope
	value        T
	deps         Deps
	computations int
}

// NewMemo creates a memo cell owned by scope. A nil scope never disposes
// the cell.
func NewMemo[T any](scope *Scope) *Memo[T] {
	m := &Memo[T]{scope: scope}
	if scope != nil {
		scope.OnCleanup(m.reset)
	}
	return m
}

// Get returns the cached value when deps are not stale against the deps
// of the last computation, and otherwise evaluates factory and caches the
// result together with deps.
func (m *Memo[T]) Get(factory func() T, deps Deps) T {
	if m.scope != nil && m.scope.Disposed() {
		m.computations++
		return factory()
	}
	if !AreStale(m.deps, deps) {
		return m.value
	}
	m.value = factory()
	m.deps = slices.Clone(deps)
	m.computations++
	return m.value
}

// Computations returns how many times the factory has been evaluated.
func (m *Memo[T]) Computations() int {
	return m.computations
}

func (m *Memo[T]) reset() {
	var zero T
	m.value = zero
	m.deps = nil
}
