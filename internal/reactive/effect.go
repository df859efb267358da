package reactive

import "slices"

// Cleanup is returned by an effect callback and runs before the effect
// runs again and when its scope is disposed.
type Cleanup func()

// Effect runs a side-effecting callback on its first invocation and then
// only when its dependency list goes stale. With an empty dependency list
// it runs exactly once for the lifetime of its scope.
type Effect struct {
	scope    *Scope
	deps     Deps
	ran      bool
	cleanup  Cleanup
	runs     int
	disposed bool
}

// NewEffect creates an effect cell owned by scope.
func NewEffect(scope *Scope) *Effect {
	e := &Effect{scope: scope}
	if scope != nil {
		scope.OnCleanup(e.dispose)
	}
	return e
}

// Run invokes fn if this is the first call or deps are stale.
func (e *Effect) Run(fn func() Cleanup, deps Deps) {
	if e.disposed || (e.scope != nil && e.scope.Disposed()) {
		return
	}
	if e.ran && !AreStale(e.deps, deps) {
		return
	}
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
	e.ran = true
	e.deps = slices.Clone(deps)
	e.runs++
	e.cleanup = fn()
}

// Runs returns how many times the callback has been invoked.
func (e *Effect) Runs() int {
	return e.runs
}

func (e *Effect) dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
}
