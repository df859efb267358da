package reactive

// Scope owns memo and effect cells. Disposing it runs effect cleanups and
// drops cached memo values; cells registered after disposal never cache
// or run.
type Scope struct {
	cleanups []func()
	disposed bool
}

// NewScope creates a live scope.
func NewScope() *Scope {
	return &Scope{}
}

// OnCleanup registers fn to run when the scope is disposed. On a disposed
// scope fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if fn == nil {
		return
	}
	if s.disposed {
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

// Disposed reports whether Dispose has been called.
func (s *Scope) Disposed() bool {
	return s.disposed
}

// Dispose runs registered cleanups in reverse registration order. Calling
// it again is a no-op.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.cleanups = nil
}
