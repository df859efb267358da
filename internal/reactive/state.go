package reactive

// State holds one mutable value. Set replaces the value unconditionally,
// even with an identical value, and renders before returning.
type State[T any] struct {
	rt    *Runtime
	value T
}

// NewState creates a state cell bound to rt.
func NewState[T any](rt *Runtime, initial T) *State[T] {
	return &State[T]{rt: rt, value: initial}
}

// Get returns the current value.
func (s *State[T]) Get() T {
	return s.value
}

// Set replaces the value and triggers a render pass. Inside a pass the
// write is queued until the pass completes.
func (s *State[T]) Set(next T) {
	s.rt.write(func() { s.value = next })
}

// Update computes the next value from the value current at the time the
// write is applied.
func (s *State[T]) Update(fn func(T) T) {
	s.rt.write(func() { s.value = fn(s.value) })
}

// Create returns the read and write halves of a new state cell.
func Create[T any](rt *Runtime, initial T) (read func() T, write func(T)) {
	s := NewState(rt, initial)
	return s.Get, s.Set
}
