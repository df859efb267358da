package reactive

import "reflect"

// Deps is a dependency list. A nil Deps means "no dependency list" and is
// always stale; an empty, non-nil Deps is never stale after the first run.
type Deps []any

// None is the empty dependency list: compute or run once.
func None() Deps {
	return Deps{}
}

// On builds a dependency list from the given values.
func On(values ...any) Deps {
	if values == nil {
		return Deps{}
	}
	return Deps(values)
}

// AreStale reports whether a value computed against prev must be
// recomputed for next. Lists of different length are stale.
func AreStale(prev, next Deps) bool {
	if next == nil || prev == nil {
		return true
	}
	if len(prev) != len(next) {
		return true
	}
	for i := range next {
		if !Same(prev[i], next[i]) {
			return true
		}
	}
	return false
}

// Same compares two dependency values by value or reference, never deeply.
//
// Comparable values use ==. Slices are the same when they share backing
// array, length and capacity. Maps are the same when they are the same map.
// Functions and other non-comparable values are never the same.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() &&
			va.Cap() == vb.Cap() &&
			va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Map:
		return va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Func:
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return false
}
