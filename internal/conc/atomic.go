package conc

import (
	"sync/atomic"

	"tern/internal/rt"
)

// Atomic is a lock-free integer mutated only through atomic operations. It
// is the building block for user-level lock-free algorithms; no mutex is
// involved.
type Atomic struct {
	n atomic.Int64
}

// NewAtomic creates an atomic holding initial.
func NewAtomic(initial int64) *Atomic {
	a := &Atomic{}
	a.n.Store(initial)
	return a
}

// Load returns the current value.
func (a *Atomic) Load() int64 {
	return a.n.Load()
}

// Store replaces the current value.
func (a *Atomic) Store(v int64) {
	a.n.Store(v)
}

// Add adds delta and returns the new value.
func (a *Atomic) Add(delta int64) int64 {
	return a.n.Add(delta)
}

// Sub subtracts delta and returns the new value.
func (a *Atomic) Sub(delta int64) int64 {
	return a.n.Add(-delta)
}

// Inc increments and returns the new value.
func (a *Atomic) Inc() int64 {
	return a.n.Add(1)
}

// Dec decrements and returns the new value.
func (a *Atomic) Dec() int64 {
	return a.n.Add(-1)
}

// CAS atomically replaces expected with desired, reporting success.
func (a *Atomic) CAS(expected, desired int64) bool {
	return a.n.CompareAndSwap(expected, desired)
}

// Value wraps the atomic as an opaque runtime value.
func (a *Atomic) Value() *rt.Value {
	return rt.NewOpaque(rt.KAtomic, a)
}

// AtomicFrom unwraps an atomic handle value.
func AtomicFrom(v *rt.Value) (*Atomic, bool) {
	a, ok := v.Opaque().(*Atomic)
	return a, ok
}
