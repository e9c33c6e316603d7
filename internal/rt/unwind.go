package rt

import "fmt"

// MaxTryDepth bounds the number of simultaneously active try targets.
const MaxTryDepth = 256

// Thrown carries a user-level exception value through an unwind. It owns
// its payload until a try target (or the Run boundary) consumes it.
type Thrown struct {
	Val *Value
}

// Error implements the error interface.
func (t *Thrown) Error() string {
	if t == nil || t.Val == nil {
		return "thrown: undef"
	}
	return fmt.Sprintf("thrown: %s", t.Val)
}

// Release drops the thrown payload.
func (t *Thrown) Release() {
	if t == nil {
		return
	}
	Decref(t.Val)
	t.Val = nil
}

// Throw performs a non-local exit to the nearest active try target, carrying
// ownership of v.
func Throw(v *Value) {
	panic(&Thrown{Val: v})
}

// Unwinder holds one thread's unwind state: the cleanup stack of values
// pending release and the count of active try targets. The main thread uses
// one Unwinder; each pool worker owns its own.
type Unwinder struct {
	pending []*Value
	depth   int
}

// NewUnwinder creates an empty unwind context.
func NewUnwinder() *Unwinder {
	return &Unwinder{}
}

// Guard registers v for release should control leave normal flow before the
// caller commits it. Ownership stays with the caller.
func (u *Unwinder) Guard(v *Value) *Value {
	u.pending = append(u.pending, v)
	return v
}

// Unguard commits the most recent guard: the value is popped without being
// released. Guards must be unwound in LIFO order.
func (u *Unwinder) Unguard(v *Value) {
	if len(u.pending) == 0 || u.pending[len(u.pending)-1] != v {
		rtPanic(CodeInternal, "unguard out of order")
	}
	u.pending = u.pending[:len(u.pending)-1]
}

// Mark returns the current cleanup stack position. Try frames restore only
// their own slice, so an inner throw cannot disturb an outer frame's pending
// releases.
func (u *Unwinder) Mark() int {
	return len(u.pending)
}

// releaseTo releases every pending value above mark, most recent first.
func (u *Unwinder) releaseTo(mark int) {
	for i := len(u.pending) - 1; i >= mark; i-- {
		Decref(u.pending[i])
		u.pending[i] = nil
	}
	u.pending = u.pending[:mark]
}

// Try establishes a catch target around fn. A Throw inside fn unwinds here:
// the frame's slice of the cleanup stack is released and the thrown value is
// returned as the error. Non-throw panics (runtime faults) pass through
// untouched.
func (u *Unwinder) Try(fn func() *Value) (res *Value, err *Thrown) {
	if u.depth >= MaxTryDepth {
		rtPanic(CodeTryDepth, fmt.Sprintf("try depth exceeds %d", MaxTryDepth))
	}
	mark := u.Mark()
	u.depth++
	defer func() {
		u.depth--
		r := recover()
		if r == nil {
			return
		}
		thrown, ok := r.(*Thrown)
		if !ok {
			panic(r)
		}
		u.releaseTo(mark)
		err = thrown
	}()
	res = fn()
	return res, nil
}

// Run is the top-level boundary for a unit of work. An uncaught throw
// terminates the call: everything pending on the cleanup stack is released,
// the payload is dropped, and the exception is reported as the error.
func (u *Unwinder) Run(fn func() *Value) (res *Value, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		thrown, ok := r.(*Thrown)
		if !ok {
			panic(r)
		}
		u.releaseTo(0)
		err = &Error{Code: CodeUncaughtThrow, Message: thrown.Error()}
		thrown.Release()
	}()
	res = fn()
	return res, nil
}
