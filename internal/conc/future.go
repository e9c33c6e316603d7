package conc

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"tern/internal/rt"
)

// State describes a future's position in its one-way state machine.
type State uint8

const (
	// StatePending means the task is queued and no worker has claimed it.
	StatePending State = iota
	// StateRunning means a worker is invoking the closure.
	StateRunning
	// StateCompleted means the worker stored a result or a thrown error.
	StateCompleted
	// StateCancelled means cancellation won before a worker claimed the task.
	StateCancelled
	// StateTimedOut means the task's deadline passed before it was claimed.
	StateTimedOut
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateTimedOut:
		return "timedout"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateTimedOut
}

var (
	// ErrAwaitTimeout reports that AwaitTimeout's deadline expired. The task
	// itself is unaffected and its result is retained for late pickup.
	ErrAwaitTimeout = errors.New("conc: await timed out")
	// ErrCancelled reports that the future was cancelled before running.
	ErrCancelled = errors.New("conc: future cancelled")
	// ErrDeadline reports that the task's deadline passed before a worker
	// claimed it; the closure was never invoked.
	ErrDeadline = errors.New("conc: task deadline passed")
)

// Future is a single-assignment container for the eventual result of a
// scheduled closure. Transitions are serialized under mu and run one way
// only: Pending -> Running -> {Completed | Cancelled | TimedOut}. Reaching
// a terminal state closes done, waking every waiter.
type Future struct {
	mu   sync.Mutex
	done chan struct{}

	state           State
	result          *rt.Value
	thrown          *rt.Thrown
	cancelRequested bool
	deadline        time.Time // zero = none
	disposed        bool
}

func newFuture(deadline time.Time) *Future {
	return &Future{done: make(chan struct{}), deadline: deadline}
}

// State returns the current state.
func (f *Future) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// CancelRequested reports whether cancellation has been requested. Running
// closures poll this to abort early; the runtime never forces interruption.
func (f *Future) CancelRequested() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelRequested
}

// Cancel requests cancellation. If no worker has claimed the task yet the
// future goes straight to Cancelled and the closure will never run; Cancel
// then returns true. Once the task is running, cancellation is advisory
// only and Cancel returns false.
func (f *Future) Cancel() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelRequested = true
	if f.state != StatePending {
		return false
	}
	f.state = StateCancelled
	close(f.done)
	return true
}

// claim moves Pending -> Running on behalf of a worker. It returns false if
// the task must not run: already cancelled, or its deadline passed while
// queued (which transitions it to TimedOut here).
func (f *Future) claim(now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StatePending {
		return false
	}
	if !f.deadline.IsZero() && now.After(f.deadline) {
		f.state = StateTimedOut
		close(f.done)
		return false
	}
	f.state = StateRunning
	return true
}

// complete stores the result (or thrown error) and broadcasts to waiters.
func (f *Future) complete(res *rt.Value, thrown *rt.Thrown) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateRunning {
		panic(&rt.Error{Code: rt.CodeBadTransition,
			Message: fmt.Sprintf("complete from %s", f.state)})
	}
	f.state = StateCompleted
	f.result = res
	f.thrown = thrown
	close(f.done)
}

// Await blocks until the future reaches a terminal state, then returns a
// share of the result or propagates the error. Multiple awaiters each get
// their own share; the future's own reference is released by Dispose.
func (f *Future) Await() (*rt.Value, error) {
	<-f.done
	return f.takeOutcome()
}

// AwaitTimeout waits like Await but races the terminal broadcast against an
// absolute deadline computed once at call time. On expiry it returns
// ErrAwaitTimeout without cancelling the task; the task may still complete
// later and a subsequent Await picks the result up.
func (f *Future) AwaitTimeout(d time.Duration) (*rt.Value, error) {
	deadline := time.Now().Add(d)
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case <-f.done:
		return f.takeOutcome()
	case <-timer.C:
		return nil, ErrAwaitTimeout
	}
}

func (f *Future) takeOutcome() (*rt.Value, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case StateCompleted:
		if f.thrown != nil {
			return nil, f.thrown
		}
		return rt.Incref(f.result), nil
	case StateCancelled:
		return nil, ErrCancelled
	case StateTimedOut:
		return nil, ErrDeadline
	default:
		panic(&rt.Error{Code: rt.CodeBadTransition,
			Message: fmt.Sprintf("await woke in %s", f.state)})
	}
}

// Dispose releases the future's own reference to its result and drops any
// stored thrown payload. Futures are explicitly destroyed by their owner;
// Dispose is idempotent. Disposing a non-terminal future is a fault.
func (f *Future) Dispose() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disposed {
		return
	}
	if !f.state.Terminal() {
		panic(&rt.Error{Code: rt.CodeBadTransition,
			Message: fmt.Sprintf("dispose in %s", f.state)})
	}
	f.disposed = true
	rt.Decref(f.result)
	f.result = nil
	if f.thrown != nil {
		f.thrown.Release()
		f.thrown = nil
	}
}

// Value wraps the future as an opaque runtime value.
func (f *Future) Value() *rt.Value {
	return rt.NewOpaque(rt.KFuture, f)
}

// FutureFrom unwraps a future handle value.
func FutureFrom(v *rt.Value) (*Future, bool) {
	f, ok := v.Opaque().(*Future)
	return f, ok
}
