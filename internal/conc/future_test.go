package conc

import (
	"sync"
	"testing"
	"time"

	"tern/internal/rt"
)

// squareClosure returns args[0]*args[0].
func squareClosure() *rt.Closure {
	return rt.NewClosure(func(u *rt.Unwinder, c *rt.Closure, args []*rt.Value) *rt.Value {
		n := rt.ToInt(args[0])
		return rt.NewInt(n * n)
	}, 1)
}

// gatedClosure blocks until gate is closed, then returns its argument's value.
func gatedClosure(gate <-chan struct{}) *rt.Closure {
	return rt.NewClosure(func(u *rt.Unwinder, c *rt.Closure, args []*rt.Value) *rt.Value {
		<-gate
		return rt.NewInt(rt.ToInt(args[0]))
	}, 1)
}

func TestAwaitReturnsResult(t *testing.T) {
	pool := New(2)
	defer pool.Shutdown()

	f := pool.Submit(squareClosure(), rt.NewInt(12))
	v, err := f.Await()
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if got := rt.ToInt(v); got != 144 {
		t.Fatalf("result = %d, want 144", got)
	}
	rt.Decref(v)
	f.Dispose()
	if f.State() != StateCompleted {
		t.Fatalf("state = %s, want completed", f.State())
	}
}

func TestAwaitPropagatesThrow(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown()

	thrower := rt.NewClosure(func(u *rt.Unwinder, c *rt.Closure, args []*rt.Value) *rt.Value {
		rt.Throw(rt.NewStr("task failed"))
		return nil
	}, 0)

	f := pool.Submit(thrower)
	v, err := f.Await()
	if v != nil {
		t.Fatalf("expected nil result, got %v", v)
	}
	thrown, ok := err.(*rt.Thrown)
	if !ok {
		t.Fatalf("expected *rt.Thrown, got %T: %v", err, err)
	}
	if thrown.Val.Str != "task failed" {
		t.Fatalf("payload = %q", thrown.Val.Str)
	}
	f.Dispose()

	if got := pool.Stats().Throws; got != 1 {
		t.Fatalf("throws counter = %d, want 1", got)
	}
}

func TestAwaitTimeoutLeavesTaskRunning(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown()

	gate := make(chan struct{})
	f := pool.Submit(gatedClosure(gate), rt.NewInt(7))

	if _, err := f.AwaitTimeout(20 * time.Millisecond); err != ErrAwaitTimeout {
		t.Fatalf("expected ErrAwaitTimeout, got %v", err)
	}
	if f.State().Terminal() {
		t.Fatalf("await timeout must not transition the task, state = %s", f.State())
	}

	// Late pickup: the task completes normally and a later Await sees it.
	close(gate)
	v, err := f.Await()
	if err != nil {
		t.Fatalf("late await: %v", err)
	}
	if rt.ToInt(v) != 7 {
		t.Fatalf("late result = %d, want 7", rt.ToInt(v))
	}
	rt.Decref(v)
	f.Dispose()
}

func TestAwaitTimeoutBeatenByCompletion(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown()

	f := pool.Submit(squareClosure(), rt.NewInt(3))
	v, err := f.AwaitTimeout(5 * time.Second)
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	rt.Decref(v)
	f.Dispose()
}

func TestCancelBeforeClaimSkipsClosure(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown()

	gate := make(chan struct{})
	blocker := pool.Submit(gatedClosure(gate), rt.NewInt(0))

	ran := NewAtomic(0)
	effect := rt.NewClosure(func(u *rt.Unwinder, c *rt.Closure, args []*rt.Value) *rt.Value {
		ran.Inc()
		return rt.NewUndef()
	}, 0)
	victim := pool.Submit(effect)

	if !victim.Cancel() {
		t.Fatal("cancel of a queued task must win")
	}
	if victim.State() != StateCancelled {
		t.Fatalf("state = %s, want cancelled", victim.State())
	}
	if _, err := victim.Await(); err != ErrCancelled {
		t.Fatalf("await after cancel = %v, want ErrCancelled", err)
	}
	victim.Dispose()

	close(gate)
	pool.WaitIdle()
	if ran.Load() != 0 {
		t.Fatal("cancelled closure still ran")
	}
	rt.Decref(mustAwait(t, blocker))
	blocker.Dispose()

	if got := pool.Stats().Cancelled; got != 1 {
		t.Fatalf("cancelled counter = %d, want 1", got)
	}
}

func TestCancelAfterStartIsAdvisory(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown()

	started := make(chan struct{})
	gate := make(chan struct{})
	ran := NewAtomic(0)
	task := rt.NewClosure(func(u *rt.Unwinder, c *rt.Closure, args []*rt.Value) *rt.Value {
		close(started)
		<-gate
		ran.Inc()
		return rt.NewInt(1)
	}, 0)

	f := pool.Submit(task)
	<-started
	if f.Cancel() {
		t.Fatal("cancel of a running task must not win")
	}
	if !f.CancelRequested() {
		t.Fatal("cancellation request not recorded")
	}
	close(gate)

	v, err := f.Await()
	if err != nil {
		t.Fatalf("running task must complete despite cancel: %v", err)
	}
	rt.Decref(v)
	f.Dispose()
	if ran.Load() != 1 {
		t.Fatal("task body did not run to completion")
	}
}

func TestEveryAwaiterGetsOwnShare(t *testing.T) {
	pool := New(2)
	defer pool.Shutdown()

	f := pool.Submit(squareClosure(), rt.NewInt(5))

	const waiters = 8
	var wg sync.WaitGroup
	wg.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			v, err := f.Await()
			if err != nil {
				t.Errorf("await: %v", err)
				return
			}
			if rt.ToInt(v) != 25 {
				t.Errorf("result = %d", rt.ToInt(v))
			}
			rt.Decref(v)
		}()
	}
	wg.Wait()
	f.Dispose()
}

func TestDisposeIsIdempotent(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown()

	f := pool.Submit(squareClosure(), rt.NewInt(2))
	rt.Decref(mustAwait(t, f))
	f.Dispose()
	f.Dispose() // second call is a no-op
}

func TestDisposeBeforeTerminalFaults(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown()

	gate := make(chan struct{})
	f := pool.Submit(gatedClosure(gate), rt.NewInt(0))
	defer func() {
		r := recover()
		if err, ok := r.(*rt.Error); !ok || err.Code != rt.CodeBadTransition {
			t.Fatalf("expected bad transition fault, got %v", r)
		}
		close(gate)
		rt.Decref(mustAwait(t, f))
		f.Dispose()
	}()
	f.Dispose()
}

func TestFutureHandleRoundTrip(t *testing.T) {
	pool := New(1)
	defer pool.Shutdown()

	f := pool.Submit(squareClosure(), rt.NewInt(4))
	h := f.Value()
	if h.Kind != rt.KFuture {
		t.Fatalf("handle kind = %s", h.Kind)
	}
	got, ok := FutureFrom(h)
	if !ok || got != f {
		t.Fatal("handle did not unwrap to the same future")
	}
	rt.Decref(mustAwait(t, f))
	f.Dispose()
	rt.Decref(h)
}

func mustAwait(t *testing.T, f *Future) *rt.Value {
	t.Helper()
	v, err := f.Await()
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	return v
}
