package conc

import (
	"fmt"
	"sync"
	"time"

	"tern/internal/rt"
	"tern/internal/trace"
)

// Task is an intrusive FIFO node owned by the pool's queue. It bundles the
// closure to run, the arguments handed off with it, and the future that
// publishes the outcome.
type Task struct {
	closure *rt.Closure
	args    []*rt.Value
	future  *Future
	next    *Task
}

// PoolStats is a point-in-time snapshot of pool activity.
type PoolStats struct {
	Workers   int
	Queued    int
	Busy      int
	Submitted uint64
	Completed uint64
	Cancelled uint64
	TimedOut  uint64
	Throws    uint64
}

// Pool executes queued closures on a fixed set of persistent workers.
//
// One mutex guards the queue; queueCond signals non-empty to workers and
// emptyCond signals drained-to-idle for WaitIdle callers. Shutdown clears
// running, broadcasts, and joins the workers after they drain whatever is
// still queued.
type Pool struct {
	mu        sync.Mutex
	queueCond *sync.Cond
	emptyCond *sync.Cond

	qhead, qtail *Task
	qlen         int
	running      bool
	workers      int
	busy         int

	submitted uint64
	completed uint64
	cancelled uint64
	timedOut  uint64
	throws    uint64

	wg sync.WaitGroup
	tr trace.Tracer
}

// New creates a pool with n persistent workers (at least one).
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{workers: n, running: true, tr: trace.Nop()}
	p.queueCond = sync.NewCond(&p.mu)
	p.emptyCond = sync.NewCond(&p.mu)
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker()
	}
	p.emit(trace.ScopePool, "init", fmt.Sprintf("workers=%d", n))
	return p
}

// SetTracer installs a tracer for pool and task events.
func (p *Pool) SetTracer(t trace.Tracer) {
	if t == nil {
		t = trace.Nop()
	}
	p.mu.Lock()
	p.tr = t
	p.mu.Unlock()
}

// Submit queues the closure with its arguments and returns the future that
// will carry the outcome. Ownership of args transfers to the task (this is
// a sanctioned cross-thread hand-off point). Submitting to a pool that has
// begun shutdown yields an already-cancelled future.
func (p *Pool) Submit(c *rt.Closure, args ...*rt.Value) *Future {
	return p.SubmitDeadline(c, time.Time{}, args...)
}

// SubmitDeadline is Submit with an absolute deadline: a task still queued
// when its deadline passes transitions to TimedOut and its closure never
// runs.
func (p *Pool) SubmitDeadline(c *rt.Closure, deadline time.Time, args ...*rt.Value) *Future {
	f := newFuture(deadline)
	task := &Task{closure: c, args: args, future: f}

	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		releaseArgs(task)
		f.Cancel()
		return f
	}
	p.submitted++
	if p.qtail == nil {
		p.qhead = task
	} else {
		p.qtail.next = task
	}
	p.qtail = task
	p.qlen++
	p.queueCond.Signal()
	p.mu.Unlock()

	p.emit(trace.ScopeTask, "submit", "")
	return f
}

// WaitIdle blocks until the queue is empty and no worker is executing.
func (p *Pool) WaitIdle() {
	p.mu.Lock()
	for p.qlen > 0 || p.busy > 0 {
		p.emptyCond.Wait()
	}
	p.mu.Unlock()
}

// Shutdown stops the pool: the running flag is cleared, workers are woken,
// tasks already queued are drained, and the workers are joined. Shutdown is
// idempotent.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.running = false
	p.queueCond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
	p.emit(trace.ScopePool, "shutdown", "")
}

// Stats returns a snapshot of pool counters.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Workers:   p.workers,
		Queued:    p.qlen,
		Busy:      p.busy,
		Submitted: p.submitted,
		Completed: p.completed,
		Cancelled: p.cancelled,
		TimedOut:  p.timedOut,
		Throws:    p.throws,
	}
}

// worker is the persistent loop run by each pool thread. Each worker owns
// its unwind context so throws inside tasks stay contained.
func (p *Pool) worker() {
	defer p.wg.Done()
	u := rt.NewUnwinder()

	for {
		p.mu.Lock()
		for p.qlen == 0 && p.running {
			p.queueCond.Wait()
		}
		if p.qlen == 0 {
			// Shutdown with a drained queue.
			if p.busy == 0 {
				p.emptyCond.Broadcast()
			}
			p.mu.Unlock()
			return
		}
		task := p.qhead
		p.qhead = task.next
		if p.qhead == nil {
			p.qtail = nil
		}
		p.qlen--
		p.busy++
		p.mu.Unlock()

		p.execute(u, task)

		p.mu.Lock()
		p.busy--
		if p.qlen == 0 && p.busy == 0 {
			p.emptyCond.Broadcast()
		}
		p.mu.Unlock()
	}
}

// execute claims the task's future and invokes the closure inside a try
// boundary, storing the result or the thrown error.
func (p *Pool) execute(u *rt.Unwinder, task *Task) {
	if !task.future.claim(time.Now()) {
		// Cancelled, or deadline passed while queued: the closure never runs.
		st := task.future.State()
		p.mu.Lock()
		if st == StateTimedOut {
			p.timedOut++
		} else {
			p.cancelled++
		}
		p.mu.Unlock()
		releaseArgs(task)
		p.emit(trace.ScopeTask, "skip", st.String())
		return
	}

	sp := trace.Begin(p.tracer(), trace.ScopeTask, "run")
	res, thrown := u.Try(func() *rt.Value {
		return task.closure.Call(u, task.args...)
	})
	releaseArgs(task)
	task.future.complete(res, thrown)

	p.mu.Lock()
	p.completed++
	if thrown != nil {
		p.throws++
	}
	p.mu.Unlock()
	if thrown != nil {
		sp.WithExtra("outcome", "throw").End(thrown.Error())
	} else {
		sp.WithExtra("outcome", "complete").End("")
	}
}

func releaseArgs(task *Task) {
	for i, a := range task.args {
		rt.Decref(a)
		task.args[i] = nil
	}
	task.args = nil
}

func (p *Pool) tracer() trace.Tracer {
	p.mu.Lock()
	t := p.tr
	p.mu.Unlock()
	return t
}

func (p *Pool) emit(scope trace.Scope, name, detail string) {
	t := p.tracer()
	if !t.Enabled() {
		return
	}
	t.Emit(&trace.Event{Kind: trace.KindPoint, Scope: scope, Name: name, Detail: detail})
}
