package conc

import (
	"errors"
	"fmt"
	"sync"

	"tern/internal/rt"
	"tern/internal/trace"
)

var (
	// ErrClosed reports an operation on a closed channel: a send at any
	// point, or a receive after the buffer drained.
	ErrClosed = errors.New("conc: channel closed")
	// ErrFull reports that TrySend found a bounded channel at capacity.
	ErrFull = errors.New("conc: channel full")
	// ErrEmpty reports that TryRecv found nothing buffered.
	ErrEmpty = errors.New("conc: channel empty")
)

type chNode struct {
	v    *rt.Value
	next *chNode
}

// Channel is a thread-safe FIFO queue of owned values. A capacity of zero
// means unbounded: senders never block. Items from a single sender keep
// their order; with concurrent senders only some valid interleaving is
// guaranteed.
type Channel struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	head, tail *chNode
	size       int
	capacity   int
	closed     bool

	tr trace.Tracer
}

// NewChannel creates a channel. capacity == 0 means unbounded.
func NewChannel(capacity int) *Channel {
	if capacity < 0 {
		capacity = 0
	}
	ch := &Channel{capacity: capacity, tr: trace.Nop()}
	ch.notEmpty = sync.NewCond(&ch.mu)
	ch.notFull = sync.NewCond(&ch.mu)
	return ch
}

// SetTracer installs a tracer for send/recv/close events.
func (ch *Channel) SetTracer(t trace.Tracer) {
	if t == nil {
		t = trace.Nop()
	}
	ch.mu.Lock()
	ch.tr = t
	ch.mu.Unlock()
}

// Len returns the number of buffered items.
func (ch *Channel) Len() int {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.size
}

// Cap returns the configured capacity (0 = unbounded).
func (ch *Channel) Cap() int {
	return ch.capacity
}

// Send enqueues v, blocking while a bounded channel is full. On success
// ownership of v transfers to the channel (and onward to the receiver); on
// ErrClosed the caller keeps ownership.
func (ch *Channel) Send(v *rt.Value) error {
	ch.mu.Lock()
	for ch.capacity > 0 && ch.size >= ch.capacity && !ch.closed {
		ch.notFull.Wait()
	}
	return ch.pushLocked(v)
}

// TrySend is Send without blocking: ErrFull when a bounded channel is at
// capacity, ErrClosed after close. The caller keeps ownership on error.
func (ch *Channel) TrySend(v *rt.Value) error {
	ch.mu.Lock()
	if !ch.closed && ch.capacity > 0 && ch.size >= ch.capacity {
		ch.mu.Unlock()
		return ErrFull
	}
	return ch.pushLocked(v)
}

// pushLocked appends v and releases the lock.
func (ch *Channel) pushLocked(v *rt.Value) error {
	if ch.closed {
		ch.mu.Unlock()
		return ErrClosed
	}
	node := &chNode{v: v}
	if ch.tail == nil {
		ch.head = node
	} else {
		ch.tail.next = node
	}
	ch.tail = node
	ch.size++
	size := ch.size
	t := ch.tr
	ch.notEmpty.Signal()
	ch.mu.Unlock()
	ch.emit(t, "send", size)
	return nil
}

// Recv dequeues the oldest item, blocking while the channel is empty and
// open. After close it drains the buffer and only then reports ErrClosed.
// Ownership of the returned value transfers to the caller.
func (ch *Channel) Recv() (*rt.Value, error) {
	ch.mu.Lock()
	for ch.size == 0 && !ch.closed {
		ch.notEmpty.Wait()
	}
	return ch.popLocked(false)
}

// TryRecv is Recv without blocking: ErrEmpty when nothing is buffered on an
// open channel, ErrClosed once closed and drained.
func (ch *Channel) TryRecv() (*rt.Value, error) {
	ch.mu.Lock()
	return ch.popLocked(true)
}

// popLocked removes the head item and releases the lock.
func (ch *Channel) popLocked(try bool) (*rt.Value, error) {
	if ch.size == 0 {
		closed := ch.closed
		ch.mu.Unlock()
		if closed {
			return nil, ErrClosed
		}
		if try {
			return nil, ErrEmpty
		}
		// Recv only reaches here when woken by Close with an empty buffer.
		return nil, ErrClosed
	}
	node := ch.head
	ch.head = node.next
	if ch.head == nil {
		ch.tail = nil
	}
	ch.size--
	size := ch.size
	t := ch.tr
	ch.notFull.Signal()
	ch.mu.Unlock()
	ch.emit(t, "recv", size)

	v := node.v
	node.v = nil
	node.next = nil
	return v, nil
}

// Close marks the channel closed and wakes every blocked sender and
// receiver. Buffered items stay receivable. Close is idempotent.
func (ch *Channel) Close() {
	ch.mu.Lock()
	wasOpen := !ch.closed
	size := ch.size
	t := ch.tr
	if wasOpen {
		ch.closed = true
		ch.notEmpty.Broadcast()
		ch.notFull.Broadcast()
	}
	ch.mu.Unlock()
	if wasOpen {
		ch.emit(t, "close", size)
	}
}

// Destroy closes the channel and releases any undrained items. The owning
// program calls this when the channel will not be received from again.
func (ch *Channel) Destroy() {
	ch.mu.Lock()
	ch.closed = true
	head := ch.head
	size := ch.size
	t := ch.tr
	ch.head = nil
	ch.tail = nil
	ch.size = 0
	ch.notEmpty.Broadcast()
	ch.notFull.Broadcast()
	ch.mu.Unlock()

	for node := head; node != nil; node = node.next {
		rt.Decref(node.v)
		node.v = nil
	}
	ch.emit(t, "destroy", size)
}

// emit records a channel event with the buffer size at the time of the
// operation.
func (ch *Channel) emit(t trace.Tracer, name string, size int) {
	if !t.Enabled() {
		return
	}
	t.Emit(&trace.Event{
		Kind:   trace.KindPoint,
		Scope:  trace.ScopeChannel,
		Name:   name,
		Detail: fmt.Sprintf("buffered=%d", size),
	})
}

// Value wraps the channel as an opaque runtime value.
func (ch *Channel) Value() *rt.Value {
	return rt.NewOpaque(rt.KChannel, ch)
}

// ChannelFrom unwraps a channel handle value.
func ChannelFrom(v *rt.Value) (*Channel, bool) {
	ch, ok := v.Opaque().(*Channel)
	return ch, ok
}
