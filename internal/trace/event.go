package trace

import (
	"sync/atomic"
	"time"
)

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates which runtime subsystem emitted the event. Lower numeric
// values represent coarser events.
type Scope uint8

const (
	// ScopePool represents pool lifecycle operations (init, shutdown).
	ScopePool Scope = iota + 1
	// ScopeTask represents per-task scheduling events.
	ScopeTask
	// ScopeChannel represents channel send/recv/close events.
	ScopeChannel
	// ScopeHeap represents value alloc/free traffic (most detailed).
	ScopeHeap
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopePool:
		return "pool"
	case ScopeTask:
		return "task"
	case ScopeChannel:
		return "channel"
	case ScopeHeap:
		return "heap"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time   time.Time         // wall-clock timestamp
	Seq    uint64            // global sequence number (monotonic)
	Kind   Kind              // event kind
	Scope  Scope             // subsystem
	Name   string            // e.g. "submit", "complete", "alloc"
	Detail string            // optional detail message
	Extra  map[string]string // extensible key-value pairs
}

var globalSeq atomic.Uint64

// NextSeq returns the next global sequence number.
func NextSeq() uint64 {
	return globalSeq.Add(1)
}
