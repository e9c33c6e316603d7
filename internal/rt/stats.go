package rt

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"tern/internal/trace"
)

// Allocation accounting. Counters are atomic because pool workers allocate
// on their own threads; the values themselves stay single-owner.
var (
	allocCount atomic.Uint64
	freeCount  atomic.Uint64

	liveMu      sync.Mutex
	liveByKind  map[Kind]int64
	heapTracer  trace.Tracer = trace.Nop()
	heapTraceMu sync.RWMutex
)

// AllocCount returns the number of values allocated so far.
func AllocCount() uint64 { return allocCount.Load() }

// FreeCount returns the number of values freed so far.
func FreeCount() uint64 { return freeCount.Load() }

// LiveCount returns the number of values currently alive.
func LiveCount() uint64 { return allocCount.Load() - freeCount.Load() }

// SetTracer installs a tracer for heap alloc/free events. Pass nil to
// disable tracing.
func SetTracer(t trace.Tracer) {
	heapTraceMu.Lock()
	if t == nil {
		t = trace.Nop()
	}
	heapTracer = t
	heapTraceMu.Unlock()
}

func tracer() trace.Tracer {
	heapTraceMu.RLock()
	t := heapTracer
	heapTraceMu.RUnlock()
	return t
}

func noteAlloc(kind Kind) {
	allocCount.Add(1)
	liveMu.Lock()
	if liveByKind == nil {
		liveByKind = make(map[Kind]int64, 16)
	}
	liveByKind[kind]++
	liveMu.Unlock()
	if t := tracer(); t.Enabled() && t.Level() >= trace.LevelDebug {
		t.Emit(&trace.Event{Kind: trace.KindPoint, Scope: trace.ScopeHeap, Name: "alloc", Detail: kind.String()})
	}
}

func noteFree(kind Kind) {
	freeCount.Add(1)
	liveMu.Lock()
	if liveByKind != nil {
		liveByKind[kind]--
	}
	liveMu.Unlock()
	if t := tracer(); t.Enabled() && t.Level() >= trace.LevelDebug {
		t.Emit(&trace.Event{Kind: trace.KindPoint, Scope: trace.ScopeHeap, Name: "free", Detail: kind.String()})
	}
}

// LeakCheck returns an error describing any values still alive. Intended to
// run at a point where the caller believes everything has been released.
func LeakCheck() error {
	live := LiveCount()
	if live == 0 {
		return nil
	}
	liveMu.Lock()
	kinds := make([]string, 0, len(liveByKind))
	for kind, n := range liveByKind {
		if n > 0 {
			kinds = append(kinds, fmt.Sprintf("%s=%d", kind, n))
		}
	}
	liveMu.Unlock()
	sort.Strings(kinds)
	msg := fmt.Sprintf("leak detected: %d values still alive", live)
	if len(kinds) > 0 {
		msg += " (" + strings.Join(kinds, ", ") + ")"
	}
	return &Error{Code: CodeLeakDetected, Message: msg}
}
