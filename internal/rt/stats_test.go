package rt

import (
	"strings"
	"testing"

	"tern/internal/trace"
)

func TestLeakCheckNamesTheLeakedKind(t *testing.T) {
	liveBefore := LiveCount()

	leaked := NewStr("oops")
	if LiveCount() != liveBefore+1 {
		t.Fatalf("live count did not track allocation")
	}
	err := LeakCheck()
	if err == nil {
		t.Fatal("leak not reported")
	}
	rtErr, ok := err.(*Error)
	if !ok || rtErr.Code != CodeLeakDetected {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rtErr.Message, "str=") {
		t.Fatalf("report does not name the leaked kind: %q", rtErr.Message)
	}

	Decref(leaked)
	if LiveCount() != liveBefore {
		t.Fatalf("live count did not return to baseline")
	}
	if liveBefore == 0 {
		if err := LeakCheck(); err != nil {
			t.Fatalf("leak check after balance: %v", err)
		}
	}
}

func TestHeapTracerSeesAllocAndFree(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	SetTracer(ring)
	defer SetTracer(nil)

	v := NewInt(1)
	Decref(v)

	var allocs, frees int
	for _, ev := range ring.Snapshot() {
		if ev.Scope != trace.ScopeHeap {
			continue
		}
		switch ev.Name {
		case "alloc":
			allocs++
		case "free":
			frees++
		}
	}
	if allocs != 1 || frees != 1 {
		t.Fatalf("heap events alloc=%d free=%d, want 1/1", allocs, frees)
	}
}

func TestHeapTracerSilentBelowDebug(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDetail)
	SetTracer(ring)
	defer SetTracer(nil)

	Decref(NewInt(1))
	if events := ring.Snapshot(); len(events) != 0 {
		t.Fatalf("heap traffic leaked below debug level: %v", events)
	}
}
