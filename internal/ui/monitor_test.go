package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tern/internal/conc"
)

func testModel(done bool) (*monitorModel, *int) {
	calls := 0
	m := NewMonitorModel("test monitor", func() Sample {
		calls++
		return Sample{
			Stats: conc.PoolStats{Workers: 4, Busy: 2, Submitted: 10, Completed: 7},
			Live:  3,
			Done:  done,
		}
	}).(*monitorModel)
	return m, &calls
}

func TestTickPollsSample(t *testing.T) {
	m, calls := testModel(false)
	next, cmd := m.Update(tickMsg(time.Now()))
	if *calls != 1 {
		t.Fatalf("sample called %d times, want 1", *calls)
	}
	if cmd == nil {
		t.Fatal("expected a rescheduled tick")
	}
	got := next.(*monitorModel)
	if got.current.Stats.Completed != 7 {
		t.Fatalf("sample not stored: %+v", got.current)
	}
}

func TestQuitsWhenWorkloadDone(t *testing.T) {
	m, _ := testModel(true)
	next, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("expected tea.Quit")
	}
	if !next.(*monitorModel).done {
		t.Fatal("model did not mark itself done")
	}
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
	} {
		m, _ := testModel(false)
		next, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("key %q did not quit", key.String())
		}
		if !next.(*monitorModel).done {
			t.Fatalf("key %q did not mark done", key.String())
		}
	}
}

func TestViewShowsStats(t *testing.T) {
	m, _ := testModel(false)
	next, _ := m.Update(tickMsg(time.Now()))
	view := next.(*monitorModel).View()
	for _, want := range []string{"test monitor", "workers", "submitted", "completed", "live values"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestWindowResizeAdjustsWidth(t *testing.T) {
	m, _ := testModel(false)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if got := next.(*monitorModel).width; got != 120 {
		t.Fatalf("width = %d, want 120", got)
	}
}

func TestNarrowWindowTruncatesTitle(t *testing.T) {
	long := strings.Repeat("x", 100)
	m := NewMonitorModel(long, func() Sample { return Sample{} }).(*monitorModel)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 24, Height: 10})
	view := next.(*monitorModel).View()
	if strings.Contains(view, strings.Repeat("x", 30)) {
		t.Fatal("title not truncated to window width")
	}
	if !strings.Contains(view, "…") {
		t.Fatal("truncated title missing ellipsis")
	}
}
