// Package ui renders a live terminal view of pool activity.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tern/internal/conc"
)

// Sample is one observation of pool activity.
type Sample struct {
	Stats conc.PoolStats
	Live  uint64 // values currently alive
	Done  bool   // workload finished
}

type tickMsg time.Time

type monitorModel struct {
	title   string
	sample  func() Sample
	spinner spinner.Model
	current Sample
	width   int
	done    bool
}

// NewMonitorModel returns a Bubble Tea model polling sample at a fixed rate.
func NewMonitorModel(title string, sample func() Sample) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	return &monitorModel{
		title:   title,
		sample:  sample,
		spinner: sp,
		width:   80,
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *monitorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.current = m.sample()
		if m.current.Done {
			m.done = true
			return m, tea.Quit
		}
		return m, tick()
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *monitorModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	title := m.title
	if limit := m.width - 8; limit > 0 { // spinner/done prefix plus margin
		title = runewidth.Truncate(title, limit, "…")
	}
	header := title
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	s := m.current.Stats
	rows := []struct {
		label string
		value string
	}{
		{"workers", fmt.Sprintf("%d (%d busy)", s.Workers, s.Busy)},
		{"queued", fmt.Sprintf("%d", s.Queued)},
		{"submitted", fmt.Sprintf("%d", s.Submitted)},
		{"completed", fmt.Sprintf("%d", s.Completed)},
		{"cancelled", fmt.Sprintf("%d", s.Cancelled)},
		{"timed out", fmt.Sprintf("%d", s.TimedOut)},
		{"throws", fmt.Sprintf("%d", s.Throws)},
		{"live values", fmt.Sprintf("%d", m.current.Live)},
	}

	labelWidth := 14
	for _, row := range rows {
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(runewidth.FillRight(row.label, labelWidth)))
		b.WriteString(row.value)
		b.WriteString("\n")
	}
	if !m.done {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("press q to quit"))
		b.WriteString("\n")
	}
	return b.String()
}
