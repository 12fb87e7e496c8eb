package tui

import (
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tock/internal/store"
	"github.com/sadopc/tock/internal/timer"
)

// Source is where the watch view reads timers from. *store.Store
// implements it.
type Source interface {
	Load() ([]store.Timer, error)
	Changed() bool
}

// WatchModel redraws timers every second and exits on any key. The state
// file is reparsed only when its modification time changes.
type WatchModel struct {
	src      Source
	id       string
	all      bool
	now      func() time.Time
	interval time.Duration

	timers []store.Timer
	err    error
	loads  int
	width  int
	help   help.Model
}

type WatchOption func(*WatchModel)

// WatchID limits the view to one timer.
func WatchID(id string) WatchOption {
	return func(m *WatchModel) { m.id = id }
}

// WatchAll includes Completed timers.
func WatchAll(all bool) WatchOption {
	return func(m *WatchModel) { m.all = all }
}

// WatchClock replaces time.Now.
func WatchClock(now func() time.Time) WatchOption {
	return func(m *WatchModel) { m.now = now }
}

func NewWatch(src Source, opts ...WatchOption) WatchModel {
	m := WatchModel{
		src:      src,
		now:      time.Now,
		interval: time.Second,
		width:    defaultWidth,
		help:     help.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.reload()
	return m
}

func (m WatchModel) Init() tea.Cmd {
	return m.tick()
}

func (m WatchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		if m.src.Changed() {
			m.reload()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *WatchModel) reload() {
	m.timers, m.err = m.src.Load()
	m.loads++
}

func (m WatchModel) statuses() []timer.Status {
	now := m.now()
	var out []timer.Status
	for _, t := range m.timers {
		if m.id != "" && t.ID != m.id {
			continue
		}
		if m.id == "" && !m.all && t.State == store.StateCompleted {
			continue
		}
		out = append(out, timer.StatusAt(t, now))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i].Timer.ID)
		b, _ := strconv.Atoi(out[j].Timer.ID)
		return a < b
	})
	return out
}

func (m WatchModel) View() string {
	var body string
	switch st := m.statuses(); {
	case m.err != nil:
		body = errorStyle.Render("error: " + m.err.Error())
	case m.id != "" && len(st) == 0:
		body = mutedStyle.Render("Timer " + m.id + " not found.")
	default:
		body = RenderList(st, m.width-4)
	}

	header := titleStyle.Render("tock") + "  " + mutedStyle.Render(m.now().Format("15:04:05"))
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		panelStyle.Render(body),
		footerStyle.Render(m.help.View(keys)),
	)
}
