package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tock/internal/sequence"
	"github.com/sadopc/tock/internal/store"
	"github.com/sadopc/tock/internal/timer"
)

const defaultWidth = 80

// RenderList renders one block per timer: id, state, remaining time and a
// progress bar, then the timer's description.
func RenderList(statuses []timer.Status, width int) string {
	if len(statuses) == 0 {
		return mutedStyle.Render("No timers.")
	}
	if width <= 0 {
		width = defaultWidth
	}

	blocks := make([]string, 0, len(statuses))
	for _, st := range statuses {
		blocks = append(blocks, renderTimer(st, width))
	}
	return strings.Join(blocks, "\n")
}

func renderTimer(st timer.Status, width int) string {
	t := st.Timer

	barWidth := width - 32
	if barWidth < 10 {
		barWidth = 10
	}
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth))
	pct := st.Progress
	if pct < 0 {
		pct = 0
	}

	head := lipgloss.JoinHorizontal(lipgloss.Top,
		idStyle.Width(5).Render("#"+t.ID),
		stateBadge(t.State),
		clockStyle.Width(10).Render(sequence.FormatClock(st.Remaining)),
		bar.ViewAs(pct/100),
	)
	return head + "\n" + mutedStyle.Render("     "+truncate(describe(t), width-5))
}

// describe is the one-line summary under a timer's progress bar.
func describe(t store.Timer) string {
	if t.IsSequence {
		name := t.SequencePattern
		if t.Title != "" {
			name = t.Title
		}
		phase := t.CurrentPhaseIndex + 1
		if phase > t.TotalPhases {
			phase = t.TotalPhases
		}
		s := fmt.Sprintf("%s · phase %d/%d %s", name, phase, t.TotalPhases, t.CurrentPhaseLabel)
		if p, ok := t.CurrentPhase(); ok && p.LoopTotal > 1 {
			s += fmt.Sprintf(" · loop %d/%d", p.LoopIteration, p.LoopTotal)
		}
		return s + " · total " + t.DurationText
	}

	s := fmt.Sprintf("%s · %s", t.Message, t.DurationText)
	if t.RepeatTotal > 1 {
		s += fmt.Sprintf(" · run %d/%d", t.CurrentRun, t.RepeatTotal)
	}
	return s
}
