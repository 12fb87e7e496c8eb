package timer

import (
	"strconv"
	"time"

	"github.com/sadopc/tock/internal/sequence"
	"github.com/sadopc/tock/internal/store"
)

// EventKind says what a fire did to a timer.
type EventKind int

const (
	// EventIgnored means the timer was not Running.
	EventIgnored EventKind = iota
	// EventAdvanced means a new segment started (next phase or next repeat).
	EventAdvanced
	// EventCompleted means the timer finished.
	EventCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventAdvanced:
		return "advanced"
	case EventCompleted:
		return "completed"
	}
	return "ignored"
}

// Event is the result of a fire. Timer is the state after the fire and
// Finished describes the segment that just ended.
type Event struct {
	Kind     EventKind
	Timer    store.Timer
	Finished Segment

	delay int
}

// Title is a short notification heading for the event.
func (e Event) Title() string {
	t := e.Timer
	switch {
	case e.Kind == EventCompleted && t.IsSequence && t.Title != "":
		return t.Title + " finished"
	case e.Kind == EventCompleted && t.IsSequence:
		return "Sequence finished"
	case e.Kind == EventCompleted:
		return t.Message
	case t.IsSequence:
		return t.CurrentPhaseLabel
	}
	return t.Message
}

// Body is the notification text for the event.
func (e Event) Body() string {
	t := e.Timer
	switch {
	case e.Kind == EventCompleted && t.IsSequence:
		return "All phases done"
	case e.Kind == EventCompleted:
		return "Time is up"
	case t.IsSequence:
		return e.Finished.Label + " done, " + t.CurrentPhaseLabel + " for " + sequence.FormatDuration(t.Seconds)
	}
	return "Run " + strconv.Itoa(t.CurrentRun) + " of " + strconv.Itoa(t.RepeatTotal) + " started"
}

// advance ends the current segment of a Running timer at now and either
// starts the next one or completes the timer.
func advance(t *store.Timer, now time.Time) Event {
	finished := Segment{
		TimerID:    t.ID,
		Label:      t.Message,
		Seconds:    t.Seconds,
		FinishedAt: now,
		Sequence:   t.IsSequence,
	}

	if t.IsSequence {
		next := t.CurrentPhaseIndex + 1
		if next >= len(t.Phases) {
			complete(t)
			return Event{Kind: EventCompleted, Timer: *t, Finished: finished}
		}
		p := t.Phases[next]
		t.CurrentPhaseIndex = next
		t.CurrentPhaseLabel = p.Label
		t.Message = p.Label
		t.Seconds = p.Seconds
		restart(t, now)
		return Event{Kind: EventAdvanced, Timer: *t, Finished: finished, delay: p.Seconds}
	}

	if t.RepeatRemaining > 0 {
		t.RepeatRemaining--
		t.CurrentRun++
		restart(t, now)
		return Event{Kind: EventAdvanced, Timer: *t, Finished: finished, delay: t.Seconds}
	}
	complete(t)
	return Event{Kind: EventCompleted, Timer: *t, Finished: finished}
}

func restart(t *store.Timer, now time.Time) {
	start := store.At(now)
	t.StartTime = start
	t.EndTime = store.At(start.Add(time.Duration(t.Seconds) * time.Second))
	t.RemainingSeconds = nil
	t.State = store.StateRunning
}

func complete(t *store.Timer) {
	t.State = store.StateCompleted
	t.RemainingSeconds = nil
	if t.IsSequence {
		t.CurrentPhaseIndex = len(t.Phases)
	}
}

// Progress returns percent complete of the current segment in [0, 100].
// Completed is always 100; an unknown state is -1.
func Progress(t *store.Timer, now time.Time) float64 {
	if t.State == store.StateCompleted {
		return 100
	}
	if t.Seconds <= 0 {
		if t.State.Valid() {
			return 0
		}
		return -1
	}

	var left float64
	switch t.State {
	case store.StateRunning:
		left = t.EndTime.Sub(now).Seconds()
		if left < 0 {
			left = 0
		}
	case store.StatePaused, store.StateLost:
		left = float64(t.Seconds)
		if t.RemainingSeconds != nil {
			left = float64(*t.RemainingSeconds)
		}
	default:
		return -1
	}

	total := float64(t.Seconds)
	pct := (total - left) / total * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}
