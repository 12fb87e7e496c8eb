package store

import (
	"encoding/json"
	"time"

	"github.com/sadopc/tock/internal/sequence"
)

// State is the lifecycle state of a timer.
type State string

const (
	StateRunning   State = "Running"
	StatePaused    State = "Paused"
	StateCompleted State = "Completed"
	StateLost      State = "Lost"
)

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	switch s {
	case StateRunning, StatePaused, StateCompleted, StateLost:
		return true
	}
	return false
}

// Stamp is a timestamp stored as RFC 3339. A value that fails to parse
// decodes to the zero time instead of failing the whole document.
type Stamp struct {
	time.Time
}

// At wraps t, truncated to whole seconds.
func At(t time.Time) Stamp {
	return Stamp{t.Truncate(time.Second)}
}

func (s Stamp) MarshalJSON() ([]byte, error) {
	if s.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(s.UTC().Format(time.RFC3339))
}

func (s *Stamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		s.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		s.Time = time.Time{}
		return nil
	}
	s.Time = t
	return nil
}

// Timer is the persisted record of one countdown. Sequence fields are set
// only when IsSequence is true; Phases never changes after creation.
type Timer struct {
	ID               string `json:"id"`
	DurationText     string `json:"durationText"`
	Seconds          int    `json:"seconds"`
	Message          string `json:"message"`
	Title            string `json:"title,omitempty"`
	StartTime        Stamp  `json:"startTime"`
	EndTime          Stamp  `json:"endTime"`
	RepeatTotal      int    `json:"repeatTotal"`
	RepeatRemaining  int    `json:"repeatRemaining"`
	CurrentRun       int    `json:"currentRun"`
	State            State  `json:"state"`
	RemainingSeconds *int   `json:"remainingSeconds"`
	IsSequence       bool   `json:"isSequence"`

	SequencePattern      string           `json:"sequencePattern,omitempty"`
	Phases               []sequence.Phase `json:"phases,omitempty"`
	CurrentPhaseIndex    int              `json:"currentPhaseIndex,omitempty"`
	TotalPhases          int              `json:"totalPhases,omitempty"`
	CurrentPhaseLabel    string           `json:"currentPhaseLabel,omitempty"`
	TotalSequenceSeconds int              `json:"totalSequenceSeconds,omitempty"`
}

// CurrentPhase returns the active phase of a sequence timer.
func (t *Timer) CurrentPhase() (sequence.Phase, bool) {
	if !t.IsSequence || t.CurrentPhaseIndex < 0 || t.CurrentPhaseIndex >= len(t.Phases) {
		return sequence.Phase{}, false
	}
	return t.Phases[t.CurrentPhaseIndex], true
}

// Remaining returns the seconds left in the current segment at now.
func (t *Timer) Remaining(now time.Time) int {
	switch t.State {
	case StateCompleted:
		return 0
	case StatePaused, StateLost:
		if t.RemainingSeconds != nil {
			return *t.RemainingSeconds
		}
		return t.Seconds
	}
	left := int(t.EndTime.Sub(now) / time.Second)
	if left < 0 {
		return 0
	}
	return left
}

// MarshalJSON keeps currentPhaseIndex on sequence timers even when it is 0
// and leaves it off simple timers.
func (t Timer) MarshalJSON() ([]byte, error) {
	type plain Timer
	if !t.IsSequence {
		return json.Marshal(plain(t))
	}
	return json.Marshal(struct {
		plain
		CurrentPhaseIndex int `json:"currentPhaseIndex"`
	}{plain(t), t.CurrentPhaseIndex})
}
