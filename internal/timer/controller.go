// Package timer drives countdown timers through their lifecycle:
// Running, Paused, Completed and Lost. Every operation loads the whole state
// file, mutates it and saves it back before touching the scheduler.
package timer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/tock/internal/preset"
	"github.com/sadopc/tock/internal/sequence"
	"github.com/sadopc/tock/internal/store"
)

var (
	ErrInvalidDuration   = errors.New("invalid duration")
	ErrInvalidPattern    = errors.New("invalid sequence pattern")
	ErrNotFound          = errors.New("timer not found")
	ErrInvalidTransition = errors.New("invalid transition for current state")
)

// Special targets accepted by Pause, Resume and Remove.
const (
	TargetAll  = "all"
	TargetDone = "done"
)

// Controller owns the timer state machine.
type Controller struct {
	store    *store.Store
	sched    Scheduler
	presets  *preset.Resolver
	recorder Recorder
	now      func() time.Time
	log      *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithRecorder reports finished segments to r.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// New returns a controller. A nil scheduler behaves like NopScheduler.
func New(st *store.Store, sched Scheduler, presets *preset.Resolver, opts ...Option) *Controller {
	if sched == nil {
		sched = NopScheduler{}
	}
	if presets == nil {
		presets = preset.NewResolver(preset.Defaults)
	}
	c := &Controller{
		store:   st,
		sched:   sched,
		presets: presets,
		now:     time.Now,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Presets returns the resolver used to route input.
func (c *Controller) Presets() *preset.Resolver { return c.presets }

// CreateRequest describes a new timer. Input is a duration ("25m"), a
// duration with a label ("25m tea"), a sequence pattern or a preset name.
type CreateRequest struct {
	Input   string
	Message string
	Repeat  int
}

// Result is the outcome of an operation on one timer.
type Result struct {
	ID    string
	Timer store.Timer
	Err   error
}

// Create validates the request, stores a Running timer and schedules its
// first segment.
func (c *Controller) Create(ctx context.Context, req CreateRequest) (*store.Timer, error) {
	input := strings.TrimSpace(req.Input)
	now := c.now()

	var (
		t   store.Timer
		err error
	)
	if c.presets.IsSequenceLike(input) {
		t, err = c.newSequence(input, req.Message, now)
	} else {
		t, err = newSimple(input, req.Message, req.Repeat, now)
	}
	if err != nil {
		return nil, err
	}

	timers, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	t.ID = store.NextID(timers)
	timers = append(timers, t)
	if err := c.store.Save(timers); err != nil {
		return nil, fmt.Errorf("create timer: %w", err)
	}

	c.submit(ctx, t.ID, t.Seconds)
	c.log.Info("timer created", "timer_id", t.ID, "seconds", t.Seconds, "sequence", t.IsSequence)
	return &t, nil
}

func newSimple(input, message string, repeat int, now time.Time) (store.Timer, error) {
	var durations, words []string
	for _, tok := range sequence.Tokenize(input) {
		switch tok.Kind {
		case sequence.TokenDuration:
			durations = append(durations, tok.Text)
		case sequence.TokenLabel:
			words = append(words, tok.Text)
		}
	}

	secs := 0
	for _, d := range durations {
		n := sequence.ParseDuration(d)
		if n <= 0 {
			return store.Timer{}, fmt.Errorf("%w: %q", ErrInvalidDuration, input)
		}
		secs += n
	}
	if secs <= 0 || secs > sequence.MaxSeconds {
		return store.Timer{}, fmt.Errorf("%w: %q", ErrInvalidDuration, input)
	}

	durationText := sequence.FormatDuration(secs)
	if len(durations) == 1 {
		durationText = durations[0]
	}
	if message == "" {
		message = strings.Join(words, " ")
	}
	if message == "" {
		message = sequence.DefaultLabel
	}
	if repeat < 1 {
		repeat = 1
	}

	start := store.At(now)
	return store.Timer{
		DurationText:    durationText,
		Seconds:         secs,
		Message:         message,
		StartTime:       start,
		EndTime:         store.At(start.Add(time.Duration(secs) * time.Second)),
		RepeatTotal:     repeat,
		RepeatRemaining: repeat - 1,
		CurrentRun:      1,
		State:           store.StateRunning,
	}, nil
}

func (c *Controller) newSequence(input, message string, now time.Time) (store.Timer, error) {
	plan, err := sequence.Compile(c.presets.Resolve(input))
	if err != nil {
		return store.Timer{}, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	first := plan.Phases[0]

	start := store.At(now)
	return store.Timer{
		DurationText:         plan.Summary.TotalDurationText,
		Seconds:              first.Seconds,
		Message:              first.Label,
		Title:                message,
		StartTime:            start,
		EndTime:              store.At(start.Add(time.Duration(first.Seconds) * time.Second)),
		RepeatTotal:          1,
		CurrentRun:           1,
		State:                store.StateRunning,
		IsSequence:           true,
		SequencePattern:      input,
		Phases:               plan.Phases,
		TotalPhases:          len(plan.Phases),
		CurrentPhaseLabel:    first.Label,
		TotalSequenceSeconds: plan.Summary.TotalSeconds,
	}, nil
}

// Pause stops a Running timer and keeps the seconds it had left. target is
// an id or "all" (every Running timer).
func (c *Controller) Pause(ctx context.Context, target string) ([]Result, error) {
	timers, idx, err := c.selectTargets(target, false, func(t *store.Timer) bool {
		return t.State == store.StateRunning
	})
	if err != nil {
		return nil, err
	}

	now := c.now()
	var results []Result
	var paused []string
	for _, i := range idx {
		t := &timers[i]
		if t.State != store.StateRunning {
			results = append(results, Result{ID: t.ID, Timer: *t,
				Err: fmt.Errorf("pause timer %s: %w: %s", t.ID, ErrInvalidTransition, t.State)})
			continue
		}
		rem := secondsUntil(t.EndTime.Time, now)
		t.RemainingSeconds = &rem
		t.State = store.StatePaused
		paused = append(paused, t.ID)
		results = append(results, Result{ID: t.ID, Timer: *t})
	}

	if len(paused) > 0 {
		if err := c.store.Save(timers); err != nil {
			return nil, fmt.Errorf("pause: %w", err)
		}
	}
	for _, id := range paused {
		c.cancel(ctx, id)
		c.log.Info("timer paused", "timer_id", id)
	}
	return results, nil
}

// Resume restarts Paused or Lost timers from their remaining seconds, or
// from the full segment when none remain recorded. target is an id or "all".
func (c *Controller) Resume(ctx context.Context, target string) ([]Result, error) {
	timers, idx, err := c.selectTargets(target, false, func(t *store.Timer) bool {
		return t.State == store.StatePaused || t.State == store.StateLost
	})
	if err != nil {
		return nil, err
	}

	now := c.now()
	var results []Result
	var resumed []Event
	changed := false
	for _, i := range idx {
		t := &timers[i]
		if t.State != store.StatePaused && t.State != store.StateLost {
			results = append(results, Result{ID: t.ID, Timer: *t,
				Err: fmt.Errorf("resume timer %s: %w: %s", t.ID, ErrInvalidTransition, t.State)})
			continue
		}
		changed = true

		// A pause captured at zero means the segment had already run out.
		if t.State == store.StatePaused && t.RemainingSeconds != nil && *t.RemainingSeconds <= 0 {
			ev := advance(t, now)
			resumed = append(resumed, ev)
			results = append(results, Result{ID: t.ID, Timer: *t})
			continue
		}

		use := t.Seconds
		if t.RemainingSeconds != nil && *t.RemainingSeconds > 0 {
			use = *t.RemainingSeconds
		}
		if use <= 0 {
			complete(t)
			resumed = append(resumed, Event{Kind: EventCompleted, Timer: *t})
			results = append(results, Result{ID: t.ID, Timer: *t})
			continue
		}

		start := store.At(now)
		t.StartTime = start
		t.EndTime = store.At(start.Add(time.Duration(use) * time.Second))
		t.RemainingSeconds = nil
		t.State = store.StateRunning
		resumed = append(resumed, Event{Kind: EventAdvanced, Timer: *t, delay: use})
		results = append(results, Result{ID: t.ID, Timer: *t})
	}

	if changed {
		if err := c.store.Save(timers); err != nil {
			return nil, fmt.Errorf("resume: %w", err)
		}
	}
	for _, ev := range resumed {
		c.apply(ctx, ev)
		c.record(ctx, ev.Finished)
		c.log.Info("timer resumed", "timer_id", ev.Timer.ID, "state", ev.Timer.State)
	}
	return results, nil
}

// Remove deletes timers and cancels their jobs. target is an id, "all" or
// "done" (Completed timers only).
func (c *Controller) Remove(ctx context.Context, target string) ([]Result, error) {
	timers, idx, err := c.selectTargets(target, true, func(*store.Timer) bool { return true })
	if err != nil {
		return nil, err
	}
	if len(idx) == 0 {
		return nil, nil
	}

	drop := make(map[int]bool, len(idx))
	var results []Result
	for _, i := range idx {
		drop[i] = true
		results = append(results, Result{ID: timers[i].ID, Timer: timers[i]})
	}
	kept := make([]store.Timer, 0, len(timers)-len(idx))
	for i, t := range timers {
		if !drop[i] {
			kept = append(kept, t)
		}
	}

	if err := c.store.Save(kept); err != nil {
		return nil, fmt.Errorf("remove: %w", err)
	}
	for _, r := range results {
		c.cancel(ctx, r.ID)
		c.log.Info("timer removed", "timer_id", r.ID)
	}
	return results, nil
}

// Fire handles a scheduler callback for id: the current segment has ended.
// The change is saved before the next job is submitted and before the event
// is returned for notification. Fires for timers that are not Running are
// ignored.
func (c *Controller) Fire(ctx context.Context, id string) (Event, error) {
	timers, err := c.store.Load()
	if err != nil {
		return Event{}, err
	}
	i := store.Find(timers, id)
	if i < 0 {
		return Event{}, fmt.Errorf("fire timer %s: %w", id, ErrNotFound)
	}
	t := &timers[i]
	if t.State != store.StateRunning {
		return Event{Kind: EventIgnored, Timer: *t}, nil
	}

	now := c.now()
	ev := advance(t, now)
	if err := c.store.Save(timers); err != nil {
		return Event{}, fmt.Errorf("fire timer %s: %w", id, err)
	}
	c.apply(ctx, ev)
	c.record(ctx, ev.Finished)
	c.log.Info("timer fired", "timer_id", id, "state", t.State, "kind", ev.Kind)
	return ev, nil
}

// Sync marks Running timers as Lost when their job is gone and their end
// time has passed. A timer whose job lookup fails is left alone until the
// next pass. It returns how many timers changed.
func (c *Controller) Sync(ctx context.Context) (int, error) {
	timers, err := c.store.Load()
	if err != nil {
		return 0, err
	}
	now := c.now()

	lost := 0
	for i := range timers {
		t := &timers[i]
		if t.State != store.StateRunning {
			continue
		}
		ok, err := c.sched.Exists(ctx, t.ID)
		if err != nil {
			c.log.Warn("scheduler lookup failed", "timer_id", t.ID, "err", err)
			continue
		}
		if ok {
			continue
		}
		if !t.EndTime.IsZero() && t.EndTime.After(now) {
			continue
		}
		rem := secondsUntil(t.EndTime.Time, now)
		t.RemainingSeconds = &rem
		t.State = store.StateLost
		lost++
		c.log.Warn("timer lost its scheduled job", "timer_id", t.ID)
	}

	if lost > 0 {
		if err := c.store.Save(timers); err != nil {
			return 0, fmt.Errorf("sync: %w", err)
		}
	}
	return lost, nil
}

// Status is a timer with display values computed at one instant.
type Status struct {
	Timer       store.Timer
	Progress    float64
	Remaining   int
	LastFiredAt time.Time
}

// List reconciles and returns timers ordered by id. Completed timers are
// included only when includeAll is set.
func (c *Controller) List(ctx context.Context, includeAll bool) ([]Status, error) {
	if _, err := c.Sync(ctx); err != nil {
		return nil, err
	}
	timers, err := c.store.Load()
	if err != nil {
		return nil, err
	}

	now := c.now()
	var out []Status
	for i := range timers {
		t := timers[i]
		if t.State == store.StateCompleted && !includeAll {
			continue
		}
		out = append(out, c.status(ctx, t, now))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return idLess(out[i].Timer.ID, out[j].Timer.ID)
	})
	return out, nil
}

// Get returns one timer's status.
func (c *Controller) Get(ctx context.Context, id string) (Status, error) {
	timers, err := c.store.Load()
	if err != nil {
		return Status{}, err
	}
	i := store.Find(timers, id)
	if i < 0 {
		return Status{}, fmt.Errorf("get timer %s: %w", id, ErrNotFound)
	}
	return c.status(ctx, timers[i], c.now()), nil
}

// StatusAt computes display values for t without touching the store or the
// scheduler. Watch views use it between reloads.
func StatusAt(t store.Timer, now time.Time) Status {
	return Status{
		Timer:     t,
		Progress:  Progress(&t, now),
		Remaining: t.Remaining(now),
	}
}

func (c *Controller) status(ctx context.Context, t store.Timer, now time.Time) Status {
	st := StatusAt(t, now)
	if at, ok, err := c.sched.LastFiredAt(ctx, t.ID); err == nil && ok {
		st.LastFiredAt = at
	}
	return st
}

// selectTargets loads the store and returns the indexes target refers to.
// For "all" (and "done" when allowed) the filter picks timers; a plain id
// must exist but is returned whatever its state.
func (c *Controller) selectTargets(target string, allowDone bool, filter func(*store.Timer) bool) ([]store.Timer, []int, error) {
	target = strings.TrimSpace(target)
	timers, err := c.store.Load()
	if err != nil {
		return nil, nil, err
	}

	var idx []int
	switch {
	case target == TargetAll:
		for i := range timers {
			if filter(&timers[i]) {
				idx = append(idx, i)
			}
		}
	case target == TargetDone && allowDone:
		for i := range timers {
			if timers[i].State == store.StateCompleted {
				idx = append(idx, i)
			}
		}
	default:
		i := store.Find(timers, target)
		if i < 0 {
			return nil, nil, fmt.Errorf("timer %q: %w", target, ErrNotFound)
		}
		idx = append(idx, i)
	}
	return timers, idx, nil
}

func (c *Controller) submit(ctx context.Context, id string, secs int) {
	if err := c.sched.Submit(ctx, id, time.Duration(secs)*time.Second); err != nil {
		c.log.Warn("schedule failed", "timer_id", id, "err", err)
	}
}

func (c *Controller) cancel(ctx context.Context, id string) {
	if err := c.sched.Cancel(ctx, id); err != nil {
		c.log.Warn("cancel failed", "timer_id", id, "err", err)
	}
}

// apply performs the scheduler side of an event.
func (c *Controller) apply(ctx context.Context, ev Event) {
	switch ev.Kind {
	case EventAdvanced:
		c.submit(ctx, ev.Timer.ID, ev.delay)
	case EventCompleted:
		c.cancel(ctx, ev.Timer.ID)
	}
}

func (c *Controller) record(ctx context.Context, seg Segment) {
	if c.recorder == nil || seg.Seconds <= 0 {
		return
	}
	if err := c.recorder.RecordSegment(ctx, seg); err != nil {
		c.log.Warn("record segment failed", "timer_id", seg.TimerID, "err", err)
	}
}

// secondsUntil is the whole seconds from now to end, floored at 0.
func secondsUntil(end, now time.Time) int {
	if end.IsZero() {
		return 0
	}
	d := int(end.Sub(now) / time.Second)
	if d < 0 {
		return 0
	}
	return d
}

func idLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	if errA == nil {
		return true
	}
	if errB == nil {
		return false
	}
	return a < b
}
