package timer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/tock/internal/preset"
	"github.com/sadopc/tock/internal/store"
)

type fakeScheduler struct {
	jobs      map[string]time.Duration
	fired     map[string]time.Time
	submits   int
	err       error
	existsErr error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{jobs: map[string]time.Duration{}, fired: map[string]time.Time{}}
}

func (f *fakeScheduler) Submit(_ context.Context, id string, after time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.submits++
	f.jobs[id] = after
	return nil
}

func (f *fakeScheduler) Cancel(_ context.Context, id string) error {
	delete(f.jobs, id)
	return nil
}

func (f *fakeScheduler) Exists(_ context.Context, id string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.jobs[id]
	return ok, nil
}

func (f *fakeScheduler) LastFiredAt(_ context.Context, id string) (time.Time, bool, error) {
	at, ok := f.fired[id]
	return at, ok, nil
}

// claim drops the job the way a handled fire does.
func (f *fakeScheduler) claim(id string) {
	delete(f.jobs, id)
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
func (c *fakeClock) AdvanceSeconds(secs int) { c.Advance(time.Duration(secs) * time.Second) }

type recorded struct{ segs []Segment }

func (r *recorded) RecordSegment(_ context.Context, seg Segment) error {
	r.segs = append(r.segs, seg)
	return nil
}

type fixture struct {
	ctl   *Controller
	st    *store.Store
	fs    afero.Fs
	sched *fakeScheduler
	clock *fakeClock
	rec   *recorded
}

const statePath = "/tock/timers.json"

func setup(t *testing.T) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	st := store.New(fs, statePath, nil)
	sched := newFakeScheduler()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	rec := &recorded{}
	ctl := New(st, sched, preset.NewResolver(preset.Defaults), WithClock(clock.Now), WithRecorder(rec))
	return &fixture{ctl: ctl, st: st, fs: fs, sched: sched, clock: clock, rec: rec}
}

// fire moves the clock to the end of the current segment and fires it.
func (f *fixture) fire(t *testing.T, id string) Event {
	t.Helper()
	timers, err := f.st.Load()
	require.NoError(t, err)
	i := store.Find(timers, id)
	require.GreaterOrEqual(t, i, 0)
	f.clock.now = timers[i].EndTime.Time
	f.sched.claim(id)
	ev, err := f.ctl.Fire(context.Background(), id)
	require.NoError(t, err)
	return ev
}

func (f *fixture) load(t *testing.T, id string) store.Timer {
	t.Helper()
	timers, err := f.st.Load()
	require.NoError(t, err)
	i := store.Find(timers, id)
	require.GreaterOrEqual(t, i, 0, "timer %s not found", id)
	return timers[i]
}

// ============================================================
// Create
// ============================================================

func TestCreateSimple(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tm, err := f.ctl.Create(ctx, CreateRequest{Input: "25m", Message: "focus"})
	require.NoError(t, err)
	assert.Equal(t, "1", tm.ID)
	assert.Equal(t, "25m", tm.DurationText)
	assert.Equal(t, 1500, tm.Seconds)
	assert.Equal(t, "focus", tm.Message)
	assert.Equal(t, store.StateRunning, tm.State)
	assert.Equal(t, 1, tm.RepeatTotal)
	assert.Equal(t, 0, tm.RepeatRemaining)
	assert.Equal(t, 1, tm.CurrentRun)
	assert.Equal(t, 1500*time.Second, tm.EndTime.Sub(tm.StartTime.Time))
	assert.Nil(t, tm.RemainingSeconds)
	assert.False(t, tm.IsSequence)

	assert.Equal(t, 1500*time.Second, f.sched.jobs["1"])
	assert.Equal(t, *tm, f.load(t, "1"))
}

func TestCreateLabelFromInput(t *testing.T) {
	f := setup(t)
	tm, err := f.ctl.Create(context.Background(), CreateRequest{Input: "10m tea"})
	require.NoError(t, err)
	assert.Equal(t, 600, tm.Seconds)
	assert.Equal(t, "tea", tm.Message)
	assert.Equal(t, "10m", tm.DurationText)
}

func TestCreateDefaultMessage(t *testing.T) {
	f := setup(t)
	tm, err := f.ctl.Create(context.Background(), CreateRequest{Input: "90"})
	require.NoError(t, err)
	assert.Equal(t, 90, tm.Seconds)
	assert.Equal(t, "Timer", tm.Message)
}

func TestCreateInvalidDuration(t *testing.T) {
	f := setup(t)
	for _, in := range []string{"", "abc", "0", "0m"} {
		_, err := f.ctl.Create(context.Background(), CreateRequest{Input: in})
		assert.ErrorIs(t, err, ErrInvalidDuration, "input %q", in)
	}
	ok, _ := afero.Exists(f.fs, statePath)
	assert.False(t, ok, "failed creates must not write state")
	assert.Zero(t, f.sched.submits)
}

func TestCreateRejectsOversizedDuration(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for _, in := range []string{"9999999999s", "99999999999999999999h", "8760h 1h"} {
		_, err := f.ctl.Create(ctx, CreateRequest{Input: in})
		assert.ErrorIs(t, err, ErrInvalidDuration, "input %q", in)
	}
	_, err := f.ctl.Create(ctx, CreateRequest{Input: "(9999999999s work)x2"})
	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.Zero(t, f.sched.submits)

	tm, err := f.ctl.Create(ctx, CreateRequest{Input: "8760h"})
	require.NoError(t, err)
	assert.Equal(t, 8760*time.Hour, tm.EndTime.Sub(tm.StartTime.Time))
}

func TestCreateIDsIncrease(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.ctl.Create(ctx, CreateRequest{Input: "1m"})
		require.NoError(t, err)
	}
	_, err := f.ctl.Remove(ctx, "3")
	require.NoError(t, err)
	tm, err := f.ctl.Create(ctx, CreateRequest{Input: "1m"})
	require.NoError(t, err)
	assert.Equal(t, "3", tm.ID)

	_, err = f.ctl.Remove(ctx, "1")
	require.NoError(t, err)
	tm, err = f.ctl.Create(ctx, CreateRequest{Input: "1m"})
	require.NoError(t, err)
	assert.Equal(t, "4", tm.ID)
}

func TestCreateSequence(t *testing.T) {
	f := setup(t)
	tm, err := f.ctl.Create(context.Background(), CreateRequest{Input: "(25m work, 5m rest)x4", Message: "morning"})
	require.NoError(t, err)

	assert.True(t, tm.IsSequence)
	assert.Equal(t, "(25m work, 5m rest)x4", tm.SequencePattern)
	assert.Len(t, tm.Phases, 8)
	assert.Equal(t, 8, tm.TotalPhases)
	assert.Equal(t, 0, tm.CurrentPhaseIndex)
	assert.Equal(t, "work", tm.CurrentPhaseLabel)
	assert.Equal(t, "work", tm.Message)
	assert.Equal(t, "morning", tm.Title)
	assert.Equal(t, 1500, tm.Seconds)
	assert.Equal(t, 7200, tm.TotalSequenceSeconds)
	assert.Equal(t, "2h", tm.DurationText)
	assert.Equal(t, 1, tm.RepeatTotal)
	assert.Equal(t, 1500*time.Second, f.sched.jobs[tm.ID])
}

func TestCreatePreset(t *testing.T) {
	f := setup(t)
	tm, err := f.ctl.Create(context.Background(), CreateRequest{Input: "pomodoro"})
	require.NoError(t, err)
	assert.True(t, tm.IsSequence)
	assert.Equal(t, "pomodoro", tm.SequencePattern)
	assert.Len(t, tm.Phases, 8)
}

func TestCreateInvalidPattern(t *testing.T) {
	f := setup(t)
	_, err := f.ctl.Create(context.Background(), CreateRequest{Input: "(, )x3"})
	assert.ErrorIs(t, err, ErrInvalidPattern)
	_, err = f.ctl.Create(context.Background(), CreateRequest{Input: "(1s a)x1000000"})
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestCreateSchedulerFailureIsNotFatal(t *testing.T) {
	f := setup(t)
	f.sched.err = errors.New("daemon unreachable")
	tm, err := f.ctl.Create(context.Background(), CreateRequest{Input: "5m"})
	require.NoError(t, err)
	assert.Equal(t, store.StateRunning, f.load(t, tm.ID).State)
}

// ============================================================
// Fire
// ============================================================

func TestRepeatRunsToCompletion(t *testing.T) {
	f := setup(t)
	tm, err := f.ctl.Create(context.Background(), CreateRequest{Input: "10m", Repeat: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, tm.RepeatTotal)
	assert.Equal(t, 2, tm.RepeatRemaining)

	ev := f.fire(t, tm.ID)
	assert.Equal(t, EventAdvanced, ev.Kind)
	assert.Equal(t, 2, ev.Timer.CurrentRun)
	assert.Equal(t, 1, ev.Timer.RepeatRemaining)
	assert.Contains(t, f.sched.jobs, tm.ID, "next run must be scheduled")

	ev = f.fire(t, tm.ID)
	assert.Equal(t, EventAdvanced, ev.Kind)

	ev = f.fire(t, tm.ID)
	assert.Equal(t, EventCompleted, ev.Kind)

	got := f.load(t, tm.ID)
	assert.Equal(t, store.StateCompleted, got.State)
	assert.Equal(t, 3, got.CurrentRun)
	assert.Equal(t, 0, got.RepeatRemaining)
	assert.NotContains(t, f.sched.jobs, tm.ID)
	assert.Len(t, f.rec.segs, 3)
}

func TestSequenceAdvancesThroughPhases(t *testing.T) {
	f := setup(t)
	tm, err := f.ctl.Create(context.Background(), CreateRequest{Input: "(25m work, 5m rest)x2"})
	require.NoError(t, err)

	labels := []string{"rest", "work", "rest"}
	for i, want := range labels {
		ev := f.fire(t, tm.ID)
		require.Equal(t, EventAdvanced, ev.Kind)
		assert.Equal(t, i+1, ev.Timer.CurrentPhaseIndex)
		assert.Equal(t, want, ev.Timer.CurrentPhaseLabel)
		assert.Equal(t, want, ev.Timer.Message)
		assert.Equal(t, ev.Timer.Phases[i+1].Seconds, ev.Timer.Seconds)
	}

	ev := f.fire(t, tm.ID)
	assert.Equal(t, EventCompleted, ev.Kind)
	got := f.load(t, tm.ID)
	assert.Equal(t, store.StateCompleted, got.State)
	assert.Equal(t, got.TotalPhases, got.CurrentPhaseIndex)
	assert.Equal(t, "Sequence finished", ev.Title())

	require.Len(t, f.rec.segs, 4)
	assert.Equal(t, "work", f.rec.segs[0].Label)
	assert.Equal(t, 300, f.rec.segs[1].Seconds)
	assert.True(t, f.rec.segs[3].Sequence)
}

func TestFireIgnoredWhenNotRunning(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tm, _ := f.ctl.Create(ctx, CreateRequest{Input: "10m"})
	_, err := f.ctl.Pause(ctx, tm.ID)
	require.NoError(t, err)

	ev, err := f.ctl.Fire(ctx, tm.ID)
	require.NoError(t, err)
	assert.Equal(t, EventIgnored, ev.Kind)
	assert.Equal(t, store.StatePaused, f.load(t, tm.ID).State)
	assert.Empty(t, f.rec.segs)
}

func TestFireUnknown(t *testing.T) {
	f := setup(t)
	_, err := f.ctl.Fire(context.Background(), "42")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ============================================================
// Pause / Resume
// ============================================================

func TestPauseResumePreservesRemaining(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tm, _ := f.ctl.Create(ctx, CreateRequest{Input: "10m"})

	f.clock.AdvanceSeconds(240)
	res, err := f.ctl.Pause(ctx, tm.ID)
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.NoError(t, res[0].Err)

	got := f.load(t, tm.ID)
	assert.Equal(t, store.StatePaused, got.State)
	require.NotNil(t, got.RemainingSeconds)
	assert.Equal(t, 360, *got.RemainingSeconds)
	assert.NotContains(t, f.sched.jobs, tm.ID)

	f.clock.Advance(time.Hour)
	res, err = f.ctl.Resume(ctx, tm.ID)
	require.NoError(t, err)
	require.NoError(t, res[0].Err)

	got = f.load(t, tm.ID)
	assert.Equal(t, store.StateRunning, got.State)
	assert.Nil(t, got.RemainingSeconds)
	assert.Equal(t, 360*time.Second, got.EndTime.Sub(got.StartTime.Time))
	assert.Equal(t, 360*time.Second, f.sched.jobs[tm.ID])

	ev := f.fire(t, tm.ID)
	assert.Equal(t, EventCompleted, ev.Kind)
}

func TestPauseInvalidTransition(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tm, _ := f.ctl.Create(ctx, CreateRequest{Input: "10m"})
	_, _ = f.ctl.Pause(ctx, tm.ID)

	res, err := f.ctl.Pause(ctx, tm.ID)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.ErrorIs(t, res[0].Err, ErrInvalidTransition)

	res, err = f.ctl.Resume(ctx, tm.ID)
	require.NoError(t, err)
	require.NoError(t, res[0].Err)

	res, err = f.ctl.Resume(ctx, tm.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, res[0].Err, ErrInvalidTransition)
}

func TestPauseUnknownID(t *testing.T) {
	f := setup(t)
	_, err := f.ctl.Pause(context.Background(), "9")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.ctl.Resume(context.Background(), "9")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.ctl.Remove(context.Background(), "9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPauseResumeAll(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for _, in := range []string{"1m", "2m", "3m"} {
		_, err := f.ctl.Create(ctx, CreateRequest{Input: in})
		require.NoError(t, err)
	}
	_, _ = f.ctl.Pause(ctx, "2")

	res, err := f.ctl.Pause(ctx, TargetAll)
	require.NoError(t, err)
	assert.Len(t, res, 2, "only running timers are paused by all")
	for _, id := range []string{"1", "2", "3"} {
		assert.Equal(t, store.StatePaused, f.load(t, id).State)
	}

	res, err = f.ctl.Resume(ctx, TargetAll)
	require.NoError(t, err)
	assert.Len(t, res, 3)
	assert.Len(t, f.sched.jobs, 3)
}

func TestPauseAtZeroResumesIntoNextSegment(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tm, _ := f.ctl.Create(ctx, CreateRequest{Input: "(1m a, 2m b)"})

	f.clock.AdvanceSeconds(90)
	_, err := f.ctl.Pause(ctx, tm.ID)
	require.NoError(t, err)
	got := f.load(t, tm.ID)
	require.NotNil(t, got.RemainingSeconds)
	assert.Equal(t, 0, *got.RemainingSeconds)

	_, err = f.ctl.Resume(ctx, tm.ID)
	require.NoError(t, err)
	got = f.load(t, tm.ID)
	assert.Equal(t, store.StateRunning, got.State)
	assert.Equal(t, 1, got.CurrentPhaseIndex)
	assert.Equal(t, "b", got.CurrentPhaseLabel)
	assert.Equal(t, 120*time.Second, f.sched.jobs[tm.ID])

	require.Len(t, f.rec.segs, 1, "the elapsed segment is recorded")
	assert.Equal(t, "a", f.rec.segs[0].Label)
	assert.Equal(t, 60, f.rec.segs[0].Seconds)
}

func TestSequencePauseKeepsPhase(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tm, _ := f.ctl.Create(ctx, CreateRequest{Input: "(25m work, 5m rest)x2"})
	f.fire(t, tm.ID)

	f.clock.AdvanceSeconds(60)
	_, err := f.ctl.Pause(ctx, tm.ID)
	require.NoError(t, err)
	_, err = f.ctl.Resume(ctx, tm.ID)
	require.NoError(t, err)

	got := f.load(t, tm.ID)
	assert.Equal(t, 1, got.CurrentPhaseIndex)
	assert.Equal(t, 300, got.Seconds)
	assert.Equal(t, 240*time.Second, got.EndTime.Sub(got.StartTime.Time))
}

// ============================================================
// Remove
// ============================================================

func TestRemoveLastDeletesFile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tm, _ := f.ctl.Create(ctx, CreateRequest{Input: "5m"})

	res, err := f.ctl.Remove(ctx, tm.ID)
	require.NoError(t, err)
	assert.Len(t, res, 1)

	ok, _ := afero.Exists(f.fs, statePath)
	assert.False(t, ok)
	assert.Empty(t, f.sched.jobs)
}

func TestRemoveDone(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a, _ := f.ctl.Create(ctx, CreateRequest{Input: "1m"})
	b, _ := f.ctl.Create(ctx, CreateRequest{Input: "2m"})
	f.fire(t, a.ID)

	res, err := f.ctl.Remove(ctx, TargetDone)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, a.ID, res[0].ID)

	timers, _ := f.st.Load()
	require.Len(t, timers, 1)
	assert.Equal(t, b.ID, timers[0].ID)

	res, err = f.ctl.Remove(ctx, TargetDone)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestRemoveAll(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = f.ctl.Create(ctx, CreateRequest{Input: "1m"})
	}
	res, err := f.ctl.Remove(ctx, TargetAll)
	require.NoError(t, err)
	assert.Len(t, res, 3)
	ok, _ := afero.Exists(f.fs, statePath)
	assert.False(t, ok)
}

// ============================================================
// Sync / List
// ============================================================

func TestSyncMarksLost(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := store.New(fs, statePath, nil)
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	ctl := New(st, NopScheduler{}, nil, WithClock(clock.Now))
	ctx := context.Background()

	tm, err := ctl.Create(ctx, CreateRequest{Input: "5m"})
	require.NoError(t, err)

	n, err := ctl.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "not lost before its end time")

	clock.AdvanceSeconds(301)
	n, err = ctl.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	timers, _ := st.Load()
	got := timers[store.Find(timers, tm.ID)]
	assert.Equal(t, store.StateLost, got.State)
	require.NotNil(t, got.RemainingSeconds)
	assert.Equal(t, 0, *got.RemainingSeconds)

	res, err := ctl.Resume(ctx, tm.ID)
	require.NoError(t, err)
	require.NoError(t, res[0].Err)
	timers, _ = st.Load()
	got = timers[0]
	assert.Equal(t, store.StateRunning, got.State)
	assert.Equal(t, 300*time.Second, got.EndTime.Sub(got.StartTime.Time), "lost timers restart the full segment")
}

func TestSyncLeavesScheduledTimers(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tm, _ := f.ctl.Create(ctx, CreateRequest{Input: "5m"})
	f.clock.Advance(time.Hour)

	n, err := f.ctl.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, store.StateRunning, f.load(t, tm.ID).State)
}

func TestSyncSkipsFailedLookups(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tm, _ := f.ctl.Create(ctx, CreateRequest{Input: "5m"})
	f.sched.claim(tm.ID)
	f.sched.existsErr = errors.New("database is locked")
	f.clock.Advance(time.Hour)

	n, err := f.ctl.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, store.StateRunning, f.load(t, tm.ID).State)

	f.sched.existsErr = nil
	n, err = f.ctl.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSyncDoesNotWriteWhenUnchanged(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, _ = f.ctl.Create(ctx, CreateRequest{Input: "5m"})
	info, err := f.fs.Stat(statePath)
	require.NoError(t, err)

	old := info.ModTime().Add(-time.Hour)
	require.NoError(t, f.fs.Chtimes(statePath, old, old))

	_, err = f.ctl.Sync(ctx)
	require.NoError(t, err)
	info, _ = f.fs.Stat(statePath)
	assert.True(t, info.ModTime().Equal(old))
}

func TestListOrdersAndFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for i := 0; i < 11; i++ {
		_, _ = f.ctl.Create(ctx, CreateRequest{Input: "1m"})
	}
	f.fire(t, "5")

	list, err := f.ctl.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, list, 10)
	assert.Equal(t, "1", list[0].Timer.ID)
	assert.Equal(t, "2", list[1].Timer.ID)
	assert.Equal(t, "11", list[9].Timer.ID)

	all, err := f.ctl.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 11)
	assert.Equal(t, "5", all[4].Timer.ID)
	assert.Equal(t, 100.0, all[4].Progress)
}

func TestGet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tm, _ := f.ctl.Create(ctx, CreateRequest{Input: "10m"})
	fired := f.clock.now.Add(time.Minute)
	f.sched.fired[tm.ID] = fired
	f.clock.AdvanceSeconds(150)

	st, err := f.ctl.Get(ctx, tm.ID)
	require.NoError(t, err)
	assert.Equal(t, 450, st.Remaining)
	assert.InDelta(t, 25.0, st.Progress, 0.001)
	assert.Equal(t, fired, st.LastFiredAt)

	_, err = f.ctl.Get(ctx, "99")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ============================================================
// Progress
// ============================================================

func TestProgress(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	base := store.Timer{
		Seconds:   100,
		StartTime: store.At(start),
		EndTime:   store.At(start.Add(100 * time.Second)),
		State:     store.StateRunning,
	}
	ptr := func(n int) *int { return &n }

	tests := []struct {
		name string
		mod  func(*store.Timer)
		now  time.Time
		want float64
	}{
		{"running start", func(*store.Timer) {}, start, 0},
		{"running midway", func(*store.Timer) {}, start.Add(40 * time.Second), 40},
		{"running past end", func(*store.Timer) {}, start.Add(time.Hour), 100},
		{"running before start", func(*store.Timer) {}, start.Add(-time.Hour), 0},
		{"paused", func(t *store.Timer) { t.State = store.StatePaused; t.RemainingSeconds = ptr(25) }, start, 75},
		{"paused no remaining", func(t *store.Timer) { t.State = store.StatePaused }, start, 0},
		{"lost at zero", func(t *store.Timer) { t.State = store.StateLost; t.RemainingSeconds = ptr(0) }, start, 100},
		{"completed", func(t *store.Timer) { t.State = store.StateCompleted }, start, 100},
		{"unknown", func(t *store.Timer) { t.State = "Snoozed" }, start, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := base
			tt.mod(&tm)
			assert.InDelta(t, tt.want, Progress(&tm, tt.now), 0.001)
		})
	}
}

func TestEventText(t *testing.T) {
	f := setup(t)
	tm, _ := f.ctl.Create(context.Background(), CreateRequest{Input: "1m", Message: "tea", Repeat: 2})
	ev := f.fire(t, tm.ID)
	assert.Equal(t, "tea", ev.Title())
	assert.Equal(t, "Run 2 of 2 started", ev.Body())
	assert.Equal(t, "advanced", ev.Kind.String())

	ev = f.fire(t, tm.ID)
	assert.Equal(t, "Time is up", ev.Body())
}
