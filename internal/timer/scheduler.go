package timer

import (
	"context"
	"time"
)

// Scheduler fires a delayed callback for a timer. Implementations must
// outlive the process that submits the job; the callback itself is bound
// by whatever runs the jobs (see the daemon package), not passed here.
type Scheduler interface {
	// Submit schedules timerID to fire after the delay, replacing any pending
	// job for the same timer.
	Submit(ctx context.Context, timerID string, after time.Duration) error
	// Cancel drops the pending job for timerID, if any.
	Cancel(ctx context.Context, timerID string) error
	// Exists reports whether a job for timerID is pending.
	Exists(ctx context.Context, timerID string) (bool, error)
	// LastFiredAt returns when timerID last fired.
	LastFiredAt(ctx context.Context, timerID string) (time.Time, bool, error)
}

// NopScheduler stands in for a missing scheduler. Nothing ever fires, so
// running timers turn Lost on the next Sync after their end time.
type NopScheduler struct{}

func (NopScheduler) Submit(context.Context, string, time.Duration) error { return nil }
func (NopScheduler) Cancel(context.Context, string) error { return nil }
func (NopScheduler) Exists(context.Context, string) (bool, error) { return false, nil }

func (NopScheduler) LastFiredAt(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

// Segment is one finished stretch of countdown, reported to a Recorder.
type Segment struct {
	TimerID    string
	Label      string
	Seconds    int
	FinishedAt time.Time
	Sequence   bool
}

// Recorder keeps a history of finished segments.
type Recorder interface {
	RecordSegment(ctx context.Context, seg Segment) error
}
