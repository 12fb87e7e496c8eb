// Package daemon runs scheduled fires in a long-lived background process.
// It polls the job queue, claims each due job and hands it to the timer
// controller, then notifies.
package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/sadopc/tock/internal/queue"
	"github.com/sadopc/tock/internal/timer"
)

// DefaultPollInterval is used when Config.PollInterval is zero.
const DefaultPollInterval = time.Second

// Jobs is the queue surface the daemon needs.
type Jobs interface {
	Due(ctx context.Context) ([]queue.Job, error)
	Claim(ctx context.Context, j queue.Job) (bool, error)
	Finish(ctx context.Context, j queue.Job) error
	MarkFired(ctx context.Context, timerID string, t time.Time) error
	Beat(ctx context.Context, pid int) error
	ClearBeat(ctx context.Context) error
}

// FireFunc handles one fire. It is timer.Controller.Fire in production.
type FireFunc func(ctx context.Context, timerID string) (timer.Event, error)

type Config struct {
	PollInterval time.Duration
	Logger       *slog.Logger
	Notifier     Notifier
	Clock        func() time.Time
}

type Daemon struct {
	jobs     Jobs
	fire     FireFunc
	notify   Notifier
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time
	pid      int
}

func New(jobs Jobs, fire FireFunc, cfg Config) *Daemon {
	d := &Daemon{
		jobs:     jobs,
		fire:     fire,
		notify:   cfg.Notifier,
		interval: cfg.PollInterval,
		log:      cfg.Logger,
		now:      cfg.Clock,
		pid:      os.Getpid(),
	}
	if d.interval <= 0 {
		d.interval = DefaultPollInterval
	}
	if d.log == nil {
		d.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.notify == nil {
		d.notify = LogNotifier{Log: d.log}
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// Run polls until ctx is cancelled. The heartbeat is written on every poll
// and cleared on the way out.
func (d *Daemon) Run(ctx context.Context) error {
	d.log.Info("daemon started", "pid", d.pid, "interval", d.interval)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		d.tick(ctx)
		select {
		case <-ctx.Done():
			cleanup, cancel := context.WithTimeout(context.Background(), time.Second)
			if err := d.jobs.ClearBeat(cleanup); err != nil {
				d.log.Warn("clear heartbeat failed", "err", err)
			}
			cancel()
			d.log.Info("daemon stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (d *Daemon) tick(ctx context.Context) {
	if err := d.jobs.Beat(ctx, d.pid); err != nil {
		d.log.Warn("heartbeat failed", "err", err)
	}
	if _, err := d.RunOnce(ctx); err != nil && ctx.Err() == nil {
		d.log.Error("poll failed", "err", err)
	}
}

func (d *Daemon) finish(ctx context.Context, j queue.Job) {
	if err := d.jobs.Finish(ctx, j); err != nil {
		d.log.Warn("finish job failed", "timer_id", j.TimerID, "err", err)
	}
}

// RunOnce fires every due job and returns how many fires changed a timer.
func (d *Daemon) RunOnce(ctx context.Context) (int, error) {
	jobs, err := d.jobs.Due(ctx)
	if err != nil {
		return 0, err
	}

	fired := 0
	for _, j := range jobs {
		if ctx.Err() != nil {
			return fired, ctx.Err()
		}
		ok, err := d.jobs.Claim(ctx, j)
		if err != nil {
			d.log.Warn("claim failed", "timer_id", j.TimerID, "err", err)
			continue
		}
		if !ok {
			d.log.Debug("job replaced before claim", "timer_id", j.TimerID)
			continue
		}

		ev, err := d.fire(ctx, j.TimerID)
		if errors.Is(err, timer.ErrNotFound) {
			d.log.Debug("fire for removed timer", "timer_id", j.TimerID)
			d.finish(ctx, j)
			continue
		}
		if err != nil {
			// The claim expires after queue.ClaimTimeout and the job is retried.
			d.log.Error("fire failed", "timer_id", j.TimerID, "err", err)
			continue
		}
		d.finish(ctx, j)
		if err := d.jobs.MarkFired(ctx, j.TimerID, d.now()); err != nil {
			d.log.Warn("mark fired failed", "timer_id", j.TimerID, "err", err)
		}
		if ev.Kind == timer.EventIgnored {
			continue
		}

		fired++
		d.log.Info("timer fired", "timer_id", j.TimerID, "state", ev.Timer.State, "kind", ev.Kind)
		if err := d.notify.Notify(ctx, ev); err != nil {
			d.log.Warn("notify failed", "timer_id", j.TimerID, "err", err)
		}
	}
	return fired, nil
}
