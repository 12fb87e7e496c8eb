package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Beat records that the daemon with pid is alive now.
func (q *Queue) Beat(ctx context.Context, pid int) error {
	err := retryOp(ctx, defaultRetryConfig, func() error {
		_, err := q.db.ExecContext(ctx,
			`INSERT INTO heartbeat (id, pid, beat_at) VALUES (1, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET pid = excluded.pid, beat_at = excluded.beat_at`,
			pid, formatTime(q.now()),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}
	return nil
}

// LastBeat returns the last heartbeat. ok is false if no daemon ever ran.
func (q *Queue) LastBeat(ctx context.Context) (at time.Time, pid int, ok bool, err error) {
	var beat string
	err = q.db.QueryRowContext(ctx, `SELECT pid, beat_at FROM heartbeat WHERE id = 1`).Scan(&pid, &beat)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, 0, false, nil
	}
	if err != nil {
		return time.Time{}, 0, false, fmt.Errorf("read heartbeat: %w", err)
	}
	return parseTime(beat), pid, true, nil
}

// Alive reports whether a heartbeat was written within maxAge.
func (q *Queue) Alive(ctx context.Context, maxAge time.Duration) (bool, error) {
	at, _, ok, err := q.LastBeat(ctx)
	if err != nil || !ok {
		return false, err
	}
	return q.now().Sub(at) <= maxAge, nil
}

// ClearBeat removes the heartbeat, for a daemon shutting down cleanly.
func (q *Queue) ClearBeat(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM heartbeat`)
	return err
}
