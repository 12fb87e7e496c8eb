package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ClaimTimeout is how long a claimed job stays hidden from Due. A daemon
// that dies between Claim and Finish leaves the job to be claimed again
// after this.
const ClaimTimeout = time.Minute

// Job is a pending fire for one timer. ID changes whenever the job is
// resubmitted, so a claim on a stale read fails.
type Job struct {
	ID      string
	TimerID string
	DueAt   time.Time
}

// Submit schedules timerID to fire after the delay. A pending job for the
// same timer is replaced.
func (q *Queue) Submit(ctx context.Context, timerID string, after time.Duration) error {
	now := q.now()
	if after < 0 {
		after = 0
	}
	due := now.Add(after)
	jobID := q.newJobID(now)

	err := retryOp(ctx, defaultRetryConfig, func() error {
		_, err := q.db.ExecContext(ctx,
			`INSERT INTO jobs (timer_id, job_id, due_at, created_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(timer_id) DO UPDATE SET job_id = excluded.job_id, due_at = excluded.due_at,
			 created_at = excluded.created_at, claimed_at = NULL`,
			timerID, jobID, formatTime(due), formatTime(now),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("submit job %s: %w", timerID, err)
	}
	return nil
}

func (q *Queue) Cancel(ctx context.Context, timerID string) error {
	err := retryOp(ctx, defaultRetryConfig, func() error {
		_, err := q.db.ExecContext(ctx, `DELETE FROM jobs WHERE timer_id = ?`, timerID)
		return err
	})
	if err != nil {
		return fmt.Errorf("cancel job %s: %w", timerID, err)
	}
	return nil
}

// Exists reports whether timerID has a job, claimed or not.
func (q *Queue) Exists(ctx context.Context, timerID string) (bool, error) {
	var one int
	err := q.db.QueryRowContext(ctx, `SELECT 1 FROM jobs WHERE timer_id = ?`, timerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup job %s: %w", timerID, err)
	}
	return true, nil
}

// Due returns unclaimed jobs due at or before now, earliest first. Jobs
// claimed longer than ClaimTimeout ago count as unclaimed.
func (q *Queue) Due(ctx context.Context) ([]Job, error) {
	now := q.now()
	rows, err := q.db.QueryContext(ctx,
		`SELECT job_id, timer_id, due_at FROM jobs
		 WHERE due_at <= ? AND (claimed_at IS NULL OR claimed_at <= ?)
		 ORDER BY due_at, timer_id`,
		formatTime(now), formatTime(now.Add(-ClaimTimeout)),
	)
	if err != nil {
		return nil, fmt.Errorf("due jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		var due string
		if err := rows.Scan(&j.ID, &j.TimerID, &due); err != nil {
			return nil, err
		}
		j.DueAt = parseTime(due)
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// Claim marks the job as taken if it is still the one that was read. It
// reports false when the job was cancelled, resubmitted or claimed by
// someone else in the meantime. The row stays until Finish, so Exists
// keeps reporting the timer as scheduled while it is being fired.
func (q *Queue) Claim(ctx context.Context, j Job) (bool, error) {
	now := q.now()
	var n int64
	err := retryOp(ctx, defaultRetryConfig, func() error {
		res, err := q.db.ExecContext(ctx,
			`UPDATE jobs SET claimed_at = ?
			 WHERE timer_id = ? AND job_id = ? AND (claimed_at IS NULL OR claimed_at <= ?)`,
			formatTime(now), j.TimerID, j.ID, formatTime(now.Add(-ClaimTimeout)))
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("claim job %s: %w", j.TimerID, err)
	}
	return n == 1, nil
}

// Finish deletes a claimed job once its fire is handled. A job that was
// resubmitted meanwhile has a new ID and is kept.
func (q *Queue) Finish(ctx context.Context, j Job) error {
	err := retryOp(ctx, defaultRetryConfig, func() error {
		_, err := q.db.ExecContext(ctx,
			`DELETE FROM jobs WHERE timer_id = ? AND job_id = ?`, j.TimerID, j.ID)
		return err
	})
	if err != nil {
		return fmt.Errorf("finish job %s: %w", j.TimerID, err)
	}
	return nil
}

// MarkFired records that timerID fired at t.
func (q *Queue) MarkFired(ctx context.Context, timerID string, t time.Time) error {
	err := retryOp(ctx, defaultRetryConfig, func() error {
		_, err := q.db.ExecContext(ctx,
			`INSERT INTO fires (timer_id, fired_at) VALUES (?, ?)
			 ON CONFLICT(timer_id) DO UPDATE SET fired_at = excluded.fired_at`,
			timerID, formatTime(t),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("mark fired %s: %w", timerID, err)
	}
	return nil
}

func (q *Queue) LastFiredAt(ctx context.Context, timerID string) (time.Time, bool, error) {
	var at string
	err := q.db.QueryRowContext(ctx, `SELECT fired_at FROM fires WHERE timer_id = ?`, timerID).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last fired %s: %w", timerID, err)
	}
	return parseTime(at), true, nil
}

// Pending returns the number of pending jobs.
func (q *Queue) Pending(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n)
	return n, err
}
