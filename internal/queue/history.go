package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/sadopc/tock/internal/timer"
)

// SegmentRecord is a finished segment as stored.
type SegmentRecord struct {
	ID         int64
	TimerID    string
	Label      string
	Seconds    int64
	Sequence   bool
	FinishedAt time.Time
}

// DailySummary is the total finished time for one label on one day.
type DailySummary struct {
	Date         string // YYYY-MM-DD
	Label        string
	TotalSeconds int64
	Count        int
}

// RecordSegment stores a finished segment.
func (q *Queue) RecordSegment(ctx context.Context, seg timer.Segment) error {
	err := retryOp(ctx, defaultRetryConfig, func() error {
		_, err := q.db.ExecContext(ctx,
			`INSERT INTO segments (timer_id, label, seconds, sequence, finished_at) VALUES (?, ?, ?, ?, ?)`,
			seg.TimerID, seg.Label, seg.Seconds, seg.Sequence, formatTime(seg.FinishedAt),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("record segment %s: %w", seg.TimerID, err)
	}
	return nil
}

// ListSegments returns segments finished in [from, to), oldest first.
func (q *Queue) ListSegments(ctx context.Context, from, to time.Time) ([]SegmentRecord, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, timer_id, label, seconds, sequence, finished_at
		FROM segments
		WHERE finished_at >= ? AND finished_at < ?
		ORDER BY finished_at, id`,
		formatTime(from), formatTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var out []SegmentRecord
	for rows.Next() {
		var r SegmentRecord
		var finished string
		if err := rows.Scan(&r.ID, &r.TimerID, &r.Label, &r.Seconds, &r.Sequence, &finished); err != nil {
			return nil, err
		}
		r.FinishedAt = parseTime(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetDailySummary totals finished segments per UTC day and label.
func (q *Queue) GetDailySummary(ctx context.Context, from, to time.Time) ([]DailySummary, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT date(finished_at) AS day, label, COALESCE(SUM(seconds), 0), COUNT(*)
		FROM segments
		WHERE finished_at >= ? AND finished_at < ?
		GROUP BY day, label
		ORDER BY day, label`,
		formatTime(from), formatTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}
	defer rows.Close()

	var summaries []DailySummary
	for rows.Next() {
		var ds DailySummary
		if err := rows.Scan(&ds.Date, &ds.Label, &ds.TotalSeconds, &ds.Count); err != nil {
			return nil, err
		}
		summaries = append(summaries, ds)
	}
	return summaries, rows.Err()
}
