package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/sadopc/tock/internal/queue"
)

type jsonExport struct {
	ExportedAt   string        `json:"exported_at"`
	Count        int           `json:"count"`
	TotalSeconds int64         `json:"total_seconds"`
	Segments     []jsonSegment `json:"segments"`
}

type jsonSegment struct {
	ID          int64  `json:"id"`
	TimerID     string `json:"timer_id"`
	Label       string `json:"label"`
	FinishedAt  string `json:"finished_at"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
	Sequence    bool   `json:"sequence"`
}

func ToJSON(fs afero.Fs, segs []queue.SegmentRecord, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(segs),
		Segments:   []jsonSegment{},
	}

	for _, s := range segs {
		export.TotalSeconds += s.Seconds
		export.Segments = append(export.Segments, jsonSegment{
			ID:          s.ID,
			TimerID:     s.TimerID,
			Label:       s.Label,
			FinishedAt:  s.FinishedAt.Local().Format(time.RFC3339),
			DurationSec: s.Seconds,
			Duration:    formatDuration(s.Seconds),
			Sequence:    s.Sequence,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
