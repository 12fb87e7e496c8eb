package export

import (
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/sadopc/tock/internal/queue"
)

// Write exports segments to path, choosing the format from its extension.
func Write(fs afero.Fs, segs []queue.SegmentRecord, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ToCSV(fs, segs, path)
	case ".json":
		return ToJSON(fs, segs, path)
	}
	return fmt.Errorf("export %s: unsupported format, use .csv or .json", path)
}

func ToCSV(fs afero.Fs, segs []queue.SegmentRecord, path string) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{"ID", "Timer", "Label", "Finished", "Duration (s)", "Duration", "Sequence"}); err != nil {
		return err
	}

	for _, s := range segs {
		row := []string{
			fmt.Sprintf("%d", s.ID),
			s.TimerID,
			s.Label,
			s.FinishedAt.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", s.Seconds),
			formatDuration(s.Seconds),
			fmt.Sprintf("%t", s.Sequence),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
