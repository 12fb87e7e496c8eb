package export

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/sadopc/tock/internal/queue"
)

func sampleData() []queue.SegmentRecord {
	at := time.Date(2026, 3, 1, 9, 25, 0, 0, time.UTC)
	return []queue.SegmentRecord{
		{ID: 1, TimerID: "1", Label: "work", Seconds: 1500, Sequence: true, FinishedAt: at},
		{ID: 2, TimerID: "1", Label: "rest", Seconds: 300, Sequence: true, FinishedAt: at.Add(5 * time.Minute)},
		{ID: 3, TimerID: "2", Label: "tea", Seconds: 3600, FinishedAt: at.Add(2 * time.Hour)},
	}
}

func readCSV(t *testing.T, fs afero.Fs, path string) [][]string {
	t.Helper()
	f, err := fs.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func readJSON(t *testing.T, fs afero.Fs, path string) jsonExport {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatal(err)
	}
	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	return result
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := ToCSV(fs, sampleData(), "/out/test.csv"); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	records := readCSV(t, fs, "/out/test.csv")
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	expectedHeader := []string{"ID", "Timer", "Label", "Finished", "Duration (s)", "Duration", "Sequence"}
	for i, h := range expectedHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	row := records[1]
	if row[0] != "1" || row[1] != "1" || row[2] != "work" {
		t.Fatalf("unexpected row %v", row)
	}
	if row[4] != "1500" {
		t.Fatalf("Duration (s) = %q, want 1500", row[4])
	}
	if row[5] != "00:25:00" {
		t.Fatalf("Duration = %q, want 00:25:00", row[5])
	}
	if row[6] != "true" {
		t.Fatalf("Sequence = %q, want true", row[6])
	}
	if records[3][6] != "false" {
		t.Fatalf("simple timer should not be a sequence: %q", records[3][6])
	}
	if _, err := time.Parse(time.RFC3339, row[3]); err != nil {
		t.Fatalf("finished is not RFC3339: %q", row[3])
	}
}

func TestToCSVEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := ToCSV(fs, nil, "/empty.csv"); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, fs, "/empty.csv"); len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	fs := afero.NewMemMapFs()
	segs := []queue.SegmentRecord{
		{ID: 1, TimerID: "4", Label: `call "mom", then rest`, Seconds: 60, FinishedAt: time.Now()},
	}
	if err := ToCSV(fs, segs, "/special.csv"); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, fs, "/special.csv")
	if records[1][2] != `call "mom", then rest` {
		t.Fatalf("label mangled: %q", records[1][2])
	}
}

func TestToCSVBadPath(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	if err := ToCSV(fs, nil, "/file.csv"); err == nil {
		t.Fatal("expected error for read-only filesystem")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := ToJSON(fs, sampleData(), "/test.json"); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	result := readJSON(t, fs, "/test.json")
	if result.Count != 3 || len(result.Segments) != 3 {
		t.Fatalf("count = %d, segments = %d, want 3", result.Count, len(result.Segments))
	}
	if result.TotalSeconds != 5400 {
		t.Fatalf("total_seconds = %d, want 5400", result.TotalSeconds)
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}

	s := result.Segments[2]
	if s.ID != 3 || s.TimerID != "2" || s.Label != "tea" {
		t.Fatalf("unexpected segment %+v", s)
	}
	if s.DurationSec != 3600 || s.Duration != "01:00:00" {
		t.Fatalf("duration = %d/%q", s.DurationSec, s.Duration)
	}
	if s.Sequence {
		t.Fatal("simple timer marked as sequence")
	}
	for _, seg := range result.Segments {
		if _, err := time.Parse(time.RFC3339, seg.FinishedAt); err != nil {
			t.Fatalf("finished_at is not valid RFC3339: %q", seg.FinishedAt)
		}
	}
}

func TestToJSONEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := ToJSON(fs, nil, "/empty.json"); err != nil {
		t.Fatal(err)
	}

	data, _ := afero.ReadFile(fs, "/empty.json")
	if !strings.Contains(string(data), `"segments": []`) {
		t.Fatalf("empty export should carry an empty list:\n%s", data)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be indented")
	}
}

func TestToJSONBadPath(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	if err := ToJSON(fs, nil, "/file.json"); err == nil {
		t.Fatal("expected error for read-only filesystem")
	}
}

// ============================================================
// Write
// ============================================================

func TestWriteByExtension(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := Write(fs, sampleData(), "/a.CSV"); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, fs, "/a.CSV"); len(records) != 4 {
		t.Fatalf("csv rows = %d", len(records))
	}
	if err := Write(fs, sampleData(), "/a.json"); err != nil {
		t.Fatal(err)
	}
	if r := readJSON(t, fs, "/a.json"); r.Count != 3 {
		t.Fatalf("json count = %d", r.Count)
	}
	if err := Write(fs, sampleData(), "/a.xlsx"); err == nil {
		t.Fatal("unknown extension should fail")
	}
}

// ============================================================
// formatDuration (internal helper)
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{1, "00:00:01"},
		{60, "00:01:00"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{86400, "24:00:00"},
		{90061, "25:01:01"},
	}

	for _, tt := range tests {
		got := formatDuration(tt.secs)
		if got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
