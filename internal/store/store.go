// Package store persists the timer collection as a single JSON document.
// The file is the only source of truth: every command loads it whole,
// mutates it in memory and writes it back whole.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"
)

// Store reads and writes the timer state file.
//
// There is no locking between processes. Writes go through a temp file and
// rename so readers never see a torn file, but two writers racing on
// load-modify-save still lose one update.
type Store struct {
	fs   afero.Fs
	path string
	log  *slog.Logger

	lastMod time.Time
}

// New returns a store for the state file at path on fs.
func New(fs afero.Fs, path string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{fs: fs, path: path, log: log}
}

// NewMemory returns a store backed by an in-memory filesystem, for tests.
func NewMemory() *Store {
	return New(afero.NewMemMapFs(), "/tock/timers.json", nil)
}

// Path returns the state file location.
func (s *Store) Path() string { return s.path }

// Load returns all stored timers. A missing, empty or corrupt file is
// reported as no timers; only I/O failures are errors.
func (s *Store) Load() ([]Timer, error) {
	info, err := s.fs.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.lastMod = time.Time{}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat state file: %w", err)
	}
	s.lastMod = info.ModTime()

	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var timers []Timer
	if err := json.Unmarshal(data, &timers); err != nil {
		s.log.Warn("state file is corrupt, treating as empty", "path", s.path, "err", err)
		return nil, nil
	}
	return timers, nil
}

// Save replaces the stored collection. Saving no timers removes the file.
func (s *Store) Save(timers []Timer) error {
	if len(timers) == 0 {
		if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove state file: %w", err)
		}
		s.lastMod = time.Time{}
		return nil
	}

	data, err := json.MarshalIndent(timers, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal timers: %w", err)
	}
	if err := writeFileAtomic(s.fs, s.path, data); err != nil {
		return err
	}
	if info, err := s.fs.Stat(s.path); err == nil {
		s.lastMod = info.ModTime()
	}
	return nil
}

// Changed reports whether the file's modification time differs from the one
// seen at the last Load or Save. Watch loops use it to skip a reparse.
func (s *Store) Changed() bool {
	info, err := s.fs.Stat(s.path)
	if err != nil {
		return !s.lastMod.IsZero()
	}
	return !info.ModTime().Equal(s.lastMod)
}

// NextID returns one more than the largest numeric id in timers, or "1".
// Gaps left by removed timers are not reused.
func NextID(timers []Timer) string {
	highest := 0
	for _, t := range timers {
		if n, err := strconv.Atoi(t.ID); err == nil && n > highest {
			highest = n
		}
	}
	return strconv.Itoa(highest + 1)
}

// Find returns the index of the timer with id, or -1.
func Find(timers []Timer, id string) int {
	for i := range timers {
		if timers[i].ID == id {
			return i
		}
	}
	return -1
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp, err := afero.TempFile(fs, dir, ".timers-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer fs.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := fs.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename state file: %w", err)
	}
	return nil
}
