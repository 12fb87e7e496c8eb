package daemon

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Liveness reports whether a daemon heartbeat is recent.
type Liveness interface {
	Alive(ctx context.Context, maxAge time.Duration) (bool, error)
}

// EnsureRunning starts a detached "daemon" subcommand, followed by args,
// when none has beaten within three poll intervals. It returns the new pid,
// or 0 if one was already running.
func EnsureRunning(ctx context.Context, live Liveness, interval time.Duration, logPath string, args ...string) (int, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	alive, err := live.Alive(ctx, 3*interval)
	if err != nil {
		return 0, err
	}
	if alive {
		return 0, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("find executable: %w", err)
	}
	return Spawn(exe, append([]string{"daemon"}, args...), logPath)
}

// Spawn starts exe detached from the current session, appending its output
// to logPath (or discarding it when logPath is empty).
func Spawn(exe string, args []string, logPath string) (int, error) {
	cmd := exec.Command(exe, args...)
	cmd.SysProcAttr = detachAttr()

	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return 0, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return 0, fmt.Errorf("open daemon log: %w", err)
		}
		defer f.Close()
		cmd.Stdout = f
		cmd.Stderr = f
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start daemon: %w", err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("release daemon: %w", err)
	}
	return pid, nil
}
