package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/sadopc/tock/internal/timer"
)

// Notifier tells the user about a fire. It runs after the fire is saved.
type Notifier interface {
	Notify(ctx context.Context, ev timer.Event) error
}

// LogNotifier only logs.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, ev timer.Event) error {
	n.Log.Info("notification", "title", ev.Title(), "body", ev.Body(), "timer_id", ev.Timer.ID)
	return nil
}

// ExecNotifier logs and then runs Command with the title and body appended
// as two extra arguments, e.g. "notify-send" or "terminal-notifier -message".
type ExecNotifier struct {
	Command string
	Log     *slog.Logger
}

func (n ExecNotifier) Notify(ctx context.Context, ev timer.Event) error {
	LogNotifier{Log: n.Log}.Notify(ctx, ev)

	fields := strings.Fields(n.Command)
	if len(fields) == 0 {
		return nil
	}
	args := append(fields[1:], ev.Title(), ev.Body())
	cmd := exec.CommandContext(ctx, fields[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("run %s: %w: %s", fields[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// NewNotifier returns an ExecNotifier when command is set, else a LogNotifier.
func NewNotifier(command string, log *slog.Logger) Notifier {
	if strings.TrimSpace(command) == "" {
		return LogNotifier{Log: log}
	}
	return ExecNotifier{Command: command, Log: log}
}
