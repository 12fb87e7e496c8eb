// Package cli wires the tock commands to the timer controller.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sadopc/tock/internal/config"
	"github.com/sadopc/tock/internal/daemon"
	"github.com/sadopc/tock/internal/preset"
	"github.com/sadopc/tock/internal/queue"
	"github.com/sadopc/tock/internal/store"
	"github.com/sadopc/tock/internal/timer"
)

// app holds what every command needs. It is built once per invocation in
// the root command's PersistentPreRunE.
type app struct {
	version    string
	configPath string
	verbose    bool

	cfg   *config.Config
	log   *slog.Logger
	fs    afero.Fs
	store *store.Store
	queue *queue.Queue
	ctl   *timer.Controller
	ready bool

	spawn func(ctx context.Context, args []string) (int, error)
}

// Execute runs the command line and returns the process exit code.
func Execute(version string) int {
	a := &app{version: version}
	root := newRootCmd(a)
	defer a.close()

	if err := root.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		return 1
	}
	return 0
}

// errReported means the command already printed its failures.
var errReported = errors.New("command failed")

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tock",
		Short:         "Countdown timers and interval sequences for the terminal",
		Version:       a.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["skipSetup"] == "true" {
				return nil
			}
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newCreateCmd(a),
		newListCmd(a),
		newWatchCmd(a),
		newPauseCmd(a),
		newResumeCmd(a),
		newRemoveCmd(a),
		newPresetsCmd(a),
		newStatsCmd(a),
		newDaemonCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) setup() error {
	if a.ready {
		return nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Level()
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	a.fs = afero.NewOsFs()
	a.store = store.New(a.fs, cfg.StateFile, a.log)

	presets, err := preset.Load(a.fs, cfg.PresetsFile)
	if err != nil {
		return err
	}

	q, err := queue.Open(cfg.DBFile)
	if err != nil {
		return fmt.Errorf("open queue: %w", err)
	}
	a.queue = q

	a.ctl = timer.New(a.store, q, presets,
		timer.WithLogger(a.log),
		timer.WithRecorder(q),
	)
	a.ready = true
	return nil
}

func (a *app) close() {
	if a.queue != nil {
		a.queue.Close()
	}
}

// ensureDaemon starts a background daemon after a command scheduled work.
// Failing to start one is not an error: the timer is already saved and the
// next list marks it Lost.
func (a *app) ensureDaemon(ctx context.Context) {
	if !a.cfg.Daemon.Autostart {
		return
	}
	spawn := a.spawn
	if spawn == nil {
		spawn = func(ctx context.Context, args []string) (int, error) {
			return daemon.EnsureRunning(ctx, a.queue, a.cfg.Daemon.PollInterval, a.cfg.Daemon.LogFile, args...)
		}
	}
	pid, err := spawn(ctx, a.daemonArgs())
	if err != nil {
		a.log.Warn("could not start daemon", "error", err)
		return
	}
	if pid != 0 {
		a.log.Debug("daemon started", "pid", pid)
	}
}

// daemonArgs are the flags a spawned daemon needs to read the same files
// as this process.
func (a *app) daemonArgs() []string {
	var args []string
	if a.configPath != "" {
		if abs, err := filepath.Abs(a.configPath); err == nil {
			args = append(args, "--config", abs)
		} else {
			args = append(args, "--config", a.configPath)
		}
	}
	if a.verbose {
		args = append(args, "--verbose")
	}
	return args
}

// report prints per-timer results and returns errReported if any failed.
func report(out, errOut io.Writer, verb string, results []timer.Result) error {
	failed := false
	for _, r := range results {
		if r.Err != nil {
			failed = true
			fmt.Fprintf(errOut, "#%s: %v\n", r.ID, r.Err)
			continue
		}
		fmt.Fprintf(out, "%s #%s\n", verb, r.ID)
	}
	if failed {
		return errReported
	}
	return nil
}
