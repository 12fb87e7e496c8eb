package cli

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/tock/internal/store"
	"github.com/sadopc/tock/internal/timer"
	"github.com/sadopc/tock/internal/tui"
)

func newCreateCmd(a *app) *cobra.Command {
	var repeat int

	cmd := &cobra.Command{
		Use:     "new [duration|pattern|preset] [message]",
		Aliases: []string{"start"},
		Short:   "Start a timer or a sequence",
		Long: `Start a countdown timer.

  tock new 25m tea               simple timer with a message
  tock new 10m -r 3              repeat the same duration three times
  tock new "(25m work, 5m rest)x4"
  tock new pomodoro "morning"    preset with a title

Without arguments an interactive form is shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req timer.CreateRequest
			if len(args) == 0 {
				r, err := tui.RunCreateForm(a.ctl.Presets())
				if errors.Is(err, tui.ErrCancelled) {
					return nil
				}
				if err != nil {
					return err
				}
				req = r
			} else {
				req = timer.CreateRequest{
					Input:   args[0],
					Message: strings.Join(args[1:], " "),
					Repeat:  repeat,
				}
			}

			t, err := a.ctl.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), describeCreated(t))
			a.ensureDaemon(cmd.Context())
			return nil
		},
	}

	cmd.Flags().IntVarP(&repeat, "repeat", "r", 1, "number of times to run a simple timer")
	return cmd
}

func describeCreated(t *store.Timer) string {
	if t.IsSequence {
		name := t.Title
		if name == "" {
			name = t.SequencePattern
		}
		return fmt.Sprintf("Started #%s: %s (%d phases, %s total, first: %s)",
			t.ID, name, t.TotalPhases, t.DurationText, t.CurrentPhaseLabel)
	}
	s := fmt.Sprintf("Started #%s: %s (%s)", t.ID, t.Message, t.DurationText)
	if t.RepeatTotal > 1 {
		s += fmt.Sprintf(" x%d", t.RepeatTotal)
	}
	return s
}

func newListCmd(a *app) *cobra.Command {
	var all, watch bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List timers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return a.watch(cmd, "", all)
			}
			statuses, err := a.ctl.List(cmd.Context(), all)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderList(statuses, 0))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include completed timers")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep refreshing until a key is pressed")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "watch [id]",
		Short: "Show live countdowns",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return a.watch(cmd, id, all)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include completed timers")
	return cmd
}

func (a *app) watch(cmd *cobra.Command, id string, all bool) error {
	if _, err := a.ctl.Sync(cmd.Context()); err != nil {
		return err
	}
	if id != "" {
		if _, err := a.ctl.Get(cmd.Context(), id); err != nil {
			return err
		}
	}
	m := tui.NewWatch(a.store, tui.WatchID(id), tui.WatchAll(all))
	_, err := tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
	return err
}

func newPauseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pause <id|all>",
		Short: "Pause a running timer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.ctl.Pause(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No running timers.")
			}
			return report(cmd.OutOrStdout(), cmd.ErrOrStderr(), "Paused", results)
		},
	}
}

func newResumeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resume <id|all>",
		Short: "Resume a paused or lost timer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.ctl.Resume(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No paused timers.")
			}
			for _, r := range results {
				if r.Err == nil {
					a.ensureDaemon(cmd.Context())
					break
				}
			}
			return report(cmd.OutOrStdout(), cmd.ErrOrStderr(), "Resumed", results)
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id|all|done>",
		Aliases: []string{"remove"},
		Short:   "Remove timers",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.ctl.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to remove.")
			}
			return report(cmd.OutOrStdout(), cmd.ErrOrStderr(), "Removed", results)
		},
	}
}
