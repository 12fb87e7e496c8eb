package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sadopc/tock/internal/daemon"
)

func newDaemonCmd(a *app) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Fire scheduled timers in the foreground",
		Long: `Poll the job queue and fire due timers until interrupted.

Commands that schedule work start a detached daemon automatically unless
daemon.autostart is false.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d := daemon.New(a.queue, a.ctl.Fire, daemon.Config{
				PollInterval: a.cfg.Daemon.PollInterval,
				Logger:       a.log.With("component", "daemon"),
				Notifier:     daemon.NewNotifier(a.cfg.Notify.Command, a.log),
			})

			if once {
				n, err := d.RunOnce(ctx)
				if err != nil {
					return err
				}
				pending, err := a.queue.Pending(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Fired %d timers, %d pending\n", n, pending)
				return nil
			}
			return d.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "fire what is due now and exit")
	return cmd
}
