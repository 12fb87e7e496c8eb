package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/tock/internal/config"
	"github.com/sadopc/tock/internal/export"
	"github.com/sadopc/tock/internal/sequence"
	"github.com/sadopc/tock/internal/tui"
)

func newPresetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List sequence presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPHASES\tTOTAL\tPATTERN\tDESCRIPTION")
			for _, p := range a.ctl.Presets().All() {
				plan, err := sequence.Compile(p.Pattern)
				if err != nil {
					fmt.Fprintf(w, "%s\t-\t-\t%s\tinvalid: %v\n", p.Name, p.Pattern, err)
					continue
				}
				desc := p.Description
				if desc == "" {
					desc = plan.Summary.Description
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
					p.Name, plan.Summary.PhaseCount, plan.Summary.TotalDurationText, p.Pattern, desc)
			}
			return w.Flush()
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	var (
		days       int
		exportPath string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show finished time per day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			from, to := statsRange(time.Now(), days)

			if exportPath != "" {
				segs, err := a.queue.ListSegments(cmd.Context(), from, to)
				if err != nil {
					return err
				}
				if err := export.Write(a.fs, segs, exportPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d segments to %s\n", len(segs), exportPath)
				return nil
			}

			summaries, err := a.queue.GetDailySummary(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderStats(summaries, from, to, 0))
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 7, "number of days to include, ending today")
	cmd.Flags().StringVarP(&exportPath, "export", "e", "", "write segments to a .csv or .json file instead")
	return cmd
}

// statsRange returns [midnight days-1 days ago, next midnight) in local time.
func statsRange(now time.Time, days int) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -(days - 1)), today.AddDate(0, 0, 1)
}

func newConfigCmd(a *app) *cobra.Command {
	var pathOnly bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if pathOnly {
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", path, data)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pathOnly, "path", false, "print only the config file location")
	return cmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipSetup": "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tock %s\n", a.version)
		},
	}
}
