package main

import (
	"fmt"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mcf/pkg/telemetry"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit int
		since time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent template runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openTelemetryDB(a)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := recentRuns(db, limit, since)
			if err != nil {
				return fmt.Errorf("failed to read run history: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTEMPLATE\tSTATUS\tSTEPS\tDURATION\tSTARTED")
			fmt.Fprintln(w, "----\t--------\t------\t-----\t--------\t-------")
			for _, r := range runs {
				status := "ok"
				if !r.Success {
					status = "failed: " + r.Stage
					if r.FailedStep > 0 {
						status = fmt.Sprintf("failed: step %d", r.FailedStep)
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
					truncate(r.ID, 8), r.TemplateID, status,
					r.StepsCompleted, r.StepsTotal, r.Duration,
					r.StartedAt.Local().Format("2006-01-02 15:04"),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().DurationVar(&since, "since", 0, "Only show runs started within this duration (e.g. 24h)")
	return cmd
}

// recentRuns returns up to limit runs, newest first, optionally restricted
// to those started within since.
func recentRuns(db *telemetry.TelemetryDB, limit int, since time.Duration) ([]telemetry.Run, error) {
	if since <= 0 {
		return db.RecentRuns(limit)
	}

	runs, err := db.QueryRuns(time.Now().Add(-since))
	if err != nil {
		return nil, err
	}
	slices.Reverse(runs)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func newStatsCmd(a *app) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show template run statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openTelemetryDB(a)
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := db.GetStats(days)
			if err != nil {
				return fmt.Errorf("failed to compute stats: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "📊 Runs in the last %d days: %d\n", days, stats.TotalRuns)
			if stats.TotalRuns == 0 {
				return nil
			}
			fmt.Fprintf(out, "  Success rate: %.1f%%\n", stats.SuccessRate)
			fmt.Fprintf(out, "  Average duration: %s\n", stats.AvgDuration)

			if len(stats.Templates) > 0 {
				fmt.Fprintln(out, "\nTemplates:")
				for _, ts := range stats.Templates {
					fmt.Fprintf(out, "  %-20s %d runs, %d failed\n", ts.TemplateID, ts.Runs, ts.Failures)
				}
			}

			if len(stats.CommonFailures) > 0 {
				fmt.Fprintln(out, "\nFailures by stage:")
				for _, fs := range stats.CommonFailures {
					fmt.Fprintf(out, "  %-24s %d\n", fs.Stage, fs.Count)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Number of days to include")
	return cmd
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
