package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mcf/internal/ui"
	"mcf/pkg/config"
)

func newTelemetryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telemetry",
		Short: "Manage run history recording",
	}

	cmd.AddCommand(newTelemetryToggleCmd(a, true))
	cmd.AddCommand(newTelemetryToggleCmd(a, false))
	return cmd
}

func newTelemetryToggleCmd(a *app, enabled bool) *cobra.Command {
	use, short := "disable", "Stop recording template runs"
	if enabled {
		use, short = "enable", "Record template runs in the local history database"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configFile()
			cfg, err := config.LoadConfig(path)
			if err != nil {
				return err
			}

			cfg.Telemetry.Enabled = enabled
			if err := config.WriteConfig(path, cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			out := cmd.OutOrStdout()
			if enabled {
				fmt.Fprintln(out, ui.Success("✅ Run history enabled"))
				fmt.Fprintf(out, "Runs are stored locally in %s\n", cfg.Telemetry.DBPath)
				return nil
			}
			fmt.Fprintln(out, ui.Success("✅ Run history disabled"))
			return nil
		},
	}
}
