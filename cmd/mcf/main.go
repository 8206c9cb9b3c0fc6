package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mcf/pkg/config"
	"mcf/pkg/template"
)

// app holds the global flags shared by every subcommand.
type app struct {
	configPath   string
	templatesDir string
	verbose      bool
}

// silentError marks an error whose details were already printed.
type silentError struct {
	err error
}

func (e *silentError) Error() string { return e.err.Error() }

func (e *silentError) Unwrap() error { return e.err }

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "mcf",
		Short:         "MCF project template engine",
		Long:          `Scaffold projects from declarative templates: collect variables, check prerequisites, and run template steps.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default ~/.mcf/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.templatesDir, "templates-dir", "", "Template directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newInitCmd(a))
	rootCmd.AddCommand(newInfoCmd(a))
	rootCmd.AddCommand(newAddCmd(a))
	rootCmd.AddCommand(newHistoryCmd(a))
	rootCmd.AddCommand(newStatsCmd(a))
	rootCmd.AddCommand(newTelemetryCmd(a))

	return rootCmd
}

func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.templatesDir != "" {
		cfg.TemplatesDir = a.templatesDir
	}
	return cfg, nil
}

func (a *app) configFile() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.DefaultConfigPath()
}

// defaultStore opens the template directory from the default settings,
// honouring --templates-dir.
func (a *app) defaultStore(cmd *cobra.Command) *template.Store {
	dir := config.DefaultTemplatesDir()
	if a.templatesDir != "" {
		dir = a.templatesDir
	}
	return template.NewStore(dir, a.logger(cmd.ErrOrStderr()))
}

func (a *app) logger(w io.Writer) zerolog.Logger {
	level := zerolog.ErrorLevel
	if a.verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func (a *app) store(cmd *cobra.Command) (*template.Store, *config.Config, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return template.NewStore(cfg.TemplatesDir, a.logger(cmd.ErrOrStderr())), cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		var se *silentError
		if !errors.As(err, &se) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
