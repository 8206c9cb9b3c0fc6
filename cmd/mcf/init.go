package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"mcf/internal/runner"
	"mcf/internal/ui"
	"mcf/pkg/shell"
	"mcf/pkg/variables"
)

func newInitCmd(a *app) *cobra.Command {
	var (
		targetDir  string
		vars       []string
		noInput    bool
		plain      bool
		accessible bool
	)

	cmd := &cobra.Command{
		Use:   "init <template-name>",
		Short: "Initialize a project from a template",
		Long: `Initialize a project in the current directory from a template.

Examples:
  mcf init react-app
  mcf init go-service --var name=api --var port=8080
  mcf init go-service --dir ./api --no-input --var name=api`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := parseVars(vars)
			if err != nil {
				return err
			}

			store, cfg, err := a.store(cmd)
			if err != nil {
				return err
			}
			logger := a.logger(cmd.ErrOrStderr())

			var source variables.Source
			if !noInput {
				source = promptSource(cmd, plain, accessible)
			}

			printer := ui.NewPrinter(cmd.OutOrStdout())
			recorder := openRecorder(cfg, logger)
			if recorder != nil {
				defer recorder.Close()
			}

			rcfg := runner.Config{
				Store:     store,
				Collector: variables.NewCollector(variables.NewPresetSource(presets, source), logger),
				Checker:   shell.PathChecker{},
				Shell:     shell.NewExecRunner(cfg.CommandTimeout),
				Reporter:  printer,
				Logger:    logger,
			}
			if recorder != nil {
				rcfg.Recorder = recorder
			}

			res, err := runner.New(rcfg).Run(cmd.Context(), args[0], targetDir)
			if err != nil {
				printer.Failure(res)
				return &silentError{err: err}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetDir, "dir", "d", "", "Target directory (default current directory)")
	cmd.Flags().StringSliceVar(&vars, "var", []string{}, "Template variables (key=value)")
	cmd.Flags().BoolVar(&noInput, "no-input", false, "Never prompt; fail when a variable has no value or default")
	cmd.Flags().BoolVar(&plain, "plain", false, "Use line prompts instead of interactive forms")
	cmd.Flags().BoolVar(&accessible, "accessible", false, "Run interactive forms in accessible mode")
	return cmd
}

func parseVars(vars []string) (map[string]string, error) {
	out := make(map[string]string, len(vars))
	for _, v := range vars {
		parts := strings.SplitN(v, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid --var %q: expected key=value", v)
		}
		out[parts[0]] = parts[1]
	}
	return out, nil
}

// promptSource uses interactive forms on a terminal and line prompts
// otherwise.
func promptSource(cmd *cobra.Command, plain, accessible bool) variables.Source {
	in := cmd.InOrStdin()
	f, ok := in.(*os.File)
	terminal := ok && isatty.IsTerminal(f.Fd())
	return selectSource(terminal, in, cmd.OutOrStdout(), plain, accessible)
}

func selectSource(terminal bool, in io.Reader, out io.Writer, plain, accessible bool) variables.Source {
	if terminal && !plain {
		return &variables.FormSource{Accessible: accessible}
	}
	return variables.NewLineSource(in, out)
}
