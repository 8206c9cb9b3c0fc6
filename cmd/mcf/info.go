package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mcf/internal/ui"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <template-name>",
		Short: "Show template information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.store(cmd)
			if err != nil {
				return err
			}

			t, err := store.Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			description := t.Description
			if description == "" {
				description = "No description"
			}

			fmt.Fprintf(out, "📋 Template: %s\n", ui.Title(t.Name))
			fmt.Fprintf(out, "📝 Description: %s\n", description)
			fmt.Fprintf(out, "🏷️  Category: %s\n", t.DisplayCategory())

			if len(t.Prerequisites) > 0 {
				fmt.Fprintf(out, "⚙️  Prerequisites: %s\n", strings.Join(t.Prerequisites, ", "))
			}

			if len(t.Variables) > 0 {
				fmt.Fprintln(out, "🔧 Variables:")
				for _, v := range t.Variables {
					prompt := v.Prompt
					if prompt == "" {
						prompt = "No description"
					}
					fmt.Fprintf(out, "  • %s: %s\n", v.Name, prompt)
				}
			}

			fmt.Fprintf(out, "📋 Steps: %d\n", len(t.Steps))
			return nil
		},
	}
}
