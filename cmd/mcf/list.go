package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mcf/internal/ui"
	"mcf/pkg/template"
)

func newListCmd(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available templates",
		Long: `List all templates in the template directory, sorted by name.

Examples:
  mcf list
  mcf list --category web`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.store(cmd)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v; using default settings\n", err)
				store = a.defaultStore(cmd)
			}

			templates, problems := store.List()
			for _, p := range problems {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", p)
			}

			if category != "" {
				templates = filterCategory(templates, category)
			}

			out := cmd.OutOrStdout()
			if len(templates) == 0 {
				fmt.Fprintln(out, "📭 No templates found. Use 'mcf add <file>' to create some!")
				return nil
			}

			fmt.Fprintln(out, ui.Title("📁 Available Templates:"))
			fmt.Fprintln(out)
			for _, t := range templates {
				description := t.Description
				if description == "" {
					description = "No description"
				}
				fmt.Fprintf(out, "  %-15s - %s\n", t.Name, description)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, ui.Muted(fmt.Sprintf("Total: %d templates", len(templates))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only list templates in this category")
	return cmd
}

func filterCategory(templates []*template.Template, category string) []*template.Template {
	var out []*template.Template
	for _, t := range templates {
		if t.DisplayCategory() == category {
			out = append(out, t)
		}
	}
	return out
}
