package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"mcf/internal/ui"
)

func newAddCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Add a template document to the template directory",
		Long: `Validate a JSON or YAML template document and save it to the template directory.

Examples:
  mcf add ./react-app.json
  mcf add ./service.yaml --name go-service`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.store(cmd)
			if err != nil {
				return err
			}

			t, err := store.Import(args[0], name)
			if err != nil {
				return err
			}

			path := filepath.Join(store.Dir(), t.ID+".json")
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("✅ Template saved: %s", path)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Identifier to save the template under (default file name)")
	return cmd
}
