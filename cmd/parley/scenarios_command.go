package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type scenarioListing struct {
	Scenarios []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Description   string `json:"description"`
		CharacterName string `json:"character_name"`
	} `json:"scenarios"`
}

func newScenariosCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List available conversation scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			var listing scenarioListing
			if err := ctx.apiGet("/api/scenarios", "", &listing); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, listing)
			}

			rows := make([][]string, 0, len(listing.Scenarios))
			for _, sc := range listing.Scenarios {
				rows = append(rows, []string{sc.ID, sc.Name, sc.CharacterName, sc.Description})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out,
				[]string{"ID", "Name", "Character", "Description"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}
