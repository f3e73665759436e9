package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

type daemonStatus struct {
	Running       bool   `json:"running"`
	DatabasePath  string `json:"database_path"`
	Scenarios     int    `json:"scenarios"`
	LLMConfigured bool   `json:"llm_configured"`
	Sessions      int    `json:"sessions"`
	Messages      int    `json:"messages"`
	Analyzed      int    `json:"analyzed"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status daemonStatus
			if err := ctx.apiGet("/api/status", "", &status); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out,
				[]string{"Field", "Value"},
				[][]string{
					{"Running", yesNo(status.Running)},
					{"Database", status.DatabasePath},
					{"Scenarios", strconv.Itoa(status.Scenarios)},
					{"Model API key", yesNo(status.LLMConfigured)},
					{"Sessions", strconv.Itoa(status.Sessions)},
					{"Messages", strconv.Itoa(status.Messages)},
					{"Analyzed", strconv.Itoa(status.Analyzed)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}
