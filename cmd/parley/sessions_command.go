package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type sessionListing struct {
	Sessions []struct {
		ID        string    `json:"id"`
		CreatedAt time.Time `json:"created_at"`
		Summary   string    `json:"summary"`
		Analyzed  bool      `json:"analyzed"`
	} `json:"sessions"`
}

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	var token string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List sessions (staff)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(token) == "" {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				token = cfg.Admin.Token
			}

			var listing sessionListing
			if err := ctx.apiGet("/api/admin/sessions", token, &listing); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, listing)
			}

			out := cmd.OutOrStdout()
			if len(listing.Sessions) == 0 {
				fmt.Fprintln(out, "No sessions recorded")
				return nil
			}

			rows := make([][]string, 0, len(listing.Sessions))
			for _, session := range listing.Sessions {
				rows = append(rows, []string{
					session.ID,
					session.CreatedAt.Local().Format("2006-01-02 15:04"),
					session.Summary,
					yesNo(session.Analyzed),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"ID", "Created", "Summary", "Analyzed"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Staff bearer token (defaults to the configured admin token)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
