package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"capturedesk/internal/contacts"
)

func newContactsCommand() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:         "contacts [QUERY]",
		Short:       "Search the contact directory by name or phone",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			matches := contacts.Default().Search(query)
			if jsonOut {
				return writeJSON(cmd, matches)
			}
			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintf(out, "No contacts match %q\n", query)
				return nil
			}
			rows := make([][]string, 0, len(matches))
			for _, contact := range matches {
				rows = append(rows, []string{contact.ID, contact.Name, contact.Phone})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Name", "Phone"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output contacts as JSON")
	return cmd
}
