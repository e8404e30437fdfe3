package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"huella/internal/identity"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List enrolled people",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *identity.Store) error {
				identities, err := store.ListIdentities(cmd.Context())
				if err != nil {
					return fmt.Errorf("list identities: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(identities) == 0 {
					fmt.Fprintln(out, "No one is enrolled yet.")
					return nil
				}

				rows := make([][]string, 0, len(identities))
				for _, ident := range identities {
					rows = append(rows, []string{
						ident.FamilyName,
						ident.GivenName,
						ident.ExternalKey,
						ident.SecondaryCode,
						formatTimestamp(ident.UpdatedAt),
					})
				}

				fmt.Fprintln(out, renderTable(
					[]string{"Family Name", "Given Name", "RUT", "Code", "Updated"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				fmt.Fprintf(out, "%d enrolled\n", len(identities))
				return nil
			})
		},
	}
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}
