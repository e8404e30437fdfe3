package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"huella/internal/identity"
)

func newClockingsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "clockings",
		Short: "Show recent attendance clockings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *identity.Store) error {
				clockings, err := store.RecentClockings(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("list clockings: %w", err)
				}
				total, err := store.CountClockings(cmd.Context())
				if err != nil {
					return fmt.Errorf("count clockings: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(clockings) == 0 {
					fmt.Fprintln(out, "No clockings recorded yet.")
					return nil
				}

				rows := make([][]string, 0, len(clockings))
				for _, clocking := range clockings {
					rows = append(rows, []string{
						strconv.FormatInt(clocking.ID, 10),
						clocking.RecordedAt.Local().Format("2006-01-02 15:04:05"),
						clocking.DisplayName,
						clocking.ExternalKey,
					})
				}

				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Recorded At", "Name", "RUT"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				fmt.Fprintf(out, "showing %d of %d clockings\n", len(clockings), total)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of clockings to show")
	return cmd
}
