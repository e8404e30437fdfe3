package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"huella/internal/attendance"
	"huella/internal/identity"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "identify",
		Short: "Capture a fingerprint, match it, and record a clocking",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			sessions, err := ctx.sessionManager(logger)
			if err != nil {
				return err
			}
			receipt, err := ctx.receipt(logger)
			if err != nil {
				return err
			}
			stopMonitor := ctx.maybeStartMonitor(cmd.Context(), logger)
			defer stopMonitor()

			return ctx.withStore(func(store *identity.Store) error {
				identifier := attendance.NewIdentifier(store, sessions, receipt, logger)
				outcome, err := identifier.Run(cmd.Context())
				if err != nil {
					return errors.New(attendance.Describe(err))
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Matched %s (%s) score=%.2f\n", outcome.DisplayName, outcome.ExternalKey, outcome.Score)
				fmt.Fprintf(out, "Clocking recorded: %s\n", yesNo(outcome.Recorded))
				fmt.Fprintf(out, "Receipt printed: %s\n", yesNo(outcome.ReceiptPrinted))
				return nil
			})
		},
	}
}
