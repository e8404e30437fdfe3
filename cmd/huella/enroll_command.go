package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"huella/internal/attendance"
	"huella/internal/identity"
)

func newEnrollCommand(ctx *commandContext) *cobra.Command {
	var givenName string
	var familyName string
	var externalKey string
	var secondaryCode string

	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Capture a fingerprint and enroll a person",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			sessions, err := ctx.sessionManager(logger)
			if err != nil {
				return err
			}
			stopMonitor := ctx.maybeStartMonitor(cmd.Context(), logger)
			defer stopMonitor()

			return ctx.withStore(func(store *identity.Store) error {
				enroller := attendance.NewEnroller(store, sessions, logger)
				req := attendance.EnrollRequest{
					GivenName:     givenName,
					FamilyName:    familyName,
					ExternalKey:   externalKey,
					SecondaryCode: secondaryCode,
				}
				if err := enroller.Run(cmd.Context(), req); err != nil {
					return errors.New(attendance.Describe(err))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Enrolled %s %s (%s)\n", req.GivenName, req.FamilyName, req.ExternalKey)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&givenName, "given", "", "Given name")
	cmd.Flags().StringVar(&familyName, "family", "", "Family name")
	cmd.Flags().StringVar(&externalKey, "rut", "", "RUT identifying the person")
	cmd.Flags().StringVar(&secondaryCode, "code", "", "Optional secondary code (matrícula)")
	_ = cmd.MarkFlagRequired("given")
	_ = cmd.MarkFlagRequired("family")
	_ = cmd.MarkFlagRequired("rut")

	return cmd
}
