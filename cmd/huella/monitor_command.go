package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"huella/internal/capture"
)

func newMonitorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Watch for fingerprint reader attach and detach events",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			monitor := capture.NewMonitor(logger)
			if err := monitor.Start(runCtx); err != nil {
				return err
			}
			defer monitor.Stop()

			<-runCtx.Done()
			return nil
		},
	}
}
