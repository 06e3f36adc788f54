package main

import (
	"github.com/spf13/cobra"

	"cymap/internal/daemon"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the full pipeline: scanner, transcriber, location poller, and dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			d, err := daemon.New(cfg, logger)
			if err != nil {
				return err
			}

			sigCtx, cancel := signalContext()
			defer cancel()

			if err := d.Start(sigCtx); err != nil {
				return err
			}
			<-sigCtx.Done()
			d.Stop()
			return nil
		},
	}
}
