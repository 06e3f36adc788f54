package main

import (
	"errors"

	"github.com/spf13/cobra"

	"cymap/internal/locations"
)

func newLocationsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "locations",
		Short: "Run the vehicle location poller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Locations.Enabled {
				return errors.New("location polling is disabled; set locations.enabled in the config")
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			sigCtx, cancel := signalContext()
			defer cancel()
			return locations.NewPoller(cfg, logger).Run(sigCtx)
		},
	}
}
