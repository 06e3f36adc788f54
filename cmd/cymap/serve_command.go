package main

import (
	"github.com/spf13/cobra"

	"cymap/internal/locations"
	"cymap/internal/server"
	"cymap/internal/transcripts"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run only the dispatch-log dashboard",
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

			srv := server.New(cfg,
				transcripts.NewStore(cfg.Paths.TranscriptDir, logger),
				locations.NewReader(cfg.Paths.LocationDir),
				logger,
			)

			sigCtx, cancel := signalContext()
			defer cancel()

			if err := srv.Start(sigCtx); err != nil {
				return err
			}
			<-sigCtx.Done()
			srv.Stop()
			return nil
		},
	}
}
