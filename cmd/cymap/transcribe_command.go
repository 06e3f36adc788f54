package main

import (
	"github.com/spf13/cobra"

	"cymap/internal/media"
	"cymap/internal/services/whisper"
	"cymap/internal/state"
	"cymap/internal/transcripts"
	"cymap/internal/worker"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe",
		Short: "Run the transcription worker loop",
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

			w := worker.New(cfg,
				state.NewStore(cfg.Paths.StatesDir, logger),
				transcripts.NewStore(cfg.Paths.TranscriptDir, logger),
				media.NewPreparer(cfg),
				whisper.NewService(cfg),
				logger,
			)

			sigCtx, cancel := signalContext()
			defer cancel()
			return w.Run(sigCtx)
		},
	}
}
