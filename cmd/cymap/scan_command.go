package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cymap/internal/ledger"
	"cymap/internal/scanner"
	"cymap/internal/state"
	"cymap/internal/transcripts"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var backlogDays int
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Discover and register recordings",
		Long: `Discover recordings and register them in the day's state document.

With no flags the scanner runs continuously, polling today's directories.
--backlog scans the last N days once, oldest first. --date scans a single
calendar date once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			ts := transcripts.NewStore(cfg.Paths.TranscriptDir, logger)
			scn := scanner.New(cfg,
				state.NewStore(cfg.Paths.StatesDir, logger),
				ledger.New(cfg.Paths.QueueFile, logger),
				ts,
				logger,
			)

			sigCtx, cancel := signalContext()
			defer cancel()

			switch {
			case dateFlag != "":
				day, err := time.ParseInLocation("2006-01-02", dateFlag, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", dateFlag)
				}
				_, err = scn.ScanDate(sigCtx, day)
				return err
			case backlogDays > 0:
				return scn.Backfill(sigCtx, backlogDays)
			default:
				return scn.Run(sigCtx)
			}
		},
	}

	cmd.Flags().IntVar(&backlogDays, "backlog", 0, "Scan the last N days once instead of monitoring")
	cmd.Flags().StringVar(&dateFlag, "date", "", "Scan a single date (YYYY-MM-DD) once")
	cmd.MarkFlagsMutuallyExclusive("backlog", "date")
	return cmd
}
