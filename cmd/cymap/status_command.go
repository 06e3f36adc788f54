package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cymap/internal/logging"
	"cymap/internal/state"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show per-day recording counts by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if days <= 0 {
				days = cfg.Worker.LookbackDays
			}

			store := state.NewStore(cfg.Paths.StatesDir, logging.NewNop())

			now := time.Now()
			var rows []statusRow
			for i := 0; i <= days; i++ {
				day := now.AddDate(0, 0, -i)
				label := day.Format("2006-01-02")

				doc, err := store.Load(day)
				if err != nil {
					if errors.Is(err, state.ErrUnreadable) {
						rows = append(rows, statusRow{day: label, unreadable: true})
					}
					continue
				}
				if len(doc) == 0 {
					continue
				}
				rows = append(rows, statusRow{
					day:    label,
					counts: doc.CountByStatus(),
					total:  len(doc),
				})
			}

			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No state documents in the lookback window.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatusTable(rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Days to report (defaults to the worker lookback window)")
	return cmd
}
