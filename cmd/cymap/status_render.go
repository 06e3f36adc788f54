package main

import (
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"cymap/internal/state"
)

// statusRow is one day of the status report. An unreadable day carries no
// counts; it is rendered as a placeholder row so the operator sees it.
type statusRow struct {
	day        string
	counts     map[state.Status]int
	total      int
	unreadable bool
}

func renderStatusTable(rows []statusRow) string {
	tw := table.NewWriter()
	// Box-drawing only when a human is looking at it.
	if isatty.IsTerminal(os.Stdout.Fd()) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	tw.AppendHeader(table.Row{"Day", "Queued", "Processing", "Processed", "Error", "Missing", "Total"})
	for _, row := range rows {
		if row.unreadable {
			tw.AppendRow(table.Row{row.day, "-", "-", "-", "-", "-", "unreadable"})
			continue
		}
		tw.AppendRow(table.Row{
			row.day,
			strconv.Itoa(row.counts[state.StatusQueue]),
			strconv.Itoa(row.counts[state.StatusProcessing]),
			strconv.Itoa(row.counts[state.StatusProcessed]),
			strconv.Itoa(row.counts[state.StatusError]),
			strconv.Itoa(row.counts[state.StatusMissing]),
			strconv.Itoa(row.total),
		})
	}

	configs := make([]table.ColumnConfig, 0, 6)
	for column := 2; column <= 7; column++ {
		configs = append(configs, table.ColumnConfig{
			Number:      column,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}
