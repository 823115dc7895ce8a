package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// WriteStats writes the statistics table with a header row of
// Group, Hours, mean, std, median, count, sem.
func WriteStats(w io.Writer, stats []GroupStat, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	if err := gocsv.MarshalCSV(&stats, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return err
	}

	cw.Flush()

	return cw.Error()
}

// SummaryTable renders a per-group overview for the terminal: how many
// timepoints were read, over what span, and the final and peak mean OD.
func SummaryTable(stats []GroupStat, groups []string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Group", "Timepoints", "First (h)", "Last (h)", "Final mean", "Peak mean", "Wells"})

	for _, g := range groups {
		var n, wells int
		var first, last, final, peak float64
		for _, s := range stats {
			if s.Group != g {
				continue
			}

			if n == 0 || s.Hours < first {
				first = s.Hours
			}
			if n == 0 || s.Hours >= last {
				last, final = s.Hours, s.Mean
			}
			if n == 0 || s.Mean > peak {
				peak = s.Mean
			}
			if s.Count > wells {
				wells = s.Count
			}
			n++
		}

		if n == 0 {
			continue
		}

		tw.AppendRow(table.Row{
			g,
			n,
			fmt.Sprintf("%.2f", first),
			fmt.Sprintf("%.2f", last),
			fmt.Sprintf("%.4f", final),
			fmt.Sprintf("%.4f", peak),
			wells,
		})
	}

	columnConfigs := make([]table.ColumnConfig, 0, 7)
	for i := 2; i <= 7; i++ {
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
