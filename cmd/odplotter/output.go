package main

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/carbocation/growthcurve/config"
	"github.com/carbocation/growthcurve/pipeline"
	"github.com/carbocation/growthcurve/plot"
	"github.com/carbocation/pfx"
)

// writeStats writes to path, or to stdout when path is empty.
func writeStats(path string, stats []pipeline.GroupStat) error {
	if path == "" {
		return pipeline.WriteStats(os.Stdout, stats, ',')
	}

	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	delim := ','
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		delim = '\t'
	}

	if err := pipeline.WriteStats(f, stats, delim); err != nil {
		return pfx.Err(err)
	}

	log.Printf("Wrote %d statistics rows to %s\n", len(stats), path)

	return f.Close()
}

// writePlot skips the chart, with a warning, when nothing is selected.
func writePlot(path string, stats []pipeline.GroupStat, selected []string, cfg config.Config) error {
	if len(selected) == 0 {
		log.Println("Warning:", plot.ErrNoGroups, "- no chart written")
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	err = plot.Render(f, stats, selected, cfg, plot.FormatFromPath(path))
	if errors.Is(err, plot.ErrNoGroups) {
		log.Println("Warning:", err, "- no chart written")
		f.Close()
		return os.Remove(path)
	} else if err != nil {
		return pfx.Err(err)
	}

	log.Printf("Wrote chart of %d group(s) to %s\n", len(selected), path)

	return f.Close()
}

func sortedConditions(b pipeline.Baseline) []string {
	out := make([]string, 0, len(b))
	for k := range b {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}
