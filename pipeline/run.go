package pipeline

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/carbocation/growthcurve/config"
	"github.com/carbocation/growthcurve/plate"
	"github.com/carbocation/growthcurve/series"
)

// Result is everything one run produces. Nothing in it is shared with the
// inputs.
type Result struct {
	Records  []Record
	Baseline Baseline
	Stats    []GroupStat

	// Corrected is true when a baseline was found and subtracted.
	Corrected bool
	MinHours  float64

	Series   *series.Table
	Warnings []string
}

// Run executes the whole pipeline for one layout and one export.
// series.ErrHeaderNotFound and read errors abort the run; missing blanks,
// unparsable rows and unmatched wells only produce warnings.
func Run(layout plate.Layout, export io.Reader, cfg config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tbl, err := series.Load(export, layout.Wells(), series.Options{WallClock: cfg.WallClock})
	if err != nil {
		return nil, err
	}

	out := &Result{Series: tbl, MinHours: math.NaN()}

	if tbl.DroppedRows > 0 {
		out.Warnings = append(out.Warnings, fmt.Sprintf("%d row(s) with unparsable timestamps were dropped", tbl.DroppedRows))
	}
	if tbl.SkippedCells > 0 {
		out.Warnings = append(out.Warnings, fmt.Sprintf("%d non-numeric OD value(s) were ignored", tbl.SkippedCells))
	}

	records := Merge(tbl.Readings, layout)
	if len(records) == 0 {
		out.Warnings = append(out.Warnings, "no readings matched a well in the layout")
	} else {
		out.MinHours = records[0].Hours
	}

	if cfg.ApplyBlankCorrection {
		corrected, baseline, err := CorrectBlanks(records, cfg)
		switch {
		case errors.Is(err, ErrNoBlanks):
			out.Warnings = append(out.Warnings, ErrNoBlanks.Error()+"; values are uncorrected")
		case err != nil:
			return nil, err
		default:
			out.Corrected = true
			out.Baseline = baseline
		}
		records = corrected
	}

	out.Records = records

	out.Stats, err = Aggregate(records, cfg)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Groups returns the distinct groups present in the statistics, sorted.
func Groups(stats []GroupStat) []string {
	seen := make(map[string]struct{})
	for _, s := range stats {
		seen[s.Group] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)

	return out
}

// SelectGroups decides which groups to plot. An explicit selection wins
// (names with no data are reported as warnings). Otherwise every group is
// plotted, except blanks when blank correction is on.
func SelectGroups(stats []GroupStat, cfg config.Config) (selected []string, warnings []string) {
	all := Groups(stats)

	if len(cfg.SelectedGroups) > 0 {
		present := make(map[string]struct{}, len(all))
		for _, g := range all {
			present[g] = struct{}{}
		}

		for _, g := range cfg.SelectedGroups {
			if _, ok := present[g]; !ok {
				warnings = append(warnings, fmt.Sprintf("selected group %q has no data", g))
				continue
			}
			selected = append(selected, g)
		}

		return selected, warnings
	}

	for _, g := range all {
		if cfg.ApplyBlankCorrection && plate.IsBlank(g) {
			continue
		}
		selected = append(selected, g)
	}

	return selected, warnings
}
