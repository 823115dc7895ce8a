// Package pipeline turns parsed plate-reader readings into per-group growth
// statistics: join with the layout, subtract blanks, aggregate.
package pipeline

import (
	"sort"

	"github.com/carbocation/growthcurve/plate"
	"github.com/carbocation/growthcurve/series"
)

// Record is a reading joined with the layout entry of its well.
type Record struct {
	Hours      float64
	Well       plate.Well
	OD         float64
	RawOD      float64
	SampleName string
	Group      string
	Condition  string
}

// Merge inner-joins readings with the layout on well. Readings from wells
// that are not in the layout are dropped. The result is stably sorted by
// Hours.
func Merge(readings []series.Reading, layout plate.Layout) []Record {
	out := make([]Record, 0, len(readings))

	for _, r := range readings {
		e, ok := layout.Lookup(r.Well)
		if !ok {
			continue
		}

		out = append(out, Record{
			Hours:      r.Hours,
			Well:       r.Well,
			OD:         r.OD,
			RawOD:      r.OD,
			SampleName: e.SampleName,
			Group:      e.Group,
			Condition:  e.Condition,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Hours < out[j].Hours })

	return out
}
