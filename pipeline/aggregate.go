package pipeline

import (
	"math"
	"sort"

	"github.com/carbocation/growthcurve/config"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// GroupStat summarises every well of one group at one timepoint. Field order
// is the column order of the exported table.
type GroupStat struct {
	Group  string  `csv:"Group"`
	Hours  float64 `csv:"Hours"`
	Mean   float64 `csv:"mean"`
	Std    float64 `csv:"std"`
	Median float64 `csv:"median"`
	Count  int     `csv:"count"`
	SEM    float64 `csv:"sem"`
}

type groupKey struct {
	Group string
	Hours float64
}

// Aggregate computes count, mean, median, standard deviation and standard
// error per (group, hours). A single observation has zero spread. Output is
// sorted by hours, then group.
func Aggregate(records []Record, cfg config.Config) ([]GroupStat, error) {
	values := make(map[groupKey][]float64)
	for _, r := range records {
		k := groupKey{Group: r.Group, Hours: r.Hours}
		values[k] = append(values[k], r.OD)
	}

	out := make([]GroupStat, 0, len(values))
	for k, v := range values {
		median, err := stats.Median(v)
		if err != nil {
			return nil, err
		}

		sd, err := stdDev(v, cfg.SampleStd)
		if err != nil {
			return nil, err
		}

		out = append(out, GroupStat{
			Group:  k.Group,
			Hours:  k.Hours,
			Mean:   stat.Mean(v, nil),
			Std:    sd,
			Median: median,
			Count:  len(v),
			SEM:    sd / math.Sqrt(float64(len(v))),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours < out[j].Hours
		}
		return out[i].Group < out[j].Group
	})

	return out, nil
}

func stdDev(v []float64, sample bool) (float64, error) {
	if len(v) < 2 {
		return 0, nil
	}

	if sample {
		return stat.StdDev(v, nil), nil
	}

	return stats.StandardDeviationPopulation(v)
}
