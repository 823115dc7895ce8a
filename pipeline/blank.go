package pipeline

import (
	"errors"
	"math"

	"github.com/carbocation/growthcurve/config"
	"github.com/carbocation/growthcurve/plate"
	"gonum.org/v1/gonum/stat"
)

// ErrNoBlanks means correction was requested but no blank well was read at
// the first timepoint. The records are returned uncorrected.
var ErrNoBlanks = errors.New("no blank samples found at the first timepoint")

// Baseline maps a condition to the mean first-timepoint OD of its blanks.
type Baseline map[string]float64

// CorrectBlanks subtracts, from every record, the baseline of its condition.
// The baseline is the mean OD of blank-group records read at the earliest
// time in the whole data set (within cfg.BlankTimeTolerance hours). Records
// whose condition has no blank are left as they are. With cfg.ClipNegative,
// corrected values are floored at zero.
//
// The input is not modified. On ErrNoBlanks the returned records are an
// unmodified copy of the input.
func CorrectBlanks(records []Record, cfg config.Config) ([]Record, Baseline, error) {
	out := make([]Record, len(records))
	copy(out, records)

	if len(records) == 0 {
		return out, nil, ErrNoBlanks
	}

	minHours := math.Inf(1)
	for _, r := range records {
		if r.Hours < minHours {
			minHours = r.Hours
		}
	}

	byCondition := make(map[string][]float64)
	for _, r := range records {
		if !plate.IsBlank(r.Group) || math.Abs(r.Hours-minHours) > cfg.BlankTimeTolerance {
			continue
		}

		cond := plate.ConditionOf(r.Group)
		byCondition[cond] = append(byCondition[cond], r.OD)
	}

	if len(byCondition) == 0 {
		return out, nil, ErrNoBlanks
	}

	baseline := make(Baseline, len(byCondition))
	for cond, values := range byCondition {
		baseline[cond] = stat.Mean(values, nil)
	}

	for i, r := range out {
		b, exists := baseline[plate.ConditionOf(r.Group)]
		if !exists {
			continue
		}

		v := r.OD - b
		if cfg.ClipNegative && v < 0 {
			v = 0
		}
		out[i].OD = v
	}

	return out, baseline, nil
}
