// Package series reads the kinetic time-series export of a plate reader: an
// arbitrary instrument preamble, a header row starting with "Time", and one
// row per read with one column per well.
package series

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/carbocation/growthcurve"
	"github.com/carbocation/growthcurve/plate"
	"github.com/carbocation/growthcurve/timeparse"
	"github.com/carbocation/pfx"
)

// TimeHeader is the literal that identifies the header row.
const TimeHeader = "Time"

// ErrHeaderNotFound means no line of the export starts with the Time header.
// Nothing can be salvaged from such a file.
var ErrHeaderNotFound = errors.New("no header row beginning with \"Time\" was found")

// Reading is one optical-density measurement of one well.
type Reading struct {
	Well      plate.Well
	Timestamp string
	Hours     float64
	OD        float64
}

// Options controls timestamp interpretation.
type Options struct {
	// WallClock treats the Time column as absolute date-times and measures
	// hours from the earliest of them.
	WallClock bool
}

// Table is the parsed export restricted to wells of interest.
type Table struct {
	Readings []Reading

	// Wells are the kept columns, in file order.
	Wells []plate.Well

	// HeaderLine is the 0-based line index of the Time header.
	HeaderLine int

	// DroppedColumns names header fields that were not wells of the layout.
	DroppedColumns []string

	// DroppedRows counts rows whose timestamp could not be parsed.
	DroppedRows int

	// SkippedCells counts non-empty OD cells that were not numbers.
	SkippedCells int
}

// Load parses an export. Only columns whose header is a well in wells are
// kept; a nil wells keeps every column that names a well.
func Load(r io.Reader, wells map[plate.Well]struct{}, opts Options) (*Table, error) {
	lr, err := growthcurve.Latin1Reader(r)
	if err != nil {
		return nil, pfx.Err(err)
	}

	raw, err := io.ReadAll(lr)
	if err != nil {
		return nil, pfx.Err(err)
	}

	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")

	headerIdx, delim, timeCol, ok := findHeader(lines)
	if !ok {
		return nil, ErrHeaderNotFound
	}

	rdr := csv.NewReader(strings.NewReader(strings.Join(lines[headerIdx:], "\n")))
	rdr.Comma = delim
	rdr.FieldsPerRecord = -1
	rdr.LazyQuotes = true

	header, err := rdr.Read()
	if err != nil {
		return nil, pfx.Err(err)
	}

	out := &Table{HeaderLine: headerIdx}

	// column index => well
	columns := make(map[int]plate.Well)
	order := make([]int, 0, len(header))
	seen := make(map[plate.Well]struct{})
	for i, name := range header {
		if i == timeCol {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		w, err := plate.ParseWell(name)
		if err != nil {
			out.DroppedColumns = append(out.DroppedColumns, name)
			continue
		}

		if wells != nil {
			if _, wanted := wells[w]; !wanted {
				out.DroppedColumns = append(out.DroppedColumns, name)
				continue
			}
		}

		if _, dup := seen[w]; dup {
			out.DroppedColumns = append(out.DroppedColumns, name)
			continue
		}
		seen[w] = struct{}{}

		columns[i] = w
		order = append(order, i)
		out.Wells = append(out.Wells, w)
	}

	rows := make([][]string, 0)
	for {
		row, err := rdr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, pfx.Err(err)
		}

		if timeCol >= len(row) || strings.TrimSpace(row[timeCol]) == "" {
			continue
		}

		rows = append(rows, row)
	}

	hours, parsed := rowHours(rows, timeCol, opts)

	for r, row := range rows {
		if !parsed[r] {
			out.DroppedRows++
			continue
		}

		stamp := strings.TrimSpace(row[timeCol])
		for _, c := range order {
			if c >= len(row) {
				continue
			}

			cell := strings.TrimSpace(row[c])
			if cell == "" {
				continue
			}

			od, err := strconv.ParseFloat(cell, 64)
			if err != nil || math.IsNaN(od) || math.IsInf(od, 0) {
				out.SkippedCells++
				continue
			}

			out.Readings = append(out.Readings, Reading{
				Well:      columns[c],
				Timestamp: stamp,
				Hours:     hours[r],
				OD:        od,
			})
		}
	}

	return out, nil
}

// findHeader returns the first line whose first non-empty field is exactly
// TimeHeader, with any preceding fields empty, and at least one field after
// it.
func findHeader(lines []string) (idx int, delim rune, timeCol int, ok bool) {
	for i, line := range lines {
		d := growthcurve.LineDelimiter(line)
		if d == 0 {
			continue
		}

		rdr := csv.NewReader(strings.NewReader(line))
		rdr.Comma = d
		rdr.LazyQuotes = true
		fields, err := rdr.Read()
		if err != nil {
			continue
		}

		for j, f := range fields {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			if f == TimeHeader && j+1 < len(fields) {
				return i, d, j, true
			}
			break
		}
	}

	return 0, 0, 0, false
}

func rowHours(rows [][]string, timeCol int, opts Options) ([]float64, []bool) {
	if opts.WallClock {
		stamps := make([]string, len(rows))
		for i, row := range rows {
			stamps[i] = row[timeCol]
		}
		return timeparse.WallClock(stamps)
	}

	hours := make([]float64, len(rows))
	ok := make([]bool, len(rows))
	for i, row := range rows {
		h, err := timeparse.Hours(row[timeCol])
		if err != nil {
			continue
		}
		hours[i], ok[i] = h, true
	}

	return hours, ok
}

// String summarises what was kept and dropped, for logging.
func (t *Table) String() string {
	return fmt.Sprintf("%d readings from %d wells (%d rows with unparsable timestamps, %d non-numeric cells, %d columns not in the layout)",
		len(t.Readings), len(t.Wells), t.DroppedRows, t.SkippedCells, len(t.DroppedColumns))
}
