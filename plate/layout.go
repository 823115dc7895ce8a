// Package plate maps a plate layout (rows x columns of sample names) onto
// well identifiers, and derives the group and condition each well belongs to.
package plate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Entry is one occupied well of the layout.
type Entry struct {
	Well       Well
	SampleName string
	Group      string
	Condition  string
	Replicate  string
}

// Options controls how sample names are interpreted.
type Options struct {
	// Strict rejects sample names that are not Name-Condition-Replicate.
	// When false, names are split on a best-effort basis.
	Strict bool
}

// Layout is the flat, immutable well -> entry mapping of one plate.
type Layout struct {
	entries map[Well]Entry
}

// NewEntry derives the group, condition and replicate of a sample name.
func NewEntry(well Well, sampleName string) Entry {
	group := GroupOf(sampleName)

	return Entry{
		Well:       well,
		SampleName: sampleName,
		Group:      group,
		Condition:  ConditionOf(group),
		Replicate:  SplitSampleName(sampleName).Replicate,
	}
}

// FromEntries builds a layout from already-derived entries. Duplicate wells
// are an error.
func FromEntries(entries []Entry) (Layout, error) {
	out := Layout{entries: make(map[Well]Entry, len(entries))}

	for _, e := range entries {
		if _, exists := out.entries[e.Well]; exists {
			return Layout{}, fmt.Errorf("well %s appears more than once in the layout", e.Well)
		}
		out.entries[e.Well] = e
	}

	return out, nil
}

// FromGrid converts a layout grid into entries. header[0] labels the row
// column and is ignored; header[1:] are column numbers. Each row starts with
// its row label. Empty cells are skipped.
func FromGrid(header []string, rows [][]string, opts Options) (Layout, error) {
	// Spreadsheets exported with a trailing delimiter produce empty headers.
	for len(header) > 1 && strings.TrimSpace(header[len(header)-1]) == "" {
		header = header[:len(header)-1]
	}

	if len(header) < 2 {
		return Layout{}, fmt.Errorf("layout header has %d column(s); expected a row-label column followed by plate columns", len(header))
	}

	cols := make([]int, len(header))
	for i := 1; i < len(header); i++ {
		col, err := parseColumnLabel(header[i])
		if err != nil {
			return Layout{}, err
		}
		cols[i] = col
	}

	entries := make([]Entry, 0, len(rows)*(len(header)-1))
	for rowIdx, row := range rows {
		if len(row) == 0 || rowIsEmpty(row) {
			continue
		}

		rowLabel := strings.ToUpper(strings.TrimSpace(row[0]))
		if rowLabel == "" {
			return Layout{}, fmt.Errorf("layout row %d has no row label", rowIdx+1)
		}

		for i := 1; i < len(header); i++ {
			if i >= len(row) {
				break
			}

			name := strings.TrimSpace(row[i])
			if isEmptyCell(name) {
				continue
			}

			well, err := ParseWell(rowLabel + strconv.Itoa(cols[i]))
			if err != nil {
				return Layout{}, fmt.Errorf("layout row %d: %w", rowIdx+1, err)
			}

			if opts.Strict {
				if err := ValidateSampleName(name); err != nil {
					return Layout{}, fmt.Errorf("well %s: %w", well, err)
				}
			}

			entries = append(entries, NewEntry(well, name))
		}
	}

	return FromEntries(entries)
}

// Lookup returns the entry for a well, if the well is occupied.
func (l Layout) Lookup(w Well) (Entry, bool) {
	e, ok := l.entries[w]
	return e, ok
}

// Len is the number of occupied wells.
func (l Layout) Len() int {
	return len(l.entries)
}

// Wells is the set of occupied wells.
func (l Layout) Wells() map[Well]struct{} {
	out := make(map[Well]struct{}, len(l.entries))
	for w := range l.entries {
		out[w] = struct{}{}
	}

	return out
}

// Entries returns every occupied well in row-major order.
func (l Layout) Entries() []Entry {
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Well.Less(out[j].Well) })

	return out
}

// Groups returns the distinct groups, sorted.
func (l Layout) Groups() []string {
	seen := make(map[string]struct{})
	for _, e := range l.entries {
		seen[e.Group] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)

	return out
}

// parseColumnLabel accepts "1", " 12 " and spreadsheet-formatted "3.0".
func parseColumnLabel(s string) (int, error) {
	s = strings.TrimSpace(s)

	if col, err := strconv.Atoi(s); err == nil && col >= 1 {
		return col, nil
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 1 && f == math.Trunc(f) {
		return int(f), nil
	}

	return 0, fmt.Errorf("layout column header %q is not a plate column number", s)
}

// isEmptyCell treats spreadsheet missing-value markers as empty.
func isEmptyCell(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "na", "n/a":
		return true
	}

	return false
}

func rowIsEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
