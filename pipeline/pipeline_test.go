package pipeline

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/carbocation/growthcurve/config"
	"github.com/carbocation/growthcurve/plate"
	"github.com/carbocation/growthcurve/series"
)

const epsilon = 1e-9

func mustLayout(t *testing.T, wells map[string]string) plate.Layout {
	t.Helper()

	entries := make([]plate.Entry, 0, len(wells))
	for id, name := range wells {
		w, err := plate.ParseWell(id)
		if err != nil {
			t.Fatal(err)
		}
		entries = append(entries, plate.NewEntry(w, name))
	}

	l, err := plate.FromEntries(entries)
	if err != nil {
		t.Fatal(err)
	}

	return l
}

func findStat(t *testing.T, stats []GroupStat, group string, hours float64) GroupStat {
	t.Helper()

	for _, s := range stats {
		if s.Group == group && s.Hours == hours {
			return s
		}
	}

	t.Fatalf("no statistics for %s at %vh", group, hours)
	return GroupStat{}
}

func findRecord(t *testing.T, records []Record, well string, hours float64) Record {
	t.Helper()

	for _, r := range records {
		if r.Well.String() == well && r.Hours == hours {
			return r
		}
	}

	t.Fatalf("no record for %s at %vh", well, hours)
	return Record{}
}

// Blank A1 and treatment A2 share condition "2x".
const scenarioExport = "Time,A1,A2\n00:00:00,0.1,0.5\n01:00:00,0.12,0.9\n"

func TestBlankCorrectionScenario(t *testing.T) {
	layout := mustLayout(t, map[string]string{"A1": "Blank-2x-1", "A2": "Strain-2x-1"})

	res, err := Run(layout, strings.NewReader(scenarioExport), config.Default())
	if err != nil {
		t.Fatal(err)
	}

	if !res.Corrected {
		t.Fatalf("expected correction to be applied; warnings: %v", res.Warnings)
	}

	if b := res.Baseline["2x"]; math.Abs(b-0.1) > epsilon {
		t.Fatalf("expected baseline 0.1, got %v", b)
	}

	for _, v := range []struct {
		Well     string
		Hours    float64
		Expected float64
	}{
		{"A2", 0, 0.4},
		{"A2", 1, 0.8},
		{"A1", 0, 0},
		{"A1", 1, 0.02},
	} {
		r := findRecord(t, res.Records, v.Well, v.Hours)
		if math.Abs(r.OD-v.Expected) > epsilon {
			t.Fatalf("%s at %vh: got %v, expected %v", v.Well, v.Hours, r.OD, v.Expected)
		}
	}

	if r := findRecord(t, res.Records, "A2", 1); r.RawOD != 0.9 {
		t.Fatalf("raw value not preserved: %v", r.RawOD)
	}

	// Blank groups stay in the statistics table.
	findStat(t, res.Stats, "Blank-2x", 1)
}

func TestClipNegative(t *testing.T) {
	layout := mustLayout(t, map[string]string{"A1": "Blank-2x-1", "A2": "Strain-2x-1"})
	export := "Time,A1,A2\n00:00:00,0.2,0.15\n"

	cfg := config.Default()
	res, err := Run(layout, strings.NewReader(export), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if r := findRecord(t, res.Records, "A2", 0); r.OD != 0 {
		t.Fatalf("expected clipped 0, got %v", r.OD)
	}

	cfg.ClipNegative = false
	res, err = Run(layout, strings.NewReader(export), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if r := findRecord(t, res.Records, "A2", 0); math.Abs(r.OD-(-0.05)) > epsilon {
		t.Fatalf("expected unclipped -0.05, got %v", r.OD)
	}
}

func TestNoBlanksIsIdempotent(t *testing.T) {
	layout := mustLayout(t, map[string]string{"A1": "Strain-2x-1", "A2": "Strain-2x-2", "A3": "Other-1x-1"})
	export := "Time,A1,A2,A3\n00:00:00,0.1,0.2,0.3\n00:30:00,0.4,0.6,0.5\n"

	on := config.Default()
	off := config.Default()
	off.ApplyBlankCorrection = false

	withCorrection, err := Run(layout, strings.NewReader(export), on)
	if err != nil {
		t.Fatal(err)
	}
	without, err := Run(layout, strings.NewReader(export), off)
	if err != nil {
		t.Fatal(err)
	}

	if withCorrection.Corrected {
		t.Fatal("nothing should have been corrected")
	}
	if len(withCorrection.Warnings) == 0 {
		t.Fatal("expected a no-blanks warning")
	}

	if len(withCorrection.Stats) != len(without.Stats) {
		t.Fatalf("stat counts differ: %d vs %d", len(withCorrection.Stats), len(without.Stats))
	}
	for i := range without.Stats {
		if withCorrection.Stats[i] != without.Stats[i] {
			t.Fatalf("row %d differs: %+v vs %+v", i, withCorrection.Stats[i], without.Stats[i])
		}
	}
}

func TestCorrectBlanksOnlyAtFirstTimepoint(t *testing.T) {
	w := plate.Well{Row: "A", Col: 1}
	records := []Record{
		{Hours: 0, Well: w, OD: 0.5, RawOD: 0.5, Group: "Strain-2x", Condition: "2x"},
		{Hours: 1, Well: w, OD: 0.1, RawOD: 0.1, Group: "blank-2x", Condition: "2x"},
	}

	out, baseline, err := CorrectBlanks(records, config.Default())
	if !errors.Is(err, ErrNoBlanks) {
		t.Fatalf("expected ErrNoBlanks, got %v", err)
	}
	if baseline != nil {
		t.Fatalf("expected no baseline, got %v", baseline)
	}
	if out[0].OD != 0.5 || out[1].OD != 0.1 {
		t.Fatalf("records should be unchanged, got %+v", out)
	}
}

func TestCorrectBlanksTolerance(t *testing.T) {
	w := plate.Well{Row: "A", Col: 1}
	records := []Record{
		{Hours: 0, Well: w, OD: 0.5, RawOD: 0.5, Group: "Strain-2x"},
		{Hours: 1e-9, Well: w, OD: 0.1, RawOD: 0.1, Group: "BLANK-2x"},
	}

	cfg := config.Default()
	out, baseline, err := CorrectBlanks(records, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(baseline["2x"]-0.1) > epsilon || math.Abs(out[0].OD-0.4) > epsilon {
		t.Fatalf("unexpected correction %v %+v", baseline, out)
	}

	// The input must not be modified.
	if records[0].OD != 0.5 {
		t.Fatal("input records were mutated")
	}

	cfg.BlankTimeTolerance = 0
	if _, _, err := CorrectBlanks(records, cfg); !errors.Is(err, ErrNoBlanks) {
		t.Fatalf("exact matching should find no blank at 0h, got %v", err)
	}
}

func TestCorrectBlanksConditionMismatch(t *testing.T) {
	layout := mustLayout(t, map[string]string{"A1": "Blank-2x-1", "A2": "Strain-4x-1", "A3": "Control"})
	export := "Time,A1,A2,A3\n00:00:00,0.1,0.5,0.3\n"

	res, err := Run(layout, strings.NewReader(export), config.Default())
	if err != nil {
		t.Fatal(err)
	}

	if r := findRecord(t, res.Records, "A2", 0); r.OD != 0.5 {
		t.Fatalf("4x has no blank and should be unchanged, got %v", r.OD)
	}
	if r := findRecord(t, res.Records, "A3", 0); r.OD != 0.3 {
		t.Fatalf("default condition has no blank and should be unchanged, got %v", r.OD)
	}
}

func TestAggregateSingleReading(t *testing.T) {
	records := []Record{{Hours: 2, OD: 0.37, RawOD: 0.37, Group: "g"}}

	for _, sample := range []bool{false, true} {
		cfg := config.Default()
		cfg.SampleStd = sample

		stats, err := Aggregate(records, cfg)
		if err != nil {
			t.Fatal(err)
		}

		if len(stats) != 1 {
			t.Fatalf("expected one row, got %d", len(stats))
		}

		s := stats[0]
		if s.Count != 1 || s.Std != 0 || s.SEM != 0 || s.Mean != 0.37 || s.Median != 0.37 {
			t.Fatalf("unexpected single-reading stats %+v", s)
		}
	}
}

func TestAggregateStdEstimators(t *testing.T) {
	records := make([]Record, 0, 4)
	for _, v := range []float64{1, 2, 3, 4} {
		records = append(records, Record{Hours: 0, OD: v, Group: "g"})
	}

	cfg := config.Default()
	pop, err := Aggregate(records, cfg)
	if err != nil {
		t.Fatal(err)
	}

	cfg.SampleStd = true
	samp, err := Aggregate(records, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(pop[0].Std-1.118034) > 1e-6 {
		t.Fatalf("population std: got %f", pop[0].Std)
	}
	if math.Abs(samp[0].Std-1.290994) > 1e-6 {
		t.Fatalf("sample std: got %f", samp[0].Std)
	}
	if math.Abs(samp[0].SEM-1.290994/2) > 1e-6 {
		t.Fatalf("sem: got %f", samp[0].SEM)
	}
	if pop[0].Mean != 2.5 || pop[0].Median != 2.5 || pop[0].Count != 4 {
		t.Fatalf("unexpected centre %+v", pop[0])
	}
}

func TestAggregateOrder(t *testing.T) {
	records := []Record{
		{Hours: 2, OD: 1, Group: "b"},
		{Hours: 1, OD: 1, Group: "b"},
		{Hours: 1, OD: 1, Group: "a"},
	}

	stats, err := Aggregate(records, config.Default())
	if err != nil {
		t.Fatal(err)
	}

	if stats[0].Group != "a" || stats[0].Hours != 1 || stats[1].Group != "b" || stats[2].Hours != 2 {
		t.Fatalf("unexpected order %+v", stats)
	}
}

func TestMergeDropsUnmatchedWells(t *testing.T) {
	layout := mustLayout(t, map[string]string{"A1": "Strain-2x-1"})
	readings := []series.Reading{
		{Well: plate.Well{Row: "A", Col: 1}, Hours: 1, OD: 0.2},
		{Well: plate.Well{Row: "H", Col: 12}, Hours: 0, OD: 0.9},
		{Well: plate.Well{Row: "A", Col: 1}, Hours: 0, OD: 0.1},
	}

	merged := Merge(readings, layout)
	if len(merged) != 2 {
		t.Fatalf("expected 2 records, got %+v", merged)
	}
	if merged[0].Hours != 0 || merged[1].Hours != 1 {
		t.Fatalf("records not sorted by hours: %+v", merged)
	}
	if merged[0].Group != "Strain-2x" || merged[0].Condition != "2x" {
		t.Fatalf("layout metadata not joined: %+v", merged[0])
	}
}

func TestRunHeaderNotFound(t *testing.T) {
	layout := mustLayout(t, map[string]string{"A1": "Strain-2x-1"})

	_, err := Run(layout, strings.NewReader("no header here\n"), config.Default())
	if !errors.Is(err, series.ErrHeaderNotFound) {
		t.Fatalf("expected ErrHeaderNotFound, got %v", err)
	}
}

func TestSelectGroups(t *testing.T) {
	stats := []GroupStat{{Group: "Blank-2x"}, {Group: "Strain-2x"}, {Group: "Other-2x"}}

	cfg := config.Default()
	got, _ := SelectGroups(stats, cfg)
	if strings.Join(got, "|") != "Other-2x|Strain-2x" {
		t.Fatalf("blank groups should be hidden by default with correction, got %v", got)
	}

	cfg.ApplyBlankCorrection = false
	got, _ = SelectGroups(stats, cfg)
	if len(got) != 3 {
		t.Fatalf("all groups should be shown without correction, got %v", got)
	}

	cfg.SelectedGroups = []string{"Strain-2x", "Missing", "Blank-2x"}
	got, warnings := SelectGroups(stats, cfg)
	if strings.Join(got, "|") != "Strain-2x|Blank-2x" || len(warnings) != 1 {
		t.Fatalf("unexpected explicit selection %v (warnings %v)", got, warnings)
	}
}

func TestWriteStats(t *testing.T) {
	stats := []GroupStat{{Group: "Strain-2x", Hours: 1.5, Mean: 0.4, Std: 0.1, Median: 0.4, Count: 3, SEM: 0.05}}

	var buf bytes.Buffer
	if err := WriteStats(&buf, stats, ','); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Group,Hours,mean,std,median,count,sem" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "Strain-2x,1.5,0.4,0.1,0.4,3,0.05" {
		t.Fatalf("unexpected row %q", lines[1])
	}

	buf.Reset()
	if err := WriteStats(&buf, stats, '\t'); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "Group\tHours\t") {
		t.Fatalf("expected tab-delimited output, got %q", buf.String())
	}
}

func TestSummaryTable(t *testing.T) {
	stats := []GroupStat{
		{Group: "Strain-2x", Hours: 0, Mean: 0.1, Count: 3},
		{Group: "Strain-2x", Hours: 2, Mean: 0.8, Count: 3},
		{Group: "Strain-2x", Hours: 4, Mean: 0.7, Count: 3},
	}

	out := SummaryTable(stats, []string{"Strain-2x", "Absent"})
	if !strings.Contains(out, "Strain-2x") || !strings.Contains(out, "0.8000") || !strings.Contains(out, "0.7000") {
		t.Fatalf("summary missing expected values:\n%s", out)
	}
	if strings.Contains(out, "Absent") {
		t.Fatalf("groups without data should be omitted:\n%s", out)
	}
}
