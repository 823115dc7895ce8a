package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/carbocation/growthcurve/config"
	"github.com/carbocation/growthcurve/pipeline"
)

func TestSplitGroups(t *testing.T) {
	got := splitGroups(" WT-1x, ,Strain-2x,")
	if want := []string{"WT-1x", "Strain-2x"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if got := splitGroups(""); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestWriteStatsTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.tsv")
	stats := []pipeline.GroupStat{{Group: "WT-1x", Hours: 0.5, Mean: 0.2, Median: 0.2, Count: 1}}

	if err := writeStats(path, stats); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(string(raw), "Group\tHours\tmean\tstd\tmedian\tcount\tsem\n") {
		t.Errorf("unexpected header in %q", raw)
	}
}

func TestWritePlotWithoutSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curve.png")

	if err := writePlot(path, nil, nil, config.Default()); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("no chart should be written, stat returned %v", err)
	}
}
