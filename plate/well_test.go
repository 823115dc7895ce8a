package plate

import (
	"sort"
	"testing"
)

func TestParseWell(t *testing.T) {
	for in, expected := range map[string]Well{
		"A1":    {"A", 1},
		"a01":   {"A", 1},
		" H12 ": {"H", 12},
		"AA3":   {"AA", 3},
	} {
		got, err := ParseWell(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got != expected {
			t.Fatalf("%q: got %+v, expected %+v", in, got, expected)
		}
	}

	for _, bad := range []string{"", "A", "1A", "A0", "A-1", "Time", "Temperature(C)", "A1x"} {
		if _, err := ParseWell(bad); err == nil {
			t.Fatalf("%q: expected an error", bad)
		}
	}
}

func TestWellString(t *testing.T) {
	w, err := ParseWell("b07")
	if err != nil {
		t.Fatal(err)
	}
	if w.String() != "B7" {
		t.Fatalf("got %q", w.String())
	}
}

func TestWellOrder(t *testing.T) {
	wells := []Well{{"B", 1}, {"AA", 1}, {"A", 10}, {"A", 2}, {"A", 1}}
	sort.Slice(wells, func(i, j int) bool { return wells[i].Less(wells[j]) })

	expected := []string{"A1", "A2", "A10", "B1", "AA1"}
	for i, w := range wells {
		if w.String() != expected[i] {
			t.Fatalf("position %d: got %s, expected %s", i, w, expected[i])
		}
	}
}
