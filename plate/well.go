package plate

import (
	"fmt"
	"strconv"
	"strings"
)

// Well addresses a single position on a plate by row letter(s) and 1-based
// column number.
type Well struct {
	Row string
	Col int
}

// ParseWell accepts identifiers such as "A1", "h12", "B03" or "AA7".
func ParseWell(s string) (Well, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	split := 0
	for split < len(s) && s[split] >= 'A' && s[split] <= 'Z' {
		split++
	}

	if split == 0 || split == len(s) {
		return Well{}, fmt.Errorf("well %q: expected row letters followed by a column number", s)
	}

	col, err := strconv.Atoi(s[split:])
	if err != nil {
		return Well{}, fmt.Errorf("well %q: %v", s, err)
	}
	if col < 1 {
		return Well{}, fmt.Errorf("well %q: column must be at least 1", s)
	}

	return Well{Row: s[:split], Col: col}, nil
}

func (w Well) String() string {
	return w.Row + strconv.Itoa(w.Col)
}

// Less orders wells row-major: A1, A2, ..., A12, B1, ..., Z12, AA1.
func (w Well) Less(other Well) bool {
	if len(w.Row) != len(other.Row) {
		return len(w.Row) < len(other.Row)
	}
	if w.Row != other.Row {
		return w.Row < other.Row
	}

	return w.Col < other.Col
}
