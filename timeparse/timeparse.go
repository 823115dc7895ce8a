// Package timeparse converts the elapsed-time column of plate-reader kinetic
// exports into fractional hours.
package timeparse

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrTimestamp is wrapped by every parse failure. Callers drop the row.
var ErrTimestamp = errors.New("unparsable timestamp")

// Hours parses an elapsed-time string into hours. Accepted forms:
//
//	HH:MM:SS     01:30:00   -> 1.5
//	MM:SS        05:30      -> 0.0917 (always minutes:seconds)
//	D.HH:MM:SS   1.01:00:00 -> 25
//
// Fields may carry a fractional part. Whitespace around the string is ignored.
func Hours(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrTimestamp)
	}

	parts := strings.Split(s, ":")

	switch len(parts) {
	case 3:
		days, hourField, err := splitDays(parts[0])
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrTimestamp, s, err)
		}

		h, err := field(hourField)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrTimestamp, s, err)
		}
		m, err := field(parts[1])
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrTimestamp, s, err)
		}
		sec, err := field(parts[2])
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrTimestamp, s, err)
		}

		return 24*days + h + m/60 + sec/3600, nil

	case 2:
		m, err := field(parts[0])
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrTimestamp, s, err)
		}
		sec, err := field(parts[1])
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrTimestamp, s, err)
		}

		return m/60 + sec/3600, nil
	}

	return 0, fmt.Errorf("%w: %q has %d fields, want 2 or 3", ErrTimestamp, s, len(parts))
}

// splitDays separates an optional "D." day prefix from the hour field.
func splitDays(first string) (days float64, hours string, err error) {
	idx := strings.Index(first, ".")
	if idx < 0 {
		return 0, first, nil
	}

	d, err := strconv.ParseUint(first[:idx], 10, 32)
	if err != nil {
		return 0, "", fmt.Errorf("day prefix %q: %v", first[:idx], err)
	}

	return float64(d), first[idx+1:], nil
}

// field parses one clock component: decimal digits with at most one
// fractional point. Signs, exponents, hex and digit separators are rejected
// even though strconv would take them.
func field(s string) (float64, error) {
	s = strings.TrimSpace(s)

	digits, points := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			points++
		default:
			return 0, fmt.Errorf("field %q is not a decimal number", s)
		}
	}
	if digits == 0 || points > 1 {
		return 0, fmt.Errorf("field %q is not a decimal number", s)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) {
		return 0, fmt.Errorf("field %q is not finite", s)
	}

	return v, nil
}

// WallClock converts absolute timestamps, as written by readers that log the
// clock time of each kinetic read, into hours elapsed since the earliest of
// them. The returned slice is aligned with stamps; ok[i] is false where the
// timestamp could not be parsed.
func WallClock(stamps []string) (hours []float64, ok []bool) {
	hours = make([]float64, len(stamps))
	ok = make([]bool, len(stamps))

	parsed := make([]time.Time, len(stamps))
	var earliest time.Time
	for i, s := range stamps {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		t, err := dateparse.ParseAny(s)
		if err != nil {
			continue
		}

		parsed[i] = t
		ok[i] = true
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
	}

	for i := range stamps {
		if ok[i] {
			hours[i] = parsed[i].Sub(earliest).Hours()
		}
	}

	return hours, ok
}
