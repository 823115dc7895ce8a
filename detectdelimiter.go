package growthcurve

import (
	"io"
	"strings"

	"github.com/csimplestring/go-csv/detector"
)

// candidateDelimiters are the separators plate-reader software is known to
// emit. Anything else is treated as noise from the instrument preamble.
var candidateDelimiters = []string{",", "\t", ";"}

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file.
func DetermineDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	for _, found := range delimiters {
		for _, known := range candidateDelimiters {
			if found == known {
				return rune(found[0])
			}
		}
	}

	return ','
}

// LineDelimiter guesses the delimiter of a single line. Exports often carry
// a free-text preamble, so frequency detection over the whole file is not
// reliable until the header has been located. Returns 0 if the line contains
// none of the known delimiters.
func LineDelimiter(line string) rune {
	best, bestCount := rune(0), 0
	for _, d := range candidateDelimiters {
		if n := strings.Count(line, d); n > bestCount {
			best, bestCount = rune(d[0]), n
		}
	}

	return best
}
