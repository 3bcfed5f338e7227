package itemize

import (
	"math"
	"slices"
	"strings"
)

// IsNoise reports whether text matches one of the NoisePatterns.
func IsNoise(text string) bool {
	for _, np := range NoisePatterns {
		if np.Pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// Collect drops noise lines, sorts the rest by TopY and clusters them into
// rows. A line joins the current row while its distance to the row's first
// line is at most threshold; the anchor never moves once the row is started.
//
// It returns the rows and the filtered, sorted flat list.
func Collect(lines []RecognizedLine, threshold float64) ([]LineGroup, []RecognizedLine) {
	kept := make([]RecognizedLine, 0, len(lines))
	for _, l := range lines {
		if IsNoise(l.Text) {
			continue
		}
		kept = append(kept, l)
	}

	slices.SortStableFunc(kept, func(a, b RecognizedLine) int {
		switch {
		case a.TopY < b.TopY:
			return -1
		case a.TopY > b.TopY:
			return 1
		}
		return 0
	})

	groups := make([]LineGroup, 0)
	for _, l := range kept {
		n := len(groups)
		if n == 0 || math.Abs(l.TopY-groups[n-1].Anchor()) > threshold {
			groups = append(groups, LineGroup{l})
			continue
		}
		groups[n-1] = append(groups[n-1], l)
	}
	return groups, kept
}

// SelectQuantityLines returns the lines that start with a short, possibly
// zero-padded number (optionally suffixed with P) and carry no comma.
func SelectQuantityLines(lines []RecognizedLine) []RecognizedLine {
	out := make([]RecognizedLine, 0)
	for _, l := range lines {
		if strings.Contains(l.Text, ",") {
			continue
		}
		if quantityLinePattern.MatchString(l.Text) {
			out = append(out, l)
		}
	}
	return out
}
