package itemize

import (
	"regexp"
	"sort"
	"strings"
)

const (
	// DefaultGroupThreshold is the largest TopY distance, in pixels, between a
	// line and its row anchor that still counts as the same row.
	DefaultGroupThreshold = 10.0

	DefaultQuantity = "1"
	DefaultWeight   = "0"

	// UnitNone marks an item without a recognized weight.
	UnitNone = "없음"
	// UnitNoneLegacy is the sentinel used by the older item list screen.
	UnitNoneLegacy = "EA"
)

// Units is the closed set of weight/volume units the field extractor knows.
var Units = []string{"kg", "ml", "g", "l"}

// Brands is the brand exclusion list. Entries are matched case-insensitively
// and removed from product names.
var Brands = []string{
	"cj",
	"농심",
	"오뚜기",
	"롯데",
	"해태",
	"빙그레",
	"풀무원",
	"동원",
	"청정원",
	"오리온",
	"삼양",
	"매일",
	"남양",
	"서울우유",
	"하림",
	"비비고",
	"이마트",
	"노브랜드",
	"피코크",
	"홈플러스",
}

// NoisePattern is a named rule for rejecting structural noise lines.
type NoisePattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// NoisePatterns are checked against every recognized line before grouping.
var NoisePatterns = []NoisePattern{
	// phone numbers, barcodes
	{Name: "long-digit-run", Pattern: regexp.MustCompile(`\d{10,}`)},
	// 1,234 or 12.345 followed by whitespace or end of text
	{Name: "price", Pattern: regexp.MustCompile(`\d{1,3}[,.]\S{3}(?:\s|$)`)},
}

var (
	quantityLinePattern = regexp.MustCompile(`^0{0,2}\d{1,2}P?\b`)
	weightUnitPattern   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(` + strings.Join(Units, "|") + `)\b`)
)

// brandPattern matches any entry of brands, longest entries first so that a
// brand containing a shorter one is removed whole.
func brandPattern(brands []string) *regexp.Regexp {
	if len(brands) == 0 {
		return nil
	}
	sorted := make([]string, 0, len(brands))
	for _, b := range brands {
		b = strings.TrimSpace(b)
		if b != "" {
			sorted = append(sorted, regexp.QuoteMeta(b))
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	return regexp.MustCompile(`(?i)(?:` + strings.Join(sorted, "|") + `)`)
}
