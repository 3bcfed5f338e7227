package itemize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Step is one rewrite rule of the Normalizer. Apply returns the rewritten
// text and whether normalization should stop with that result.
type Step struct {
	Name  string
	Apply func(string) (string, bool)
}

var (
	allDigits       = regexp.MustCompile(`^\d+$`)
	leadingMarker   = regexp.MustCompile(`^\d+[A-Za-z]`)
	leadingOrdinal  = regexp.MustCompile(`^\d+\s*`)
	hangulThenLatin = regexp.MustCompile(`(\p{Hangul})([0-9A-Za-z])`)
	latinThenHangul = regexp.MustCompile(`([A-Za-z])(\p{Hangul})`)
	repeatedSpace   = regexp.MustCompile(`\s+`)
)

// Normalizer cleans quantity-line text into a token. The steps run in a fixed
// order; changing the order changes the output.
type Normalizer struct {
	steps []Step
}

// NewNormalizer builds the default step list with the given brand exclusion
// list. A nil or empty list disables brand removal.
func NewNormalizer(brands []string) *Normalizer {
	return &Normalizer{steps: DefaultSteps(brands)}
}

// NewNormalizerWithSteps creates a Normalizer running exactly steps.
func NewNormalizerWithSteps(steps []Step) *Normalizer {
	return &Normalizer{steps: steps}
}

// Steps returns a copy of the configured steps.
func (n *Normalizer) Steps() []Step {
	return append([]Step(nil), n.steps...)
}

// Normalize runs every step over text. The result may be empty, which means
// the line carries nothing worth keeping.
func (n *Normalizer) Normalize(text string) string {
	s := norm.NFC.String(strings.TrimSpace(text))
	for _, step := range n.steps {
		if s == "" {
			return ""
		}
		var done bool
		s, done = step.Apply(s)
		if done {
			return s
		}
	}
	return s
}

// DefaultSteps returns the receipt normalization rules in order.
func DefaultSteps(brands []string) []Step {
	return []Step{
		{Name: "quantity-marker", Apply: QuantityMarker},
		{Name: "strip-leading-marker", Apply: keepGoing(StripLeadingMarker)},
		{Name: "strip-leading-ordinal", Apply: keepGoing(StripLeadingOrdinal)},
		{Name: "remove-disallowed", Apply: keepGoing(RemoveDisallowed)},
		{Name: "truncate-at-slash", Apply: keepGoing(TruncateAtSlash)},
		{Name: "split-scripts", Apply: keepGoing(SplitScripts)},
		{Name: "collapse", Apply: keepGoing(Collapse)},
		{Name: "remove-brands", Apply: keepGoing(BrandRemover(brands))},
	}
}

func keepGoing(fn func(string) string) func(string) (string, bool) {
	return func(s string) (string, bool) {
		return fn(s), false
	}
}

// QuantityMarker handles text made only of digits. A zero-padded single digit
// such as "02" is a quantity and is returned unchanged, ending normalization;
// any other digit run (prices, codes) becomes empty.
func QuantityMarker(s string) (string, bool) {
	if !allDigits.MatchString(s) {
		return s, false
	}
	if len(s) == 1 || len(strings.TrimLeft(s, "0")) == 1 {
		return s, true
	}
	return "", true
}

// StripLeadingMarker removes an ordinal immediately followed by a packaging
// letter, e.g. "001P".
func StripLeadingMarker(s string) string {
	return leadingMarker.ReplaceAllString(s, "")
}

// StripLeadingOrdinal removes leading digits and the whitespace after them.
func StripLeadingOrdinal(s string) string {
	return leadingOrdinal.ReplaceAllString(s, "")
}

// RemoveDisallowed keeps Hangul, Latin letters, digits, slashes and
// whitespace. A dot survives only between two digits so decimal weights such
// as "1.5l" stay intact.
func RemoveDisallowed(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range runes {
		switch {
		case unicode.Is(unicode.Hangul, r),
			r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '/', unicode.IsSpace(r):
			b.WriteRune(r)
		case r == '.' && i > 0 && i < len(runes)-1 && isDigit(runes[i-1]) && isDigit(runes[i+1]):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TruncateAtSlash drops everything from the first slash on.
func TruncateAtSlash(s string) string {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i]
	}
	return s
}

// SplitScripts inserts a space where Hangul meets a digit or Latin letter and
// where a Latin letter meets Hangul.
func SplitScripts(s string) string {
	s = hangulThenLatin.ReplaceAllString(s, "$1 $2")
	return latinThenHangul.ReplaceAllString(s, "$1 $2")
}

// Collapse squeezes whitespace, trims and lowercases.
func Collapse(s string) string {
	return strings.ToLower(strings.TrimSpace(repeatedSpace.ReplaceAllString(s, " ")))
}

// BrandRemover returns a step removing every brand in brands. Removal repeats
// until no brand is left, since cutting one brand out can join the halves of
// another. The whitespace runs left behind are collapsed to single spaces and
// the result is trimmed.
func BrandRemover(brands []string) func(string) string {
	re := brandPattern(brands)
	if re == nil {
		return func(s string) string { return s }
	}
	return func(s string) string {
		for {
			next := re.ReplaceAllString(s, "")
			if next == s {
				break
			}
			s = next
		}
		return strings.TrimSpace(repeatedSpace.ReplaceAllString(s, " "))
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
