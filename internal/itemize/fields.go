package itemize

import (
	"strings"
	"unicode"
)

// ExtractFields splits a name token into product name, weight and unit.
// The returned item has no quantity yet.
//
// "콜라 500ml" gives name "콜라", weight "500", unit "ml". Without a known
// unit the name is cut before the first digit and weight/unit keep their
// defaults, with unitNone as the unit.
func ExtractFields(token, unitNone string) LineItem {
	item := LineItem{
		Name:   token,
		Weight: DefaultWeight,
		Unit:   unitNone,
	}

	if m := weightUnitPattern.FindStringSubmatchIndex(token); m != nil {
		item.Name = strings.TrimSpace(token[:m[0]])
		item.Weight = token[m[2]:m[3]]
		item.Unit = strings.ToLower(token[m[4]:m[5]])
		return item
	}

	if i := strings.IndexFunc(token, unicode.IsDigit); i >= 0 {
		item.Name = strings.TrimSpace(token[:i])
	}
	return item
}
