package itemize

import "strings"

// Pairer attaches quantities to extracted items.
type Pairer interface {
	Pair(items []LineItem, quantities []string) []LineItem
}

// Positional gives item i the quantity at index i, or DefaultQuantity when
// there are fewer quantities than items. Extra quantities are ignored. Items
// with an empty name are dropped after pairing, so they still consume the
// quantity at their position.
type Positional struct{}

// Pair implements Pairer.
func (Positional) Pair(items []LineItem, quantities []string) []LineItem {
	out := make([]LineItem, 0, len(items))
	for i, item := range items {
		item.Quantity = DefaultQuantity
		if i < len(quantities) {
			item.Quantity = quantities[i]
		}
		if strings.TrimSpace(item.Name) == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
