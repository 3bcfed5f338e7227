package itemize

// Classifier splits normalized tokens into product names and quantities.
// Both returned slices keep the input order.
type Classifier interface {
	Classify(tokens []string) (names, quantities []string)
}

// LeadingDigit treats a token starting with a digit as a quantity and
// everything else as a name. A product whose name begins with a digit after
// normalization is misread as a quantity.
type LeadingDigit struct{}

// Classify implements Classifier.
func (LeadingDigit) Classify(tokens []string) (names, quantities []string) {
	names = make([]string, 0, len(tokens))
	quantities = make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if isDigit([]rune(t)[0]) {
			quantities = append(quantities, t)
		} else {
			names = append(names, t)
		}
	}
	return names, quantities
}

// HalfSplit is the older rule used by the first item list screen: the first
// half of the tokens (rounded up) are names, the rest are quantities. It only
// works for receipts printing every name before every quantity.
type HalfSplit struct{}

// Classify implements Classifier.
func (HalfSplit) Classify(tokens []string) (names, quantities []string) {
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != "" {
			kept = append(kept, t)
		}
	}
	mid := (len(kept) + 1) / 2
	names = append(make([]string, 0, mid), kept[:mid]...)
	quantities = append(make([]string, 0, len(kept)-mid), kept[mid:]...)
	return names, quantities
}
