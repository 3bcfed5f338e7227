// Package itemize turns OCR lines from a photographed receipt into purchased
// line items. Every function in this package is pure: the same lines always
// produce the same Result and nothing is shared between runs.
package itemize

// BoundingBox is the rectangle of a recognized line in source-image pixels.
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RecognizedLine is one line of text returned by an OCR engine
type RecognizedLine struct {
	Text string       `json:"text"`
	TopY float64      `json:"topY"`
	Box  *BoundingBox `json:"boundingBox,omitempty"`
}

// LineGroup holds lines that share one visual row, in insertion order.
type LineGroup []RecognizedLine

// Anchor returns the TopY of the first line, which every later member of the
// row is compared against.
func (g LineGroup) Anchor() float64 {
	if len(g) == 0 {
		return 0
	}
	return g[0].TopY
}

// LineItem is one purchased product
type LineItem struct {
	Name     string `json:"name"`
	Weight   string `json:"weight"`
	Unit     string `json:"unit"`
	Quantity string `json:"count"`
}
