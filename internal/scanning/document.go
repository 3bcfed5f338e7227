package scanning

import "github.com/zombor/receipt-items/internal/itemize"

// Frame is a rectangle in source-image pixels
type Frame struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Line is one recognized text line
type Line struct {
	Text  string `json:"text"`
	Frame *Frame `json:"frame,omitempty"`
}

// Block is a paragraph-like group of lines
type Block struct {
	Text  string `json:"text,omitempty"`
	Frame *Frame `json:"frame,omitempty"`
	Lines []Line `json:"lines"`
}

// Document is the OCR result for one image. The shape follows the ML Kit
// text recognition output so results produced on a phone can be posted as-is.
type Document struct {
	Text   string  `json:"text,omitempty"`
	Blocks []Block `json:"blocks"`
}

// Lines flattens all blocks into recognized lines in document order. A line
// without a frame gets TopY 0 and no bounding box.
func (d *Document) Lines() []itemize.RecognizedLine {
	if d == nil {
		return []itemize.RecognizedLine{}
	}
	out := make([]itemize.RecognizedLine, 0)
	for _, b := range d.Blocks {
		for _, l := range b.Lines {
			rl := itemize.RecognizedLine{Text: l.Text}
			if l.Frame != nil {
				rl.TopY = l.Frame.Top
				rl.Box = &itemize.BoundingBox{
					Left:   l.Frame.Left,
					Top:    l.Frame.Top,
					Width:  l.Frame.Width,
					Height: l.Frame.Height,
				}
			}
			out = append(out, rl)
		}
	}
	return out
}

// LineCount returns the number of lines across all blocks.
func (d *Document) LineCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, b := range d.Blocks {
		n += len(b.Lines)
	}
	return n
}
