package scanning

import (
	"fmt"
	"strings"
)

// transcriptionPrompt is the shared prompt used by the vision model scanners.
// The models act only as an OCR engine: they copy text and positions and
// never interpret the receipt.
const transcriptionPrompt = `You are an OCR engine. Transcribe every printed text line of this receipt image exactly as it appears, top to bottom.

Rules:
- Copy characters verbatim, including Korean text, digits, punctuation and spacing. Do not translate, correct, merge or explain anything.
- One entry per visual text line. Text that is printed side by side with a large gap is separate lines.
- For each line give its bounding box in image pixels: left, top, width, height.

Return ONLY valid JSON in this exact format:
{
  "blocks": [
    {
      "lines": [
        {"text": "001 콜라 500ml", "frame": {"left": 12, "top": 140, "width": 210, "height": 22}}
      ]
    }
  ]
}

Do not include any text before or after the JSON and do not use markdown code blocks.`

// parseDocumentJSON extracts, validates and decodes the JSON document in a
// model response
func parseDocumentJSON(text string) (*Document, error) {
	// Remove markdown code blocks if present
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	doc, err := DecodeDocument([]byte(text))
	if err != nil {
		return nil, err
	}

	// Models sometimes pad lines with whitespace or emit empty ones
	for bi := range doc.Blocks {
		kept := doc.Blocks[bi].Lines[:0]
		for _, l := range doc.Blocks[bi].Lines {
			l.Text = strings.TrimSpace(l.Text)
			if l.Text == "" {
				continue
			}
			kept = append(kept, l)
		}
		doc.Blocks[bi].Lines = kept
	}

	return doc, nil
}
