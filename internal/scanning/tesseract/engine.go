// Package tesseract provides a line-level OCR scanner backed by Tesseract.
package tesseract

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/zombor/receipt-items/internal/scanning"
)

// DefaultLanguages covers Korean receipts with Latin brand and unit text.
var DefaultLanguages = []string{"kor", "eng"}

// Engine implements scanning.Scanner with a single Tesseract client.
// gosseract clients are not safe for concurrent use, so scans are serialized.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewEngine creates a new Tesseract engine for the given languages
func NewEngine(languages ...string) (*Engine, error) {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}

	client := gosseract.NewClient()
	if err := configure(client, languages); err != nil {
		client.Close()
		return nil, err
	}

	return &Engine{client: client}, nil
}

// Receipt text is mostly numbers and product codes, not dictionary words
var dictionaryVariables = []gosseract.SettableVariable{"load_system_dawg", "load_freq_dawg"}

type configurer interface {
	SetLanguage(langs ...string) error
	SetVariable(key gosseract.SettableVariable, value string) error
}

func configure(c configurer, languages []string) error {
	if err := c.SetLanguage(languages...); err != nil {
		return fmt.Errorf("setting OCR language: %w", err)
	}
	for _, key := range dictionaryVariables {
		if err := c.SetVariable(key, "false"); err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	}
	return nil
}

// Scan recognizes text lines with their bounding boxes
func (e *Engine) Scan(ctx context.Context, imageData []byte, contentType string) (*scanning.Document, error) {
	pngData, err := scanning.PreparePNG(imageData, contentType)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return nil, fmt.Errorf("setting PSM: %w", err)
	}
	if err := e.client.SetImageFromBytes(pngData); err != nil {
		return nil, fmt.Errorf("setting image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("getting line boxes: %w", err)
	}

	return documentFromBoxes(boxes), nil
}

// documentFromBoxes puts every non-empty line into a single block
func documentFromBoxes(boxes []gosseract.BoundingBox) *scanning.Document {
	block := scanning.Block{Lines: make([]scanning.Line, 0, len(boxes))}
	texts := make([]string, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		block.Lines = append(block.Lines, scanning.Line{
			Text: text,
			Frame: &scanning.Frame{
				Left:   float64(box.Box.Min.X),
				Top:    float64(box.Box.Min.Y),
				Width:  float64(box.Box.Dx()),
				Height: float64(box.Box.Dy()),
			},
		})
		texts = append(texts, text)
	}
	block.Text = strings.Join(texts, "\n")
	return &scanning.Document{
		Text:   block.Text,
		Blocks: []scanning.Block{block},
	}
}

// Close releases the Tesseract client
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}
