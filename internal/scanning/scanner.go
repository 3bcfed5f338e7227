package scanning

import "context"

// Scanner defines the interface for OCR engines
type Scanner interface {
	// Scan recognizes the text lines of a receipt image or PDF
	Scan(ctx context.Context, imageData []byte, contentType string) (*Document, error)
	// Close closes the scanner and releases resources
	Close() error
}
