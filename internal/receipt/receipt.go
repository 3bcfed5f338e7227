// Package receipt stores scans of receipts and serves them over HTTP.
package receipt

import (
	"time"

	"github.com/zombor/receipt-items/internal/itemize"
)

// Scan sources
const (
	SourceDocument = "document" // OCR JSON posted by a client
	SourceImage    = "image"    // image recognized by the server's scanner
)

// Scan is the stored outcome of one pipeline run
type Scan struct {
	ID          string             `json:"id"`
	Source      string             `json:"source"`
	Filename    string             `json:"filename,omitempty"`
	ContentType string             `json:"content_type,omitempty"`
	Profile     string             `json:"profile"`
	LineCount   int                `json:"line_count"`
	Items       []itemize.LineItem `json:"items"`
	SubmittedAt *time.Time         `json:"submitted_at,omitempty"` // last successful handoff
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// HasFile reports whether the source image was kept
func (s *Scan) HasFile() bool {
	return s.Filename != ""
}

// Submission records one attempt to hand a scan's items to the upload
// endpoint, successful or not
type Submission struct {
	ID         string    `json:"id"`
	ScanID     string    `json:"scan_id"`
	Endpoint   string    `json:"endpoint"`
	ItemCount  int       `json:"item_count"`
	StatusCode int       `json:"status_code,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Succeeded reports whether the endpoint accepted the items
func (s *Submission) Succeeded() bool {
	return s.Error == ""
}
