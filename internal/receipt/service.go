package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/receipt-items/internal/export"
	"github.com/zombor/receipt-items/internal/itemize"
	"github.com/zombor/receipt-items/internal/scanning"
	"github.com/zombor/receipt-items/internal/upload"
)

var (
	// ErrInvalidDocument wraps OCR documents that fail schema validation
	ErrInvalidDocument = errors.New("invalid OCR document")
	// ErrScanFailed wraps errors from the OCR engine
	ErrScanFailed = errors.New("scanning image failed")
	// ErrScannerDisabled is returned for image scans when no engine is configured
	ErrScannerDisabled = errors.New("no scanner configured")
	// ErrUploadDisabled is returned for submissions when no endpoint is configured
	ErrUploadDisabled = errors.New("no upload endpoint configured")
)

// IDGenerator generates unique IDs for scans and submissions
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates random (v4) UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles scan operations. scanner and uploader may be nil; the
// operations that need them then return ErrScannerDisabled or
// ErrUploadDisabled.
type Service struct {
	db          DB
	storage     Storage
	pipeline    *itemize.Pipeline
	scanner     scanning.Scanner
	uploader    upload.Uploader
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with UUID IDs and the wall clock
func NewService(db DB, storage Storage, pipeline *itemize.Pipeline, scanner scanning.Scanner, uploader upload.Uploader) *Service {
	return NewServiceWithDeps(db, storage, pipeline, scanner, uploader, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, storage Storage, pipeline *itemize.Pipeline, scanner scanning.Scanner, uploader upload.Uploader, idGen IDGenerator, timeSrc TimeSource) *Service {
	if pipeline == nil {
		pipeline = itemize.New(itemize.Config{})
	}
	return &Service{
		db:          db,
		storage:     storage,
		pipeline:    pipeline,
		scanner:     scanner,
		uploader:    uploader,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	filenameDisallowed = regexp.MustCompile(`[^\p{L}\p{N}\s\-_]`)
	filenameSpaces     = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if filenameDisallowed.MatchString(strings.TrimPrefix(ext, ".")) {
		ext = ""
	}
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	// Phones produce long names; Korean letters are kept
	base = filenameDisallowed.ReplaceAllString(base, "")
	base = filenameSpaces.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	const maxLen = 50
	if runes := []rune(base); len(runes) > maxLen {
		base = string(runes[:maxLen])
	}

	if base == "" {
		base = "receipt"
	}

	return base + ext
}

// decodeDocument validates and decodes an OCR document body
func decodeDocument(data []byte) (*scanning.Document, error) {
	doc, err := scanning.DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return doc, nil
}

// run feeds a document through the pipeline
func (s *Service) run(doc *scanning.Document) itemize.Result {
	result := s.pipeline.Run(doc.Lines())
	if result.Items == nil {
		result.Items = []itemize.LineItem{}
	}
	return result
}

// newScan builds a scan record from a pipeline result
func (s *Service) newScan(id, source string, doc *scanning.Document, result itemize.Result) *Scan {
	now := s.timeSource.Now()
	return &Scan{
		ID:        id,
		Source:    source,
		Profile:   s.pipeline.Profile().Name,
		LineCount: doc.LineCount(),
		Items:     result.Items,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Itemize runs the pipeline over an OCR document without storing anything
func (s *Service) Itemize(data []byte) (itemize.Result, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return itemize.Result{}, err
	}
	return s.run(doc), nil
}

// ProcessDocument runs the pipeline over an OCR document and stores the scan
func (s *Service) ProcessDocument(data []byte) (*Scan, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}

	result := s.run(doc)
	scan := s.newScan(s.idGenerator.Generate(), SourceDocument, doc, result)

	if err := s.db.SaveScan(scan); err != nil {
		return nil, fmt.Errorf("saving scan to database: %w", err)
	}

	slog.Info("Document scanned",
		"scan_id", scan.ID,
		"lines", scan.LineCount,
		"groups", len(result.Groups),
		"items", len(scan.Items),
	)
	return scan, nil
}

// ScanImage stores an image, recognizes it with the configured scanner and
// stores the resulting scan
func (s *Service) ScanImage(ctx context.Context, filename string, data []byte, contentType string) (*Scan, error) {
	if s.scanner == nil {
		return nil, ErrScannerDisabled
	}

	id := s.idGenerator.Generate()
	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	doc, err := s.scanner.Scan(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to scan image",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		// Clean up the saved file since scanning failed
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}

	result := s.run(doc)
	scan := s.newScan(id, SourceImage, doc, result)
	scan.Filename = savedPath
	scan.ContentType = contentType

	if err := s.db.SaveScan(scan); err != nil {
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("saving scan to database: %w", err)
	}

	slog.Info("Image scanned",
		"scan_id", scan.ID,
		"filename", savedPath,
		"lines", scan.LineCount,
		"items", len(scan.Items),
	)
	return scan, nil
}

// GetScan retrieves a scan by ID
func (s *Service) GetScan(id string) (*Scan, error) {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return nil, fmt.Errorf("getting scan: %w", err)
	}
	return scan, nil
}

// ListScans returns all scans, newest first
func (s *Service) ListScans() ([]*Scan, error) {
	scans, err := s.db.ListScans()
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	return scans, nil
}

// DeleteScan removes a scan, its submissions and its file
func (s *Service) DeleteScan(id string) error {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return fmt.Errorf("getting scan for deletion: %w", err)
	}

	if scan.HasFile() {
		if err := s.storage.Delete(scan.Filename); err != nil {
			// Log error but continue with database deletion
			slog.Warn("Failed to delete file", "filename", scan.Filename, "error", err)
		}
	}

	if err := s.db.DeleteScan(id); err != nil {
		return fmt.Errorf("deleting scan from database: %w", err)
	}
	return nil
}

// GetScanFile retrieves the source image of a scan
func (s *Service) GetScanFile(id string) ([]byte, string, error) {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting scan: %w", err)
	}
	if !scan.HasFile() {
		return nil, "", fmt.Errorf("scan %s has no file: %w", id, ErrNotFound)
	}

	data, err := s.storage.Get(scan.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting scan file: %w", err)
	}

	return data, scan.ContentType, nil
}

// ExportScanXLSX renders the items of a scan as a spreadsheet
func (s *Service) ExportScanXLSX(id string) ([]byte, error) {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return nil, fmt.Errorf("getting scan: %w", err)
	}

	data, err := export.ItemsXLSX(scan.Items)
	if err != nil {
		return nil, fmt.Errorf("exporting scan %s: %w", id, err)
	}
	return data, nil
}

// SubmitScan sends the items of a scan to the upload endpoint once and
// records the attempt. On a failed transmission the recorded submission is
// returned together with an error matching upload.ErrTransmission.
func (s *Service) SubmitScan(ctx context.Context, id string) (*Submission, error) {
	if s.uploader == nil {
		return nil, ErrUploadDisabled
	}

	scan, err := s.db.GetScan(id)
	if err != nil {
		return nil, fmt.Errorf("getting scan: %w", err)
	}

	now := s.timeSource.Now()
	submission := &Submission{
		ID:        s.idGenerator.Generate(),
		ScanID:    scan.ID,
		Endpoint:  s.uploader.Endpoint(),
		ItemCount: len(scan.Items),
		CreatedAt: now,
	}

	sendErr := s.uploader.Send(ctx, scan.Items)
	if sendErr != nil {
		submission.Error = sendErr.Error()
		var terr *upload.TransmissionError
		if errors.As(sendErr, &terr) {
			submission.StatusCode = terr.StatusCode
		}
	}

	if err := s.db.SaveSubmission(submission); err != nil {
		return nil, fmt.Errorf("saving submission: %w", err)
	}

	if sendErr != nil {
		slog.Warn("Submission failed", "scan_id", scan.ID, "submission_id", submission.ID, "error", sendErr)
		return submission, fmt.Errorf("submitting scan %s: %w", scan.ID, sendErr)
	}

	scan.SubmittedAt = &now
	scan.UpdatedAt = now
	if err := s.db.SaveScan(scan); err != nil {
		return nil, fmt.Errorf("updating scan: %w", err)
	}

	return submission, nil
}

// ListSubmissions returns the submission attempts of a scan
func (s *Service) ListSubmissions(id string) ([]*Submission, error) {
	if _, err := s.db.GetScan(id); err != nil {
		return nil, fmt.Errorf("getting scan: %w", err)
	}
	submissions, err := s.db.ListSubmissions(id)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	return submissions, nil
}
