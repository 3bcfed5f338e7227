package receipt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/receipt-items/internal/export"
	"github.com/zombor/receipt-items/internal/upload"
)

const (
	maxDocumentSize = int64(10 << 20) // 10MB of OCR JSON
	maxFormSize     = int64(50 << 20) // 50MB to handle high-resolution phone photos
)

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON writes v with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// jsonError writes an error response as {"error": message}
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	writeJSON(w, code, map[string]string{
		"error": message,
	})
}

// statusForError maps service errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidDocument):
		return http.StatusBadRequest
	case errors.Is(err, ErrScanFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrScannerDisabled), errors.Is(err, ErrUploadDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, upload.ErrTransmission):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// serviceError logs err and writes it with the mapped status
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusForError(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		message = "Internal server error"
	} else {
		slog.Warn("Request rejected", "method", r.Method, "path", r.URL.Path, "status", code, "error", err)
	}
	jsonError(w, message, code)
}

// readDocument reads a size-limited OCR document body
func readDocument(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, fmt.Sprintf("Document is too large. Maximum size is %dMB.", maxDocumentSize>>20), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		jsonError(w, "Error reading request body", http.StatusBadRequest)
		return nil, false
	}
	return data, true
}

// handleHealth reports which optional collaborators are configured
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"profile": s.service.pipeline.Profile().Name,
		"scanner": s.service.scanner != nil,
		"upload":  s.service.uploader != nil,
	})
}

// handleItemize runs the pipeline without storing anything
func (s *Server) handleItemize(w http.ResponseWriter, r *http.Request) {
	data, ok := readDocument(w, r)
	if !ok {
		return
	}

	result, err := s.service.Itemize(data)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleProcessDocument stores a scan of a posted OCR document
func (s *Server) handleProcessDocument(w http.ResponseWriter, r *http.Request) {
	data, ok := readDocument(w, r)
	if !ok {
		return
	}

	scan, err := s.service.ProcessDocument(data)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, scan)
}

// contentTypeFor guesses a MIME type from the file extension
func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleScanImage handles receipt image upload
func (s *Server) handleScanImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		if err.Error() == "http: request body too large" {
			errorMsg = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		errorMsg := "No file provided"
		if errors.Is(err, http.ErrMissingFile) {
			errorMsg = "No file was selected. Please choose a file to upload."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxFormSize {
		jsonError(w, "File is too large. Maximum size is 50MB. Please compress or resize your image.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFor(header.Filename)
	}
	// HEIC/HEIF types are kept as-is so the scanner can convert them
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	scan, err := s.service.ScanImage(r.Context(), header.Filename, data, contentType)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, scan)
}

// handleListScans returns a list of all scans
func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	scans, err := s.service.ListScans()
	if err != nil {
		serviceError(w, r, err)
		return
	}

	// Ensure we always return an array, not nil
	if scans == nil {
		scans = []*Scan{}
	}

	writeJSON(w, http.StatusOK, scans)
}

// handleGetScan returns a single scan
func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	scan, err := s.service.GetScan(r.PathValue("id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, scan)
}

// handleGetScanFile returns the source image of a scan
func (s *Server) handleGetScanFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetScanFile(r.PathValue("id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleExportScan returns the items of a scan as XLSX
func (s *Server) handleExportScan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	data, err := s.service.ExportScanXLSX(id)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-items.xlsx"`, id))
	w.Write(data)
}

// handleDeleteScan deletes a scan
func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteScan(r.PathValue("id")); err != nil {
		serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleSubmitScan hands the items of a scan to the upload endpoint. A failed
// transmission is a 502 carrying the recorded submission, never an empty
// success.
func (s *Server) handleSubmitScan(w http.ResponseWriter, r *http.Request) {
	submission, err := s.service.SubmitScan(r.Context(), r.PathValue("id"))
	if err != nil {
		if submission != nil && errors.Is(err, upload.ErrTransmission) {
			slog.Warn("Transmission failed", "scan_id", submission.ScanID, "error", err)
			setCORSHeaders(w)
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":      err.Error(),
				"submission": submission,
			})
			return
		}
		serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, submission)
}

// handleListSubmissions returns the submission attempts of a scan
func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	submissions, err := s.service.ListSubmissions(r.PathValue("id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, submissions)
}
