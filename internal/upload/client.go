// Package upload hands extracted line items to a remote endpoint.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/zombor/receipt-items/internal/itemize"
)

// DefaultTimeout bounds a single transmission
const DefaultTimeout = 30 * time.Second

// ErrTransmission is matched by every TransmissionError
var ErrTransmission = errors.New("transmission failed")

// TransmissionError reports a send that did not reach the endpoint or was
// answered with a non-2xx status. StatusCode is 0 when no response arrived.
type TransmissionError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransmissionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("sending items to %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("sending items to %s: %v", e.Endpoint, e.Err)
}

func (e *TransmissionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrTransmission) match any TransmissionError
func (e *TransmissionError) Is(target error) bool {
	return target == ErrTransmission
}

// Uploader sends an item list somewhere
type Uploader interface {
	Send(ctx context.Context, items []itemize.LineItem) error
	Endpoint() string
}

// Client POSTs item lists as JSON. There is no retry and no auth; the
// response is only logged.
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient creates a new Client for endpoint
func NewClient(endpoint string, timeout time.Duration) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("upload endpoint is required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Endpoint returns the configured URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send transmits items once. An empty list is sent as [].
func (c *Client) Send(ctx context.Context, items []itemize.LineItem) error {
	if items == nil {
		items = []itemize.LineItem{}
	}

	jsonData, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshaling items: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Error("Failed to send items", "endpoint", c.endpoint, "items", len(items), "error", err)
		return &TransmissionError{Endpoint: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	slog.Info("Items sent",
		"endpoint", c.endpoint,
		"items", len(items),
		"status", resp.StatusCode,
		"response", string(body),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransmissionError{
			Endpoint:   c.endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	return nil
}
