package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config holds gateway client configuration.
type Config struct {
	// SlotEndpoint is the URL of the upload slot issuance endpoint (required).
	SlotEndpoint string

	// DeleteEndpoint is the URL of the deletion endpoint (required).
	DeleteEndpoint string

	// HTTPClient overrides the default HTTP client (optional).
	HTTPClient *http.Client

	// Timeout applies to the default HTTP client only (default: 30s).
	// Ignored when HTTPClient is set.
	Timeout time.Duration
}

// DefaultTimeout is the request timeout used when none is configured.
const DefaultTimeout = 30 * time.Second

func (c *Config) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
}

func (c *Config) validate() error {
	if c.SlotEndpoint == "" {
		return ErrInvalidConfig
	}
	if c.DeleteEndpoint == "" {
		return ErrInvalidConfig
	}
	return nil
}

// Slot is a pre-authorized upload target issued by the backend.
type Slot struct {
	// URL is the signed target; valid for a single upload until it expires.
	URL string `json:"url"`
}

// Client talks to the upload backend. It is stateless and safe for
// concurrent use.
type Client struct {
	cfg Config
}

// New creates a gateway client with the given configuration.
func New(cfg Config) (*Client, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Client{cfg: cfg}, nil
}

// slotRequest is the issuance payload.
type slotRequest struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
}

// deleteRequest is the deletion payload.
type deleteRequest struct {
	URL string `json:"url"`
}

// RequestUploadSlot asks the backend for a signed upload target for a file
// with the given name and declared content type. The caller must not retry
// automatically on failure.
func (c *Client) RequestUploadSlot(ctx context.Context, name, mediaKind string) (Slot, error) {
	payload, err := json.Marshal(slotRequest{Name: name, ContentType: mediaKind})
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %v", ErrSlotRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.SlotEndpoint, bytes.NewReader(payload))
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %v", ErrSlotRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %v", ErrSlotRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Slot{}, wrapResponseError(resp, ErrSlotRequest)
	}

	var slot Slot
	if err := json.NewDecoder(resp.Body).Decode(&slot); err != nil {
		return Slot{}, fmt.Errorf("%w: malformed response: %v", ErrSlotRequest, err)
	}
	if slot.URL == "" {
		return Slot{}, fmt.Errorf("%w: response carries no upload target", ErrSlotRequest)
	}

	return slot, nil
}

// TransferBytes streams src to the slot's target with a content-type header,
// reporting progress as rounded integer percentages of size. The transfer is
// acknowledged by any 2xx status.
func (c *Client) TransferBytes(ctx context.Context, slot Slot, src io.Reader, size int64, mediaKind string, onProgress ProgressFunc) error {
	body := newProgressReader(src, size, onProgress)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, slot.URL, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	req.ContentLength = size
	if mediaKind != "" {
		req.Header.Set("Content-Type", mediaKind)
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return wrapResponseError(resp, ErrTransfer)
	}

	return nil
}

// RequestDeletion asks the backend to delete the object behind the locator.
func (c *Client) RequestDeletion(ctx context.Context, locator string) error {
	payload, err := json.Marshal(deleteRequest{URL: locator})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeletion, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.cfg.DeleteEndpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeletion, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeletion, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return wrapResponseError(resp, ErrDeletion)
	}

	return nil
}
