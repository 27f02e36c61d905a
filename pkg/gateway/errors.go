package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Sentinel errors for gateway operations.
var (
	ErrInvalidConfig = errors.New("gateway: invalid configuration")
	ErrSlotRequest   = errors.New("gateway: upload slot request failed")
	ErrTransfer      = errors.New("gateway: byte transfer failed")
	ErrDeletion      = errors.New("gateway: deletion request failed")
)

// errorEnvelope is the structured error payload the backend may return.
type errorEnvelope struct {
	Message string `json:"message"`
}

// maxErrorBody bounds how much of an error response we are willing to read.
const maxErrorBody = 64 << 10 // 64KB

// wrapResponseError converts a non-2xx response into the given sentinel,
// preferring the backend's human-readable message when the body carries one.
// Note: Uses %v semantics for the detail so callers match with errors.Is
// against the sentinel, never against transport internals.
func wrapResponseError(resp *http.Response, sentinel error) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return fmt.Errorf("%w: %s", sentinel, envelope.Message)
	}

	return fmt.Errorf("%w: unexpected status %d", sentinel, resp.StatusCode)
}
