package signer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/uploadkit/uploadkit/pkg/logger"
)

// Issuer is the behavior the HTTP handlers need from the service.
// Satisfied by *Service; tests substitute fakes.
type Issuer interface {
	CreateSlot(ctx context.Context, name, mediaKind string) (string, error)
	Delete(ctx context.Context, locator string) error
}

// slotRequest mirrors the gateway's issuance payload.
type slotRequest struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
}

// deleteRequest mirrors the gateway's deletion payload.
type deleteRequest struct {
	URL string `json:"url"`
}

// Routes builds the HTTP surface of the signer:
//
//	POST   /uploads  {"name","contentType"}  ->  200 {"url"}
//	DELETE /uploads  {"url"}                 ->  204
//
// Errors are returned as {"message"} envelopes, matching what pkg/gateway
// expects to decode.
func Routes(issuer Issuer, log *slog.Logger) http.Handler {
	if log == nil {
		log = logger.NewNop()
	}

	r := chi.NewRouter()

	r.Post("/uploads", func(w http.ResponseWriter, req *http.Request) {
		var body slotRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		target, err := issuer.CreateSlot(req.Context(), body.Name, body.ContentType)
		if err != nil {
			log.Error("slot issuance failed",
				slog.String("name", body.Name),
				slog.String("error", err.Error()))
			writeError(w, statusFor(err), "could not issue upload slot")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"url": target})
	})

	r.Delete("/uploads", func(w http.ResponseWriter, req *http.Request) {
		var body deleteRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.URL == "" {
			writeError(w, http.StatusBadRequest, "url is required")
			return
		}

		if err := issuer.Delete(req.Context(), body.URL); err != nil {
			log.Error("deletion failed",
				slog.String("locator", body.URL),
				slog.String("error", err.Error()))
			writeError(w, statusFor(err), "could not delete object")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrForeignLocator):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
