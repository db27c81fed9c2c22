// internal/handlers/scan.go
package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ammerola/stockledger/internal/core/ports"
)

// ScanHandler handles batch scan sessions
type ScanHandler struct {
	responder
	service ports.ScanService
}

// NewScanHandler creates a new scan handler
func NewScanHandler(service ports.ScanService, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{
		responder: responder{logger: logger.With(slog.String("handler", "scan"))},
		service:   service,
	}
}

// OpenSession handles POST /api/v1/scan-sessions
func (h *ScanHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ports.OpenSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.service.Open(ctx, req)
	if err != nil {
		h.respondServiceError(ctx, w, err, "open scan session")
		return
	}

	h.respondJSON(w, http.StatusCreated, session)
}

// Scan handles POST /api/v1/scan-sessions/{id}/scan
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	var req ScanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.service.Scan(ctx, id, req.Code)
	if err != nil {
		h.respondServiceError(ctx, w, err, "record scan")
		return
	}

	h.respondJSON(w, http.StatusOK, session)
}

// Commit handles POST /api/v1/scan-sessions/{id}/commit. The body is optional.
func (h *ScanHandler) Commit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	var req CommitRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Commit(ctx, id, req.Notes)
	if err != nil {
		h.respondServiceError(ctx, w, err, "commit scan session")
		return
	}

	h.logger.InfoContext(ctx, "scan session committed",
		slog.String("session_id", id.String()),
		slog.Int("quantity", result.Entry.Quantity))

	h.respondJSON(w, http.StatusCreated, result)
}

// CloseSession handles DELETE /api/v1/scan-sessions/{id}
func (h *ScanHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	if err := h.service.Close(ctx, id); err != nil {
		h.respondServiceError(ctx, w, err, "close scan session")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Scan session closed",
		"session_id": id,
	})
}

// ScanRequest carries one scanned barcode
type ScanRequest struct {
	Code string `json:"code"`
}

// CommitRequest carries optional notes for the committed movement
type CommitRequest struct {
	Notes string `json:"notes,omitempty"`
}
