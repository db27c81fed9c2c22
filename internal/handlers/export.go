// internal/handlers/export.go
package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/adapters/fileio"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// ExportHandler handles inventory export requests
type ExportHandler struct {
	responder
	movements ports.MovementService
	tasks     ports.TaskQueue
	statuses  ports.ExportStatusStore
}

// NewExportHandler creates a new export handler
func NewExportHandler(movements ports.MovementService, tasks ports.TaskQueue, statuses ports.ExportStatusStore, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		responder: responder{logger: logger.With(slog.String("handler", "export"))},
		movements: movements,
		tasks:     tasks,
		statuses:  statuses,
	}
}

// ExportCSV handles GET /api/v1/export/csv
func (h *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.exportFile(w, r, fileio.FormatCSV)
}

// ExportExcel handles GET /api/v1/export/excel
func (h *ExportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	h.exportFile(w, r, fileio.FormatXLSX)
}

func (h *ExportHandler) exportFile(w http.ResponseWriter, r *http.Request, format string) {
	ctx := r.Context()

	filter, err := parseSnapshotFilter(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	views, err := h.movements.ListSnapshots(ctx, filter)
	if err != nil {
		h.respondServiceError(ctx, w, err, "load inventory")
		return
	}

	var buf bytes.Buffer
	if err := fileio.Write(format, &buf, views); err != nil {
		h.respondServiceError(ctx, w, err, "generate export")
		return
	}

	filename := fmt.Sprintf("inventory_%s.%s", time.Now().Format("20060102_150405"), format)

	w.Header().Set("Content-Type", fileio.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.ErrorContext(ctx, "failed to write export",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "export generated",
		slog.String("format", format),
		slog.Int("rows", len(views)),
		slog.Int("size", buf.Len()))
}

// ExportAsync handles POST /api/v1/export/async
func (h *ExportHandler) ExportAsync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body AsyncExportBody
	if err := decodeJSON(r, &body); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	format := strings.ToLower(strings.TrimSpace(body.Format))
	if format == "" {
		format = fileio.FormatCSV
	}
	if format == "excel" {
		format = fileio.FormatXLSX
	}
	if format != fileio.FormatCSV && format != fileio.FormatXLSX {
		h.respondError(w, http.StatusBadRequest, "format must be csv or xlsx")
		return
	}

	req := ports.ExportRequest{
		ID:          uuid.New().String(),
		Format:      format,
		Filter:      body.Filter(),
		RequestedBy: body.RequestedBy,
	}

	now := time.Now().UTC()
	status := &ports.ExportStatus{
		ID:        req.ID,
		Format:    format,
		Status:    ports.ExportQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.statuses.SaveExport(ctx, status); err != nil {
		h.respondServiceError(ctx, w, err, "save export status")
		return
	}

	if err := h.tasks.EnqueueExport(ctx, req); err != nil {
		h.respondServiceError(ctx, w, err, "queue export")
		return
	}

	h.logger.InfoContext(ctx, "export queued",
		slog.String("export_id", req.ID),
		slog.String("format", format))

	h.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"export_id":  req.ID,
		"status":     status.Status,
		"status_url": fmt.Sprintf("/api/v1/export/status/%s", req.ID),
	})
}

// ExportStatus handles GET /api/v1/export/status/{id}
func (h *ExportHandler) ExportStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if _, err := uuid.Parse(id); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid export ID format")
		return
	}

	status, err := h.statuses.GetExport(ctx, id)
	if err != nil {
		h.respondServiceError(ctx, w, err, "get export status")
		return
	}
	if status == nil {
		h.respondError(w, http.StatusNotFound, "Export not found or expired")
		return
	}

	h.respondJSON(w, http.StatusOK, status)
}

// AsyncExportBody is the request body of an asynchronous export
type AsyncExportBody struct {
	Format      string     `json:"format"`
	WarehouseID *uuid.UUID `json:"warehouse_id,omitempty"`
	ClientID    *uuid.UUID `json:"client_id,omitempty"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	InStockOnly bool       `json:"in_stock_only,omitempty"`
	RequestedBy string     `json:"requested_by,omitempty"`
}

// Filter returns the snapshot filter of the export
func (b *AsyncExportBody) Filter() ports.SnapshotFilter {
	return ports.SnapshotFilter{
		WarehouseID: b.WarehouseID,
		ClientID:    b.ClientID,
		ProductID:   b.ProductID,
		InStockOnly: b.InStockOnly,
	}
}
