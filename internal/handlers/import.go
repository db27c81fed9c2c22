// internal/handlers/import.go
package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/adapters/fileio"
	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// ImportHandler handles bulk import uploads
type ImportHandler struct {
	responder
	imports     ports.ImportService
	files       ports.FileStore
	tasks       ports.TaskQueue
	maxFileSize int64
	maxRows     int
}

// NewImportHandler creates a new import handler
func NewImportHandler(imports ports.ImportService, files ports.FileStore, tasks ports.TaskQueue,
	maxFileSize int64, maxRows int, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{
		responder:   responder{logger: logger.With(slog.String("handler", "import"))},
		imports:     imports,
		files:       files,
		tasks:       tasks,
		maxFileSize: maxFileSize,
		maxRows:     maxRows,
	}
}

// ImportCSV handles POST /api/v1/import/csv
func (h *ImportHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	h.handleImport(w, r, fileio.FormatCSV, ".csv")
}

// ImportExcel handles POST /api/v1/import/excel
func (h *ImportHandler) ImportExcel(w http.ResponseWriter, r *http.Request) {
	h.handleImport(w, r, fileio.FormatXLSX, ".xlsx")
}

// ImportPDF handles POST /api/v1/import/pdf
func (h *ImportHandler) ImportPDF(w http.ResponseWriter, r *http.Request) {
	h.handleImport(w, r, fileio.FormatPDF, ".pdf")
}

// ImportStatus handles GET /api/v1/import/status/{jobId}
func (h *ImportHandler) ImportStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathUUID(r, "jobId")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	job, err := h.imports.GetJob(ctx, id)
	if err != nil {
		h.respondServiceError(ctx, w, err, "get import job")
		return
	}

	h.respondJSON(w, http.StatusOK, job)
}

// handleImport reads the multipart upload. With sync=true the rows are
// imported inline and the report returned; otherwise the file is stored and
// an import job queued for the worker.
func (h *ImportHandler) handleImport(w http.ResponseWriter, r *http.Request, format, ext string) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ext) {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("Only %s files are allowed", ext))
		return
	}

	target, err := importTarget(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}

	if sync, _ := strconv.ParseBool(r.FormValue("sync")); sync {
		h.importNow(ctx, w, target, format, data)
		return
	}

	job := &domain.ImportJob{
		ID:          uuid.New(),
		WarehouseID: target.WarehouseID,
		ClientID:    target.ClientID,
		Source:      header.Filename,
		CreatedBy:   target.CreatedBy,
	}
	job.FileKey = fmt.Sprintf("imports/%s%s", job.ID, ext)

	if err := h.files.Upload(ctx, job.FileKey, bytes.NewReader(data), fileio.ContentType(format)); err != nil {
		h.respondServiceError(ctx, w, err, "store upload")
		return
	}

	if err := h.imports.CreateJob(ctx, job); err != nil {
		h.discard(ctx, job.FileKey)
		h.respondServiceError(ctx, w, err, "create import job")
		return
	}

	if err := h.tasks.EnqueueImport(ctx, job.ID, format); err != nil {
		if failErr := h.imports.FailJob(ctx, job.ID, err); failErr != nil {
			h.logger.WarnContext(ctx, "failed to mark import job failed",
				slog.String("job_id", job.ID.String()),
				slog.String("error", failErr.Error()))
		}
		h.respondServiceError(ctx, w, err, "queue import job")
		return
	}

	h.logger.InfoContext(ctx, "import job queued",
		slog.String("job_id", job.ID.String()),
		slog.String("format", format),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	h.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":     job.ID,
		"status":     job.Status,
		"status_url": fmt.Sprintf("/api/v1/import/status/%s", job.ID),
	})
}

func (h *ImportHandler) importNow(ctx context.Context, w http.ResponseWriter, target ports.ImportTarget, format string, data []byte) {
	rows, err := fileio.Read(format, data, h.maxRows)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.imports.Import(ctx, target, rows)
	if err != nil {
		h.respondServiceError(ctx, w, err, "import rows")
		return
	}

	h.logger.InfoContext(ctx, "import completed",
		slog.String("format", format),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed))

	h.respondJSON(w, http.StatusOK, report)
}

func (h *ImportHandler) discard(ctx context.Context, key string) {
	if err := h.files.Delete(ctx, key); err != nil {
		h.logger.WarnContext(ctx, "failed to remove upload",
			slog.String("file_key", key),
			slog.String("error", err.Error()))
	}
}

func importTarget(r *http.Request) (ports.ImportTarget, error) {
	warehouseID, err := uuid.Parse(r.FormValue("warehouse_id"))
	if err != nil {
		return ports.ImportTarget{}, fmt.Errorf("warehouse_id is required")
	}
	clientID, err := uuid.Parse(r.FormValue("client_id"))
	if err != nil {
		return ports.ImportTarget{}, fmt.Errorf("client_id is required")
	}
	return ports.ImportTarget{
		WarehouseID: warehouseID,
		ClientID:    clientID,
		CreatedBy:   r.FormValue("created_by"),
	}, nil
}
