// internal/workers/export_processor.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/stockledger/internal/adapters/fileio"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// ExportProcessor renders inventory exports to file storage
type ExportProcessor struct {
	movements ports.MovementService
	files     ports.FileStore
	statuses  ports.ExportStatusStore
	urlExpiry time.Duration
	logger    *slog.Logger
}

// NewExportProcessor creates a new export processor
func NewExportProcessor(movements ports.MovementService, files ports.FileStore, statuses ports.ExportStatusStore,
	urlExpiry time.Duration, logger *slog.Logger) *ExportProcessor {
	return &ExportProcessor{
		movements: movements,
		files:     files,
		statuses:  statuses,
		urlExpiry: urlExpiry,
		logger:    logger.With(slog.String("processor", "export")),
	}
}

// ExportKey is the storage key of an export file
func ExportKey(id, format string) string {
	return fmt.Sprintf("exports/%s.%s", id, format)
}

// ProcessExport handles TypeExportInventory.
func (p *ExportProcessor) ProcessExport(ctx context.Context, t *asynq.Task) error {
	var req ports.ExportRequest
	if err := json.Unmarshal(t.Payload(), &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	status := &ports.ExportStatus{
		ID:        req.ID,
		Format:    req.Format,
		Status:    ports.ExportRunning,
		CreatedAt: time.Now().UTC(),
	}
	if prev, err := p.statuses.GetExport(ctx, req.ID); err == nil && prev != nil {
		status.CreatedAt = prev.CreatedAt
	}
	p.save(ctx, status)

	if err := p.render(ctx, req, status); err != nil {
		status.Status = ports.ExportFailed
		status.Error = err.Error()
		p.save(ctx, status)
		p.logger.ErrorContext(ctx, "export failed",
			slog.String("export_id", req.ID),
			slog.String("error", err.Error()))
		return err
	}

	status.Status = ports.ExportCompleted
	p.save(ctx, status)
	p.logger.InfoContext(ctx, "export completed",
		slog.String("export_id", req.ID),
		slog.String("file_key", status.FileKey),
		slog.Int("rows", status.Rows))
	return nil
}

func (p *ExportProcessor) render(ctx context.Context, req ports.ExportRequest, status *ports.ExportStatus) error {
	views, err := p.movements.ListSnapshots(ctx, req.Filter)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := fileio.Write(req.Format, &buf, views); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	key := ExportKey(req.ID, req.Format)
	if err := p.files.Upload(ctx, key, &buf, fileio.ContentType(req.Format)); err != nil {
		return fmt.Errorf("failed to upload export: %w", err)
	}

	url, err := p.files.PresignedURL(ctx, key, p.urlExpiry)
	if err != nil {
		return fmt.Errorf("failed to sign export url: %w", err)
	}

	expires := time.Now().UTC().Add(p.urlExpiry)
	status.FileKey = key
	status.URL = url
	status.Rows = len(views)
	status.ExpiresAt = &expires
	return nil
}

func (p *ExportProcessor) save(ctx context.Context, status *ports.ExportStatus) {
	status.UpdatedAt = time.Now().UTC()
	if err := p.statuses.SaveExport(ctx, status); err != nil {
		p.logger.WarnContext(ctx, "failed to save export status",
			slog.String("export_id", status.ID),
			slog.String("error", err.Error()))
	}
}
