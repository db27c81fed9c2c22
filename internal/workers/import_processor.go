// internal/workers/import_processor.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/stockledger/internal/adapters/fileio"
	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// ImportProcessor reads uploaded files and runs them through the import service
type ImportProcessor struct {
	imports ports.ImportService
	files   ports.FileStore
	maxRows int
	logger  *slog.Logger
}

// NewImportProcessor creates a new import processor
func NewImportProcessor(imports ports.ImportService, files ports.FileStore, maxRows int, logger *slog.Logger) *ImportProcessor {
	return &ImportProcessor{
		imports: imports,
		files:   files,
		maxRows: maxRows,
		logger:  logger.With(slog.String("processor", "import")),
	}
}

// ProcessImport handles TypeImportProcess. A file that cannot be read fails
// the job without retry; store errors are retried.
func (p *ImportProcessor) ProcessImport(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	var payload ImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	job, err := p.imports.GetJob(ctx, payload.JobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("import job %s: %w", payload.JobID, asynq.SkipRetry)
		}
		return err
	}
	if job.Status != domain.JobQueued && job.Status != domain.JobProcessing {
		p.logger.InfoContext(ctx, "import job already finished",
			slog.String("job_id", job.ID.String()),
			slog.String("status", string(job.Status)))
		return nil
	}

	p.logger.InfoContext(ctx, "processing import",
		slog.String("job_id", job.ID.String()),
		slog.String("format", payload.Format),
		slog.String("file_key", job.FileKey))

	data, err := p.files.Download(ctx, job.FileKey)
	if err != nil {
		return fmt.Errorf("failed to download import file: %w", err)
	}

	rows, err := fileio.Read(payload.Format, data, p.maxRows)
	if err != nil {
		if failErr := p.imports.FailJob(ctx, job.ID, err); failErr != nil {
			return failErr
		}
		p.logger.WarnContext(ctx, "import file rejected",
			slog.String("job_id", job.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to read import file: %v: %w", err, asynq.SkipRetry)
	}

	report, err := p.imports.RunJob(ctx, job.ID, rows)
	if err != nil {
		return fmt.Errorf("failed to run import job: %w", err)
	}

	p.logger.InfoContext(ctx, "import processing completed",
		slog.String("job_id", job.ID.String()),
		slog.Int("rows", report.Total),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
		slog.Duration("duration", time.Since(start)))
	return nil
}
