// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/stockledger/internal/core/ports"
)

// Storage prefixes swept by the cleanup task
var cleanupPrefixes = []string{"imports/", "exports/"}

// CleanupProcessor handles cleanup tasks
type CleanupProcessor struct {
	files  ports.FileStore
	maxAge time.Duration
	logger *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(files ports.FileStore, maxAge time.Duration, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		files:  files,
		maxAge: maxAge,
		logger: logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupFiles removes uploaded import files and rendered exports older than maxAge
func (p *CleanupProcessor) CleanupFiles(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up stored files")

	cutoff := time.Now().Add(-p.maxAge)
	var deletedCount int
	for _, prefix := range cleanupPrefixes {
		objects, err := p.files.List(ctx, prefix)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", prefix, err)
		}

		for _, obj := range objects {
			if !obj.LastModified.Before(cutoff) {
				continue
			}
			if err := p.files.Delete(ctx, obj.Key); err != nil {
				p.logger.WarnContext(ctx, "failed to delete file",
					slog.String("key", obj.Key),
					slog.String("error", err.Error()))
				continue
			}
			deletedCount++
		}
	}

	p.logger.InfoContext(ctx, "stored files cleaned up",
		slog.Int("files_deleted", deletedCount))

	return nil
}
