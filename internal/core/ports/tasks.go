// internal/core/ports/tasks.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/core/domain"
)

// Export status values
const (
	ExportQueued    = "queued"
	ExportRunning   = "running"
	ExportCompleted = "completed"
	ExportFailed    = "failed"
)

// ExportRequest asks the worker to render an inventory export to storage
type ExportRequest struct {
	ID          string         `json:"id"`
	Format      string         `json:"format"`
	Filter      SnapshotFilter `json:"filter"`
	RequestedBy string         `json:"requested_by,omitempty"`
}

// ExportStatus tracks an asynchronous export
type ExportStatus struct {
	ID        string     `json:"id"`
	Format    string     `json:"format"`
	Status    string     `json:"status"`
	FileKey   string     `json:"file_key,omitempty"`
	URL       string     `json:"url,omitempty"`
	Rows      int        `json:"rows"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// TaskQueue hands work to the background worker
type TaskQueue interface {
	EnqueueImport(ctx context.Context, jobID uuid.UUID, format string) error
	EnqueueExport(ctx context.Context, req ExportRequest) error
	// EnqueueReconcile schedules a replay of one key, or a full sweep when key is nil.
	EnqueueReconcile(ctx context.Context, key *domain.SnapshotKey) error
}

// ExportStatusStore keeps export progress. GetExport returns nil, nil for
// unknown or expired ids.
type ExportStatusStore interface {
	SaveExport(ctx context.Context, status *ExportStatus) error
	GetExport(ctx context.Context, id string) (*ExportStatus, error)
}
