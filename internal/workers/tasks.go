// internal/workers/tasks.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

const (
	TypeImportProcess   = "import:process"
	TypeExportInventory = "export:inventory"
	TypeReconcile       = "ledger:reconcile"
	TypeOutboxRelay     = "ledger:outbox_relay"
	TypeCleanupFiles    = "cleanup:files"
)

// Queue names, matching the priorities in ASYNQ_QUEUES
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// ImportPayload is the payload of an import task
type ImportPayload struct {
	JobID  uuid.UUID `json:"job_id"`
	Format string    `json:"format"`
}

// ReconcilePayload names one snapshot key; a nil key sweeps every snapshot.
type ReconcilePayload struct {
	Key *domain.SnapshotKey `json:"key,omitempty"`
}

// NewImportTask builds the task that runs an uploaded import file.
func NewImportTask(jobID uuid.UUID, format string) (*asynq.Task, error) {
	payload, err := json.Marshal(ImportPayload{JobID: jobID, Format: format})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal import payload: %w", err)
	}
	return asynq.NewTask(TypeImportProcess, payload), nil
}

// NewExportTask builds the task that renders an export to storage.
func NewExportTask(req ports.ExportRequest) (*asynq.Task, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export payload: %w", err)
	}
	return asynq.NewTask(TypeExportInventory, payload), nil
}

// NewReconcileTask builds a reconcile task for key, or a full sweep when key is nil.
func NewReconcileTask(key *domain.SnapshotKey) (*asynq.Task, error) {
	payload, err := json.Marshal(ReconcilePayload{Key: key})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reconcile payload: %w", err)
	}
	return asynq.NewTask(TypeReconcile, payload), nil
}

// Client enqueues background tasks
type Client struct {
	client   *asynq.Client
	retryMax int
	timeout  time.Duration
	logger   *slog.Logger
}

// Statically assert that *Client implements ports.TaskQueue.
var _ ports.TaskQueue = (*Client)(nil)

// NewClient wraps an asynq client
func NewClient(client *asynq.Client, retryMax int, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		client:   client,
		retryMax: retryMax,
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "task_queue")),
	}
}

// EnqueueImport queues the import job on the critical queue.
func (c *Client) EnqueueImport(ctx context.Context, jobID uuid.UUID, format string) error {
	task, err := NewImportTask(jobID, format)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task,
		asynq.Queue(QueueCritical),
		asynq.TaskID("import:"+jobID.String()),
		asynq.MaxRetry(c.retryMax),
		asynq.Timeout(c.timeout))
}

// EnqueueExport queues an export render.
func (c *Client) EnqueueExport(ctx context.Context, req ports.ExportRequest) error {
	task, err := NewExportTask(req)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task,
		asynq.Queue(QueueDefault),
		asynq.TaskID("export:"+req.ID),
		asynq.MaxRetry(c.retryMax),
		asynq.Timeout(c.timeout))
}

// EnqueueReconcile queues a replay of key, or a sweep when key is nil.
// Duplicate requests within a minute collapse into one task.
func (c *Client) EnqueueReconcile(ctx context.Context, key *domain.SnapshotKey) error {
	task, err := NewReconcileTask(key)
	if err != nil {
		return err
	}
	err = c.enqueue(ctx, task,
		asynq.Queue(QueueLow),
		asynq.Unique(time.Minute),
		asynq.MaxRetry(1))
	if err != nil && errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	info, err := c.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}
	c.logger.InfoContext(ctx, "task enqueued",
		slog.String("type", task.Type()),
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue))
	return nil
}
