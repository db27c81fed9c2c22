// internal/workers/scheduler.go
package workers

import (
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/ammerola/stockledger/internal/pkg/config"
)

// RegisterPeriodicTasks registers the reconcile sweep, the outbox relay and
// file cleanup on s.
func RegisterPeriodicTasks(s *asynq.Scheduler, cfg *config.Config) error {
	sweep, err := NewReconcileTask(nil)
	if err != nil {
		return err
	}

	entries := []struct {
		spec string
		task *asynq.Task
		opts []asynq.Option
	}{
		{
			spec: cfg.Ledger.ReconcileSchedule,
			task: sweep,
			opts: []asynq.Option{asynq.Queue(QueueLow), asynq.MaxRetry(1)},
		},
		{
			spec: cfg.Ledger.OutboxSchedule,
			task: asynq.NewTask(TypeOutboxRelay, nil),
			opts: []asynq.Option{asynq.Queue(QueueCritical), asynq.MaxRetry(0)},
		},
		{
			spec: fmt.Sprintf("@every %s", cfg.FileProcessing.CleanupInterval),
			task: asynq.NewTask(TypeCleanupFiles, nil),
			opts: []asynq.Option{asynq.Queue(QueueLow)},
		},
	}

	for _, e := range entries {
		if _, err := s.Register(e.spec, e.task, e.opts...); err != nil {
			return fmt.Errorf("failed to register %s at %q: %w", e.task.Type(), e.spec, err)
		}
	}
	return nil
}
