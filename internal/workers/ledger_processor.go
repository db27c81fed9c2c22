// internal/workers/ledger_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/stockledger/internal/core/ports"
)

// Locker hands out named locks that expire on their own
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, error)
}

// Relayer publishes pending outbox events
type Relayer interface {
	Relay(ctx context.Context, batchSize int) (int, error)
}

// LedgerProcessor runs the reconcile sweep and the outbox relay. Both take a
// lock so that overlapping schedules on several workers run once.
type LedgerProcessor struct {
	movements      ports.MovementService
	relay          Relayer
	locker         Locker
	reconcileBatch int
	outboxBatch    int
	lockTTL        time.Duration
	logger         *slog.Logger
}

// NewLedgerProcessor creates a new ledger processor
func NewLedgerProcessor(movements ports.MovementService, relay Relayer, locker Locker,
	reconcileBatch, outboxBatch int, lockTTL time.Duration, logger *slog.Logger) *LedgerProcessor {
	return &LedgerProcessor{
		movements:      movements,
		relay:          relay,
		locker:         locker,
		reconcileBatch: reconcileBatch,
		outboxBatch:    outboxBatch,
		lockTTL:        lockTTL,
		logger:         logger.With(slog.String("processor", "ledger")),
	}
}

// ProcessReconcile handles TypeReconcile.
func (p *LedgerProcessor) ProcessReconcile(ctx context.Context, t *asynq.Task) error {
	var payload ReconcilePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	if payload.Key != nil {
		res, err := p.movements.Reconcile(ctx, *payload.Key)
		if err != nil {
			return fmt.Errorf("failed to reconcile %s: %w", payload.Key, err)
		}
		p.logger.InfoContext(ctx, "snapshot reconciled",
			slog.String("snapshot_key", payload.Key.String()),
			slog.Bool("repaired", res.Repaired))
		return nil
	}

	return p.locked(ctx, "reconcile-sweep", func(ctx context.Context) error {
		summary, err := p.movements.ReconcileAll(ctx, p.reconcileBatch)
		if err != nil {
			return fmt.Errorf("reconcile sweep stopped: %w", err)
		}
		if summary.Failed > 0 {
			p.logger.WarnContext(ctx, "reconcile sweep had failures",
				slog.Int("checked", summary.Checked),
				slog.Int("failed", summary.Failed))
		}
		return nil
	})
}

// ProcessOutbox handles TypeOutboxRelay. A publish failure is retried on the
// next schedule, so it is logged and not returned.
func (p *LedgerProcessor) ProcessOutbox(ctx context.Context, t *asynq.Task) error {
	return p.locked(ctx, "outbox-relay", func(ctx context.Context) error {
		n, err := p.relay.Relay(ctx, p.outboxBatch)
		if err != nil {
			p.logger.WarnContext(ctx, "outbox relay interrupted",
				slog.Int("published", n),
				slog.String("error", err.Error()))
			return nil
		}
		if n > 0 {
			p.logger.DebugContext(ctx, "outbox relayed", slog.Int("published", n))
		}
		return nil
	})
}

func (p *LedgerProcessor) locked(ctx context.Context, name string, fn func(context.Context) error) error {
	release, err := p.locker.TryLock(ctx, name, p.lockTTL)
	if err != nil {
		return err
	}
	if release == nil {
		p.logger.InfoContext(ctx, "skipping, lock held elsewhere", slog.String("lock", name))
		return nil
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			p.logger.WarnContext(ctx, "failed to release lock",
				slog.String("lock", name),
				slog.String("error", err.Error()))
		}
	}()
	return fn(ctx)
}
