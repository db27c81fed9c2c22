// internal/core/services/outbox.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/core/ports"
)

// OutboxRelay publishes committed movement events
type OutboxRelay struct {
	store     ports.Store
	publisher ports.EventPublisher
	logger    *slog.Logger
}

// NewOutboxRelay creates a new outbox relay
func NewOutboxRelay(store ports.Store, publisher ports.EventPublisher, logger *slog.Logger) *OutboxRelay {
	return &OutboxRelay{
		store:     store,
		publisher: publisher,
		logger:    logger.With(slog.String("service", "outbox")),
	}
}

// Relay publishes up to batchSize pending events in commit order and stops at
// the first failure so later events are never published ahead of it.
func (r *OutboxRelay) Relay(ctx context.Context, batchSize int) (int, error) {
	outbox := r.store.Repositories().Outbox

	pending, err := outbox.Pending(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending events: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	published := make([]uuid.UUID, 0, len(pending))
	var publishErr error
	for _, msg := range pending {
		if err := r.publisher.Publish(ctx, msg.Event); err != nil {
			publishErr = err
			if markErr := outbox.MarkFailed(ctx, msg.ID); markErr != nil {
				r.logger.ErrorContext(ctx, "failed to record publish attempt",
					slog.String("event_id", msg.ID.String()),
					slog.String("error", markErr.Error()))
			}
			r.logger.WarnContext(ctx, "failed to publish movement event",
				slog.String("event_id", msg.ID.String()),
				slog.Int("attempts", msg.Attempts+1),
				slog.String("error", err.Error()))
			break
		}
		published = append(published, msg.ID)
	}

	if len(published) > 0 {
		if err := outbox.MarkPublished(ctx, published, time.Now().UTC()); err != nil {
			return 0, fmt.Errorf("failed to mark events published: %w", err)
		}
	}

	r.logger.InfoContext(ctx, "outbox relayed",
		slog.Int("pending", len(pending)),
		slog.Int("published", len(published)))

	if publishErr != nil {
		return len(published), fmt.Errorf("failed to publish event: %w", publishErr)
	}
	return len(published), nil
}
