// internal/adapters/events/log_publisher.go
package events

import (
	"context"
	"log/slog"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// LogPublisher writes events to the log. It is used when Kafka is disabled so
// the outbox still drains.
type LogPublisher struct {
	logger *slog.Logger
}

var _ ports.EventPublisher = (*LogPublisher)(nil)

// NewLogPublisher creates a log-only publisher
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With(slog.String("component", "log_publisher"))}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.MovementEvent) error {
	p.logger.InfoContext(ctx, "movement event",
		slog.String("event_id", event.EventID.String()),
		slog.String("event_type", event.EventType),
		slog.String("ledger_id", event.Entry.ID.String()),
		slog.String("snapshot_key", event.Entry.Key().String()),
		slog.Int("quantity", event.Quantity),
		slog.Int("available", event.Available))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
