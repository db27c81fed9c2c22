// internal/core/ports/events.go
package ports

import (
	"context"

	"github.com/ammerola/stockledger/internal/core/domain"
)

// EventPublisher delivers committed movement events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.MovementEvent) error
	Close() error
}
