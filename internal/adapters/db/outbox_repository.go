// internal/adapters/db/outbox_repository.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/stockledger/internal/core/domain"
)

type outboxRepository struct {
	q querier
}

func (r *outboxRepository) Enqueue(ctx context.Context, event domain.MovementEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal movement event: %w", err)
	}
	query, args, err := psql.Insert("ledger_outbox").
		Columns("id", "payload", "created_at").
		Values(event.EventID, payload, time.Now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to enqueue movement event: %w", err)
	}
	return nil
}

// Pending returns unpublished messages in enqueue order.
func (r *outboxRepository) Pending(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	qb := psql.Select("id", "payload", "attempts", "created_at", "published_at").
		From("ledger_outbox").
		Where(squirrel.Eq{"published_at": nil}).
		OrderBy("seq")
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load outbox: %w", err)
	}
	msgs, err := ScanMany(rows, func(row pgx.Row) (*domain.OutboxMessage, error) {
		var (
			m       domain.OutboxMessage
			payload []byte
		)
		if err := row.Scan(&m.ID, &payload, &m.Attempts, &m.CreatedAt, &m.PublishedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &m.Event); err != nil {
			return nil, fmt.Errorf("failed to decode outbox payload %s: %w", m.ID, err)
		}
		return &m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan outbox: %w", err)
	}
	return msgs, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := psql.Update("ledger_outbox").
		Set("published_at", at).
		Where("id = ANY(?)", ids).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark outbox published: %w", err)
	}
	return nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Update("ledger_outbox").
		Set("attempts", squirrel.Expr("attempts + 1")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark outbox attempt: %w", err)
	}
	return nil
}
