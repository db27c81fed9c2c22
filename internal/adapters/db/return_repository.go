// internal/adapters/db/return_repository.go
package db

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/stockledger/internal/core/domain"
)

var returnColumns = []string{
	"id", "warehouse_id", "client_id", "product_id", "quantity", "identifiers",
	"reason", "status", "item_condition", "inspection_notes", "inspected_by",
	"inspected_at", "received_at", "ledger_entry_id", "created_at", "updated_at",
}

type returnRepository struct {
	q querier
}

func scanReturn(row pgx.Row) (*domain.ReturnRequest, error) {
	var (
		r         domain.ReturnRequest
		condition *string
	)
	if err := row.Scan(
		&r.ID, &r.WarehouseID, &r.ClientID, &r.ProductID, &r.Quantity, &r.Identifiers,
		&r.Reason, &r.Status, &condition, &r.InspectionNotes, &r.InspectedBy,
		&r.InspectedAt, &r.ReceivedAt, &r.LedgerEntryID, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if condition != nil {
		c := domain.ItemCondition(*condition)
		r.Condition = &c
	}
	r.Identifiers = nilIfEmpty(r.Identifiers)
	return &r, nil
}

func conditionArg(c *domain.ItemCondition) any {
	if c == nil {
		return nil
	}
	return string(*c)
}

func (r *returnRepository) Create(ctx context.Context, ret *domain.ReturnRequest) error {
	query, args, err := psql.Insert("return_requests").
		Columns(returnColumns...).
		Values(
			ret.ID, ret.WarehouseID, ret.ClientID, ret.ProductID, ret.Quantity, stringsArg(ret.Identifiers),
			ret.Reason, ret.Status, conditionArg(ret.Condition), ret.InspectionNotes, ret.InspectedBy,
			ret.InspectedAt, ret.ReceivedAt, ret.LedgerEntryID, ret.CreatedAt, ret.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert return request: %w", err)
	}
	return nil
}

func (r *returnRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error) {
	return r.find(ctx, id, "")
}

func (r *returnRepository) Lock(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error) {
	return r.find(ctx, id, "FOR UPDATE")
}

func (r *returnRepository) find(ctx context.Context, id uuid.UUID, suffix string) (*domain.ReturnRequest, error) {
	qb := psql.Select(returnColumns...).
		From("return_requests").
		Where(squirrel.Eq{"id": id})
	if suffix != "" {
		qb = qb.Suffix(suffix)
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return ScanOne(r.q.QueryRow(ctx, query, args...), scanReturn)
}

func (r *returnRepository) Update(ctx context.Context, ret *domain.ReturnRequest) error {
	query, args, err := psql.Update("return_requests").
		Set("status", ret.Status).
		Set("item_condition", conditionArg(ret.Condition)).
		Set("inspection_notes", ret.InspectionNotes).
		Set("inspected_by", ret.InspectedBy).
		Set("inspected_at", ret.InspectedAt).
		Set("received_at", ret.ReceivedAt).
		Set("ledger_entry_id", ret.LedgerEntryID).
		Set("updated_at", ret.UpdatedAt).
		Where(squirrel.Eq{"id": ret.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update return request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("return request", ret.ID.String())
	}
	return nil
}
