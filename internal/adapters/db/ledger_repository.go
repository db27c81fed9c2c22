// internal/adapters/db/ledger_repository.go
package db

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

var ledgerColumns = []string{
	"l.id", "l.sequence", "l.warehouse_id", "l.product_id", "l.client_id",
	"l.movement_type", "l.movement_subtype", "l.quantity", "l.unique_identifiers",
	"l.batch_code", "l.notes", "l.item_condition", "l.unit_cost::text",
	"l.reference_id", "l.created_by", "l.created_at",
}

type ledgerRepository struct {
	q querier
}

func scanLedgerEntry(row pgx.Row, extra ...any) (*domain.LedgerEntry, error) {
	var (
		e    domain.LedgerEntry
		cost *string
	)
	dest := []any{
		&e.ID, &e.Sequence, &e.WarehouseID, &e.ProductID, &e.ClientID,
		&e.MovementType, &e.MovementSubtype, &e.Quantity, &e.UniqueIdentifiers,
		&e.BatchCode, &e.Notes, &e.ItemCondition, &cost,
		&e.ReferenceID, &e.CreatedBy, &e.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	unitCost, err := parseNumeric(cost)
	if err != nil {
		return nil, fmt.Errorf("failed to parse unit cost: %w", err)
	}
	e.UnitCost = unitCost
	e.UniqueIdentifiers = nilIfEmpty(e.UniqueIdentifiers)
	return &e, nil
}

func scanEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	return scanLedgerEntry(row)
}

// Append inserts the entry and records the commit sequence assigned to it.
func (r *ledgerRepository) Append(ctx context.Context, e *domain.LedgerEntry) error {
	query, args, err := psql.Insert("ledger_entries").
		Columns(
			"id", "warehouse_id", "product_id", "client_id",
			"movement_type", "movement_subtype", "quantity", "unique_identifiers",
			"batch_code", "notes", "item_condition", "unit_cost",
			"reference_id", "created_by", "created_at",
		).
		Values(
			e.ID, e.WarehouseID, e.ProductID, e.ClientID,
			e.MovementType, e.MovementSubtype, e.Quantity, stringsArg(e.UniqueIdentifiers),
			e.BatchCode, e.Notes, e.ItemCondition, numericArg(e.UnitCost),
			e.ReferenceID, e.CreatedBy, e.CreatedAt,
		).
		Suffix("RETURNING sequence").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&e.Sequence); err != nil {
		switch pgCode(err) {
		case checkViolation:
			return domain.NewValidationError("ledger entry rejected: %v", err)
		case uniqueViolation:
			if e.ReferenceID != nil {
				return domain.NewAlreadyAppliedError(e.ReferenceID.String())
			}
		}
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

func (r *ledgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	query, args, err := psql.Select(ledgerColumns...).
		From("ledger_entries l").
		Where(squirrel.Eq{"l.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return ScanOne(r.q.QueryRow(ctx, query, args...), scanEntry)
}

func (r *ledgerRepository) FindByReference(ctx context.Context, ref uuid.UUID, subtype domain.MovementSubtype) (*domain.LedgerEntry, error) {
	query, args, err := psql.Select(ledgerColumns...).
		From("ledger_entries l").
		Where(squirrel.Eq{"l.reference_id": ref, "l.movement_subtype": subtype}).
		OrderBy("l.sequence").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return ScanOne(r.q.QueryRow(ctx, query, args...), scanEntry)
}

// ListByKey returns the key's entries in commit order, the order replay needs.
func (r *ledgerRepository) ListByKey(ctx context.Context, key domain.SnapshotKey) ([]domain.LedgerEntry, error) {
	query, args, err := psql.Select(ledgerColumns...).
		From("ledger_entries l").
		Where(keyWhere(key, "l.")).
		OrderBy("l.sequence").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	entries, err := ScanMany(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger entries: %w", err)
	}
	return entries, nil
}

func (r *ledgerRepository) Query(ctx context.Context, q ports.LedgerQuery) ([]domain.LedgerEntryView, int64, error) {
	where := squirrel.And{}
	if q.WarehouseID != nil {
		where = append(where, squirrel.Eq{"l.warehouse_id": *q.WarehouseID})
	}
	if q.ClientID != nil {
		where = append(where, squirrel.Eq{"l.client_id": *q.ClientID})
	}
	if q.ProductID != nil {
		where = append(where, squirrel.Eq{"l.product_id": *q.ProductID})
	}
	if q.Subtype != "" {
		where = append(where, squirrel.Eq{"l.movement_subtype": q.Subtype})
	}
	if q.From != nil {
		where = append(where, squirrel.GtOrEq{"l.created_at": *q.From})
	}
	if q.To != nil {
		where = append(where, squirrel.Lt{"l.created_at": *q.To})
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("ledger_entries l").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := r.q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	cols := append(append([]string{}, ledgerColumns...), "p.name", "p.sku")
	qb := psql.Select(cols...).
		From("ledger_entries l").
		Join("products p ON p.id = l.product_id").
		Where(where).
		OrderBy("l.sequence DESC")
	if q.PageSize > 0 {
		qb = qb.Limit(uint64(q.PageSize)).Offset(uint64((max(q.Page, 1) - 1) * q.PageSize))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query ledger: %w", err)
	}
	views, err := ScanMany(rows, func(row pgx.Row) (*domain.LedgerEntryView, error) {
		var name, sku string
		e, err := scanLedgerEntry(row, &name, &sku)
		if err != nil {
			return nil, err
		}
		return &domain.LedgerEntryView{LedgerEntry: *e, ProductName: name, ProductSKU: sku}, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan ledger entries: %w", err)
	}
	return views, total, nil
}

func (r *ledgerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Delete("ledger_entries").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete ledger entry: %w", err)
	}
	return nil
}
