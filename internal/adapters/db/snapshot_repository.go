// internal/adapters/db/snapshot_repository.go
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

var snapshotColumns = []string{
	"s.id", "s.warehouse_id", "s.product_id", "s.client_id",
	"s.quantity", "s.available_qty", "s.damaged_qty", "s.unit_cost::text", "s.updated_at",
}

type snapshotRepository struct {
	q querier
}

func scanSnapshot(row pgx.Row) (*domain.InventorySnapshot, error) {
	var (
		s    domain.InventorySnapshot
		cost string
	)
	if err := row.Scan(
		&s.ID, &s.WarehouseID, &s.ProductID, &s.ClientID,
		&s.Quantity, &s.AvailableQty, &s.DamagedQty, &cost, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	unitCost, err := decimal.NewFromString(cost)
	if err != nil {
		return nil, fmt.Errorf("failed to parse unit cost: %w", err)
	}
	s.UnitCost = unitCost
	return &s, nil
}

func keyWhere(key domain.SnapshotKey, prefix string) squirrel.Eq {
	return squirrel.Eq{
		prefix + "warehouse_id": key.WarehouseID,
		prefix + "product_id":   key.ProductID,
		prefix + "client_id":    key.ClientID,
	}
}

// Lock inserts the empty row when missing, then takes a row lock on it.
func (r *snapshotRepository) Lock(ctx context.Context, key domain.SnapshotKey) (*domain.InventorySnapshot, error) {
	empty := domain.NewSnapshot(key)
	insert, args, err := psql.Insert("inventory_snapshots").
		Columns("id", "warehouse_id", "product_id", "client_id", "updated_at").
		Values(empty.ID, key.WarehouseID, key.ProductID, key.ClientID, time.Now().UTC()).
		Suffix("ON CONFLICT ON CONSTRAINT inventory_snapshots_key DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := r.q.Exec(ctx, insert, args...); err != nil {
		return nil, fmt.Errorf("failed to create snapshot row: %w", err)
	}

	query, args, err := psql.Select(snapshotColumns...).
		From("inventory_snapshots s").
		Where(keyWhere(key, "s.")).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	snap, err := ScanOne(r.q.QueryRow(ctx, query, args...), scanSnapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to lock snapshot: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("snapshot %s vanished after insert", key)
	}
	return snap, nil
}

// ApplyDelta increments the counters in place. The table's CHECK constraints
// reject any update that would leave a counter negative or unbalanced.
func (r *snapshotRepository) ApplyDelta(ctx context.Context, key domain.SnapshotKey, delta domain.SnapshotDelta, unitCost *decimal.Decimal) (*domain.InventorySnapshot, error) {
	ub := psql.Update("inventory_snapshots s").
		Set("quantity", squirrel.Expr("s.quantity + ?", delta.Quantity)).
		Set("available_qty", squirrel.Expr("s.available_qty + ?", delta.Available)).
		Set("damaged_qty", squirrel.Expr("s.damaged_qty + ?", delta.Damaged)).
		Set("updated_at", time.Now().UTC()).
		Where(keyWhere(key, "s.")).
		Suffix("RETURNING " + strings.Join(snapshotColumns, ", "))
	if unitCost != nil {
		ub = ub.Set("unit_cost", numericArg(unitCost))
	}

	query, args, err := ub.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	snap, err := ScanOne(r.q.QueryRow(ctx, query, args...), scanSnapshot)
	if err != nil {
		if pgCode(err) == checkViolation {
			return nil, fmt.Errorf("snapshot %s rejected delta %+v: %w", key, delta, err)
		}
		return nil, fmt.Errorf("failed to apply snapshot delta: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("snapshot %s does not exist", key)
	}
	return snap, nil
}

// Replace overwrites the counters with values rebuilt from the ledger.
func (r *snapshotRepository) Replace(ctx context.Context, snap *domain.InventorySnapshot) error {
	query, args, err := psql.Insert("inventory_snapshots").
		Columns("id", "warehouse_id", "product_id", "client_id", "quantity", "available_qty", "damaged_qty", "unit_cost", "updated_at").
		Values(snap.ID, snap.WarehouseID, snap.ProductID, snap.ClientID,
			snap.Quantity, snap.AvailableQty, snap.DamagedQty, snap.UnitCost.String(), time.Now().UTC()).
		Suffix(`ON CONFLICT ON CONSTRAINT inventory_snapshots_key DO UPDATE SET
			quantity = EXCLUDED.quantity,
			available_qty = EXCLUDED.available_qty,
			damaged_qty = EXCLUDED.damaged_qty,
			unit_cost = EXCLUDED.unit_cost,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepository) Get(ctx context.Context, key domain.SnapshotKey) (*domain.InventorySnapshot, error) {
	query, args, err := psql.Select(snapshotColumns...).
		From("inventory_snapshots s").
		Where(keyWhere(key, "s.")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return ScanOne(r.q.QueryRow(ctx, query, args...), scanSnapshot)
}

func (r *snapshotRepository) List(ctx context.Context, f ports.SnapshotFilter) ([]ports.SnapshotView, error) {
	cols := append(append([]string{}, snapshotColumns...), "p.name", "p.sku", "p.product_type", "p.unit_cost::text")
	qb := psql.Select(cols...).
		From("inventory_snapshots s").
		Join("products p ON p.id = s.product_id").
		OrderBy("p.name", "s.product_id")
	if f.WarehouseID != nil {
		qb = qb.Where(squirrel.Eq{"s.warehouse_id": *f.WarehouseID})
	}
	if f.ClientID != nil {
		qb = qb.Where(squirrel.Eq{"s.client_id": *f.ClientID})
	}
	if f.ProductID != nil {
		qb = qb.Where(squirrel.Eq{"s.product_id": *f.ProductID})
	}
	if f.InStockOnly {
		qb = qb.Where(squirrel.Gt{"s.quantity": 0})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	views, err := ScanMany(rows, func(row pgx.Row) (*ports.SnapshotView, error) {
		var (
			v           ports.SnapshotView
			cost        string
			productCost *string
		)
		if err := row.Scan(
			&v.ID, &v.WarehouseID, &v.ProductID, &v.ClientID,
			&v.Quantity, &v.AvailableQty, &v.DamagedQty, &cost, &v.UpdatedAt,
			&v.ProductName, &v.ProductSKU, &v.ProductType, &productCost,
		); err != nil {
			return nil, err
		}
		unitCost, err := decimal.NewFromString(cost)
		if err != nil {
			return nil, fmt.Errorf("failed to parse unit cost: %w", err)
		}
		v.UnitCost = unitCost
		if v.ProductCost, err = parseNumeric(productCost); err != nil {
			return nil, fmt.Errorf("failed to parse product cost: %w", err)
		}
		return &v, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshots: %w", err)
	}
	return views, nil
}

// Keys pages through snapshot keys ordered by product id.
func (r *snapshotRepository) Keys(ctx context.Context, afterProductID uuid.UUID, limit int) ([]domain.SnapshotKey, error) {
	qb := psql.Select("warehouse_id", "product_id", "client_id").
		From("inventory_snapshots").
		Where(squirrel.Gt{"product_id::text": afterProductID.String()}).
		OrderBy("product_id::text")
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot keys: %w", err)
	}
	keys, err := ScanMany(rows, func(row pgx.Row) (*domain.SnapshotKey, error) {
		var k domain.SnapshotKey
		if err := row.Scan(&k.WarehouseID, &k.ProductID, &k.ClientID); err != nil {
			return nil, err
		}
		return &k, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot keys: %w", err)
	}
	return keys, nil
}
