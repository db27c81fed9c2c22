// internal/adapters/db/product_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

var productColumns = []string{
	"id", "warehouse_id", "client_id", "name", "sku", "product_type",
	"unit_cost::text", "created_at", "updated_at",
}

type productRepository struct {
	q      querier
	logger *slog.Logger
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p    domain.Product
		cost *string
	)
	if err := row.Scan(
		&p.ID, &p.WarehouseID, &p.ClientID, &p.Name, &p.SKU, &p.Type,
		&cost, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	unitCost, err := parseNumeric(cost)
	if err != nil {
		return nil, fmt.Errorf("failed to parse unit cost: %w", err)
	}
	p.UnitCost = unitCost
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	query, args, err := psql.Insert("products").
		Columns("id", "warehouse_id", "client_id", "name", "sku", "product_type", "unit_cost", "created_at", "updated_at").
		Values(p.ID, p.WarehouseID, p.ClientID, p.Name, p.SKU, p.Type, numericArg(p.UnitCost), p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if pgCode(err) == uniqueViolation {
			return domain.NewValidationError("sku %q already exists for this warehouse and client", p.SKU)
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}

	r.logger.DebugContext(ctx, "product saved",
		slog.String("product_id", p.ID.String()),
		slog.String("type", string(p.Type)))
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query, args, err := psql.Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return ScanOne(r.q.QueryRow(ctx, query, args...), scanProduct)
}

func (r *productRepository) FindByIdentity(ctx context.Context, warehouseID, clientID uuid.UUID, sku, name string) (*domain.Product, error) {
	qb := psql.Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"warehouse_id": warehouseID, "client_id": clientID}).
		OrderBy("created_at").
		Limit(1)
	if sku != "" {
		qb = qb.Where("LOWER(sku) = LOWER(?)", strings.TrimSpace(sku))
	} else {
		qb = qb.Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return ScanOne(r.q.QueryRow(ctx, query, args...), scanProduct)
}

func (r *productRepository) List(ctx context.Context, f ports.ProductFilter) ([]*domain.Product, int64, error) {
	where := squirrel.And{}
	if f.WarehouseID != nil {
		where = append(where, squirrel.Eq{"warehouse_id": *f.WarehouseID})
	}
	if f.ClientID != nil {
		where = append(where, squirrel.Eq{"client_id": *f.ClientID})
	}
	if f.Type != "" {
		where = append(where, squirrel.Eq{"product_type": f.Type})
	}
	if f.Search != "" {
		where = append(where, squirrel.ILike{"name || ' ' || sku": "%" + f.Search + "%"})
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("products").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := r.q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	qb := psql.Select(productColumns...).From("products").Where(where).OrderBy("name", "id")
	if f.PageSize > 0 {
		qb = qb.Limit(uint64(f.PageSize)).Offset(uint64((max(f.Page, 1) - 1) * f.PageSize))
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	products, err := ScanMany(rows, scanProduct)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan products: %w", err)
	}

	out := make([]*domain.Product, len(products))
	for i := range products {
		out[i] = &products[i]
	}
	return out, total, nil
}

// Delete removes a product; snapshots, identifiers and ledger rows cascade.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Delete("products").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
