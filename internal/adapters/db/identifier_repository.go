// internal/adapters/db/identifier_repository.go
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/stockledger/internal/core/domain"
)

var identifierColumns = []string{
	"warehouse_id", "product_id", "client_id", "serial_number",
	"status", "last_ledger_id", "created_at", "updated_at",
}

type identifierRepository struct {
	q querier
}

func scanIdentifier(row pgx.Row) (*domain.Identifier, error) {
	var id domain.Identifier
	if err := row.Scan(
		&id.WarehouseID, &id.ProductID, &id.ClientID, &id.SerialNumber,
		&id.Status, &id.LastLedgerID, &id.CreatedAt, &id.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &id, nil
}

// Insert registers serials. The (warehouse_id, serial_number) primary key is
// the arbiter: serials another transaction already holds are skipped by the
// conflict clause and reported as duplicates.
func (r *identifierRepository) Insert(ctx context.Context, ids []domain.Identifier) error {
	if len(ids) == 0 {
		return nil
	}

	ib := psql.Insert("identifiers").Columns(identifierColumns...)
	for _, id := range ids {
		ib = ib.Values(id.WarehouseID, id.ProductID, id.ClientID, id.SerialNumber,
			id.Status, id.LastLedgerID, id.CreatedAt, id.UpdatedAt)
	}
	query, args, err := ib.
		Suffix("ON CONFLICT (warehouse_id, serial_number) DO NOTHING RETURNING serial_number").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		if pgCode(err) == uniqueViolation {
			return domain.NewDuplicateIdentifierError(serialsOf(ids)...)
		}
		return fmt.Errorf("failed to insert identifiers: %w", err)
	}
	inserted := make(map[string]bool, len(ids))
	for rows.Next() {
		var serial string
		if err := rows.Scan(&serial); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan inserted identifier: %w", err)
		}
		inserted[serial] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		if pgCode(err) == uniqueViolation {
			return domain.NewDuplicateIdentifierError(serialsOf(ids)...)
		}
		return fmt.Errorf("failed to insert identifiers: %w", err)
	}

	var dups []string
	for _, id := range ids {
		if !inserted[id.SerialNumber] {
			dups = append(dups, id.SerialNumber)
		}
	}
	if len(dups) > 0 {
		return domain.NewDuplicateIdentifierError(dups...)
	}
	return nil
}

func (r *identifierRepository) FindBySerials(ctx context.Context, warehouseID uuid.UUID, serials []string) ([]domain.Identifier, error) {
	if len(serials) == 0 {
		return nil, nil
	}
	query, args, err := psql.Select(identifierColumns...).
		From("identifiers").
		Where(squirrel.Eq{"warehouse_id": warehouseID}).
		Where("serial_number = ANY(?)", serials).
		OrderBy("serial_number").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find identifiers: %w", err)
	}
	found, err := ScanMany(rows, scanIdentifier)
	if err != nil {
		return nil, fmt.Errorf("failed to scan identifiers: %w", err)
	}
	return found, nil
}

func (r *identifierRepository) UpdateStatus(ctx context.Context, warehouseID uuid.UUID, serials []string, status domain.IdentifierStatus, ledgerID uuid.UUID) error {
	if len(serials) == 0 {
		return nil
	}
	query, args, err := psql.Update("identifiers").
		Set("status", status).
		Set("last_ledger_id", ledgerID).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"warehouse_id": warehouseID}).
		Where("serial_number = ANY(?)", serials).
		Suffix("RETURNING serial_number").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update identifiers: %w", err)
	}
	updated := make(map[string]bool, len(serials))
	for rows.Next() {
		var serial string
		if err := rows.Scan(&serial); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan updated identifier: %w", err)
		}
		updated[serial] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to update identifiers: %w", err)
	}

	var missing []string
	for _, s := range serials {
		if !updated[s] {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return domain.NewUnknownIdentifierError(missing...)
	}
	return nil
}

func (r *identifierRepository) CountByStatus(ctx context.Context, key domain.SnapshotKey, status domain.IdentifierStatus) (int, error) {
	query, args, err := psql.Select("COUNT(*)").
		From("identifiers").
		Where(keyWhere(key, "")).
		Where(squirrel.Eq{"status": status}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}
	var n int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count identifiers: %w", err)
	}
	return n, nil
}

func serialsOf(ids []domain.Identifier) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.SerialNumber
	}
	return out
}
