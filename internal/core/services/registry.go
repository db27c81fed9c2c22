// internal/core/services/registry.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// IdentifierRegistry tracks serial numbers and their lifecycle. Uniqueness of
// (warehouse_id, serial_number) is enforced by the store; lookups made here
// only produce better error messages.
type IdentifierRegistry struct {
	store  ports.Store
	logger *slog.Logger
}

var _ ports.IdentifierService = (*IdentifierRegistry)(nil)

// NewIdentifierRegistry creates a new identifier registry
func NewIdentifierRegistry(store ports.Store, logger *slog.Logger) *IdentifierRegistry {
	return &IdentifierRegistry{
		store:  store,
		logger: logger.With(slog.String("service", "identifier_registry")),
	}
}

// Register records a serial as IN_STOCK. Registering the same serial again for
// the same product is a no-op; a different product is a duplicate.
func (r *IdentifierRegistry) Register(ctx context.Context, key domain.SnapshotKey, serial string, ledgerID uuid.UUID) error {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return domain.NewValidationError("serial_number is required")
	}

	err := r.insertOnce(ctx, key, serial, ledgerID)
	if !errors.Is(err, domain.ErrDuplicateIdentifier) {
		return err
	}

	// A concurrent registration can win between the lookup and the insert.
	// The failed transaction is gone, so the row is read again outside it.
	existing, lookupErr := r.store.Repositories().Identifiers.FindBySerials(ctx, key.WarehouseID, []string{serial})
	if lookupErr != nil {
		return fmt.Errorf("failed to look up identifier: %w", lookupErr)
	}
	if len(existing) > 0 && existing[0].ProductID == key.ProductID {
		r.logger.DebugContext(ctx, "identifier registered concurrently for the same product",
			slog.String("serial", serial),
			slog.String("product_id", key.ProductID.String()))
		return nil
	}
	return err
}

func (r *IdentifierRegistry) insertOnce(ctx context.Context, key domain.SnapshotKey, serial string, ledgerID uuid.UUID) error {
	return r.store.Transaction(ctx, func(ctx context.Context, repos ports.Repositories) error {
		existing, err := repos.Identifiers.FindBySerials(ctx, key.WarehouseID, []string{serial})
		if err != nil {
			return fmt.Errorf("failed to look up identifier: %w", err)
		}
		if len(existing) > 0 {
			if existing[0].ProductID == key.ProductID {
				return nil
			}
			return domain.NewDuplicateIdentifierError(serial)
		}

		now := time.Now().UTC()
		err = repos.Identifiers.Insert(ctx, []domain.Identifier{{
			WarehouseID:  key.WarehouseID,
			ProductID:    key.ProductID,
			ClientID:     key.ClientID,
			SerialNumber: serial,
			Status:       domain.IdentifierInStock,
			LastLedgerID: ledgerID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}})
		if err != nil {
			return fmt.Errorf("failed to register identifier: %w", err)
		}
		return nil
	})
}

// Transition moves a single serial to a new status.
func (r *IdentifierRegistry) Transition(ctx context.Context, warehouseID uuid.UUID, serial string, to domain.IdentifierStatus,
	subtype domain.MovementSubtype, ledgerID uuid.UUID) error {
	return r.store.Transaction(ctx, func(ctx context.Context, repos ports.Repositories) error {
		found, err := repos.Identifiers.FindBySerials(ctx, warehouseID, []string{serial})
		if err != nil {
			return fmt.Errorf("failed to look up identifier: %w", err)
		}
		if len(found) == 0 {
			return domain.NewUnknownIdentifierError(serial)
		}
		if !domain.CanTransition(found[0].Status, to, subtype) {
			return domain.NewInvalidTransitionError(string(found[0].Status), string(to))
		}
		if err := repos.Identifiers.UpdateStatus(ctx, warehouseID, []string{serial}, to, ledgerID); err != nil {
			return fmt.Errorf("failed to update identifier status: %w", err)
		}
		return nil
	})
}

// CheckBulk reports every serial that cannot be registered in the warehouse,
// either because it repeats within serials or because it already exists.
func (r *IdentifierRegistry) CheckBulk(ctx context.Context, warehouseID uuid.UUID, serials []string) ([]domain.IdentifierConflict, error) {
	distinct, repeated := domain.DistinctIdentifiers(serials)

	conflicts := make([]domain.IdentifierConflict, 0, len(repeated))
	for _, s := range repeated {
		conflicts = append(conflicts, domain.IdentifierConflict{SerialNumber: s, Reason: domain.ConflictRepeated})
	}

	if len(distinct) == 0 {
		return conflicts, nil
	}

	existing, err := r.store.Repositories().Identifiers.FindBySerials(ctx, warehouseID, distinct)
	if err != nil {
		return nil, fmt.Errorf("failed to check identifiers: %w", err)
	}
	for _, id := range existing {
		productID, status := id.ProductID, id.Status
		conflicts = append(conflicts, domain.IdentifierConflict{
			SerialNumber: id.SerialNumber,
			Reason:       domain.ConflictRegistered,
			ProductID:    &productID,
			Status:       &status,
		})
	}

	if len(conflicts) > 0 {
		r.logger.InfoContext(ctx, "identifier conflicts found",
			slog.String("warehouse_id", warehouseID.String()),
			slog.Int("checked", len(serials)),
			slog.Int("conflicts", len(conflicts)))
	}
	return conflicts, nil
}

// Lookup returns a serial's registry row.
func (r *IdentifierRegistry) Lookup(ctx context.Context, warehouseID uuid.UUID, serial string) (*domain.Identifier, error) {
	found, err := r.store.Repositories().Identifiers.FindBySerials(ctx, warehouseID, []string{serial})
	if err != nil {
		return nil, fmt.Errorf("failed to look up identifier: %w", err)
	}
	if len(found) == 0 {
		return nil, domain.NewUnknownIdentifierError(serial)
	}
	return &found[0], nil
}

// identifierPlan is the registry work for one ledger entry, computed before
// anything is written.
type identifierPlan struct {
	insert     []string
	transition []string
	target     domain.IdentifierStatus
}

func (p identifierPlan) empty() bool {
	return len(p.insert) == 0 && len(p.transition) == 0
}

// plan checks the serials of entry against the registry and decides which
// rows to insert and which to transition.
func (r *IdentifierRegistry) plan(ctx context.Context, repos ports.Repositories, entry *domain.LedgerEntry) (identifierPlan, error) {
	serials := entry.UniqueIdentifiers
	if len(serials) == 0 {
		return identifierPlan{}, nil
	}

	found, err := repos.Identifiers.FindBySerials(ctx, entry.WarehouseID, serials)
	if err != nil {
		return identifierPlan{}, fmt.Errorf("failed to look up identifiers: %w", err)
	}
	bySerial := make(map[string]domain.Identifier, len(found))
	for _, id := range found {
		bySerial[id.SerialNumber] = id
	}

	switch {
	case entry.MovementType == domain.MovementOut:
		return planOut(entry, serials, bySerial)
	case entry.MovementSubtype == domain.SubtypeReturn:
		return planReturn(entry, serials, bySerial)
	default:
		return planIn(entry, serials, bySerial)
	}
}

func planIn(entry *domain.LedgerEntry, serials []string, bySerial map[string]domain.Identifier) (identifierPlan, error) {
	p := identifierPlan{target: domain.IdentifierInStock}
	var dups []string
	for _, s := range serials {
		id, ok := bySerial[s]
		switch {
		case !ok:
			p.insert = append(p.insert, s)
		case entry.MovementSubtype == domain.SubtypeTransfer && id.ProductID == entry.ProductID &&
			domain.CanTransition(id.Status, domain.IdentifierInStock, domain.SubtypeTransfer):
			p.transition = append(p.transition, s)
		default:
			dups = append(dups, s)
		}
	}
	if len(dups) > 0 {
		return identifierPlan{}, domain.NewDuplicateIdentifierError(dups...)
	}
	return p, nil
}

func planOut(entry *domain.LedgerEntry, serials []string, bySerial map[string]domain.Identifier) (identifierPlan, error) {
	target := domain.IdentifierDispatched
	if entry.MovementSubtype == domain.SubtypeTransfer {
		target = domain.IdentifierTransferred
	}

	var bad []string
	for _, s := range serials {
		id, ok := bySerial[s]
		if !ok || id.ProductID != entry.ProductID || !domain.CanTransition(id.Status, target, entry.MovementSubtype) {
			bad = append(bad, s)
		}
	}
	if len(bad) > 0 {
		return identifierPlan{}, domain.NewInvalidIdentifierStateError(domain.IdentifierInStock, bad...)
	}
	return identifierPlan{transition: serials, target: target}, nil
}

func planReturn(entry *domain.LedgerEntry, serials []string, bySerial map[string]domain.Identifier) (identifierPlan, error) {
	var unknown, bad []string
	for _, s := range serials {
		id, ok := bySerial[s]
		switch {
		case !ok:
			unknown = append(unknown, s)
		case id.ProductID != entry.ProductID ||
			!domain.CanTransition(id.Status, domain.IdentifierInStock, domain.SubtypeReturn):
			bad = append(bad, s)
		}
	}
	if len(unknown) > 0 {
		return identifierPlan{}, domain.NewUnknownIdentifierError(unknown...)
	}
	if len(bad) > 0 {
		return identifierPlan{}, domain.NewInvalidIdentifierStateError(domain.IdentifierDispatched, bad...)
	}
	return identifierPlan{transition: serials, target: domain.IdentifierInStock}, nil
}

// apply writes a plan produced for entry. A unique violation raised by the
// store here means a concurrent movement registered the serial first.
func (r *IdentifierRegistry) apply(ctx context.Context, repos ports.Repositories, entry *domain.LedgerEntry, p identifierPlan) error {
	if len(p.insert) > 0 {
		now := time.Now().UTC()
		rows := make([]domain.Identifier, 0, len(p.insert))
		for _, s := range p.insert {
			rows = append(rows, domain.Identifier{
				WarehouseID:  entry.WarehouseID,
				ProductID:    entry.ProductID,
				ClientID:     entry.ClientID,
				SerialNumber: s,
				Status:       domain.IdentifierInStock,
				LastLedgerID: entry.ID,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
		}
		if err := repos.Identifiers.Insert(ctx, rows); err != nil {
			if errors.Is(err, domain.ErrDuplicateIdentifier) {
				return err
			}
			return fmt.Errorf("failed to insert identifiers: %w", err)
		}
	}

	if len(p.transition) > 0 {
		if err := repos.Identifiers.UpdateStatus(ctx, entry.WarehouseID, p.transition, p.target, entry.ID); err != nil {
			return fmt.Errorf("failed to transition identifiers to %s: %w", p.target, err)
		}
	}
	return nil
}
