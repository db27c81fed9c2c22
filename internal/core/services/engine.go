// internal/core/services/engine.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
)

// ReconciliationEngine applies stock movements to the ledger, the snapshot and
// the identifier registry in one transaction.
type ReconciliationEngine struct {
	store    ports.Store
	registry *IdentifierRegistry
	cache    ports.SnapshotCache
	logger   *slog.Logger
}

// Statically assert that *ReconciliationEngine implements ports.MovementService.
var _ ports.MovementService = (*ReconciliationEngine)(nil)

// NewReconciliationEngine creates a new reconciliation engine. cache may be nil.
func NewReconciliationEngine(store ports.Store, registry *IdentifierRegistry, cache ports.SnapshotCache, logger *slog.Logger) *ReconciliationEngine {
	return &ReconciliationEngine{
		store:    store,
		registry: registry,
		cache:    cache,
		logger:   logger.With(slog.String("service", "reconciliation")),
	}
}

// ApplyMovement validates m, appends its ledger entry, updates the snapshot
// and the identifier registry. Nothing is written unless every step succeeds.
func (e *ReconciliationEngine) ApplyMovement(ctx context.Context, m domain.Movement) (*ports.MovementResult, error) {
	var result *ports.MovementResult
	err := e.store.Transaction(ctx, func(ctx context.Context, repos ports.Repositories) error {
		var err error
		result, err = e.apply(ctx, repos, m, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.invalidate(ctx, m.Line().Key)
	e.logger.InfoContext(ctx, "movement applied",
		slog.String("ledger_id", result.Entry.ID.String()),
		slog.String("product_id", result.Entry.ProductID.String()),
		slog.String("movement_type", string(result.Entry.MovementType)),
		slog.String("subtype", string(result.Entry.MovementSubtype)),
		slog.Int("quantity", result.Entry.Quantity),
		slog.Int("available", result.Snapshot.AvailableQty))

	return result, nil
}

// applyOnce applies m under ref at most once. A repeated call returns the
// entry written by the first one with the current snapshot. The snapshot row
// lock serializes concurrent calls so the lookup sees the earlier commit.
func (e *ReconciliationEngine) applyOnce(ctx context.Context, m domain.Movement, ref uuid.UUID) (*ports.MovementResult, error) {
	key := m.Line().Key
	var result *ports.MovementResult
	err := e.store.Transaction(ctx, func(ctx context.Context, repos ports.Repositories) error {
		snap, err := repos.Snapshots.Lock(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to lock snapshot: %w", err)
		}
		existing, err := repos.Ledger.FindByReference(ctx, ref, m.Subtype())
		if err != nil {
			return fmt.Errorf("failed to find ledger entry: %w", err)
		}
		if existing != nil {
			result = &ports.MovementResult{Entry: existing, Snapshot: snap, Replayed: true}
			return nil
		}
		result, err = e.apply(ctx, repos, m, &ref)
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.Replayed {
		e.logger.InfoContext(ctx, "movement already applied",
			slog.String("reference_id", ref.String()),
			slog.String("ledger_id", result.Entry.ID.String()))
		return result, nil
	}

	e.invalidate(ctx, key)
	e.logger.InfoContext(ctx, "movement applied",
		slog.String("ledger_id", result.Entry.ID.String()),
		slog.String("reference_id", ref.String()),
		slog.String("product_id", result.Entry.ProductID.String()),
		slog.String("subtype", string(result.Entry.MovementSubtype)),
		slog.Int("quantity", result.Entry.Quantity),
		slog.Int("available", result.Snapshot.AvailableQty))
	return result, nil
}

// apply runs a movement inside an open transaction. ref, when set, is stored
// as the entry's reference id.
func (e *ReconciliationEngine) apply(ctx context.Context, repos ports.Repositories, m domain.Movement, ref *uuid.UUID) (*ports.MovementResult, error) {
	line := m.Line()
	key := line.Key

	product, err := repos.Products.FindByID(ctx, key.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, domain.NewNotFoundError("product", key.ProductID.String())
	}
	if product.WarehouseID != key.WarehouseID || product.ClientID != key.ClientID {
		return nil, domain.NewValidationError("product %s does not belong to warehouse %s and client %s",
			product.ID, key.WarehouseID, key.ClientID)
	}

	snap, err := repos.Snapshots.Lock(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to lock snapshot: %w", err)
	}

	resolved, err := domain.ResolvePolicy(product.Type, line.Quantity, line.Identifiers)
	if err != nil {
		return nil, err
	}
	if resolved.LegacyFallback {
		tracked, err := repos.Identifiers.CountByStatus(ctx, key, domain.IdentifierInStock)
		if err != nil {
			return nil, fmt.Errorf("failed to count tracked identifiers: %w", err)
		}
		if tracked > 0 {
			return nil, domain.NewQuantityIdentifierMismatchError(resolved.Quantity, 0)
		}
		e.logger.WarnContext(ctx, "serialized movement without identifiers, tracking quantity only",
			slog.String("product_id", product.ID.String()),
			slog.String("subtype", string(m.Subtype())),
			slog.Int("quantity", resolved.Quantity))
	}

	entry := domain.NewLedgerEntry(m, resolved)
	if ref != nil {
		entry.ReferenceID = ref
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	expected := *snap
	if err := expected.Apply(entry); err != nil {
		return nil, err
	}

	plan, err := e.registry.plan(ctx, repos, entry)
	if err != nil {
		return nil, err
	}

	if err := repos.Ledger.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	updated, err := repos.Snapshots.ApplyDelta(ctx, key, domain.DeltaFor(entry), entry.UnitCost)
	if err != nil {
		e.divergence(ctx, entry, "snapshot", err)
		return nil, fmt.Errorf("failed to update snapshot: %w", err)
	}
	if !updated.SameCounts(&expected) {
		err := fmt.Errorf("snapshot %s is (%d,%d,%d), expected (%d,%d,%d)", key,
			updated.Quantity, updated.AvailableQty, updated.DamagedQty,
			expected.Quantity, expected.AvailableQty, expected.DamagedQty)
		e.divergence(ctx, entry, "snapshot", err)
		return nil, err
	}

	if !plan.empty() {
		if err := e.registry.apply(ctx, repos, entry, plan); err != nil {
			if !errors.Is(err, domain.ErrDuplicateIdentifier) {
				e.divergence(ctx, entry, "identifiers", err)
			}
			return nil, err
		}
	}

	if err := repos.Outbox.Enqueue(ctx, domain.NewMovementEvent(entry, updated)); err != nil {
		return nil, fmt.Errorf("failed to enqueue movement event: %w", err)
	}

	return &ports.MovementResult{Entry: entry, Snapshot: updated, LegacyFallback: resolved.LegacyFallback}, nil
}

// divergence logs a failure that happened after the ledger write. The
// transaction is rolled back, so the ledger and snapshot stay in step.
func (e *ReconciliationEngine) divergence(ctx context.Context, entry *domain.LedgerEntry, stage string, err error) {
	e.logger.ErrorContext(ctx, "reconciliation divergence",
		slog.String("stage", stage),
		slog.String("ledger_id", entry.ID.String()),
		slog.String("snapshot_key", entry.Key().String()),
		slog.String("error", err.Error()))
}

// Transfer writes the OUT leg at the source and the IN leg at the destination
// in one transaction. When no destination product is given one with the same
// SKU or name is used, or created.
func (e *ReconciliationEngine) Transfer(ctx context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
	if req.SourceWarehouseID == req.DestinationWarehouseID {
		return nil, domain.NewValidationError("source and destination warehouse must differ")
	}

	ref := uuid.New()
	result := &ports.TransferResult{ReferenceID: ref}

	err := e.store.Transaction(ctx, func(ctx context.Context, repos ports.Repositories) error {
		source, err := repos.Products.FindByID(ctx, req.SourceProductID)
		if err != nil {
			return fmt.Errorf("failed to get source product: %w", err)
		}
		if source == nil {
			return domain.NewNotFoundError("product", req.SourceProductID.String())
		}

		dest, err := e.destinationProduct(ctx, repos, source, req)
		if err != nil {
			return err
		}

		sourceKey := domain.SnapshotKey{WarehouseID: req.SourceWarehouseID, ProductID: source.ID, ClientID: req.ClientID}
		destKey := dest.Key()

		out := domain.TransferOut{
			MovementLine: domain.MovementLine{
				Key: sourceKey, Quantity: req.Quantity, Identifiers: req.Identifiers,
				Notes: req.Notes, CreatedBy: req.CreatedBy,
			},
			DestinationWarehouseID: req.DestinationWarehouseID,
		}
		result.Out, err = e.apply(ctx, repos, out, &ref)
		if err != nil {
			return err
		}

		in := domain.TransferIn{
			MovementLine: domain.MovementLine{
				Key: destKey, Quantity: result.Out.Entry.Quantity, Identifiers: result.Out.Entry.UniqueIdentifiers,
				Notes: req.Notes, CreatedBy: req.CreatedBy,
			},
			SourceWarehouseID: req.SourceWarehouseID,
		}
		if result.Out.Entry.BatchCode != "" {
			in.Identifiers = []string{result.Out.Entry.BatchCode}
		}
		result.In, err = e.apply(ctx, repos, in, &ref)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.invalidate(ctx, result.Out.Entry.Key())
	e.invalidate(ctx, result.In.Entry.Key())
	e.logger.InfoContext(ctx, "transfer applied",
		slog.String("reference_id", ref.String()),
		slog.String("source_warehouse_id", req.SourceWarehouseID.String()),
		slog.String("destination_warehouse_id", req.DestinationWarehouseID.String()),
		slog.Int("quantity", result.Out.Entry.Quantity))

	return result, nil
}

func (e *ReconciliationEngine) destinationProduct(ctx context.Context, repos ports.Repositories, source *domain.Product, req ports.TransferRequest) (*domain.Product, error) {
	var dest *domain.Product
	var err error
	if req.DestinationProductID != nil {
		dest, err = repos.Products.FindByID(ctx, *req.DestinationProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to get destination product: %w", err)
		}
		if dest == nil {
			return nil, domain.NewNotFoundError("product", req.DestinationProductID.String())
		}
	} else {
		dest, err = repos.Products.FindByIdentity(ctx, req.DestinationWarehouseID, req.ClientID, source.SKU, source.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to find destination product: %w", err)
		}
		if dest == nil {
			dest = &domain.Product{
				WarehouseID: req.DestinationWarehouseID,
				ClientID:    req.ClientID,
				Name:        source.Name,
				SKU:         source.SKU,
				Type:        source.Type,
				UnitCost:    source.UnitCost,
			}
			dest.PrepareForStorage()
			if err := repos.Products.Create(ctx, dest); err != nil {
				return nil, fmt.Errorf("failed to create destination product: %w", err)
			}
		}
	}

	if dest.WarehouseID != req.DestinationWarehouseID || dest.ClientID != req.ClientID {
		return nil, domain.NewValidationError("destination product %s is not in warehouse %s", dest.ID, req.DestinationWarehouseID)
	}
	if dest.Type != source.Type {
		return nil, domain.NewValidationError("destination product type %s does not match %s", dest.Type, source.Type)
	}
	return dest, nil
}

// Reconcile replays the ledger of key and overwrites the snapshot when the
// stored counters differ from the replay.
func (e *ReconciliationEngine) Reconcile(ctx context.Context, key domain.SnapshotKey) (*ports.ReconcileResult, error) {
	var result *ports.ReconcileResult
	err := e.store.Transaction(ctx, func(ctx context.Context, repos ports.Repositories) error {
		var err error
		result, err = e.reconcile(ctx, repos, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.Repaired {
		e.invalidate(ctx, key)
	}
	return result, nil
}

func (e *ReconciliationEngine) reconcile(ctx context.Context, repos ports.Repositories, key domain.SnapshotKey) (*ports.ReconcileResult, error) {
	stored, err := repos.Snapshots.Lock(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to lock snapshot: %w", err)
	}

	entries, err := repos.Ledger.ListByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	derived, err := domain.Replay(key, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to replay ledger for %s: %w", key, err)
	}
	derived.ID = stored.ID
	if len(entries) == 0 {
		derived.UnitCost = stored.UnitCost
		derived.UpdatedAt = stored.UpdatedAt
	}

	result := &ports.ReconcileResult{Key: key, Stored: stored, Derived: derived}
	if stored.SameCounts(derived) {
		return result, nil
	}

	e.logger.ErrorContext(ctx, "reconciliation divergence",
		slog.String("stage", "reconcile"),
		slog.String("snapshot_key", key.String()),
		slog.Int("stored_quantity", stored.Quantity),
		slog.Int("stored_available", stored.AvailableQty),
		slog.Int("stored_damaged", stored.DamagedQty),
		slog.Int("ledger_quantity", derived.Quantity),
		slog.Int("ledger_available", derived.AvailableQty),
		slog.Int("ledger_damaged", derived.DamagedQty))

	if err := repos.Snapshots.Replace(ctx, derived); err != nil {
		return nil, fmt.Errorf("failed to replace snapshot: %w", err)
	}
	result.Repaired = true
	return result, nil
}

// ReconcileAll sweeps every snapshot in pages of batchSize. A failing key is
// logged and counted; the sweep continues.
func (e *ReconciliationEngine) ReconcileAll(ctx context.Context, batchSize int) (*ports.ReconcileSummary, error) {
	if batchSize <= 0 {
		batchSize = 200
	}

	summary := &ports.ReconcileSummary{}
	after := uuid.Nil
	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		keys, err := e.store.Repositories().Snapshots.Keys(ctx, after, batchSize)
		if err != nil {
			return summary, fmt.Errorf("failed to list snapshot keys: %w", err)
		}
		if len(keys) == 0 {
			break
		}

		for _, key := range keys {
			summary.Checked++
			res, err := e.Reconcile(ctx, key)
			if err != nil {
				summary.Failed++
				e.logger.ErrorContext(ctx, "failed to reconcile snapshot",
					slog.String("snapshot_key", key.String()),
					slog.String("error", err.Error()))
				continue
			}
			if res.Repaired {
				summary.Repaired++
			}
		}

		after = keys[len(keys)-1].ProductID
		if len(keys) < batchSize {
			break
		}
	}

	e.logger.InfoContext(ctx, "reconciliation sweep finished",
		slog.Int("checked", summary.Checked),
		slog.Int("repaired", summary.Repaired),
		slog.Int("failed", summary.Failed))
	return summary, nil
}

// DeleteEntry removes a ledger entry and re-derives the snapshot in the same
// transaction. Entries carrying serials are refused; post a compensating
// movement instead.
func (e *ReconciliationEngine) DeleteEntry(ctx context.Context, id uuid.UUID) (*domain.InventorySnapshot, error) {
	var snap *domain.InventorySnapshot
	err := e.store.Transaction(ctx, func(ctx context.Context, repos ports.Repositories) error {
		entry, err := repos.Ledger.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get ledger entry: %w", err)
		}
		if entry == nil {
			return domain.NewNotFoundError("ledger entry", id.String())
		}
		if len(entry.UniqueIdentifiers) > 0 {
			return domain.NewValidationError("ledger entry %s carries identifiers and cannot be deleted", id)
		}

		key := entry.Key()
		stored, err := repos.Snapshots.Lock(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to lock snapshot: %w", err)
		}

		entries, err := repos.Ledger.ListByKey(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to list ledger entries: %w", err)
		}
		remaining := make([]domain.LedgerEntry, 0, len(entries))
		for _, le := range entries {
			if le.ID != id {
				remaining = append(remaining, le)
			}
		}

		snap, err = domain.Replay(key, remaining)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				return domain.NewValidationError("deleting entry %s would leave later movements without stock", id)
			}
			return err
		}
		snap.ID = stored.ID
		if len(remaining) == 0 {
			snap.UnitCost = stored.UnitCost
		}

		if err := repos.Ledger.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete ledger entry: %w", err)
		}
		if err := repos.Snapshots.Replace(ctx, snap); err != nil {
			return fmt.Errorf("failed to replace snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.invalidate(ctx, snap.Key())
	e.logger.InfoContext(ctx, "ledger entry deleted",
		slog.String("ledger_id", id.String()),
		slog.String("snapshot_key", snap.Key().String()))
	return snap, nil
}

// GetSnapshot returns the current snapshot of key, reading through the cache.
func (e *ReconciliationEngine) GetSnapshot(ctx context.Context, key domain.SnapshotKey) (*domain.InventorySnapshot, error) {
	if e.cache != nil {
		snap, err := e.cache.GetSnapshot(ctx, key)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, ports.ErrCacheMiss) {
			e.logger.WarnContext(ctx, "snapshot cache read failed",
				slog.String("snapshot_key", key.String()),
				slog.String("error", err.Error()))
		}
	}

	snap, err := e.store.Repositories().Snapshots.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	if snap == nil {
		return nil, domain.NewNotFoundError("snapshot", key.String())
	}

	if e.cache != nil {
		if err := e.cache.SetSnapshot(ctx, snap); err != nil {
			e.logger.WarnContext(ctx, "failed to cache snapshot",
				slog.String("snapshot_key", key.String()),
				slog.String("error", err.Error()))
		}
	}
	return snap, nil
}

// ListSnapshots returns snapshots joined with their products.
func (e *ReconciliationEngine) ListSnapshots(ctx context.Context, filter ports.SnapshotFilter) ([]ports.SnapshotView, error) {
	views, err := e.store.Repositories().Snapshots.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return views, nil
}

func (e *ReconciliationEngine) invalidate(ctx context.Context, key domain.SnapshotKey) {
	if e.cache == nil {
		return
	}
	if err := e.cache.InvalidateSnapshot(ctx, key); err != nil {
		e.logger.WarnContext(ctx, "failed to invalidate cached snapshot",
			slog.String("snapshot_key", key.String()),
			slog.String("error", err.Error()))
	}
}
