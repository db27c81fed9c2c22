// internal/core/domain/snapshot.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SnapshotKey identifies the single snapshot row of a product for a client in a warehouse.
type SnapshotKey struct {
	WarehouseID uuid.UUID `json:"warehouse_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ClientID    uuid.UUID `json:"client_id"`
}

func (k SnapshotKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.WarehouseID, k.ProductID, k.ClientID)
}

// InventorySnapshot is the derived current state of a product. It only changes
// by applying ledger entries, so replaying the ledger rebuilds it exactly.
type InventorySnapshot struct {
	ID           uuid.UUID       `json:"id"`
	WarehouseID  uuid.UUID       `json:"warehouse_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ClientID     uuid.UUID       `json:"client_id"`
	Quantity     int             `json:"quantity"`
	AvailableQty int             `json:"available_qty"`
	DamagedQty   int             `json:"damaged_qty"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SnapshotDelta is the change a single ledger entry makes to a snapshot.
type SnapshotDelta struct {
	Quantity  int `json:"quantity"`
	Available int `json:"available"`
	Damaged   int `json:"damaged"`
}

// NewSnapshot returns the empty snapshot for key.
func NewSnapshot(key SnapshotKey) *InventorySnapshot {
	return &InventorySnapshot{
		ID:          uuid.New(),
		WarehouseID: key.WarehouseID,
		ProductID:   key.ProductID,
		ClientID:    key.ClientID,
		UnitCost:    decimal.Zero,
	}
}

// Key returns the snapshot key.
func (s *InventorySnapshot) Key() SnapshotKey {
	return SnapshotKey{WarehouseID: s.WarehouseID, ProductID: s.ProductID, ClientID: s.ClientID}
}

// DeltaFor computes the snapshot change for an entry.
func DeltaFor(e *LedgerEntry) SnapshotDelta {
	switch {
	case e.MovementType == MovementOut:
		return SnapshotDelta{Quantity: -e.Quantity, Available: -e.Quantity}
	case e.ItemCondition == ConditionDamaged:
		return SnapshotDelta{Quantity: e.Quantity, Damaged: e.Quantity}
	default:
		return SnapshotDelta{Quantity: e.Quantity, Available: e.Quantity}
	}
}

// Apply folds a ledger entry into the snapshot.
func (s *InventorySnapshot) Apply(e *LedgerEntry) error {
	if e.Key() != s.Key() {
		return NewValidationError("entry %s does not belong to snapshot %s", e.ID, s.Key())
	}
	if e.MovementType == MovementOut && e.Quantity > s.AvailableQty {
		return NewInsufficientStockError(e.Quantity, s.AvailableQty)
	}
	if err := s.ApplyDelta(DeltaFor(e)); err != nil {
		return err
	}
	if e.UnitCost != nil {
		s.UnitCost = *e.UnitCost
	}
	s.UpdatedAt = e.CreatedAt
	return nil
}

// ApplyDelta adds d to the counters and re-derives available_qty.
func (s *InventorySnapshot) ApplyDelta(d SnapshotDelta) error {
	next := *s
	next.Quantity += d.Quantity
	next.DamagedQty += d.Damaged
	next.AvailableQty = next.Quantity - next.DamagedQty
	if next.AvailableQty != s.AvailableQty+d.Available {
		return fmt.Errorf("snapshot %s: delta %+v breaks available = quantity - damaged", s.Key(), d)
	}
	if err := next.CheckInvariant(); err != nil {
		return err
	}
	*s = next
	return nil
}

// CheckInvariant verifies the counters are consistent.
func (s *InventorySnapshot) CheckInvariant() error {
	if s.Quantity < 0 || s.AvailableQty < 0 || s.DamagedQty < 0 {
		return fmt.Errorf("snapshot %s: negative counters quantity=%d available=%d damaged=%d",
			s.Key(), s.Quantity, s.AvailableQty, s.DamagedQty)
	}
	if s.AvailableQty+s.DamagedQty > s.Quantity {
		return fmt.Errorf("snapshot %s: available %d + damaged %d exceeds quantity %d",
			s.Key(), s.AvailableQty, s.DamagedQty, s.Quantity)
	}
	return nil
}

// SameCounts reports whether two snapshots hold the same counters.
func (s *InventorySnapshot) SameCounts(o *InventorySnapshot) bool {
	return s.Quantity == o.Quantity && s.AvailableQty == o.AvailableQty && s.DamagedQty == o.DamagedQty
}

// Replay rebuilds a snapshot from empty state by applying entries in order.
func Replay(key SnapshotKey, entries []LedgerEntry) (*InventorySnapshot, error) {
	snap := NewSnapshot(key)
	for i := range entries {
		if err := snap.Apply(&entries[i]); err != nil {
			return nil, fmt.Errorf("failed to replay entry %s: %w", entries[i].ID, err)
		}
	}
	return snap, nil
}
