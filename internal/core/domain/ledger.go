// internal/core/domain/ledger.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntry is an immutable record of one stock movement. The ledger is the
// source of truth; snapshots are derived from it.
type LedgerEntry struct {
	ID                uuid.UUID        `json:"id"`
	Sequence          int64            `json:"sequence"`
	WarehouseID       uuid.UUID        `json:"warehouse_id"`
	ProductID         uuid.UUID        `json:"product_id"`
	ClientID          uuid.UUID        `json:"client_id"`
	MovementType      MovementType     `json:"movement_type"`
	MovementSubtype   MovementSubtype  `json:"movement_subtype"`
	Quantity          int              `json:"quantity"`
	UniqueIdentifiers []string         `json:"unique_identifiers,omitempty"`
	BatchCode         string           `json:"batch_code,omitempty"`
	Notes             string           `json:"notes,omitempty"`
	ItemCondition     ItemCondition    `json:"item_condition,omitempty"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceID       *uuid.UUID       `json:"reference_id,omitempty"`
	CreatedBy         string           `json:"created_by,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// NewLedgerEntry builds the entry recording m.
func NewLedgerEntry(m Movement, resolved PolicyResult) *LedgerEntry {
	line := m.Line()
	entry := &LedgerEntry{
		ID:                uuid.New(),
		WarehouseID:       line.Key.WarehouseID,
		ProductID:         line.Key.ProductID,
		ClientID:          line.Key.ClientID,
		MovementType:      m.Direction(),
		MovementSubtype:   m.Subtype(),
		Quantity:          resolved.Quantity,
		UniqueIdentifiers: resolved.Identifiers,
		BatchCode:         resolved.BatchCode,
		Notes:             line.Notes,
		UnitCost:          UnitCostOf(m),
		CreatedBy:         line.CreatedBy,
		CreatedAt:         time.Now().UTC(),
	}
	if m.Direction() == MovementIn {
		entry.ItemCondition = m.Condition()
	}
	if ret, ok := m.(Return); ok && ret.ReturnID != uuid.Nil {
		ref := ret.ReturnID
		entry.ReferenceID = &ref
	}
	return entry
}

// Validate checks the structural invariants of a ledger entry
func (e *LedgerEntry) Validate() error {
	if e.Quantity < 1 {
		return NewValidationError("quantity must be at least 1")
	}
	if e.MovementType != MovementIn && e.MovementType != MovementOut {
		return NewValidationError("unknown movement type %q", e.MovementType)
	}
	if len(e.UniqueIdentifiers) > 0 && len(e.UniqueIdentifiers) != e.Quantity {
		return NewQuantityIdentifierMismatchError(e.Quantity, len(e.UniqueIdentifiers))
	}
	if len(e.UniqueIdentifiers) > 0 && e.BatchCode != "" {
		return NewValidationError("entry cannot carry both identifiers and a batch code")
	}
	return nil
}

// Key returns the snapshot key the entry applies to.
func (e *LedgerEntry) Key() SnapshotKey {
	return SnapshotKey{WarehouseID: e.WarehouseID, ProductID: e.ProductID, ClientID: e.ClientID}
}

// LedgerEntryView is a ledger entry joined with product display fields
type LedgerEntryView struct {
	LedgerEntry
	ProductName string `json:"product_name"`
	ProductSKU  string `json:"product_sku,omitempty"`
}

// MovementEvent is published after a ledger entry commits.
type MovementEvent struct {
	EventID    uuid.UUID   `json:"event_id"`
	EventType  string      `json:"event_type"`
	Entry      LedgerEntry `json:"entry"`
	Quantity   int         `json:"snapshot_quantity"`
	Available  int         `json:"snapshot_available"`
	Damaged    int         `json:"snapshot_damaged"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Event type for committed movements
const EventMovementRecorded = "inventory.movement.recorded"

// NewMovementEvent wraps a committed entry and the snapshot it produced.
func NewMovementEvent(entry *LedgerEntry, snap *InventorySnapshot) MovementEvent {
	return MovementEvent{
		EventID:    uuid.New(),
		EventType:  EventMovementRecorded,
		Entry:      *entry,
		Quantity:   snap.Quantity,
		Available:  snap.AvailableQty,
		Damaged:    snap.DamagedQty,
		OccurredAt: entry.CreatedAt,
	}
}

// OutboxMessage is a committed movement event waiting to be published.
type OutboxMessage struct {
	ID          uuid.UUID     `json:"id"`
	Event       MovementEvent `json:"event"`
	Attempts    int           `json:"attempts"`
	CreatedAt   time.Time     `json:"created_at"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
}
