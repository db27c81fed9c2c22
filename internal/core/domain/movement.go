// internal/core/domain/movement.go
package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType is the direction of a stock movement
type MovementType string

// Movement type constants
const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// MovementSubtype is the business cause of a movement
type MovementSubtype string

// Movement subtype constants
const (
	SubtypeStockIn      MovementSubtype = "STOCK_IN"
	SubtypeDispatch     MovementSubtype = "DISPATCH"
	SubtypeTransfer     MovementSubtype = "TRANSFER"
	SubtypeReturn       MovementSubtype = "RETURN"
	SubtypeImport       MovementSubtype = "IMPORT"
	SubtypeInitialStock MovementSubtype = "INITIAL_STOCK"
)

// ItemCondition is the condition of units entering stock
type ItemCondition string

// Condition constants
const (
	ConditionGood    ItemCondition = "GOOD"
	ConditionDamaged ItemCondition = "DAMAGED"
)

// ParseCondition normalizes a condition; empty input means GOOD.
func ParseCondition(s string) (ItemCondition, error) {
	switch ItemCondition(strings.ToUpper(strings.TrimSpace(s))) {
	case "", ConditionGood:
		return ConditionGood, nil
	case ConditionDamaged:
		return ConditionDamaged, nil
	default:
		return "", NewValidationError("unknown item condition %q", s)
	}
}

// MovementLine holds the fields shared by every movement variant.
type MovementLine struct {
	Key         SnapshotKey
	Quantity    int
	Identifiers []string
	Notes       string
	CreatedBy   string
}

// Movement is a closed set of stock movement variants. Each variant carries only
// the fields its business cause needs.
type Movement interface {
	Line() MovementLine
	Direction() MovementType
	Subtype() MovementSubtype
	Condition() ItemCondition
	isMovement()
}

// StockIn receives units from a supplier.
type StockIn struct {
	MovementLine
	ItemCondition ItemCondition
	UnitCost      *decimal.Decimal
}

// InitialStock opens the balance of a product.
type InitialStock struct {
	MovementLine
	UnitCost *decimal.Decimal
}

// Import is one committed row of a bulk import.
type Import struct {
	MovementLine
	UnitCost *decimal.Decimal
	Row      int
}

// Return restocks units after an approved inspection.
type Return struct {
	MovementLine
	ItemCondition ItemCondition
	ReturnID      uuid.UUID
}

// Dispatch ships units out of the warehouse.
type Dispatch struct {
	MovementLine
}

// TransferOut is the source leg of a warehouse transfer.
type TransferOut struct {
	MovementLine
	DestinationWarehouseID uuid.UUID
}

// TransferIn is the destination leg of a warehouse transfer.
type TransferIn struct {
	MovementLine
	SourceWarehouseID uuid.UUID
}

func (m StockIn) Line() MovementLine      { return m.MovementLine }
func (m InitialStock) Line() MovementLine { return m.MovementLine }
func (m Import) Line() MovementLine       { return m.MovementLine }
func (m Return) Line() MovementLine       { return m.MovementLine }
func (m Dispatch) Line() MovementLine     { return m.MovementLine }
func (m TransferOut) Line() MovementLine  { return m.MovementLine }
func (m TransferIn) Line() MovementLine   { return m.MovementLine }

func (StockIn) Direction() MovementType      { return MovementIn }
func (InitialStock) Direction() MovementType { return MovementIn }
func (Import) Direction() MovementType       { return MovementIn }
func (Return) Direction() MovementType       { return MovementIn }
func (Dispatch) Direction() MovementType     { return MovementOut }
func (TransferOut) Direction() MovementType  { return MovementOut }
func (TransferIn) Direction() MovementType   { return MovementIn }

func (StockIn) Subtype() MovementSubtype      { return SubtypeStockIn }
func (InitialStock) Subtype() MovementSubtype { return SubtypeInitialStock }
func (Import) Subtype() MovementSubtype       { return SubtypeImport }
func (Return) Subtype() MovementSubtype       { return SubtypeReturn }
func (Dispatch) Subtype() MovementSubtype     { return SubtypeDispatch }
func (TransferOut) Subtype() MovementSubtype  { return SubtypeTransfer }
func (TransferIn) Subtype() MovementSubtype   { return SubtypeTransfer }

func (m StockIn) Condition() ItemCondition    { return defaultCondition(m.ItemCondition) }
func (InitialStock) Condition() ItemCondition { return ConditionGood }
func (Import) Condition() ItemCondition       { return ConditionGood }
func (m Return) Condition() ItemCondition     { return defaultCondition(m.ItemCondition) }
func (Dispatch) Condition() ItemCondition     { return ConditionGood }
func (TransferOut) Condition() ItemCondition  { return ConditionGood }
func (TransferIn) Condition() ItemCondition   { return ConditionGood }

func (StockIn) isMovement()      {}
func (InitialStock) isMovement() {}
func (Import) isMovement()       {}
func (Return) isMovement()       {}
func (Dispatch) isMovement()     {}
func (TransferOut) isMovement()  {}
func (TransferIn) isMovement()   {}

func defaultCondition(c ItemCondition) ItemCondition {
	if c == "" {
		return ConditionGood
	}
	return c
}

// UnitCostOf returns the unit cost carried by IN variants that record one.
func UnitCostOf(m Movement) *decimal.Decimal {
	switch v := m.(type) {
	case StockIn:
		return v.UnitCost
	case InitialStock:
		return v.UnitCost
	case Import:
		return v.UnitCost
	default:
		return nil
	}
}

// WithIdentifiers returns a copy of m with its quantity and identifiers replaced.
func WithIdentifiers(m Movement, quantity int, identifiers []string) Movement {
	switch v := m.(type) {
	case StockIn:
		v.Quantity, v.Identifiers = quantity, identifiers
		return v
	case InitialStock:
		v.Quantity, v.Identifiers = quantity, identifiers
		return v
	case Import:
		v.Quantity, v.Identifiers = quantity, identifiers
		return v
	case Return:
		v.Quantity, v.Identifiers = quantity, identifiers
		return v
	case Dispatch:
		v.Quantity, v.Identifiers = quantity, identifiers
		return v
	case TransferOut:
		v.Quantity, v.Identifiers = quantity, identifiers
		return v
	case TransferIn:
		v.Quantity, v.Identifiers = quantity, identifiers
		return v
	default:
		return m
	}
}

// MovementRequest is the JSON contract accepted for a single movement.
type MovementRequest struct {
	WarehouseID            uuid.UUID        `json:"warehouse_id"`
	ProductID              uuid.UUID        `json:"product_id"`
	ClientID               uuid.UUID        `json:"client_id"`
	MovementType           MovementType     `json:"movement_type"`
	Subtype                MovementSubtype  `json:"subtype"`
	Quantity               int              `json:"quantity"`
	Identifiers            []string         `json:"identifiers,omitempty"`
	Condition              string           `json:"condition,omitempty"`
	Notes                  string           `json:"notes,omitempty"`
	UnitCost               *decimal.Decimal `json:"unit_cost,omitempty"`
	CreatedBy              string           `json:"created_by,omitempty"`
	ReturnID               *uuid.UUID       `json:"return_id,omitempty"`
	CounterpartWarehouseID *uuid.UUID       `json:"counterpart_warehouse_id,omitempty"`
}

// ToMovement decodes the request into its movement variant.
func (r MovementRequest) ToMovement() (Movement, error) {
	if r.WarehouseID == uuid.Nil || r.ProductID == uuid.Nil || r.ClientID == uuid.Nil {
		return nil, NewValidationError("warehouse_id, product_id and client_id are required")
	}

	condition, err := ParseCondition(r.Condition)
	if err != nil {
		return nil, err
	}

	line := MovementLine{
		Key:         SnapshotKey{WarehouseID: r.WarehouseID, ProductID: r.ProductID, ClientID: r.ClientID},
		Quantity:    r.Quantity,
		Identifiers: r.Identifiers,
		Notes:       r.Notes,
		CreatedBy:   r.CreatedBy,
	}

	direction := MovementType(strings.ToUpper(string(r.MovementType)))
	subtype := MovementSubtype(strings.ToUpper(string(r.Subtype)))

	expectIn := func() error {
		if direction != "" && direction != MovementIn {
			return NewValidationError("subtype %s requires movement_type IN", subtype)
		}
		return nil
	}

	switch subtype {
	case SubtypeStockIn:
		if err := expectIn(); err != nil {
			return nil, err
		}
		return StockIn{MovementLine: line, ItemCondition: condition, UnitCost: r.UnitCost}, nil
	case SubtypeInitialStock:
		if err := expectIn(); err != nil {
			return nil, err
		}
		return InitialStock{MovementLine: line, UnitCost: r.UnitCost}, nil
	case SubtypeImport:
		if err := expectIn(); err != nil {
			return nil, err
		}
		return Import{MovementLine: line, UnitCost: r.UnitCost}, nil
	case SubtypeReturn:
		if err := expectIn(); err != nil {
			return nil, err
		}
		ret := Return{MovementLine: line, ItemCondition: condition}
		if r.ReturnID != nil {
			ret.ReturnID = *r.ReturnID
		}
		return ret, nil
	case SubtypeDispatch:
		if direction != "" && direction != MovementOut {
			return nil, NewValidationError("subtype DISPATCH requires movement_type OUT")
		}
		return Dispatch{MovementLine: line}, nil
	case SubtypeTransfer:
		var counterpart uuid.UUID
		if r.CounterpartWarehouseID != nil {
			counterpart = *r.CounterpartWarehouseID
		}
		switch direction {
		case MovementIn:
			return TransferIn{MovementLine: line, SourceWarehouseID: counterpart}, nil
		case MovementOut:
			return TransferOut{MovementLine: line, DestinationWarehouseID: counterpart}, nil
		default:
			return nil, NewValidationError("subtype TRANSFER requires movement_type IN or OUT")
		}
	default:
		return nil, NewValidationError("unknown movement subtype %q", r.Subtype)
	}
}
