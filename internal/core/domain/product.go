// internal/core/domain/product.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductType determines how quantities and identifiers are tracked
type ProductType string

// Product type constants
const (
	ProductStandard   ProductType = "STANDARD"
	ProductSerialized ProductType = "SERIALIZED"
	ProductBatch      ProductType = "BATCH"
)

// ParseProductType normalizes a product type; empty input defaults to STANDARD.
func ParseProductType(s string) (ProductType, error) {
	switch ProductType(strings.ToUpper(strings.TrimSpace(s))) {
	case "", ProductStandard:
		return ProductStandard, nil
	case ProductSerialized:
		return ProductSerialized, nil
	case ProductBatch:
		return ProductBatch, nil
	default:
		return "", NewValidationError("unknown product type %q", s)
	}
}

// IsValid reports whether t is a known product type.
func (t ProductType) IsValid() bool {
	return t == ProductStandard || t == ProductSerialized || t == ProductBatch
}

// Product is owned by a warehouse and client pair. Its type is fixed after creation.
type Product struct {
	ID          uuid.UUID        `json:"id"`
	WarehouseID uuid.UUID        `json:"warehouse_id"`
	ClientID    uuid.UUID        `json:"client_id"`
	Name        string           `json:"name"`
	SKU         string           `json:"sku,omitempty"`
	Type        ProductType      `json:"type"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Validate performs domain validation on the product
func (p *Product) Validate() error {
	if p.WarehouseID == uuid.Nil {
		return NewValidationError("warehouse_id is required")
	}
	if p.ClientID == uuid.Nil {
		return NewValidationError("client_id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("name is required")
	}
	if p.Type == "" {
		p.Type = ProductStandard
	}
	if !p.Type.IsValid() {
		return NewValidationError("unknown product type %q", p.Type)
	}
	if p.UnitCost != nil && p.UnitCost.IsNegative() {
		return NewValidationError("unit_cost cannot be negative")
	}
	return nil
}

// PrepareForStorage fills generated fields before insert
func (p *Product) PrepareForStorage() {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Name = strings.TrimSpace(p.Name)
	p.SKU = strings.TrimSpace(p.SKU)

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// Key returns the snapshot key of this product.
func (p *Product) Key() SnapshotKey {
	return SnapshotKey{WarehouseID: p.WarehouseID, ProductID: p.ID, ClientID: p.ClientID}
}
