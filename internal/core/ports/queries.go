// internal/core/ports/queries.go
package ports

import (
	"time"

	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductFilter holds parameters for listing products
type ProductFilter struct {
	WarehouseID *uuid.UUID
	ClientID    *uuid.UUID
	Type        domain.ProductType
	Search      string
	Page        int
	PageSize    int
}

// SnapshotFilter selects snapshot rows for listing and export
type SnapshotFilter struct {
	WarehouseID *uuid.UUID
	ClientID    *uuid.UUID
	ProductID   *uuid.UUID
	InStockOnly bool
}

// SnapshotView is a snapshot joined with its product
type SnapshotView struct {
	domain.InventorySnapshot
	ProductName string             `json:"product_name"`
	ProductSKU  string             `json:"product_sku,omitempty"`
	ProductType domain.ProductType `json:"product_type"`
	ProductCost *decimal.Decimal   `json:"product_unit_cost,omitempty"`
}

// LedgerQuery holds filters and pagination for ledger history
type LedgerQuery struct {
	WarehouseID *uuid.UUID
	ClientID    *uuid.UUID
	ProductID   *uuid.UUID
	Subtype     domain.MovementSubtype
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
}

// Normalize applies pagination defaults.
func (q *LedgerQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 50
	}
	if q.PageSize > 500 {
		q.PageSize = 500
	}
}

// Page is a generic paginated result
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}

// NewPage computes the page count for a result set.
func NewPage[T any](items []T, page, pageSize int, total int64) *Page[T] {
	var totalPages int
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize > 0 {
			totalPages++
		}
	}
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}
}
